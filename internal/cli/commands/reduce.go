package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapstat/internal/adapter"
	"github.com/leapstack-labs/leapstat/internal/cli/config"
	"github.com/leapstack-labs/leapstat/internal/field"
	"github.com/leapstack-labs/leapstat/internal/format"
	"github.com/leapstack-labs/leapstat/internal/frame"
	"github.com/leapstack-labs/leapstat/internal/reduce"
	"github.com/leapstack-labs/leapstat/internal/theme"
	"github.com/leapstack-labs/leapstat/internal/vars"
)

// NewReduceCommand creates the reduce command.
func NewReduceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reduce <csv-file|sql>...",
		Short: "Compute reducers over columns and print display values",
		Long: `Reduce loads one or more inputs (CSV files or SQL queries against the
configured target), computes the requested reducers per numeric
column, and prints the resolved display values.

With --values, raw row values are emitted instead of reductions,
bounded by --limit across the whole result set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig(cmd.Context())
			logger := GetLogger(cmd.Context())
			return runReduce(cmd, cfg, logger, args)
		},
	}
	return cmd
}

func runReduce(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, inputs []string) error {
	ctx := cmd.Context()

	policy, err := reduce.ParseNullPolicy(cfg.NullMode)
	if err != nil {
		return err
	}

	if !cfg.Values && len(cfg.Calcs) == 0 {
		return fmt.Errorf("no reducers requested: set --calcs or --values")
	}

	a, err := openAdapter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	runID := uuid.NewString()
	logger.Debug("loading inputs",
		slog.String("run_id", runID),
		slog.Int("inputs", len(inputs)),
		slog.String("adapter", a.DriverName()))

	tables, err := loadTables(ctx, a, inputs)
	if err != nil {
		return err
	}

	ids := make([]reduce.ID, len(cfg.Calcs))
	for i, c := range cfg.Calcs {
		ids[i] = reduce.ID(c)
	}

	th := resolveTheme(cfg.Theme)
	opts := field.Options{
		Calcs:      ids,
		Values:     cfg.Values,
		Limit:      cfg.Limit,
		NullPolicy: policy,
		Defaults:   cfg.Defaults.ToProperties(),
		Overrides:  cfg.FieldOverrides(),
		Formatter:  format.New(cfg.Locale),
		Replacer:   vars.New(),
		Theme:      th,
	}

	values, err := field.ResolveDisplayValues(tables, opts)
	if err != nil {
		return err
	}

	logger.Debug("resolved display values",
		slog.String("run_id", runID),
		slog.Int("values", len(values)))

	return renderDisplayValues(cmd.OutOrStdout(), values, cfg.Output, th)
}

// openAdapter connects to the configured target, defaulting to an
// in-memory DuckDB database so CSV inputs work without a config file.
func openAdapter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (adapter.Adapter, error) {
	target := adapter.Config{Type: "duckdb"}
	if cfg.Target != nil && cfg.Target.Type != "" {
		target = *cfg.Target
	}
	a, err := adapter.New(target, logger)
	if err != nil {
		return nil, err
	}
	if err := a.Connect(ctx, target); err != nil {
		return nil, err
	}
	return a, nil
}

// loadTables resolves every input to a frame.Table. Ingestion fans
// out with an errgroup; results keep the input order. The core
// resolution stays synchronous.
func loadTables(ctx context.Context, a adapter.Adapter, inputs []string) ([]*frame.Table, error) {
	tables := make([]*frame.Table, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	for i, input := range inputs {
		g.Go(func() error {
			t, err := loadTable(ctx, a, input, i)
			if err != nil {
				return fmt.Errorf("input %q: %w", input, err)
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

func loadTable(ctx context.Context, a adapter.Adapter, input string, idx int) (*frame.Table, error) {
	if strings.EqualFold(filepath.Ext(input), ".csv") {
		name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		if err := a.LoadCSV(ctx, name, input); err != nil {
			return nil, err
		}
		return a.Query(ctx, name, fmt.Sprintf("SELECT * FROM %q", name))
	}
	name := fmt.Sprintf("query_%d", idx+1)
	return a.Query(ctx, name, input)
}

func resolveTheme(name string) *theme.Theme {
	switch theme.Variant(name) {
	case theme.Dark, theme.Light:
		return theme.New(theme.Variant(name))
	default:
		return theme.Detect()
	}
}
