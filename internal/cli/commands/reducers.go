package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapstat/internal/reduce"
)

// NewReducersCommand creates the reducers command, which lists the
// reducer catalog.
func NewReducersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reducers",
		Short: "List available reducers",
		Long:  `Reducers prints the reducer catalog: id, aliases, whether the reducer is part of the combined single pass, and what it computes.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"ID", "Name", "Aliases", "Combined", "Description"})

			for _, d := range reduce.All() {
				combined := ""
				if d.Standard {
					combined = "yes"
				}
				t.AppendRow(table.Row{
					string(d.ID), d.Name, strings.Join(d.Aliases, ", "), combined, d.Description,
				})
			}
			t.Render()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "(%d reducers)\n", len(reduce.All()))
			return nil
		},
	}
}
