package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite" // sqlite driver
)

func init() {
	Register("sqlite", func(logger *slog.Logger) Adapter { return NewSQLite(logger) })
}

// SQLiteAdapter implements Adapter for SQLite.
type SQLiteAdapter struct {
	BaseSQLAdapter
}

// NewSQLite creates a SQLite adapter. A nil logger uses a discard
// logger.
func NewSQLite(logger *slog.Logger) *SQLiteAdapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteAdapter{BaseSQLAdapter{Logger: logger}}
}

// DriverName returns the adapter type name.
func (a *SQLiteAdapter) DriverName() string { return "sqlite" }

// Connect opens a SQLite database. An empty path opens an in-memory
// database.
func (a *SQLiteAdapter) Connect(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	a.Logger.Debug("connecting to sqlite", slog.String("path", path))

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

var _ Adapter = (*SQLiteAdapter)(nil)
