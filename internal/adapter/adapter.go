// Package adapter provides database adapters that produce in-memory
// frame.Tables for the reducer engine and display resolver. Adapters
// register themselves by type name in init(); callers create them
// through New using the configured target type.
package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/leapstack-labs/leapstat/internal/frame"
)

// Config holds the connection settings for one data source.
type Config struct {
	// Type is the adapter type ("duckdb", "sqlite", "postgres").
	Type string `koanf:"type"`

	// Path is the file path for file-based databases; ":memory:"
	// opens an in-memory database.
	Path string `koanf:"path"`

	// Network database settings.
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Options contains additional driver-specific options.
	Options map[string]string `koanf:"options"`
}

// Adapter is the interface all data source adapters implement.
type Adapter interface {
	// Connect establishes the connection described by cfg.
	Connect(ctx context.Context, cfg Config) error

	// Close releases the connection.
	Close() error

	// Query executes a statement and scans the result set into a
	// table named after name.
	Query(ctx context.Context, name, sql string) (*frame.Table, error)

	// LoadCSV loads a CSV file into a table, creating it with an
	// inferred schema if needed.
	LoadCSV(ctx context.Context, tableName, filePath string) error

	// DriverName returns the adapter's type name.
	DriverName() string
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func(*slog.Logger) Adapter)
)

// Register adds an adapter factory to the registry. Called by adapter
// implementations in their init() functions.
func Register(name string, factory func(*slog.Logger) Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New creates an adapter for the configured type. A nil logger uses a
// discard logger.
func New(cfg Config, logger *slog.Logger) (Adapter, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("adapter type not specified")
	}
	registryMu.RLock()
	factory, ok := registry[cfg.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, &UnknownAdapterError{Type: cfg.Type, Available: List()}
	}
	return factory(logger), nil
}

// List returns all registered adapter names, sorted.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks whether an adapter type is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// UnknownAdapterError is returned when an unknown adapter type is
// requested.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown adapter type %q (available: %v)", e.Type, e.Available)
}
