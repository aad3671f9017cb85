package adapter

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/leapstat/internal/frame"
)

// BaseSQLAdapter carries the shared database/sql plumbing: query
// execution, result-set scanning into frames, and a generic
// insert-based CSV loader. Concrete adapters embed it and implement
// Connect and DriverName.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger

	// NumberedArgs switches insert placeholders from "?" to "$1"
	// style for drivers that require it.
	NumberedArgs bool
}

// Close closes the database connection.
func (a *BaseSQLAdapter) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// Exec executes a statement that returns no rows.
func (a *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string) error {
	if a.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	if _, err := a.DB.ExecContext(ctx, sqlStr); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a statement and scans the full result set into a
// frame.Table named after name.
func (a *BaseSQLAdapter) Query(ctx context.Context, name, sqlStr string) (*frame.Table, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := a.DB.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return ScanTable(name, rows)
}

// ScanTable reads an entire sql.Rows result set into a frame.Table,
// mapping driver column types to frame column types.
func ScanTable(name string, rows *sql.Rows) (*frame.Table, error) {
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}

	cols := make([]frame.Column, len(colTypes))
	for i, ct := range colTypes {
		cols[i] = frame.Column{
			Name: ct.Name(),
			Type: columnType(ct.DatabaseTypeName()),
		}
	}

	t := frame.New(name, cols...)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			values[i] = normalizeCell(v)
		}
		if err := t.AppendRow(values...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return t, nil
}

// columnType maps a driver type name to a frame column type.
func columnType(dbType string) frame.ColumnType {
	switch strings.ToUpper(dbType) {
	case "INTEGER", "INT", "INT2", "INT4", "INT8", "BIGINT", "SMALLINT", "TINYINT",
		"HUGEINT", "UINTEGER", "UBIGINT", "USMALLINT", "UTINYINT",
		"FLOAT", "FLOAT4", "FLOAT8", "DOUBLE", "REAL", "DECIMAL", "NUMERIC":
		return frame.TypeNumber
	case "VARCHAR", "TEXT", "CHAR", "BPCHAR", "STRING", "NAME", "UUID":
		return frame.TypeText
	case "DATE", "TIMESTAMP", "TIMESTAMPTZ", "TIME", "DATETIME", "TIMESTAMP WITH TIME ZONE":
		return frame.TypeTime
	case "BOOL", "BOOLEAN", "BIT":
		return frame.TypeBool
	default:
		return frame.TypeOther
	}
}

// normalizeCell converts driver values to the cell types the frame
// model works with.
func normalizeCell(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x
	default:
		return v
	}
}

// LoadCSV loads a CSV file into a table with a generic
// create-and-insert strategy. Adapters with a native bulk loader
// override this.
func (a *BaseSQLAdapter) LoadCSV(ctx context.Context, tableName, filePath string) error {
	if a.DB == nil {
		return fmt.Errorf("database connection not established")
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	records, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read CSV rows: %w", err)
	}

	colDefs := make([]string, len(header))
	for i, name := range header {
		colDefs[i] = fmt.Sprintf("%q %s", name, inferCSVType(records, i))
	}
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q (%s)", tableName, strings.Join(colDefs, ", "))
	if err := a.Exec(ctx, create); err != nil {
		return fmt.Errorf("failed to create table for CSV: %w", err)
	}

	placeholders := make([]string, len(header))
	for i := range placeholders {
		if a.NumberedArgs {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		} else {
			placeholders[i] = "?"
		}
	}
	insert := fmt.Sprintf("INSERT INTO %q VALUES (%s)", tableName, strings.Join(placeholders, ", ")) //nolint:gosec // table name comes from config, not user data

	tx, err := a.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range records {
		args := make([]any, len(rec))
		for i, cell := range rec {
			args[i] = csvCell(cell)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert CSV row: %w", err)
		}
	}
	return tx.Commit()
}

// inferCSVType picks a column type by sampling the column's cells:
// numeric if every non-empty cell parses as a number, text otherwise.
func inferCSVType(records [][]string, col int) string {
	numeric := false
	for _, rec := range records {
		if col >= len(rec) || rec[col] == "" {
			continue
		}
		if _, err := strconv.ParseFloat(rec[col], 64); err != nil {
			return "TEXT"
		}
		numeric = true
	}
	if numeric {
		return "DOUBLE PRECISION"
	}
	return "TEXT"
}

// csvCell converts a raw CSV cell to an insert argument: empty cells
// become NULL, numeric strings become floats.
func csvCell(cell string) any {
	if cell == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f
	}
	return cell
}
