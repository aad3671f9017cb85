package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapstat/internal/frame"
)

func TestRegistry(t *testing.T) {
	for _, name := range []string{"duckdb", "sqlite", "postgres"} {
		assert.True(t, IsRegistered(name), "%s should be registered", name)
	}
	assert.Equal(t, []string{"duckdb", "postgres", "sqlite"}, List())

	_, err := New(Config{Type: "oracle"}, nil)
	require.Error(t, err)

	var unknownErr *UnknownAdapterError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "oracle", unknownErr.Type)
}

func TestNewRequiresType(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}

func TestQueryScansFrame(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("host").OfType("VARCHAR", ""),
		sqlmock.NewColumn("cpu").OfType("DOUBLE", float64(0)),
		sqlmock.NewColumn("seen").OfType("TIMESTAMP", ts),
	).
		AddRow("web-1", 0.45, ts).
		AddRow("web-2", nil, ts)
	mock.ExpectQuery("SELECT .* FROM hosts").WillReturnRows(rows)

	a := &BaseSQLAdapter{DB: db}
	tbl, err := a.Query(context.Background(), "hosts", "SELECT host, cpu, seen FROM hosts")
	require.NoError(t, err)

	require.Len(t, tbl.Columns, 3)
	assert.Equal(t, "hosts", tbl.Name)
	assert.Equal(t, frame.TypeText, tbl.Columns[0].Type)
	assert.Equal(t, frame.TypeNumber, tbl.Columns[1].Type)
	assert.Equal(t, frame.TypeTime, tbl.Columns[2].Type)

	require.Equal(t, 2, tbl.RowCount())
	assert.Equal(t, 0.45, tbl.Rows[0][1])
	assert.Nil(t, tbl.Rows[1][1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryWithoutConnection(t *testing.T) {
	a := &BaseSQLAdapter{}
	_, err := a.Query(context.Background(), "t", "SELECT 1")
	assert.Error(t, err)
}

func TestColumnType(t *testing.T) {
	tests := []struct {
		dbType string
		want   frame.ColumnType
	}{
		{dbType: "BIGINT", want: frame.TypeNumber},
		{dbType: "double", want: frame.TypeNumber},
		{dbType: "NUMERIC", want: frame.TypeNumber},
		{dbType: "VARCHAR", want: frame.TypeText},
		{dbType: "TIMESTAMPTZ", want: frame.TypeTime},
		{dbType: "BOOLEAN", want: frame.TypeBool},
		{dbType: "JSONB", want: frame.TypeOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, columnType(tt.dbType), "type %s", tt.dbType)
	}
}

func TestInferCSVType(t *testing.T) {
	records := [][]string{
		{"1.5", "hello", ""},
		{"2", "world", ""},
	}
	assert.Equal(t, "DOUBLE PRECISION", inferCSVType(records, 0))
	assert.Equal(t, "TEXT", inferCSVType(records, 1))
	// Column with no values at all defaults to text.
	assert.Equal(t, "TEXT", inferCSVType(records, 2))
}

func TestCSVCell(t *testing.T) {
	assert.Nil(t, csvCell(""))
	assert.Equal(t, 2.5, csvCell("2.5"))
	assert.Equal(t, "abc", csvCell("abc"))
}
