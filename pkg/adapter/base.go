package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapdq/pkg/core"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close and QueryDataset implementations.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    core.SourceConfig
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// SelectStatement returns the statement that loads the configured source.
// An explicit query wins over a table name.
func (b *BaseSQLAdapter) SelectStatement() (string, error) {
	if b.Cfg.Query != "" {
		return b.Cfg.Query, nil
	}
	if b.Cfg.Table == "" {
		return "", fmt.Errorf("source needs either a table or a query")
	}
	return fmt.Sprintf("SELECT * FROM %s", b.Cfg.Table), nil //nolint:gosec // Table name comes from operator config
}

// QueryDataset runs a query and materializes every row into a Dataset.
// Driver values are normalized to the engine's value kinds.
func (b *BaseSQLAdapter) QueryDataset(ctx context.Context, query string, args ...any) (*core.Dataset, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := b.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}
	isDecimal := make([]bool, len(cols))
	for i, ct := range types {
		isDecimal[i] = IsDecimalType(ct.DatabaseTypeName())
	}

	ds := core.NewDataset(cols)
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make([]any, len(cols))
		for i, v := range values {
			if isDecimal[i] {
				row[i] = NormalizeDecimal(v)
			} else {
				row[i] = NormalizeValue(v)
			}
		}
		if err := ds.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	if b.Logger != nil {
		b.Logger.Debug("query loaded",
			slog.Int("columns", len(cols)),
			slog.Int("rows", ds.Len()))
	}
	return ds, nil
}

// IsDecimalType reports whether a driver type name is an exact numeric type
// that drivers hand back as text.
func IsDecimalType(name string) bool {
	switch strings.ToUpper(name) {
	case "NUMERIC", "DECIMAL":
		return true
	}
	return false
}

// NormalizeDecimal parses a NUMERIC/DECIMAL value into float64. Text that
// does not parse is kept as a string.
func NormalizeDecimal(v any) any {
	v = NormalizeValue(v)
	s, ok := v.(string)
	if !ok {
		return v
	}
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "NaN") {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return v
}

// NormalizeValue maps driver values onto null, int64, float64, bool,
// string and time.Time.
func NormalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return int64(x) //nolint:gosec // Row counts and ids fit in int64
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x) //nolint:gosec // Row counts and ids fit in int64
	case float32:
		return float64(x)
	case interface{ Float64() float64 }:
		return x.Float64()
	case interface{ Float64() (float64, error) }:
		if f, err := x.Float64(); err == nil {
			return f
		}
		return fmt.Sprint(x)
	default:
		return v
	}
}
