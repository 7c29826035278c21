// internal/core/db/provider.go
package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/solatis/vizcore/internal/dataset"
	"github.com/solatis/vizcore/internal/types"
)

/*
 * SQL data provider.
 *
 * Turns a read-only SQL query into a types.Dataset the chart builders and
 * style API consume.
 *
 * Column typing:
 *   1. The driver's database type name maps to NUMERIC, DATE or STRING
 *   2. Columns the driver cannot type (SQLite expressions) are inferred
 *      from their values, as file loaders do
 *
 * Only single statements starting with SELECT, WITH, VALUES, SHOW or
 * EXPLAIN are accepted. The row limit is enforced while scanning, so an
 * oversized result stops early.
 */

// Provider reads datasets and catalog information from one database.
// Safe for concurrent use.
type Provider struct {
	db      *sqlx.DB
	queries *Queries
	maxRows int
	timeout time.Duration
	logger  *zap.Logger
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithMaxRows bounds the rows a query may return.
func WithMaxRows(n int) ProviderOption {
	return func(p *Provider) {
		if n > 0 && n <= types.MaxDatasetRows {
			p.maxRows = n
		}
	}
}

// WithQueryTimeout bounds each query.
func WithQueryTimeout(d time.Duration) ProviderOption {
	return func(p *Provider) {
		p.timeout = d
	}
}

// WithLogger sets the provider's logger.
func WithLogger(logger *zap.Logger) ProviderOption {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProvider loads the catalog queries for db's dialect.
func NewProvider(db *sqlx.DB, opts ...ProviderOption) (*Provider, error) {
	queries, err := LoadQueries(db)
	if err != nil {
		return nil, err
	}
	p := &Provider{
		db:      db,
		queries: queries,
		maxRows: types.MaxDatasetRows,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Close closes the underlying database.
func (p *Provider) Close() error {
	return p.db.Close()
}

// Version returns the server version string.
func (p *Provider) Version(ctx context.Context) (string, error) {
	var version string
	if err := p.queries.Get(ctx, "version", &version); err != nil {
		return "", fmt.Errorf("version: %w", err)
	}
	return version, nil
}

// Tables lists the tables and views visible to the connection.
func (p *Provider) Tables(ctx context.Context) ([]string, error) {
	var names []string
	if err := p.queries.Select(ctx, "list-tables", &names); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return names, nil
}

type catalogColumn struct {
	Name string `db:"name"`
	Type string `db:"type"`
}

// Columns describes a table's columns in declaration order.
func (p *Provider) Columns(ctx context.Context, table string) ([]types.Column, error) {
	var rows []catalogColumn
	if err := p.queries.Select(ctx, "list-columns", &rows, table); err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: table %q", types.ErrColumnNotFound, table)
	}
	cols := make([]types.Column, len(rows))
	for i, r := range rows {
		cols[i] = types.Column{Name: r.Name, Type: ColumnType(r.Type)}
		if cols[i].Type == "" {
			cols[i].Type = types.ColumnString
		}
	}
	return cols, nil
}

// Query runs a read-only statement and returns its result as a dataset.
func (p *Provider) Query(ctx context.Context, query string, args ...any) (types.Dataset, error) {
	if !ReadOnly(query) {
		return types.Dataset{}, types.ErrWriteQuery
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := p.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return types.Dataset{}, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return types.Dataset{}, fmt.Errorf("column types: %w", err)
	}
	ds := types.Dataset{Columns: make([]types.Column, len(colTypes))}
	for i, ct := range colTypes {
		ds.Columns[i] = types.Column{Name: ct.Name(), Type: ColumnType(ct.DatabaseTypeName())}
	}

	for rows.Next() {
		if len(ds.Rows) >= p.maxRows {
			return types.Dataset{}, fmt.Errorf("%w: more than %d", types.ErrTooManyRows, p.maxRows)
		}
		cells, err := rows.SliceScan()
		if err != nil {
			return types.Dataset{}, fmt.Errorf("scan: %w", err)
		}
		for i := range cells {
			cells[i] = cellValue(cells[i], ds.Columns[i].Type)
		}
		ds.Rows = append(ds.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return types.Dataset{}, fmt.Errorf("query: %w", err)
	}

	p.logger.Debug("dataset query",
		zap.String("driver", p.db.DriverName()),
		zap.Int("rows", len(ds.Rows)),
		zap.Int("columns", len(ds.Columns)),
		zap.Duration("elapsed", time.Since(start)))

	return dataset.Typed(ds), nil
}

// cellValue normalizes a scanned cell. Drivers return DECIMAL as text, so
// numeric columns parse text cells.
func cellValue(v any, t types.ColumnType) any {
	v = dataset.Cell(v)
	if s, ok := v.(string); ok && t == types.ColumnNumeric {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return v
}

// ColumnType maps a driver type name to a dataset column type.
// Unknown names return "" so the caller can infer from values.
func ColumnType(databaseType string) types.ColumnType {
	name := strings.ToUpper(strings.TrimSpace(databaseType))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "UNSIGNED ")
	switch name {
	case "":
		return ""
	case "INT", "INTEGER", "BIGINT", "SMALLINT", "TINYINT", "MEDIUMINT",
		"INT2", "INT4", "INT8", "DECIMAL", "NUMERIC", "NUMBER", "REAL",
		"FLOAT", "FLOAT4", "FLOAT8", "DOUBLE", "DOUBLE PRECISION", "MONEY":
		return types.ColumnNumeric
	case "DATE", "DATETIME", "TIMESTAMP", "TIMESTAMPTZ", "TIME", "TIMETZ",
		"TIMESTAMP WITH TIME ZONE", "TIMESTAMP WITHOUT TIME ZONE", "YEAR":
		return types.ColumnDate
	default:
		return types.ColumnString
	}
}

var readOnlyKeywords = map[string]bool{
	"SELECT":  true,
	"WITH":    true,
	"VALUES":  true,
	"SHOW":    true,
	"EXPLAIN": true,
}

// ReadOnly reports whether query is a single statement starting with a
// read-only keyword, after leading whitespace and comments.
func ReadOnly(query string) bool {
	q := strings.TrimSpace(query)
	if strings.Contains(strings.TrimRight(q, "; \t\r\n"), ";") {
		return false
	}
	for {
		switch {
		case strings.HasPrefix(q, "--"):
			end := strings.IndexByte(q, '\n')
			if end < 0 {
				return false
			}
			q = strings.TrimSpace(q[end+1:])
		case strings.HasPrefix(q, "/*"):
			end := strings.Index(q, "*/")
			if end < 0 {
				return false
			}
			q = strings.TrimSpace(q[end+2:])
		default:
			word := q
			if i := strings.IndexFunc(q, func(r rune) bool {
				return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
			}); i >= 0 {
				word = q[:i]
			}
			return readOnlyKeywords[strings.ToUpper(word)]
		}
	}
}
