// Package dataset loads tabular chart data from files and decoders into
// types.Dataset, inferring column types along the way.
//
// Supported sources: CSV (header row required), JSON (either the
// {columns, rows} wire form or an array of objects) and Parquet.
// Every loader enforces types.MaxDatasetRows.
package dataset

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/solatis/vizcore/internal/types"
)

// dateLayouts are the layouts recognized when typing a DATE column.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FromRecords converts keyed records to a Dataset.
// columns fixes column order; when empty, the union of record keys is used
// in sorted order. Values are normalized and columns typed by inference.
func FromRecords(records []map[string]any, columns []string) (types.Dataset, error) {
	if len(records) > types.MaxDatasetRows {
		return types.Dataset{}, fmt.Errorf("%w: %d > %d", types.ErrTooManyRows, len(records), types.MaxDatasetRows)
	}
	if len(columns) == 0 {
		columns = recordKeys(records)
	}

	rows := make([][]any, len(records))
	for i, rec := range records {
		cells := make([]any, len(columns))
		for j, name := range columns {
			cells[j] = Cell(rec[name])
		}
		rows[i] = cells
	}

	ds := types.Dataset{Rows: rows}
	for j, name := range columns {
		ds.Columns = append(ds.Columns, types.Column{Name: name, Type: inferType(rows, j)})
	}
	return ds, nil
}

func recordKeys(records []map[string]any) []string {
	seen := map[string]bool{}
	var keys []string
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// inferType classifies column j from its non-nil cells.
// All numbers: NUMERIC. All date-like strings or times: DATE. Otherwise
// (including an all-nil column) STRING.
func inferType(rows [][]any, j int) types.ColumnType {
	numeric, date, seen := true, true, false
	for _, cells := range rows {
		if j >= len(cells) || cells[j] == nil {
			continue
		}
		seen = true
		switch v := cells[j].(type) {
		case float64:
			date = false
			if math.IsNaN(v) {
				numeric = false
			}
		case time.Time:
			numeric = false
		case string:
			numeric = false
			if !isDate(v) {
				date = false
			}
		default:
			numeric, date = false, false
		}
		if !numeric && !date {
			break
		}
	}
	switch {
	case !seen:
		return types.ColumnString
	case numeric:
		return types.ColumnNumeric
	case date:
		return types.ColumnDate
	default:
		return types.ColumnString
	}
}

func isDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// Cell normalizes one decoded value for storage in a Dataset.
// Times become RFC 3339 strings so they order lexicographically.
func Cell(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(time.RFC3339)
	}
	return types.Normalize(v)
}

// checkRows enforces the row limit on a decoded dataset.
func checkRows(n int) error {
	if n > types.MaxDatasetRows {
		return fmt.Errorf("%w: %d > %d", types.ErrTooManyRows, n, types.MaxDatasetRows)
	}
	return nil
}
