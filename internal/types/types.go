// Package types provides domain models shared across vizcore components.
//
// Zero-dependency design: types.go, rules.go and errors.go use only the
// standard library so chart adapters can import them without pulling in the
// service stack. ID utilities in ids.go import uuid but are isolated.
//
// Separation from wire formats: the gRPC layer speaks structpb and decodes
// into these structs at the API boundary; nothing here knows about proto.
package types

import (
	"math"
	"reflect"
	"strconv"
)

// Row is a single dataset record keyed by column name.
// Values are scalars: string, float64, bool or nil. Callers that build rows
// by hand should run them through Normalize so numeric comparison is exact.
type Row map[string]any

// ColumnType classifies a dataset column.
type ColumnType string

const (
	ColumnString  ColumnType = "STRING"
	ColumnNumeric ColumnType = "NUMERIC"
	ColumnDate    ColumnType = "DATE"
)

// Column is dataset column metadata.
type Column struct {
	Name string     `json:"name" yaml:"name"`
	Type ColumnType `json:"type" yaml:"type"`
}

// Dataset is an ordered sequence of rows plus column metadata.
// Rows are positional (one cell per column) to keep the wire form compact;
// Records converts them to keyed rows.
type Dataset struct {
	Columns []Column `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

// Records converts positional rows to keyed rows.
// Short rows leave trailing columns absent; extra cells are ignored.
func (d Dataset) Records() []Row {
	out := make([]Row, 0, len(d.Rows))
	for _, cells := range d.Rows {
		row := make(Row, len(d.Columns))
		for i, col := range d.Columns {
			if i >= len(cells) {
				break
			}
			row[col.Name] = Normalize(cells[i])
		}
		out = append(out, row)
	}
	return out
}

// ColumnIndex returns the position of the named column, or -1.
func (d Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Normalize folds numeric variants produced by JSON, YAML and SQL decoders
// into float64 so strict equality behaves the same regardless of source.
// Byte slices become strings and other slices or arrays become []any.
// Remaining values pass through unchanged.
func Normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case []byte:
		return string(n)
	case []any:
		out := make([]any, len(n))
		for i, e := range n {
			out[i] = Normalize(e)
		}
		return out
	case nil:
		return nil
	}

	// Typed slices and arrays from Go callers ([]float64, []string, [2]int).
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	}
	return v
}

// ToFloat converts a scalar to float64 for aggregation.
// Numeric strings are parsed; everything else (nil, bool, text) is 0.
func ToFloat(v any) float64 {
	switch n := Normalize(v).(type) {
	case float64:
		if math.IsNaN(n) {
			return 0
		}
		return n
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil || math.IsNaN(f) {
			return 0
		}
		return f
	default:
		return 0
	}
}

// FormatValue renders a scalar the way it appears in a hierarchy path.
// nil renders as the empty string, matching how missing keys join.
func FormatValue(v any) string {
	switch n := Normalize(v).(type) {
	case nil:
		return ""
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(n)
	default:
		return ""
	}
}

// Style maps visual property names to values.
type Style map[string]string

// Style property names emitted by the rule engine.
const (
	StyleBackgroundColor = "backgroundColor"
	StyleColor           = "color"
	StyleIconName        = "iconName"
)

// Compact returns a copy without empty-valued properties.
// A nil or empty style compacts to an empty, non-nil style.
func (s Style) Compact() Style {
	out := make(Style, len(s))
	for k, v := range s {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// HierarchyNode is one grouping level of an aggregated tree.
// Path is the slash-joined key sequence and identifies the node.
// Value holds the aggregate followed by info columns.
type HierarchyNode struct {
	Name     string          `json:"name"`
	Path     string          `json:"path"`
	Value    []float64       `json:"value"`
	Children []HierarchyNode `json:"children,omitempty"`
}

// GraphNode is a node of a force-directed relation graph.
type GraphNode struct {
	Name  string    `json:"name"`
	Value []float64 `json:"value"`
}

// GraphLink is a directed edge between two graph nodes by name.
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Resource limits enforced at the service and loader boundaries.
const (
	// MaxRulesPerList bounds a single rule list; configuration UIs produce tens.
	MaxRulesPerList = 256

	// MaxDatasetRows bounds rows accepted by loaders and the style API.
	MaxDatasetRows = 100_000

	// MaxInValues limits in/not in sequences checked by Lint.
	MaxInValues = 1024
)
