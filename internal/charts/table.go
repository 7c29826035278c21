package charts

import (
	"encoding/json"

	"github.com/solatis/vizcore/internal/rules"
	"github.com/solatis/vizcore/internal/types"
)

// ColumnRules is the conditional style list attached to one column.
type ColumnRules struct {
	Column string            `json:"column"`
	Rules  []types.StyleRule `json:"rules"`
}

// TableOption carries per-row and per-cell styles for a table body.
type TableOption struct {
	Columns []types.Column `json:"columns"`
	Rows    []RowStyles    `json:"rows"`
}

// RowStyles is the style of one body row. Cells only lists styled cells.
type RowStyles struct {
	Row   types.Style            `json:"row,omitempty"`
	Cells map[string]types.Style `json:"cells,omitempty"`
}

// TableRules reads the conditionStyle list of every field in cfg.
func TableRules(cfg Config) []ColumnRules {
	var out []ColumnRules
	for _, f := range cfg.Fields() {
		raw := f.Get("conditionStyle")
		if !raw.IsArray() {
			continue
		}
		var list []types.StyleRule
		if err := json.Unmarshal([]byte(raw.Raw), &list); err != nil || len(list) == 0 {
			continue
		}
		out = append(out, ColumnRules{Column: f.ColumnKey(), Rules: list})
	}
	return out
}

// TableStyles styles every row of ds.
//
// Each column's cell rules style that column's cells. Row rules of all
// columns are folded together in column order, so a later column's
// matching row rule wins over an earlier one.
func TableStyles(engine *rules.Engine, ds types.Dataset, columns []ColumnRules) TableOption {
	type compiledColumn struct {
		name  string
		rules []rules.CompiledRule
	}
	cells := make([]compiledColumn, 0, len(columns))
	var rowRules []types.StyleRule
	for _, c := range columns {
		cells = append(cells, compiledColumn{name: c.Column, rules: rules.Prepare(c.Rules)})
		for _, r := range c.Rules {
			if r.Range == types.RangeRow {
				rowRules = append(rowRules, r)
			}
		}
	}
	compiledRows := rules.Prepare(rowRules)

	records := ds.Records()
	out := TableOption{
		Columns: ds.Columns,
		Rows:    make([]RowStyles, len(records)),
	}
	for i, rec := range records {
		var rs RowStyles
		if style := engine.EvaluateRow(rec, compiledRows).Style; len(style) > 0 {
			rs.Row = style
		}
		for _, c := range cells {
			style := engine.EvaluateCell(rec[c.name], c.rules).Style
			if len(style) == 0 {
				continue
			}
			if rs.Cells == nil {
				rs.Cells = map[string]types.Style{}
			}
			rs.Cells[c.name] = style
		}
		out.Rows[i] = rs
	}
	return out
}

// Table reads column rules from cfg and styles ds.
func Table(engine *rules.Engine, ds types.Dataset, cfg Config) TableOption {
	return TableStyles(engine, ds, TableRules(cfg))
}
