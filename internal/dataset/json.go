package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/solatis/vizcore/internal/types"
)

// ParseJSON decodes either the wire form {"columns": [...], "rows": [[...]]}
// or an array of objects. Columns without a declared type are inferred.
func ParseJSON(data []byte) (types.Dataset, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return types.Dataset{}, nil
	}

	if trimmed[0] == '[' {
		var records []map[string]any
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return types.Dataset{}, fmt.Errorf("decode records: %w", err)
		}
		return FromRecords(records, nil)
	}

	var ds types.Dataset
	if err := json.Unmarshal(trimmed, &ds); err != nil {
		return types.Dataset{}, fmt.Errorf("decode dataset: %w", err)
	}
	if err := checkRows(len(ds.Rows)); err != nil {
		return types.Dataset{}, err
	}
	return Typed(ds), nil
}

// Typed normalizes every cell and fills in missing column types.
// The input is not modified.
func Typed(ds types.Dataset) types.Dataset {
	out := types.Dataset{
		Columns: append([]types.Column(nil), ds.Columns...),
		Rows:    make([][]any, len(ds.Rows)),
	}
	for i, cells := range ds.Rows {
		row := make([]any, len(cells))
		for j, v := range cells {
			row[j] = Cell(v)
		}
		out.Rows[i] = row
	}
	for j := range out.Columns {
		if out.Columns[j].Type == "" {
			out.Columns[j].Type = inferType(out.Rows, j)
		}
	}
	return out
}
