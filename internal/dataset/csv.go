package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/solatis/vizcore/internal/types"
)

// ParseCSV reads a CSV document with a header row.
// A column whose non-empty cells all parse as numbers becomes NUMERIC and
// its cells float64; other columns keep their text. Empty cells are nil.
// Short rows are padded with nil; malformed records are an error.
func ParseCSV(r io.Reader) (types.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return types.Dataset{}, nil
		}
		return types.Dataset{}, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	var raw [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return types.Dataset{}, fmt.Errorf("failed to read CSV row %d: %w", len(raw)+1, err)
		}
		raw = append(raw, record)
		if err := checkRows(len(raw)); err != nil {
			return types.Dataset{}, err
		}
	}

	numeric := make([]bool, len(headers))
	for j := range headers {
		numeric[j] = numericColumn(raw, j)
	}

	rows := make([][]any, len(raw))
	for i, record := range raw {
		cells := make([]any, len(headers))
		for j := range headers {
			if j >= len(record) {
				continue
			}
			val := strings.TrimSpace(record[j])
			switch {
			case val == "":
				cells[j] = nil
			case numeric[j]:
				f, _ := strconv.ParseFloat(val, 64)
				cells[j] = f
			default:
				cells[j] = val
			}
		}
		rows[i] = cells
	}

	ds := types.Dataset{Rows: rows}
	for j, name := range headers {
		ds.Columns = append(ds.Columns, types.Column{Name: name, Type: inferType(rows, j)})
	}
	return ds, nil
}

func numericColumn(raw [][]string, j int) bool {
	seen := false
	for _, record := range raw {
		if j >= len(record) {
			continue
		}
		val := strings.TrimSpace(record[j])
		if val == "" {
			continue
		}
		if _, err := strconv.ParseFloat(val, 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}
