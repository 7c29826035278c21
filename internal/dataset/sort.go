package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/solatis/vizcore/internal/types"
)

// SortOrder is a column sort direction.
type SortOrder string

const (
	SortAsc    SortOrder = "ASC"
	SortDesc   SortOrder = "DESC"
	SortCustom SortOrder = "CUSTOMIZE"
)

// SortField orders rows by one column.
// For SortCustom, Values lists the column values in display order; values
// not listed sort after listed ones, keeping their relative order.
type SortField struct {
	Column string    `json:"column" yaml:"column"`
	Order  SortOrder `json:"order" yaml:"order"`
	Values []any     `json:"values,omitempty" yaml:"values,omitempty"`
}

// ParseSortOrder accepts asc/desc/customize in any case. Empty is ASC.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ASC":
		return SortAsc, nil
	case "DESC":
		return SortDesc, nil
	case "CUSTOMIZE", "CUSTOM":
		return SortCustom, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}

// Sort returns rows stably ordered by fields, first field most significant.
// nil values sort before everything in ascending order. The input slice is
// not reordered.
func Sort(rows []types.Row, fields []SortField) []types.Row {
	out := append([]types.Row(nil), rows...)
	if len(fields) == 0 {
		return out
	}

	ranks := make([]map[string]int, len(fields))
	for i, f := range fields {
		if f.Order != SortCustom {
			continue
		}
		ranks[i] = make(map[string]int, len(f.Values))
		for pos, v := range f.Values {
			key := types.FormatValue(v)
			if _, dup := ranks[i][key]; !dup {
				ranks[i][key] = pos
			}
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		for i, f := range fields {
			var c int
			if f.Order == SortCustom {
				c = compareRank(ranks[i], out[a][f.Column], out[b][f.Column])
			} else {
				c = compareCells(types.Normalize(out[a][f.Column]), types.Normalize(out[b][f.Column]))
				if f.Order == SortDesc {
					c = -c
				}
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
	return out
}

func compareRank(ranks map[string]int, a, b any) int {
	ra, okA := ranks[types.FormatValue(a)]
	rb, okB := ranks[types.FormatValue(b)]
	switch {
	case okA && okB:
		return ra - rb
	case okA:
		return -1
	case okB:
		return 1
	default:
		return 0
	}
}

// compareCells orders nil < numbers < strings < everything else; numbers
// compare numerically and strings lexicographically.
func compareCells(a, b any) int {
	ka, kb := cellKind(a), cellKind(b)
	if ka != kb {
		return ka - kb
	}
	switch av := a.(type) {
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	case string:
		return strings.Compare(av, b.(string))
	}
	return 0
}

func cellKind(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case float64:
		return 1
	case string:
		return 2
	default:
		return 3
	}
}
