package rules

import (
	"strings"
	"testing"

	"github.com/solatis/vizcore/internal/types"
)

func TestLint(t *testing.T) {
	red := &types.Color{Background: "red"}
	tests := []struct {
		name     string
		rule     types.StyleRule
		severity Severity
		contains string
	}{
		{"missing color", types.StyleRule{Range: types.RangeCell, Operator: "="}, SeverityError, "no color block"},
		{"empty color", types.StyleRule{Range: types.RangeCell, Operator: "=", Color: &types.Color{}}, SeverityWarning, "color block is empty"},
		{"row without target", types.StyleRule{Range: types.RangeRow, Operator: "=", Color: red}, SeverityError, "no target"},
		{"unknown operator", types.StyleRule{Range: types.RangeCell, Operator: "~", Color: red}, SeverityWarning, "unknown operator"},
		{"between scalar", types.StyleRule{Range: types.RangeCell, Operator: "between", Value: 3, Color: red}, SeverityError, "[min, max]"},
		{"between reversed", types.StyleRule{Range: types.RangeCell, Operator: "between", Value: []any{9, 1}, Color: red}, SeverityWarning, "never matches"},
		{"in scalar", types.StyleRule{Range: types.RangeCell, Operator: "in", Value: "a", Color: red}, SeverityError, "expects a list"},
		{"in absent", types.StyleRule{Range: types.RangeCell, Operator: "not in", Color: red}, SeverityWarning, "without values"},
		{"like list", types.StyleRule{Range: types.RangeCell, Operator: "like", Value: []any{"a"}, Color: red}, SeverityError, "expects text"},
		{"bad range", types.StyleRule{Range: "col", Operator: "=", Color: red}, SeverityError, "unknown rule range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := Lint([]types.StyleRule{tt.rule})
			for _, p := range problems {
				if p.Severity == tt.severity && strings.Contains(p.Message, tt.contains) {
					return
				}
			}
			t.Errorf("Lint() = %v, want a %s containing %q", problems, tt.severity, tt.contains)
		})
	}
}

func TestLint_CleanRules(t *testing.T) {
	rules := []types.StyleRule{
		{Range: types.RangeCell, Operator: "between", Value: []any{1, 9}, Color: &types.Color{Background: "red"}},
		{Range: types.RangeRow, Operator: "in", Value: []any{"a", "b"}, Color: &types.Color{TextColor: "blue"}, Target: &types.Target{Name: "k"}},
		{MetricKey: "m", Operator: ">", Value: 1, Color: &types.Color{IconName: "up"}},
		{Range: types.RangeCell, Operator: "is null", Color: &types.Color{Background: "grey"}},
	}
	if problems := Lint(rules); len(problems) != 0 {
		t.Errorf("Lint() = %v, want none", problems)
	}
}
