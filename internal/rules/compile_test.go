package rules

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/solatis/vizcore/internal/types"
)

func TestCompile_Normalizes(t *testing.T) {
	id := types.NewRuleID()
	rule := types.StyleRule{
		ID:       id,
		Range:    types.RangeRow,
		Operator: "Between",
		Value:    []any{int64(1), 10},
		Color:    &types.Color{Background: "red"},
		Target:   &types.Target{Name: "amount"},
	}

	compiled, err := Compile(3, rule)
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	want := CompiledRule{
		Index:     3,
		ID:        id,
		Range:     types.RangeRow,
		Operator:  OpBetween,
		Value:     []any{1.0, 10.0},
		Color:     &types.Color{Background: "red"},
		Target:    "amount",
		HasTarget: true,
	}
	if diff := cmp.Diff(want, compiled); diff != "" {
		t.Errorf("Compile() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_CopiesColor(t *testing.T) {
	color := &types.Color{Background: "red"}
	compiled, err := Compile(0, types.StyleRule{Range: types.RangeCell, Operator: "=", Color: color})
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}
	color.Background = "blue"
	if compiled.Color.Background != "red" {
		t.Errorf("Color.Background = %v, want red", compiled.Color.Background)
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		rule    types.StyleRule
		wantErr error
	}{
		{
			name:    "unknown range",
			rule:    types.StyleRule{Range: "column", Operator: "="},
			wantErr: types.ErrUnknownRange,
		},
		{
			name:    "empty range without metric",
			rule:    types.StyleRule{Operator: "="},
			wantErr: types.ErrUnknownRange,
		},
		{
			name:    "bad id",
			rule:    types.StyleRule{ID: "not-a-uuid", Range: types.RangeCell, Operator: "="},
			wantErr: types.ErrInvalidRuleID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(0, tt.rule)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Compile() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompile_AcceptsWithoutFailing(t *testing.T) {
	tests := []struct {
		name string
		rule types.StyleRule
	}{
		{"unknown operator", types.StyleRule{Range: types.RangeCell, Operator: "~~"}},
		{"malformed between", types.StyleRule{Range: types.RangeCell, Operator: "between", Value: 5}},
		{"scorecard rule", types.StyleRule{MetricKey: "m", Operator: ">"}},
		{"missing color", types.StyleRule{Range: types.RangeCell, Operator: "="}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile(0, tt.rule); err != nil {
				t.Errorf("Compile() error = %v, want nil", err)
			}
		})
	}
}

func TestCompileAll(t *testing.T) {
	rules := []types.StyleRule{
		{Range: types.RangeCell, Operator: "="},
		{Range: types.RangeRow, Operator: ">"},
	}
	compiled, err := CompileAll(rules)
	if err != nil {
		t.Fatalf("CompileAll() error = %v, want nil", err)
	}
	for i, c := range compiled {
		if c.Index != i {
			t.Errorf("compiled[%d].Index = %v, want %v", i, c.Index, i)
		}
	}

	rules = append(rules, types.StyleRule{Range: "bad"})
	if _, err := CompileAll(rules); !errors.Is(err, types.ErrUnknownRange) {
		t.Errorf("CompileAll() error = %v, want %v", err, types.ErrUnknownRange)
	}
}

func TestCompileAll_TooManyRules(t *testing.T) {
	rules := make([]types.StyleRule, types.MaxRulesPerList+1)
	for i := range rules {
		rules[i] = types.StyleRule{Range: types.RangeCell, Operator: "="}
	}
	if _, err := CompileAll(rules); !errors.Is(err, types.ErrTooManyRules) {
		t.Errorf("CompileAll() error = %v, want %v", err, types.ErrTooManyRules)
	}
	if _, err := CompileAll(rules[:types.MaxRulesPerList]); err != nil {
		t.Errorf("CompileAll() at limit error = %v, want nil", err)
	}
}
