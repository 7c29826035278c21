// internal/rules/compile.go
package rules

import (
	"fmt"

	"github.com/solatis/vizcore/internal/types"
)

/*
 * Rule compilation and validation.
 *
 * Compiles types.StyleRule to CompiledRule once at the boundary so the
 * evaluation loop never re-parses operators or re-normalizes values.
 *
 * Compilation workflow:
 *   1. Parse the operator (unknown names compile to OpUnknown, never fail)
 *   2. Normalize the condition value (JSON/YAML numbers become float64)
 *   3. Validate range and optional rule ID
 *   4. Resolve target name and scorecard fields
 *
 * Condition value shape is deliberately not checked here: a scalar given to
 * between compiles fine and faults during evaluation, where the per-rule
 * fault boundary owns it. Lint reports those shapes at authoring time.
 *
 * Compiled rules keep their list position (Index) because evaluation order
 * is the only precedence mechanism: the last matching rule wins.
 */

// CompiledRule is a validated rule ready for evaluation.
type CompiledRule struct {
	Index        int
	ID           types.RuleID
	Range        types.Range
	Operator     Operator
	Value        any
	Color        *types.Color
	Target       string
	HasTarget    bool
	MetricKey    string
	ReducedValue string
}

// Compile validates and pre-processes a single rule.
// index is the rule's position in its list.
func Compile(index int, rule types.StyleRule) (CompiledRule, error) {
	compiled := compile(index, rule)

	switch compiled.Range {
	case types.RangeCell, types.RangeRow:
	case "":
		// Scorecard rules carry a metric key instead of a range.
		if compiled.MetricKey == "" {
			return compiled, fmt.Errorf("rule %d: %w: empty", index, types.ErrUnknownRange)
		}
	default:
		return compiled, fmt.Errorf("rule %d: %w: %q", index, types.ErrUnknownRange, compiled.Range)
	}

	if rule.ID != "" {
		if _, err := types.ParseRuleID(string(rule.ID)); err != nil {
			return compiled, fmt.Errorf("rule %d: %w: %v", index, types.ErrInvalidRuleID, err)
		}
	}

	return compiled, nil
}

// CompileAll compiles a rule list, preserving order.
// Fails on the first invalid rule or when the list exceeds MaxRulesPerList.
func CompileAll(rules []types.StyleRule) ([]CompiledRule, error) {
	if len(rules) > types.MaxRulesPerList {
		return nil, fmt.Errorf("%w: %d > %d", types.ErrTooManyRules, len(rules), types.MaxRulesPerList)
	}
	out := make([]CompiledRule, 0, len(rules))
	for i, rule := range rules {
		compiled, err := Compile(i, rule)
		if err != nil {
			return nil, err
		}
		out = append(out, compiled)
	}
	return out, nil
}

// Prepare compiles every rule without validation.
// Used by the convenience entry points, where a bad rule degrades to no
// contribution instead of failing the call.
func Prepare(rules []types.StyleRule) []CompiledRule {
	out := make([]CompiledRule, len(rules))
	for i, rule := range rules {
		out[i] = compile(i, rule)
	}
	return out
}

func compile(index int, rule types.StyleRule) CompiledRule {
	compiled := CompiledRule{
		Index:        index,
		ID:           rule.ID,
		Range:        rule.Range,
		Operator:     ParseOperator(rule.Operator),
		Value:        types.Normalize(rule.Value),
		MetricKey:    rule.MetricKey,
		ReducedValue: rule.ReducedValue,
	}
	if rule.Color != nil {
		c := *rule.Color
		compiled.Color = &c
	}
	if rule.Target != nil {
		compiled.Target = rule.Target.Name
		compiled.HasTarget = true
	}
	return compiled
}

// selectRange returns the rules whose range equals r, in list order.
func selectRange(rules []CompiledRule, r types.Range) []CompiledRule {
	out := make([]CompiledRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Range == r {
			out = append(out, rule)
		}
	}
	return out
}

// selectMetric returns the scorecard rules for one metric, in list order.
func selectMetric(rules []CompiledRule, metricKey string) []CompiledRule {
	out := make([]CompiledRule, 0, len(rules))
	for _, rule := range rules {
		if rule.MetricKey == metricKey {
			out = append(out, rule)
		}
	}
	return out
}
