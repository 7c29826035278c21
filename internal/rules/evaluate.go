// internal/rules/evaluate.go
package rules

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/solatis/vizcore/internal/types"
)

/*
 * Rule evaluation orchestration.
 *
 * Folds an ordered rule list into a single Style. Every rule is evaluated
 * (no short-circuit); each match replaces the accumulated style, so the
 * final style belongs to the last matching rule.
 *
 * Evaluation flow:
 *   1. Select participating rules (range for cell/row, metric for scorecard)
 *   2. Empty selection: empty style, no further work
 *   3. Per rule: check color/target blocks, resolve compared value, compare
 *   4. Match: style = rule's block (replace, not merge)
 *   5. Compact: drop empty properties
 *
 * Fault boundary: each rule is evaluated inside its own recover. A
 * malformed condition, a missing block or a panicking predicate is recorded
 * as a Fault, logged at warn, and the fold continues with the style
 * accumulated so far. Nothing reaches the caller as an error.
 */

// Fault describes a rule that could not be evaluated.
type Fault struct {
	Index    int
	RuleID   types.RuleID
	Operator Operator
	Err      error
}

// StyleResult is the outcome of folding a rule list.
// Winner is the list index of the last matching rule, or -1.
type StyleResult struct {
	Style  types.Style
	Winner int
	Faults []Fault
}

// Matched reports whether any rule matched.
func (r StyleResult) Matched() bool {
	return r.Winner >= 0
}

// valueFunc resolves the compared value and condition for a rule.
type valueFunc func(rule CompiledRule) (value, condition any, err error)

// styleFunc builds the style block contributed by a matching rule.
type styleFunc func(color *types.Color) types.Style

// EvaluateCell folds range "cell" rules against one cell value.
func (e *Engine) EvaluateCell(value any, rules []CompiledRule) StyleResult {
	value = types.Normalize(value)
	return e.fold(KindCell, selectRange(rules, types.RangeCell),
		func(rule CompiledRule) (any, any, error) {
			return value, rule.Value, nil
		},
		tableStyle)
}

// EvaluateRow folds range "row" rules against one record.
func (e *Engine) EvaluateRow(row types.Row, rules []CompiledRule) StyleResult {
	return e.fold(KindRow, selectRange(rules, types.RangeRow),
		func(rule CompiledRule) (any, any, error) {
			if !rule.HasTarget {
				return nil, nil, types.ErrMissingTarget
			}
			return types.Normalize(row[rule.Target]), rule.Value, nil
		},
		tableStyle)
}

// EvaluateScorecard folds scorecard rules for one metric.
// Rules with reducedValue "metrics" compare against primary instead of their
// own value. The style also carries iconName.
func (e *Engine) EvaluateScorecard(value, primary any, metricKey string, rules []CompiledRule) StyleResult {
	value = types.Normalize(value)
	primary = types.Normalize(primary)
	return e.fold(KindScorecard, selectMetric(rules, metricKey),
		func(rule CompiledRule) (any, any, error) {
			if rule.ReducedValue == types.ReducedMetrics {
				return value, primary, nil
			}
			return value, rule.Value, nil
		},
		func(c *types.Color) types.Style {
			s := tableStyle(c)
			s[types.StyleIconName] = c.IconName
			return s
		})
}

// ScorecardStyle is EvaluateScorecard over uncompiled rules.
func (e *Engine) ScorecardStyle(value, primary any, metricKey string, rules []types.StyleRule) types.Style {
	return e.EvaluateScorecard(value, primary, metricKey, Prepare(rules)).Style
}

func tableStyle(c *types.Color) types.Style {
	return types.Style{
		types.StyleBackgroundColor: c.Background,
		types.StyleColor:           c.TextColor,
	}
}

func (e *Engine) fold(kind string, rules []CompiledRule, valueOf valueFunc, styleOf styleFunc) StyleResult {
	result := StyleResult{Winner: -1}
	style := types.Style{}

	for _, rule := range rules {
		matched, err := e.apply(rule, valueOf)
		if err != nil {
			result.Faults = append(result.Faults, Fault{
				Index:    rule.Index,
				RuleID:   rule.ID,
				Operator: rule.Operator,
				Err:      err,
			})
			e.observer.RuleFaulted(kind, rule.Operator)
			e.logger.Warn("style rule faulted",
				zap.String("kind", kind),
				zap.Int("index", rule.Index),
				zap.String("rule_id", string(rule.ID)),
				zap.Stringer("operator", rule.Operator),
				zap.Error(err))
			continue
		}
		if !matched {
			continue
		}
		style = styleOf(rule.Color)
		result.Winner = rule.Index
		e.observer.RuleMatched(kind)
	}

	result.Style = style.Compact()
	return result
}

// apply evaluates one rule inside the fault boundary.
func (e *Engine) apply(rule CompiledRule, valueOf valueFunc) (matched bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			matched = false
			err = fmt.Errorf("%w: %v", types.ErrPredicatePanic, r)
		}
	}()

	if rule.Color == nil {
		return false, types.ErrMissingColor
	}
	value, condition, err := valueOf(rule)
	if err != nil {
		return false, err
	}
	return compare(rule.Operator, value, condition)
}
