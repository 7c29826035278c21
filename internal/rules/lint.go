package rules

import (
	"fmt"

	"github.com/solatis/vizcore/internal/types"
)

// Severity grades a lint problem.
type Severity string

const (
	SeverityError   Severity = "error"   // rule faults at evaluation
	SeverityWarning Severity = "warning" // rule evaluates but can never match
)

// Problem is one authoring issue found by Lint.
type Problem struct {
	Index    int
	RuleID   types.RuleID
	Severity Severity
	Message  string
}

func (p Problem) String() string {
	if p.RuleID != "" {
		return fmt.Sprintf("rule %d (%s): %s: %s", p.Index, p.RuleID, p.Severity, p.Message)
	}
	return fmt.Sprintf("rule %d: %s: %s", p.Index, p.Severity, p.Message)
}

// Lint reports rule shapes that would fault or never match.
// It never changes evaluation; the engine tolerates everything reported here.
func Lint(rules []types.StyleRule) []Problem {
	var problems []Problem
	add := func(i int, rule types.StyleRule, sev Severity, format string, args ...any) {
		problems = append(problems, Problem{
			Index:    i,
			RuleID:   rule.ID,
			Severity: sev,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if len(rules) > types.MaxRulesPerList {
		add(len(rules)-1, types.StyleRule{}, SeverityError, "list has %d rules, limit %d", len(rules), types.MaxRulesPerList)
	}

	for i, rule := range rules {
		if _, err := Compile(i, rule); err != nil {
			add(i, rule, SeverityError, "%v", err)
		}

		op := ParseOperator(rule.Operator)
		if op == OpUnknown {
			add(i, rule, SeverityWarning, "unknown operator %q never matches", rule.Operator)
		}
		if rule.Color == nil {
			add(i, rule, SeverityError, "no color block")
		} else if rule.Color.Background == "" && rule.Color.TextColor == "" && rule.Color.IconName == "" {
			add(i, rule, SeverityWarning, "color block is empty")
		}
		if rule.Range == types.RangeRow && (rule.Target == nil || rule.Target.Name == "") {
			add(i, rule, SeverityError, "row rule has no target column")
		}

		value := types.Normalize(rule.Value)
		switch op {
		case OpBetween:
			lintBetween(value, func(format string, args ...any) {
				add(i, rule, SeverityError, format, args...)
			}, func(format string, args ...any) {
				add(i, rule, SeverityWarning, format, args...)
			})
		case OpIn, OpNotIn:
			if value == nil {
				add(i, rule, SeverityWarning, "%s without values never matches", op)
				break
			}
			list, ok := value.([]any)
			if !ok {
				add(i, rule, SeverityError, "%s expects a list, got %T", op, value)
			} else if len(list) > types.MaxInValues {
				add(i, rule, SeverityWarning, "%s has %d values, limit %d", op, len(list), types.MaxInValues)
			}
		case OpContain, OpNotContain:
			switch value.(type) {
			case string, float64, bool:
			default:
				add(i, rule, SeverityError, "%s expects text, got %T", op, value)
			}
		}
	}
	return problems
}

func lintBetween(value any, fault, warn func(string, ...any)) {
	bounds, ok := value.([]any)
	if !ok || len(bounds) < 2 {
		fault("between expects [min, max], got %v", value)
		return
	}
	lo, okLo := bounds[0].(float64)
	hi, okHi := bounds[1].(float64)
	if !okLo || !okHi {
		warn("between bounds are not numbers: %v", bounds)
		return
	}
	if lo > hi {
		warn("between min %v > max %v never matches", lo, hi)
	}
}
