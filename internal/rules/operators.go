// internal/rules/operators.go
package rules

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/solatis/vizcore/internal/types"
)

/*
 * Operator comparison logic.
 *
 * Implements the 12 conditional-style operators. Values are normalized via
 * types.Normalize before reaching compare so every number is a float64.
 *
 * Operators:
 *   - = / !=: strict equality, no cross-type coercion ("5" != 5)
 *   - like / not like: substring; non-string values never match
 *   - in / not in: membership in a sequence; absent sequence never matches
 *   - between: [min, max] inclusive, positional, no min<=max check
 *   - < <= > >=: numbers numerically, strings lexicographically
 *   - is null: nil or "" only
 *
 * Errors: a condition value of the wrong shape (scalar for in/between)
 * returns ErrMalformedCondition. The engine treats that as a rule fault and
 * continues with the next rule. Unknown operators return false, nil.
 *
 * Function-based like the rest of the package: one switch, no per-operator
 * types.
 */

// Operator is a conditional-style comparison kind.
type Operator int

const (
	OpUnknown Operator = iota
	OpEqual
	OpNotEqual
	OpContain
	OpNotContain
	OpIn
	OpNotIn
	OpBetween
	OpLessThan
	OpGreaterThan
	OpLessThanOrEqual
	OpGreaterThanOrEqual
	OpIsNull
)

// operatorNames holds the wire form of each operator as authored by the
// configuration UI.
var operatorNames = map[Operator]string{
	OpEqual:              "=",
	OpNotEqual:           "!=",
	OpContain:            "like",
	OpNotContain:         "not like",
	OpIn:                 "in",
	OpNotIn:              "not in",
	OpBetween:            "between",
	OpLessThan:           "<",
	OpGreaterThan:        ">",
	OpLessThanOrEqual:    "<=",
	OpGreaterThanOrEqual: ">=",
	OpIsNull:             "is null",
}

var operatorsByName = func() map[string]Operator {
	m := make(map[string]Operator, len(operatorNames))
	for op, name := range operatorNames {
		m[name] = op
	}
	return m
}()

// ParseOperator maps a wire-form operator to its kind.
// Matching is case-insensitive and tolerates surrounding whitespace.
// Unrecognized names return OpUnknown, which never matches.
func ParseOperator(s string) Operator {
	name := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	if op, ok := operatorsByName[name]; ok {
		return op
	}
	return OpUnknown
}

// String returns the wire form, or "unknown".
func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (o Operator) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Operator) UnmarshalText(b []byte) error {
	*o = ParseOperator(string(b))
	return nil
}

// MatchCondition reports whether value satisfies operator against condition.
// Both sides are normalized first, so callers may pass raw decoder output.
func MatchCondition(value any, op Operator, condition any) (bool, error) {
	return compare(op, types.Normalize(value), types.Normalize(condition))
}

// compare applies the operator to already-normalized operands.
func compare(op Operator, value, condition any) (bool, error) {
	switch op {
	case OpEqual:
		return strictEqual(value, condition), nil
	case OpNotEqual:
		return !strictEqual(value, condition), nil
	case OpContain:
		return compareContain(value, condition, false)
	case OpNotContain:
		return compareContain(value, condition, true)
	case OpIn:
		return compareIn(value, condition, false)
	case OpNotIn:
		return compareIn(value, condition, true)
	case OpBetween:
		return compareBetween(value, condition)
	case OpLessThan:
		c, ok := order(value, condition)
		return ok && c < 0, nil
	case OpGreaterThan:
		c, ok := order(value, condition)
		return ok && c > 0, nil
	case OpLessThanOrEqual:
		c, ok := order(value, condition)
		return ok && c <= 0, nil
	case OpGreaterThanOrEqual:
		c, ok := order(value, condition)
		return ok && c >= 0, nil
	case OpIsNull:
		return isNull(value), nil
	default:
		return false, nil
	}
}

// strictEqual compares scalars of the same dynamic type.
// NaN never equals itself. Sequences and maps are never equal (reference
// semantics in the authoring layer), and comparing them must not panic.
func strictEqual(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return false
	}
}

// compareContain tests substring containment.
// A nil value yields false for like and true for not like (absence contains
// nothing). Any other non-string value never matches either operator.
func compareContain(value, condition any, negate bool) (bool, error) {
	if value == nil {
		return negate, nil
	}
	vs, ok := value.(string)
	if !ok {
		return false, nil
	}
	var needle string
	switch c := condition.(type) {
	case string:
		needle = c
	case float64, bool:
		needle = types.FormatValue(c)
	default:
		return false, fmt.Errorf("%w: %s expects text, got %T", types.ErrMalformedCondition, opName(negate, OpNotContain, OpContain), condition)
	}
	return strings.Contains(vs, needle) != negate, nil
}

// compareIn tests membership using strict equality.
// An absent sequence never matches, for in and not in alike.
func compareIn(value, condition any, negate bool) (bool, error) {
	if condition == nil {
		return false, nil
	}
	set, ok := condition.([]any)
	if !ok {
		return false, fmt.Errorf("%w: %s expects a list, got %T", types.ErrMalformedCondition, opName(negate, OpNotIn, OpIn), condition)
	}
	for _, elem := range set {
		if strictEqual(value, elem) {
			return !negate, nil
		}
	}
	return negate, nil
}

// compareBetween tests min <= value <= max.
// min and max are read positionally; min > max matches nothing.
func compareBetween(value, condition any) (bool, error) {
	bounds, ok := condition.([]any)
	if !ok || len(bounds) < 2 {
		return false, fmt.Errorf("%w: between expects [min, max], got %v", types.ErrMalformedCondition, condition)
	}
	lo, okLo := order(value, bounds[0])
	hi, okHi := order(value, bounds[1])
	return okLo && okHi && lo >= 0 && hi <= 0, nil
}

// order performs three-way comparison under native ordering.
// Numbers compare numerically and strings lexicographically; a number and a
// numeric string compare numerically. Anything else (nil, NaN, bools,
// mixed non-numeric types) is incomparable and every ordering test fails.
func order(a, b any) (int, bool) {
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs), true
		}
	}
	na, okA := orderNumber(a)
	nb, okB := orderNumber(b)
	if !okA || !okB {
		return 0, false
	}
	switch {
	case na < nb:
		return -1, true
	case na > nb:
		return 1, true
	default:
		return 0, true
	}
}

func orderNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || strings.TrimSpace(n) == "" {
			return 0, false
		}
		return f, !math.IsNaN(f)
	default:
		return 0, false
	}
}

// isNull is true for nil and the empty string only.
func isNull(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func opName(negate bool, neg, pos Operator) string {
	if negate {
		return neg.String()
	}
	return pos.String()
}
