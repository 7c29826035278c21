// internal/types/rules.go
package types

/*
 * Domain types for conditional styling rules.
 *
 * Provides StyleRule, Color, Target and Range used by internal/rules for
 * compilation and evaluation. These are the authored shapes as persisted by
 * configuration UIs (JSON) or rule files (YAML); validation and defaulting
 * happen once in rules.Compile.
 *
 * Key types:
 *   - StyleRule: one condition-to-style mapping
 *   - Color: style block applied when the rule matches
 *   - Target: row rules compare the value of this column
 *   - Range: cell or row
 *
 * Dependencies: None
 */

// Range selects which table element a rule styles.
type Range string

const (
	RangeCell Range = "cell"
	RangeRow  Range = "row"
)

// Color is the style block applied by a matching rule.
// IconName is only consulted by scorecard rules.
type Color struct {
	Background string `json:"background,omitempty" yaml:"background,omitempty"`
	TextColor  string `json:"textColor,omitempty" yaml:"textColor,omitempty"`
	IconName   string `json:"iconName,omitempty" yaml:"iconName,omitempty"`
}

// Target names the column a row rule compares.
type Target struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

// Scorecard reduced-value modes.
const (
	ReducedValue   = "value"   // compare against the rule's Value
	ReducedMetrics = "metrics" // compare against the primary metric's value
)

// StyleRule is a declarative condition-to-style mapping.
// Color and Target are pointers so a missing block is distinguishable from
// an empty one; missing blocks degrade to no style contribution.
type StyleRule struct {
	ID           RuleID  `json:"id,omitempty" yaml:"id,omitempty"`
	Range        Range   `json:"range" yaml:"range"`
	Operator     string  `json:"operator" yaml:"operator"`
	Value        any     `json:"value,omitempty" yaml:"value,omitempty"`
	Color        *Color  `json:"color,omitempty" yaml:"color,omitempty"`
	Target       *Target `json:"target,omitempty" yaml:"target,omitempty"`
	MetricKey    string  `json:"metricKey,omitempty" yaml:"metricKey,omitempty"`
	ReducedValue string  `json:"reducedValue,omitempty" yaml:"reducedValue,omitempty"`
}
