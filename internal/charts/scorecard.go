package charts

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/solatis/vizcore/internal/rules"
	"github.com/solatis/vizcore/internal/types"
)

// Scorecard metric key aliases used by the conditional style editor.
const (
	metricPrimary   = "metrics"
	metricSecondary = "secondaryMetrics"
)

// ScorecardOption is the render model of a scorecard.
type ScorecardOption struct {
	Context         ScorecardContext  `json:"context"`
	DataConfig      []ScorecardData   `json:"dataConfig"`
	LabelConfig     ScorecardLabel    `json:"labelConfig"`
	Padding         string            `json:"padding"`
	Data            []ScorecardMetric `json:"data"`
	Background      string            `json:"background"`
	SecondaryConfig ScorecardPosition `json:"secondaryConfig"`
}

// ScorecardContext is the container size the scorecard renders into.
type ScorecardContext struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ScorecardData styles one metric's value.
type ScorecardData struct {
	Font     map[string]any `json:"font"`
	IconName string         `json:"iconName,omitempty"`
}

// ScorecardLabel styles the metric label.
type ScorecardLabel struct {
	Show      bool           `json:"show"`
	Font      map[string]any `json:"font"`
	Position  string         `json:"position"`
	Alignment string         `json:"alignment"`
}

// ScorecardMetric is one displayed metric.
type ScorecardMetric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ScorecardPosition places the secondary metric.
type ScorecardPosition struct {
	Position []string `json:"position"`
}

// Scorecard builds a scorecard for the first dataset row: the primary
// aggregate and an optional secondary one, colored by conditional style
// rules keyed to each metric.
func Scorecard(engine *rules.Engine, ds types.Dataset, cfg Config, width, height float64) (ScorecardOption, error) {
	aggregates := cfg.Section(SectionAggregate, "")
	if len(aggregates) == 0 {
		return ScorecardOption{}, fmt.Errorf("%w: scorecard needs an aggregate field", types.ErrInvalidChartConfig)
	}
	if len(aggregates) > 2 {
		aggregates = aggregates[:2]
	}
	for _, a := range aggregates {
		if err := requireColumns(ds, a.ColumnKey()); err != nil {
			return ScorecardOption{}, err
		}
	}

	var first types.Row
	if records := ds.Records(); len(records) > 0 {
		first = records[0]
	}
	cell := func(f Field) any {
		if first == nil {
			return nil
		}
		return first[f.ColumnKey()]
	}

	styleRules, err := scorecardRules(cfg, aggregates)
	if err != nil {
		return ScorecardOption{}, err
	}
	colors := make([]types.Style, 2)
	for i, a := range aggregates {
		colors[i] = engine.ScorecardStyle(cell(a), cell(aggregates[0]), a.UID, styleRules)
	}
	if colors[1] == nil {
		colors[1] = types.Style{}
	}

	padding, inner := scorecardPadding(cfg, width)
	fontSize := func(group string) string {
		path := []string{group}
		if cfg.StyleBool(path, "autoFontSize", true) {
			scale := cfg.StyleNumber(path, "scale", defaultScale(group))
			if scale <= 0 {
				scale = defaultScale(group)
			}
			return strconv.FormatFloat(math.Floor(inner/scale), 'f', -1, 64) + "px"
		}
		return types.FormatValue(cfg.Style(path, "fixedFontSize", 12.0)) + "px"
	}

	dataFont := cfg.StyleObject([]string{"data"}, "font", defaultFont("#495057"))
	secondaryFont := cfg.StyleObject([]string{metricSecondary}, "font", defaultFont("#495057"))
	labelFont := cfg.StyleObject([]string{"label"}, "font", defaultFont("#495057"))

	opt := ScorecardOption{
		Context: ScorecardContext{Width: width, Height: height},
		DataConfig: []ScorecardData{
			{Font: withColor(merge(dataFont, map[string]any{"fontSize": fontSize("data")}), colors[0])},
			{
				Font:     withColor(merge(secondaryFont, map[string]any{"fontSize": fontSize(metricSecondary)}), colors[1]),
				IconName: colors[1][types.StyleIconName],
			},
		},
		LabelConfig: ScorecardLabel{
			Show:      cfg.StyleBool([]string{"label"}, "show", true),
			Font:      withColor(merge(labelFont, map[string]any{"fontSize": fontSize("label")}), colors[0]),
			Position:  cfg.StyleString([]string{"label"}, "position", "column"),
			Alignment: cfg.StyleString([]string{"label"}, "alignment", "center"),
		},
		Padding:    padding,
		Background: "transparent",
		SecondaryConfig: ScorecardPosition{
			Position: strings.Split(cfg.StyleString([]string{metricSecondary}, "position", "column,center"), ","),
		},
	}
	if bg := colors[0][types.StyleBackgroundColor]; bg != "" {
		opt.Background = bg
	}
	for _, a := range aggregates {
		opt.Data = append(opt.Data, ScorecardMetric{Label: a.RenderName(), Value: types.FormatValue(cell(a))})
	}
	return opt, nil
}

// scorecardRules reads the conditional style panel and rewrites the
// editor's metric aliases to field UIDs.
func scorecardRules(cfg Config, aggregates []Field) ([]types.StyleRule, error) {
	var panel []types.StyleRule
	if _, err := cfg.StyleDecode([]string{"scorecardConditionalStyle", "modal"}, "conditionalStylePanel", &panel); err != nil {
		return nil, err
	}
	for i := range panel {
		switch panel[i].MetricKey {
		case metricPrimary:
			panel[i].MetricKey = aggregates[0].UID
		case metricSecondary:
			if len(aggregates) > 1 {
				panel[i].MetricKey = aggregates[1].UID
			}
		}
	}
	return panel, nil
}

func withColor(font map[string]any, style types.Style) map[string]any {
	if c := style[types.StyleColor]; c != "" {
		font["color"] = c
	}
	return font
}

func defaultScale(group string) float64 {
	if group == "data" {
		return 6
	}
	return 15
}

// scorecardPadding renders the CSS padding (top right bottom left) and the
// width left after horizontal margins. Margins are pixels or percentages
// of width; anything unparseable is 0.
func scorecardPadding(cfg Config, width float64) (string, float64) {
	path := []string{"margin"}
	left := cfg.StyleString(path, "marginLeft", "")
	right := cfg.StyleString(path, "marginRight", "")
	top := cfg.StyleString(path, "marginTop", "")
	bottom := cfg.StyleString(path, "marginBottom", "")

	css := strings.Join([]string{paddingCSS(top), paddingCSS(right), paddingCSS(bottom), paddingCSS(left)}, " ")
	inner := math.Floor(width - paddingPixels(left, width) - paddingPixels(right, width))
	return css, inner
}

func paddingCSS(v string) string {
	if _, ok := leadingFloat(v); !ok {
		return "0"
	}
	if strings.HasSuffix(v, "%") {
		return v
	}
	return v + "px"
}

func paddingPixels(v string, width float64) float64 {
	f, ok := leadingFloat(v)
	if !ok {
		return 0
	}
	if strings.HasSuffix(v, "%") {
		return math.Ceil(f * width / 100)
	}
	return f
}

// leadingFloat parses the longest numeric prefix of s, as CSS lengths do.
func leadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && strings.IndexByte("+-.0123456789eE", s[end]) >= 0 {
		end++
	}
	for end > 0 {
		if f, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return f, true
		}
		end--
	}
	return 0, false
}
