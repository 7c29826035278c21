package charts

import (
	"fmt"
	"strings"

	"github.com/solatis/vizcore/internal/dataset"
	"github.com/solatis/vizcore/internal/hierarchy"
	"github.com/solatis/vizcore/internal/types"
)

// defaultFont is the editor's default font style.
func defaultFont(color string) map[string]any {
	return map[string]any{
		"fontFamily": "PingFang SC",
		"fontSize":   "12",
		"fontWeight": "normal",
		"fontStyle":  "normal",
		"color":      color,
	}
}

// TreemapOption is the chart option for a treemap.
type TreemapOption struct {
	Series []TreemapSeries `json:"series"`
}

// TreemapSeries is the single treemap series.
type TreemapSeries struct {
	Type       string                `json:"type"`
	Left       any                   `json:"left"`
	Top        any                   `json:"top"`
	Width      any                   `json:"width"`
	Height     any                   `json:"height"`
	Emphasis   map[string]any        `json:"emphasis"`
	LeafDepth  any                   `json:"leafDepth"`
	VisibleMin any                   `json:"visibleMin"`
	Label      map[string]any        `json:"label"`
	UpperLabel map[string]any        `json:"upperLabel"`
	Breadcrumb map[string]any        `json:"breadcrumb"`
	Blur       map[string]any        `json:"blur"`
	Levels     []map[string]any      `json:"levels"`
	Data       []types.HierarchyNode `json:"data"`
}

// Treemap builds a treemap option: group fields nest, the first aggregate
// sizes leaves, info fields ride along in each node's value.
func Treemap(ds types.Dataset, cfg Config) (TreemapOption, error) {
	groups := cfg.Section(SectionGroup, "")
	aggregates := cfg.Section(SectionAggregate, "")
	infos := cfg.Section(SectionInfo, "")
	if len(groups) == 0 || len(aggregates) == 0 {
		return TreemapOption{}, fmt.Errorf("%w: treemap needs a group and an aggregate field", types.ErrInvalidChartConfig)
	}

	groupKeys := columnKeys(groups)
	infoKeys := columnKeys(infos)
	required := append([]string{aggregates[0].ColumnKey()}, groupKeys...)
	if err := requireColumns(ds, append(required, infoKeys...)...); err != nil {
		return TreemapOption{}, err
	}

	rows := dataset.Sort(ds.Records(), cfg.SortFields())
	data := hierarchy.Build(rows, groupKeys, aggregates[0].ColumnKey(), infoKeys)

	label := treemapLabel(cfg)
	upperLabel := treemapUpperLabel(cfg)

	series := TreemapSeries{
		Type:       "treemap",
		Left:       cfg.Style([]string{"margin"}, "marginLeft", "10%"),
		Top:        cfg.Style([]string{"margin"}, "marginTop", "10%"),
		Width:      cfg.Style([]string{"treemap"}, "width", "80%"),
		Height:     cfg.Style([]string{"treemap"}, "height", "80%"),
		VisibleMin: cfg.Style([]string{"treemap"}, "visibleMin", 300.0),
		Emphasis: map[string]any{
			"focus":      cfg.Style([]string{"treemap"}, "focus", "none"),
			"upperLabel": upperLabel,
		},
		Label:      label,
		UpperLabel: upperLabel,
		Breadcrumb: treemapBreadcrumb(cfg),
		Blur: map[string]any{
			"label":      label,
			"upperLabel": upperLabel,
		},
		Levels: treemapLevels(len(groups)),
		Data:   data,
	}
	// leafDepth 0 means "show every level", which the renderer spells null.
	if depth := cfg.StyleNumber([]string{"treemap"}, "leafDepth", 0); depth != 0 {
		series.LeafDepth = depth
	}

	return TreemapOption{Series: []TreemapSeries{series}}, nil
}

func columnKeys(fields []Field) []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.ColumnKey()
	}
	return keys
}

func requireColumns(ds types.Dataset, keys ...string) error {
	for _, k := range keys {
		if ds.ColumnIndex(k) < 0 {
			return fmt.Errorf("%w: %q", types.ErrColumnNotFound, k)
		}
	}
	return nil
}

func treemapLabel(cfg Config) map[string]any {
	out := map[string]any{
		"show":     cfg.StyleBool([]string{"label"}, "showLabel", true),
		"position": cfg.StyleString([]string{"label"}, "position", "insideTopLeft"),
	}
	return merge(out, cfg.StyleObject([]string{"label"}, "font", defaultFont("#495057")))
}

func treemapUpperLabel(cfg Config) map[string]any {
	out := map[string]any{
		"show":     cfg.StyleBool([]string{"upperLabel"}, "showLabel", true),
		"position": cfg.StyleString([]string{"upperLabel"}, "position", "insideLeft"),
		"height":   cfg.StyleNumber([]string{"upperLabel"}, "height", 30),
	}
	return merge(out, cfg.StyleObject([]string{"upperLabel"}, "font", defaultFont("#495057")))
}

func treemapBreadcrumb(cfg Config) map[string]any {
	path := []string{"breadcrumb"}
	position := strings.Split(cfg.StyleString(path, "position", "center,bottom"), ",")
	left, top := position[0], ""
	if len(position) > 1 {
		top = position[1]
	}
	border := cfg.StyleObject(path, "borderStyle", map[string]any{
		"type":  "solid",
		"width": 0.0,
		"color": "#ced4da",
	})
	return map[string]any{
		"show":           cfg.StyleBool(path, "showLabel", true),
		"left":           left,
		"top":            top,
		"height":         cfg.StyleNumber(path, "height", 22),
		"emptyItemWidth": cfg.StyleNumber(path, "emptyItemWidth", 22),
		"itemStyle": map[string]any{
			"borderColor": border["color"],
			"borderWidth": border["width"],
			"borderType":  border["type"],
			"color":       cfg.StyleString(path, "backgroundColor", "rgba(0,0,0,0.7)"),
			"textStyle":   cfg.StyleObject(path, "font", defaultFont("#fff")),
		},
	}
}

// treemapLevels styles each grouping depth. The outermost level hides its
// upper label; the innermost varies color saturation.
func treemapLevels(depth int) []map[string]any {
	if depth == 0 {
		return nil
	}
	levels := make([]map[string]any, depth)
	for i := range levels {
		levels[i] = map[string]any{
			"itemStyle": map[string]any{
				"borderWidth":           5.0,
				"gapWidth":              5.0,
				"borderColorSaturation": 0.6,
			},
		}
	}
	levels[0]["upperLabel"] = map[string]any{"show": false}
	levels[depth-1]["colorSaturation"] = []any{0.35, 0.5}
	return levels
}
