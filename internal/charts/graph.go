package charts

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/solatis/vizcore/internal/types"
)

// Symbol size bounds for graph nodes, before the cycle ratio is applied.
const (
	minSymbolSize = 10.0
	maxSymbolSize = 60.0
)

// GraphOption is the chart option for a force-directed relation graph.
type GraphOption struct {
	Series []GraphSeries `json:"series"`
}

// GraphNodeOption is a node with its resolved symbol size.
type GraphNodeOption struct {
	types.GraphNode
	SymbolSize float64 `json:"symbolSize"`
}

// GraphSeries is the single graph series.
type GraphSeries struct {
	Type           string            `json:"type"`
	Layout         string            `json:"layout"`
	Roam           bool              `json:"roam"`
	Draggable      bool              `json:"draggable"`
	Force          map[string]any    `json:"force"`
	EdgeSymbol     []string          `json:"edgeSymbol"`
	EdgeSymbolSize any               `json:"edgeSymbolSize"`
	LineStyle      map[string]any    `json:"lineStyle"`
	ItemStyle      map[string]any    `json:"itemStyle"`
	Label          map[string]any    `json:"label"`
	Data           []GraphNodeOption `json:"data"`
	Links          []types.GraphLink `json:"links"`
}

// GraphForce builds a force-directed graph option.
//
// Nodes are the distinct values of the dimension field, first seen first,
// sized by the size field (rows without a size get (max-min)/2). Links come
// from the relation field: a row whose relation is -n is the source for
// every row whose relation is n. Self-links and duplicates are dropped.
func GraphForce(ds types.Dataset, cfg Config) (GraphOption, error) {
	dims := cfg.Section(SectionGroup, "dimension")
	if len(dims) == 0 {
		return GraphOption{}, fmt.Errorf("%w: graph needs a dimension field", types.ErrInvalidChartConfig)
	}
	dimKey := dims[0].ColumnKey()
	if err := requireColumns(ds, dimKey); err != nil {
		return GraphOption{}, err
	}

	var sizeKey, relationKey string
	if sizes := cfg.Section(SectionSize, ""); len(sizes) > 0 {
		sizeKey = sizes[0].ColumnKey()
	}
	if relations := cfg.Section(SectionGroup, "relation"); len(relations) > 0 {
		relationKey = relations[0].ColumnKey()
	}

	rows := ds.Records()
	minSize, maxSize := columnRange(rows, sizeKey)
	ratio := cfg.StyleNumber([]string{"symbol"}, "cycleRatio", 1)

	nodes := graphNodes(rows, dimKey, sizeKey, (maxSize-minSize)/2)
	for i := range nodes {
		nodes[i].SymbolSize = symbolSize(nodes[i].Value[0], minSize, maxSize, ratio)
	}

	gravity := cfg.StyleNumber([]string{"force"}, "gravity", 1) / 10
	if gravity == 0 || math.IsNaN(gravity) {
		gravity = 0.1
	}
	curveness := cfg.StyleNumber([]string{"edge"}, "curveness", 0) / 100
	if math.IsNaN(curveness) {
		curveness = 0
	}

	lineStyle := cfg.StyleObject([]string{"edge"}, "lineStyle", map[string]any{
		"type":  "solid",
		"width": 1.0,
		"color": "#D9D9D9",
	})
	lineStyle["curveness"] = curveness

	border := cfg.StyleObject([]string{"symbol"}, "lineStyle", map[string]any{
		"type":  "solid",
		"width": 0.0,
		"color": "#D9D9D9",
	})

	label := map[string]any{
		"show":      cfg.StyleBool([]string{"label"}, "labelShow", true),
		"position":  cfg.StyleString([]string{"label"}, "position", "top"),
		"formatter": "{b}",
	}
	merge(label, cfg.StyleObject([]string{"label"}, "font", defaultFont("#495057")))

	series := GraphSeries{
		Type:      "graph",
		Layout:    "force",
		Roam:      true,
		Draggable: cfg.StyleBool([]string{"force"}, "draggable", true),
		Force: map[string]any{
			"repulsion":  cfg.StyleNumber([]string{"force"}, "repulsion", 400),
			"gravity":    gravity,
			"edgeLength": cfg.StyleNumber([]string{"force"}, "edgeLength", 100),
		},
		EdgeSymbol:     []string{"none", cfg.StyleString([]string{"edge"}, "edgeSymbol", "none")},
		EdgeSymbolSize: cfg.StyleNumber([]string{"edge"}, "edgeSymbolSize", 10),
		LineStyle:      lineStyle,
		ItemStyle: map[string]any{
			"color":       cfg.StyleString([]string{"symbol"}, "color", "#509af2"),
			"borderWidth": border["width"],
			"borderType":  border["type"],
			"borderColor": border["color"],
		},
		Label: label,
		Data:  nodes,
		Links: GraphLinks(rows, dimKey, relationKey),
	}
	return GraphOption{Series: []GraphSeries{series}}, nil
}

func graphNodes(rows []types.Row, dimKey, sizeKey string, defaultSize float64) []GraphNodeOption {
	seen := map[string]bool{}
	var nodes []GraphNodeOption
	for _, row := range rows {
		name := types.FormatValue(row[dimKey])
		if seen[name] {
			continue
		}
		seen[name] = true
		size := 0.0
		if sizeKey != "" {
			size = types.ToFloat(row[sizeKey])
		}
		if size == 0 {
			size = defaultSize
		}
		nodes = append(nodes, GraphNodeOption{
			GraphNode: types.GraphNode{Name: name, Value: []float64{size}},
		})
	}
	return nodes
}

// GraphLinks derives directed links from a signed relation column.
// Empty relation or dimension keys produce no links.
func GraphLinks(rows []types.Row, dimKey, relationKey string) []types.GraphLink {
	if dimKey == "" || relationKey == "" {
		return nil
	}
	relations := make([]float64, len(rows))
	for i, row := range rows {
		relations[i] = relationNumber(row[relationKey])
	}

	seen := map[types.GraphLink]bool{}
	var links []types.GraphLink
	for i, row := range rows {
		r := relations[i]
		if math.IsNaN(r) {
			continue
		}
		for j, candidate := range rows {
			c := relations[j]
			if math.IsNaN(c) || c >= 0 || math.Abs(c) != r {
				continue
			}
			link := types.GraphLink{
				Source: types.FormatValue(candidate[dimKey]),
				Target: types.FormatValue(row[dimKey]),
			}
			if link.Source != link.Target && !seen[link] {
				seen[link] = true
				links = append(links, link)
			}
			// Only the first source row links to this row.
			break
		}
	}
	return links
}

// relationNumber reads a relation cell; anything non-numeric is NaN.
func relationNumber(v any) float64 {
	switch n := types.Normalize(v).(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || strings.TrimSpace(n) == "" {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// columnRange is the min and max of a numeric column; 0, 0 when absent.
func columnRange(rows []types.Row, key string) (float64, float64) {
	if key == "" {
		return 0, 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range rows {
		v := types.Normalize(row[key])
		f, ok := v.(float64)
		if !ok {
			if s, isStr := v.(string); isStr {
				parsed, err := strconv.ParseFloat(s, 64)
				if err != nil {
					continue
				}
				f = parsed
			} else {
				continue
			}
		}
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

// symbolSize scales value linearly into [minSymbolSize, maxSymbolSize],
// then by ratio. A flat range uses the midpoint.
func symbolSize(value, lo, hi, ratio float64) float64 {
	if ratio <= 0 {
		ratio = 1
	}
	if hi <= lo {
		return (minSymbolSize + maxSymbolSize) / 2 * ratio
	}
	t := (value - lo) / (hi - lo)
	t = math.Max(0, math.Min(1, t))
	return (minSymbolSize + t*(maxSymbolSize-minSymbolSize)) * ratio
}
