package charts

import (
	"fmt"
	"strings"

	"github.com/solatis/vizcore/internal/rules"
	"github.com/solatis/vizcore/internal/types"
)

// Kind names a chart builder.
type Kind string

const (
	KindTreemap   Kind = "treemap"
	KindGraph     Kind = "graph"
	KindScorecard Kind = "scorecard"
	KindTable     Kind = "table"
)

// ParseKind maps a chart name to its kind. Chart ids used by the editor
// ("graph-force-chart", "react-scorecard") are accepted as aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "treemap", "treemap-chart":
		return KindTreemap, nil
	case "graph", "graph-force", "graph-force-chart":
		return KindGraph, nil
	case "scorecard", "react-scorecard":
		return KindScorecard, nil
	case "table", "basic-table", "mingxi-table":
		return KindTable, nil
	default:
		return "", fmt.Errorf("%w: %q", types.ErrUnknownChart, s)
	}
}

// Request is one chart build.
type Request struct {
	Kind    Kind
	Dataset types.Dataset
	Config  Config
	Width   float64
	Height  float64
}

// Renderer builds chart options. Safe for concurrent use.
type Renderer struct {
	engine *rules.Engine
}

// NewRenderer creates a renderer that styles with engine.
func NewRenderer(engine *rules.Engine) *Renderer {
	if engine == nil {
		engine = rules.NewEngine(nil)
	}
	return &Renderer{engine: engine}
}

// Render builds the option for req. The result is JSON-serializable.
func (r *Renderer) Render(req Request) (any, error) {
	switch req.Kind {
	case KindTreemap:
		return Treemap(req.Dataset, req.Config)
	case KindGraph:
		return GraphForce(req.Dataset, req.Config)
	case KindScorecard:
		return Scorecard(r.engine, req.Dataset, req.Config, req.Width, req.Height)
	case KindTable:
		return Table(r.engine, req.Dataset, req.Config), nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownChart, req.Kind)
	}
}
