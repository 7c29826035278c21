package rules

import (
	"go.uber.org/zap"

	"github.com/solatis/vizcore/internal/types"
)

// Evaluation kinds reported to an Observer.
const (
	KindCell      = "cell"
	KindRow       = "row"
	KindScorecard = "scorecard"
)

// Observer receives evaluation outcomes. Implementations must be safe for
// concurrent use; the engine calls them from whatever goroutine evaluates.
type Observer interface {
	RuleMatched(kind string)
	RuleFaulted(kind string, op Operator)
}

type nopObserver struct{}

func (nopObserver) RuleMatched(string)            {}
func (nopObserver) RuleFaulted(string, Operator) {}

// Engine evaluates conditional-style rules.
// Stateless apart from its logger and observer; one Engine may serve any
// number of concurrent callers.
type Engine struct {
	logger   *zap.Logger
	observer Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver attaches an outcome observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// NewEngine creates a rules engine. A nil logger discards output.
func NewEngine(logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		logger:   logger,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CellStyle returns the style for a single cell value.
// Only range "cell" rules participate. Invalid rules contribute nothing.
func (e *Engine) CellStyle(value any, rules []types.StyleRule) types.Style {
	return e.EvaluateCell(value, Prepare(rules)).Style
}

// RowStyle returns the style for a whole row.
// Only range "row" rules participate; each compares row[target.name].
func (e *Engine) RowStyle(row types.Row, rules []types.StyleRule) types.Style {
	return e.EvaluateRow(row, Prepare(rules)).Style
}
