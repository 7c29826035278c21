// Package api provides the gRPC service implementation for the vizcore style API.
package api

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/solatis/vizcore/internal/charts"
	"github.com/solatis/vizcore/internal/core/auth"
	"github.com/solatis/vizcore/internal/core/config"
	"github.com/solatis/vizcore/internal/core/db"
	"github.com/solatis/vizcore/internal/dataset"
	"github.com/solatis/vizcore/internal/rules"
	"github.com/solatis/vizcore/internal/types"
	"github.com/solatis/vizcore/internal/workbench"
)

// DefaultSession names the workbench session used when neither the caller's
// workspace nor the request names one.
const DefaultSession = "default"

// StyleAPIService implements StyleAPIServer.
// Thin orchestration layer delegating to rules, hierarchy, charts and
// workbench packages. The data provider is optional; without one, requests
// must carry their dataset inline.
type StyleAPIService struct {
	engine   *rules.Engine
	renderer *charts.Renderer
	sessions *workbench.Sessions
	provider *db.Provider
	cfg      *config.StyleAPIConfig
	logger   *zap.Logger
}

// Option configures a StyleAPIService.
type Option func(*StyleAPIService)

// WithProvider lets requests name a SQL query instead of inline rows.
func WithProvider(p *db.Provider) Option {
	return func(s *StyleAPIService) {
		s.provider = p
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *StyleAPIService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStyleAPIService creates service instance with dependencies.
func NewStyleAPIService(cfg *config.StyleAPIConfig, engine *rules.Engine, opts ...Option) (*StyleAPIService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}

	renderer := charts.NewRenderer(engine)
	s := &StyleAPIService{
		engine:   engine,
		renderer: renderer,
		sessions: workbench.NewSessions(renderer),
		cfg:      cfg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sessions exposes the workbench sessions, for shutdown.
func (s *StyleAPIService) Sessions() *workbench.Sessions {
	return s.sessions
}

// Close disposes every workbench session.
func (s *StyleAPIService) Close() {
	s.sessions.CloseAll()
}

// sessionName scopes a request's session to the caller's workspace, so
// two workspaces never share containers.
func sessionName(ctx context.Context, requested string) string {
	workspace := auth.WorkspaceFromContext(ctx)
	requested = strings.TrimSpace(requested)
	switch {
	case workspace == "" && requested == "":
		return DefaultSession
	case workspace == "":
		return requested
	case requested == "":
		return workspace
	default:
		return workspace + "/" + requested
	}
}

// DatasetInput is the dataset carried by a request: inline positional rows,
// inline records, or a read-only query against the configured provider.
type DatasetInput struct {
	Columns []types.Column   `json:"columns"`
	Rows    [][]any          `json:"rows"`
	Records []map[string]any `json:"records"`
	Query   string           `json:"query"`
	Args    []any            `json:"args"`
}

// resolve materializes the input and applies the service row limit.
func (s *StyleAPIService) resolve(ctx context.Context, in DatasetInput) (types.Dataset, error) {
	var (
		ds  types.Dataset
		err error
	)
	switch {
	case in.Query != "":
		if len(in.Rows) > 0 || len(in.Records) > 0 {
			return types.Dataset{}, invalidf("dataset takes a query or inline rows, not both")
		}
		ds, err = s.query(ctx, in.Query, in.Args)
	case len(in.Records) > 0:
		if len(in.Rows) > 0 {
			return types.Dataset{}, invalidf("dataset takes rows or records, not both")
		}
		names := make([]string, len(in.Columns))
		for i, c := range in.Columns {
			names[i] = c.Name
		}
		ds, err = dataset.FromRecords(in.Records, names)
	default:
		if len(in.Rows) > s.cfg.MaxRows {
			return types.Dataset{}, fmt.Errorf("%w: %d > %d", types.ErrTooManyRows, len(in.Rows), s.cfg.MaxRows)
		}
		ds = dataset.Typed(types.Dataset{Columns: in.Columns, Rows: in.Rows})
	}
	if err != nil {
		return types.Dataset{}, err
	}
	if len(ds.Rows) > s.cfg.MaxRows {
		return types.Dataset{}, fmt.Errorf("%w: %d > %d", types.ErrTooManyRows, len(ds.Rows), s.cfg.MaxRows)
	}
	return ds, nil
}

func (s *StyleAPIService) query(ctx context.Context, query string, args []any) (types.Dataset, error) {
	if s.provider == nil {
		return types.Dataset{}, fmt.Errorf("%w: no data source configured", errDataSource)
	}
	ds, err := s.provider.Query(ctx, query, args...)
	switch {
	case err == nil:
		return ds, nil
	case isRequestError(err):
		return types.Dataset{}, err
	default:
		s.logger.Warn("dataset query failed", zap.Error(err))
		return types.Dataset{}, fmt.Errorf("%w: %w", errDataSource, err)
	}
}

// checkRules enforces the per-list rule limit.
func (s *StyleAPIService) checkRules(list []types.StyleRule) error {
	if len(list) > s.cfg.MaxRules {
		return fmt.Errorf("%w: %d > %d", types.ErrTooManyRules, len(list), s.cfg.MaxRules)
	}
	return nil
}
