package api

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/vizcore/internal/types"
)

// TableRequest names one table of the data source.
type TableRequest struct {
	Table string `json:"table"`
}

// ListTables returns the tables and views of the configured data source.
func (s *StyleAPIService) ListTables(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct{}
	if err := decode(req, &in); err != nil {
		return nil, toStatus(err)
	}
	if s.provider == nil {
		return nil, toStatus(fmt.Errorf("%w: no data source configured", errDataSource))
	}

	tables, err := s.provider.Tables(ctx)
	if err != nil {
		s.logger.Warn("list tables failed", zap.Error(err))
		return nil, toStatus(fmt.Errorf("%w: %w", errDataSource, err))
	}
	if tables == nil {
		tables = []string{}
	}
	out, err := encode(map[string]any{"tables": tables})
	if err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}

// DescribeTable returns a table's columns with their dataset types.
func (s *StyleAPIService) DescribeTable(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in TableRequest
	if err := decode(req, &in); err != nil {
		return nil, toStatus(err)
	}
	if in.Table == "" {
		return nil, toStatus(invalidf("table is required"))
	}
	if s.provider == nil {
		return nil, toStatus(fmt.Errorf("%w: no data source configured", errDataSource))
	}

	cols, err := s.provider.Columns(ctx, in.Table)
	if err != nil && !isRequestError(err) {
		s.logger.Warn("describe table failed", zap.String("table", in.Table), zap.Error(err))
		err = fmt.Errorf("%w: %w", errDataSource, err)
	}
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := encode(map[string]any{"table": in.Table, "columns": cols})
	if err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}

// QueryDataset resolves a dataset, normally a read-only query, and returns
// it in the positional wire form the other calls accept.
func (s *StyleAPIService) QueryDataset(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in DatasetInput
	if err := decode(req, &in); err != nil {
		return nil, toStatus(err)
	}
	ds, err := s.resolve(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}
	if ds.Columns == nil {
		ds.Columns = []types.Column{}
	}
	if ds.Rows == nil {
		ds.Rows = [][]any{}
	}
	out, err := encode(ds)
	if err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}
