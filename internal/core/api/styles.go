package api

import (
	"context"
	"encoding/json"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/vizcore/internal/charts"
	"github.com/solatis/vizcore/internal/hierarchy"
	"github.com/solatis/vizcore/internal/types"
)

// EvaluateTableRequest styles a table body. Column rules come from the
// explicit list, from the conditionStyle entries of a chart config, or both
// (explicit columns first).
type EvaluateTableRequest struct {
	Dataset DatasetInput         `json:"dataset"`
	Columns []charts.ColumnRules `json:"columns"`
	Config  json.RawMessage      `json:"config"`
}

// EvaluateTable returns the row and cell styles of every dataset row.
func (s *StyleAPIService) EvaluateTable(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in EvaluateTableRequest
	if err := decode(req, &in); err != nil {
		return nil, toStatus(err)
	}

	cfg, err := parseConfig(in.Config)
	if err != nil {
		return nil, toStatus(err)
	}
	columns := append(in.Columns, charts.TableRules(cfg)...)
	for _, c := range columns {
		if err := s.checkRules(c.Rules); err != nil {
			return nil, toStatus(err)
		}
	}

	ds, err := s.resolve(ctx, in.Dataset)
	if err != nil {
		return nil, toStatus(err)
	}

	out, err := encode(charts.TableStyles(s.engine, ds, columns))
	if err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}

// BuildHierarchyRequest aggregates a dataset into a group tree.
type BuildHierarchyRequest struct {
	Dataset      DatasetInput `json:"dataset"`
	GroupKeys    []string     `json:"groupKeys"`
	AggregateKey string       `json:"aggregateKey"`
	InfoKeys     []string     `json:"infoKeys"`
}

// BuildHierarchyResponse is the aggregated forest.
type BuildHierarchyResponse struct {
	Nodes []types.HierarchyNode `json:"nodes"`
	Rows  int                   `json:"rows"`
}

// BuildHierarchy groups dataset rows by the group keys, summing the
// aggregate and info columns at every level.
func (s *StyleAPIService) BuildHierarchy(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in BuildHierarchyRequest
	if err := decode(req, &in); err != nil {
		return nil, toStatus(err)
	}
	if len(in.GroupKeys) == 0 {
		return nil, toStatus(invalidf("groupKeys is required"))
	}

	ds, err := s.resolve(ctx, in.Dataset)
	if err != nil {
		return nil, toStatus(err)
	}

	b := hierarchy.NewBuilder(in.GroupKeys, in.AggregateKey, in.InfoKeys)
	for _, row := range ds.Records() {
		if err := ctx.Err(); err != nil {
			return nil, toStatus(err)
		}
		b.Add(row)
	}
	resp := BuildHierarchyResponse{Nodes: b.Build(), Rows: b.Rows()}

	out, err := encode(resp)
	if err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}
