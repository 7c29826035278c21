package api

import (
	"bytes"
	"context"
	"encoding/json"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/vizcore/internal/charts"
	"github.com/solatis/vizcore/internal/types"
	"github.com/solatis/vizcore/internal/workbench"
)

// RenderChartRequest stores a chart in a workbench container and makes it
// the visible one.
type RenderChartRequest struct {
	Session     string            `json:"session"`
	ContainerID types.ContainerID `json:"containerId"`
	Kind        string            `json:"kind"`
	Config      json.RawMessage   `json:"config"`
	Dataset     DatasetInput      `json:"dataset"`
	Width       float64           `json:"width"`
	Height      float64           `json:"height"`
	Style       types.Style       `json:"style"`
}

// ContainersRequest names a session's containers.
type ContainersRequest struct {
	Session     string            `json:"session"`
	ContainerID types.ContainerID `json:"containerId"`
	Style       types.Style       `json:"style"`
}

// ContainersResponse lists a session's containers in creation order.
type ContainersResponse struct {
	Current    types.ContainerID         `json:"current"`
	Containers []workbench.ContainerView `json:"containers"`
}

// parseConfig reads an optional chart config document.
func parseConfig(raw json.RawMessage) (charts.Config, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return charts.ParseConfig(nil)
	}
	return charts.ParseConfig(raw)
}

// RenderChart builds the chart into its container and returns every
// container of the session, the new one shown and the rest hidden.
func (s *StyleAPIService) RenderChart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in RenderChartRequest
	if err := decode(req, &in); err != nil {
		return nil, toStatus(err)
	}
	kind, err := charts.ParseKind(in.Kind)
	if err != nil {
		return nil, toStatus(err)
	}
	cfg, err := parseConfig(in.Config)
	if err != nil {
		return nil, toStatus(err)
	}
	for _, c := range charts.TableRules(cfg) {
		if err := s.checkRules(c.Rules); err != nil {
			return nil, toStatus(err)
		}
	}
	ds, err := s.resolve(ctx, in.Dataset)
	if err != nil {
		return nil, toStatus(err)
	}

	id := in.ContainerID
	if id == "" {
		id = workbench.DefaultContainerID
	}
	spec := workbench.Spec{
		Kind:    kind,
		Dataset: ds,
		Config:  cfg,
		Width:   in.Width,
		Height:  in.Height,
	}

	d := s.sessions.Dispatcher(sessionName(ctx, in.Session))
	views, err := d.Show(id, spec, in.Style)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeContainers(d.Current(), views)
}

// ListContainers renders a session's containers without changing them.
// An unknown session has no containers.
func (s *StyleAPIService) ListContainers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in ContainersRequest
	if err := decode(req, &in); err != nil {
		return nil, toStatus(err)
	}

	d, ok := s.sessions.Lookup(sessionName(ctx, in.Session))
	if !ok {
		return encodeContainers("", nil)
	}
	views, err := d.Containers(in.Style)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeContainers(d.Current(), views)
}

// RemoveContainer drops one container. When it was the visible one, the
// most recently created remaining container is shown instead.
func (s *StyleAPIService) RemoveContainer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in ContainersRequest
	if err := decode(req, &in); err != nil {
		return nil, toStatus(err)
	}
	if in.ContainerID == "" {
		return nil, toStatus(invalidf("containerId is required"))
	}

	d, ok := s.sessions.Lookup(sessionName(ctx, in.Session))
	if !ok {
		return nil, toStatus(types.ErrContainerNotFound)
	}
	if err := d.Remove(in.ContainerID); err != nil {
		return nil, toStatus(err)
	}
	views, err := d.Containers(in.Style)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeContainers(d.Current(), views)
}

// CloseSession disposes a session and all of its containers.
func (s *StyleAPIService) CloseSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in ContainersRequest
	if err := decode(req, &in); err != nil {
		return nil, toStatus(err)
	}
	closed := s.sessions.Close(sessionName(ctx, in.Session))
	return encode(map[string]bool{"closed": closed})
}

func encodeContainers(current types.ContainerID, views []workbench.ContainerView) (*structpb.Struct, error) {
	if views == nil {
		views = []workbench.ContainerView{}
	}
	out, err := encode(ContainersResponse{Current: current, Containers: views})
	if err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}
