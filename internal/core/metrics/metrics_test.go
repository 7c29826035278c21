package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/solatis/vizcore/internal/rules"
	"github.com/solatis/vizcore/internal/types"
)

// counterValue sums every series of the named counter family.
func counterValue(t *testing.T, m *Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		total := 0.0
		for _, metric := range mf.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
		return total
	}
	return 0
}

func TestMetrics_ObservesEngine(t *testing.T) {
	m := New()
	engine := rules.NewEngine(nil, rules.WithObserver(m))

	ruleset := []types.StyleRule{
		{Range: types.RangeCell, Operator: ">", Value: 1, Color: &types.Color{Background: "red"}},
		{Range: types.RangeCell, Operator: "between", Value: 3, Color: &types.Color{Background: "blue"}},
		{Range: types.RangeCell, Operator: "<", Value: 10, Color: &types.Color{Background: "green"}},
	}
	engine.CellStyle(5, ruleset)

	assert.Equal(t, 2.0, counterValue(t, m, "vizcore_rules_matched_total"))
	assert.Equal(t, 1.0, counterValue(t, m, "vizcore_rules_faulted_total"))
}

func TestMetrics_UnaryInterceptor(t *testing.T) {
	m := New()
	intercept := m.UnaryInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/vizcore.style.v1.StyleAPI/EvaluateTable"}

	_, err := intercept(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.InvalidArgument, "bad")
	})
	require.Error(t, err)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range families {
		if mf.GetName() != "vizcore_grpc_request_duration_seconds" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range metric.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels[LabelCode] == "InvalidArgument" && labels[LabelMethod] == info.FullMethod {
				found = true
				assert.Equal(t, uint64(1), metric.GetHistogram().GetSampleCount())
			}
		}
	}
	assert.True(t, found, "request histogram not recorded")
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RuleMatched(rules.KindRow)

	srv := httptest.NewServer(m.NewServer(":0").Handler)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `vizcore_rules_matched_total{kind="row"} 1`), "body:\n%s", body)
}
