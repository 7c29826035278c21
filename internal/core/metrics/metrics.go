// internal/core/metrics/metrics.go
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/solatis/vizcore/internal/rules"
)

/*
 * Prometheus instrumentation for the style service.
 *
 * Metrics owns a private registry; nothing registers with the global
 * default.
 *
 * Exported series:
 *   - vizcore_rules_matched_total{kind}
 *   - vizcore_rules_faulted_total{kind,operator}
 *   - vizcore_grpc_requests_inflight
 *   - vizcore_grpc_request_duration_seconds{method,code}
 *   plus the standard Go runtime and process collectors.
 *
 * Metrics implements rules.Observer so the engine reports match and fault
 * counts directly.
 */

const (
	namespace = "vizcore"

	LabelKind     = "kind"
	LabelOperator = "operator"
	LabelMethod   = "method"
	LabelCode     = "code"
)

var requestBuckets = []float64{.001, .005, .01, .05, .1, .5, 1, 5}

// Metrics holds the service's collectors.
type Metrics struct {
	registry *prometheus.Registry

	ruleMatches *prometheus.CounterVec
	ruleFaults  *prometheus.CounterVec
	inflight    prometheus.Gauge
	duration    *prometheus.HistogramVec
}

var _ rules.Observer = (*Metrics)(nil)

// New creates and registers the service collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ruleMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rules",
			Name:      "matched_total",
			Help:      "Number of style rules that matched.",
		}, []string{LabelKind}),
		ruleFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rules",
			Name:      "faulted_total",
			Help:      "Number of style rules skipped by the fault boundary.",
		}, []string{LabelKind, LabelOperator}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "grpc",
			Name:      "requests_inflight",
			Help:      "Number of gRPC requests in flight.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "grpc",
			Name:      "request_duration_seconds",
			Help:      "Duration of gRPC requests.",
			Buckets:   requestBuckets,
		}, []string{LabelMethod, LabelCode}),
	}
	m.registry.MustRegister(
		m.ruleMatches,
		m.ruleFaults,
		m.inflight,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RuleMatched implements rules.Observer.
func (m *Metrics) RuleMatched(kind string) {
	m.ruleMatches.WithLabelValues(kind).Inc()
}

// RuleFaulted implements rules.Observer.
func (m *Metrics) RuleFaulted(kind string, op rules.Operator) {
	m.ruleFaults.WithLabelValues(kind, op.String()).Inc()
}

// ObserveRequest records one finished request.
func (m *Metrics) ObserveRequest(method, code string, elapsed time.Duration) {
	m.duration.WithLabelValues(method, code).Observe(elapsed.Seconds())
}

// UnaryInterceptor times every unary call and tracks in-flight requests.
func (m *Metrics) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		m.inflight.Inc()
		defer m.inflight.Dec()

		start := time.Now()
		resp, err := handler(ctx, req)
		m.ObserveRequest(info.FullMethod, status.Code(err).String(), time.Since(start))
		return resp, err
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// NewServer returns an HTTP server exposing /metrics on addr.
func (m *Metrics) NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
