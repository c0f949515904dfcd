package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricHTTPRequestsTotal   = "veaxagent_http_requests_total"
	MetricHTTPRequestDuration = "veaxagent_http_request_duration_seconds"
	MetricRPCCallsTotal       = "veaxagent_rpc_calls_total"
	MetricRPCCallDuration     = "veaxagent_rpc_call_duration_seconds"
)

// RPC call outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeRPCError  = "rpc_error"
	OutcomeHTTPError = "http_error"
	OutcomeTransport = "transport_error"
	OutcomeDecode    = "decode_error"
)

// Metrics holds the collectors exported on /metrics. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	rpcCalls     *prometheus.CounterVec
	rpcDuration  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricHTTPRequestsTotal,
			Help: "Inbound HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricHTTPRequestDuration,
			Help:    "Inbound HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRPCCallsTotal,
			Help: "Outbound JSON-RPC calls by service, method and outcome.",
		}, []string{"service", "method", "outcome"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricRPCCallDuration,
			Help:    "Outbound JSON-RPC latency by service and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method"}),
	}

	if reg != nil {
		reg.MustRegister(m.httpRequests, m.httpDuration, m.rpcCalls, m.rpcDuration)
	}
	return m
}

// ObserveHTTP records one inbound request.
func (m *Metrics) ObserveHTTP(route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveRPC records one outbound call attempt.
func (m *Metrics) ObserveRPC(service, method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcCalls.WithLabelValues(service, method, outcome).Inc()
	m.rpcDuration.WithLabelValues(service, method).Observe(elapsed.Seconds())
}
