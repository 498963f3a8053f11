package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pypilink"

// PrometheusHooks implements [LookupHooks] and [HTTPHooks] on top of
// Prometheus collectors.
type PrometheusHooks struct {
	lookups        *prometheus.CounterVec
	lookupDuration *prometheus.HistogramVec
	searches       *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

var (
	_ LookupHooks = (*PrometheusHooks)(nil)
	_ HTTPHooks   = (*PrometheusHooks)(nil)
)

// NewPrometheusHooks creates the collectors and registers them with reg.
func NewPrometheusHooks(reg prometheus.Registerer) (*PrometheusHooks, error) {
	h := &PrometheusHooks{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Triggered package lookups by trigger source and outcome",
		}, []string{"source", "outcome"}),
		lookupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Time from trigger to reply decision",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_fallbacks_total",
			Help:      "Registry searches issued after a commanded miss, by result",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Outbound registry requests by host and status",
		}, []string{"host", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Outbound registry request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host"}),
	}

	for _, c := range []prometheus.Collector{
		h.lookups, h.lookupDuration, h.searches, h.httpRequests, h.httpDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *PrometheusHooks) OnLookupStart(context.Context, string, string, string) {}

func (h *PrometheusHooks) OnLookupComplete(_ context.Context, source, _, outcome string, d time.Duration) {
	h.lookups.WithLabelValues(source, outcome).Inc()
	h.lookupDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnSearchFallback(_ context.Context, _ string, hits int, err error) {
	result := "hit"
	switch {
	case err != nil:
		result = "error"
	case hits == 0:
		result = "miss"
	}
	h.searches.WithLabelValues(result).Inc()
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	h.httpRequests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	h.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnError(_ context.Context, _, host, _ string, _ error) {
	h.httpRequests.WithLabelValues(host, "error").Inc()
}
