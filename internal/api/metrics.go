package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Refresh outcomes recorded by the metrics collector.
const (
	RefreshOK     = "ok"
	RefreshFailed = "failed"
)

// Recorder receives client-side request metrics.
type Recorder interface {
	RecordRequest(method string, status int)
	RecordTransportError(method string)
	RecordRefresh(outcome string)
	RecordLatency(d time.Duration)
}

// Collector is the Prometheus Recorder.
type Collector struct {
	requests  *prometheus.CounterVec
	transport *prometheus.CounterVec
	refreshes *prometheus.CounterVec
	latency   prometheus.Histogram
}

// NewCollector creates a Collector and registers it on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "levo_api_requests_total",
			Help: "API responses by method and HTTP status.",
		}, []string{"method", "status_code"}),
		transport: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "levo_api_transport_errors_total",
			Help: "API requests that got no response.",
		}, []string{"method"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "levo_api_token_refresh_total",
			Help: "Access token refresh attempts by outcome.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "levo_api_request_latency_seconds",
			Help:    "Round-trip latency of API requests.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(c.requests, c.transport, c.refreshes, c.latency)
	return c
}

func (c *Collector) RecordRequest(method string, status int) {
	c.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func (c *Collector) RecordTransportError(method string) {
	c.transport.WithLabelValues(method).Inc()
}

func (c *Collector) RecordRefresh(outcome string) {
	c.refreshes.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordLatency(d time.Duration) {
	c.latency.Observe(d.Seconds())
}

type nopRecorder struct{}

func (nopRecorder) RecordRequest(string, int)   {}
func (nopRecorder) RecordTransportError(string) {}
func (nopRecorder) RecordRefresh(string)        {}
func (nopRecorder) RecordLatency(time.Duration) {}
