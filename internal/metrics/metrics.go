// Package metrics exposes Prometheus collectors for the ledger, the worker, outbound AI
// calls and HTTP traffic.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sjperalta/smartdebt-api/internal/ledger"
)

// Metrics groups every collector on its own registry
type Metrics struct {
	registry *prometheus.Registry

	operations  *prometheus.CounterVec
	jobRuns     *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	aiCalls     *prometheus.CounterVec
	aiDuration  prometheus.Histogram
	httpReqs    *prometheus.CounterVec
	httpLatency *prometheus.HistogramVec
	debtors     prometheus.Gauge
	txCount     prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "smartdebt_ledger_operations_total",
			Help: "Ledger mutations by operation and outcome.",
		}, []string{"op", "result"}),
		jobRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "smartdebt_jobs_total",
			Help: "Background job runs by name and outcome.",
		}, []string{"job", "result"}),
		jobDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "smartdebt_job_duration_seconds",
			Help:    "Background job duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		aiCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "smartdebt_ai_calls_total",
			Help: "Language model calls by outcome.",
		}, []string{"result"}),
		aiDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "smartdebt_ai_call_duration_seconds",
			Help:    "Language model call latency.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		httpReqs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "smartdebt_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "smartdebt_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		debtors: f.NewGauge(prometheus.GaugeOpts{
			Name: "smartdebt_debtors",
			Help: "Debtors in the current snapshot.",
		}),
		txCount: f.NewGauge(prometheus.GaugeOpts{
			Name: "smartdebt_transactions",
			Help: "Transactions in the current snapshot.",
		}),
	}
}

// Registry is exposed for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveOperation counts a ledger mutation; rejected inputs are labelled by error kind
func (m *Metrics) ObserveOperation(op string, err error) {
	m.operations.WithLabelValues(op, resultOf(err)).Inc()
}

// JobFinished implements jobs.Observer
func (m *Metrics) JobFinished(name string, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.jobRuns.WithLabelValues(name, result).Inc()
	m.jobDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// ObserveAICall records one language model call
func (m *Metrics) ObserveAICall(elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "fallback"
	}
	m.aiCalls.WithLabelValues(result).Inc()
	m.aiDuration.Observe(elapsed.Seconds())
}

// SetSnapshotSize updates the size gauges
func (m *Metrics) SetSnapshotSize(debtors, transactions int) {
	m.debtors.Set(float64(debtors))
	m.txCount.Set(float64(transactions))
}

// Middleware records request count and latency labelled by the matched route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpReqs.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpLatency.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ledger.ErrValidation):
		return "validation"
	case errors.Is(err, ledger.ErrReference):
		return "reference"
	case errors.Is(err, ledger.ErrSchema):
		return "schema"
	default:
		return "error"
	}
}
