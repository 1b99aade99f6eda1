package observability

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/cqox-backend/internal/pkg/logger"
)

const namespace = "cqox"

// Metrics owns a private registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	estimates     *prometheus.CounterVec
	estimateSkips *prometheus.CounterVec
	fitLatency    *prometheus.HistogramVec
	runUsers      *prometheus.CounterVec
	runLatency    prometheus.Histogram

	storeOps       *prometheus.HistogramVec
	storeConflicts *prometheus.CounterVec

	jobs       *prometheus.CounterVec
	jobLatency *prometheus.HistogramVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init builds the process-wide metrics once.
func Init(log *logger.Logger) *Metrics {
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
}

func Current() *Metrics { return instance }

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "api", Name: "requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "api", Name: "request_duration_seconds",
			Help: "HTTP request latency.", Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "api", Name: "inflight_requests",
			Help: "HTTP requests currently being served.",
		}),
		estimates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "estimator", Name: "estimates_total",
			Help: "Persisted estimates by kind (effect, path, partner).",
		}, []string{"kind"}),
		estimateSkips: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "estimator", Name: "skips_total",
			Help: "Skipped fits by kind and reason.",
		}, []string{"kind", "reason"}),
		fitLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "estimator", Name: "fit_duration_seconds",
			Help: "Per-user fit latency by kind.", Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		}, []string{"kind"}),
		runUsers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "estimator", Name: "users_total",
			Help: "Users processed by estimation runs, by result.",
		}, []string{"result"}),
		runLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "estimator", Name: "run_duration_seconds",
			Help: "Whole estimation run latency.", Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
		}),
		storeOps: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "store", Name: "operation_duration_seconds",
			Help: "Result store transaction latency by operation and status.", Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		storeConflicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "store", Name: "conflicts_total",
			Help: "Result store writes that hit a uniqueness conflict.",
		}, []string{"op"}),
		jobs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "worker", Name: "jobs_total",
			Help: "Jobs finished by type and result.",
		}, []string{"job_type", "result"}),
		jobLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "worker", Name: "job_duration_seconds",
			Help: "Job latency by type.", Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
		}, []string{"job_type"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) IncAPIInflight() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) DecAPIInflight() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAPIRequest(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	route = strings.TrimSpace(route)
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.apiLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func (m *Metrics) IncEstimate(kind string) {
	if m == nil {
		return
	}
	m.estimates.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncEstimateSkip(kind, reason string) {
	if m == nil {
		return
	}
	m.estimateSkips.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) ObserveFit(kind string, dur time.Duration) {
	if m == nil {
		return
	}
	m.fitLatency.WithLabelValues(kind).Observe(dur.Seconds())
}

func (m *Metrics) IncRunUser(result string) {
	if m == nil {
		return
	}
	m.runUsers.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveRun(dur time.Duration) {
	if m == nil {
		return
	}
	m.runLatency.Observe(dur.Seconds())
}

func (m *Metrics) ObserveStoreOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.storeOps.WithLabelValues(op, status).Observe(dur.Seconds())
}

func (m *Metrics) IncStoreConflict(op string) {
	if m == nil {
		return
	}
	m.storeConflicts.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveJob(jobType, result string, dur time.Duration) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(jobType, result).Inc()
	m.jobLatency.WithLabelValues(jobType).Observe(dur.Seconds())
}
