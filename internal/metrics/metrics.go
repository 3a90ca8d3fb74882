// Package metrics provides Prometheus instrumentation for the pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tokenscout"

// Fetch results recorded per source
const (
	ResultOK          = "ok"
	ResultError       = "error"
	ResultCacheHit    = "cache_hit"
	ResultBreakerOpen = "breaker_open"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and
// records nothing.
// ⭐ SSOT: 모든 메트릭은 여기서 정의
type Metrics struct {
	registry *prometheus.Registry

	// Discovery
	SourceFetches       *prometheus.CounterVec
	SourceFetchDuration *prometheus.HistogramVec
	SourceCandidates    *prometheus.CounterVec
	BreakerState        *prometheus.GaugeVec

	// Pipeline
	PhaseDuration   *prometheus.HistogramVec
	PhaseRuns       *prometheus.CounterVec
	Screened        *prometheus.CounterVec
	RedFlags        *prometheus.CounterVec
	Evaluations     *prometheus.CounterVec
	Diligence       *prometheus.CounterVec
	SecurityLookups *prometheus.CounterVec

	// Alerts
	Alerts          *prometheus.CounterVec
	BridgeConnected prometheus.Gauge

	// Session
	PoolSize      prometheus.Gauge
	WatchlistSize prometheus.Gauge
}

// New creates a Metrics instance on its own registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		SourceFetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "source_fetches_total",
			Help:      "Adapter fetches by source and result",
		}, []string{"source", "result"}),
		SourceFetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "source_fetch_duration_seconds",
			Help:      "Adapter fetch latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		SourceCandidates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "source_candidates_total",
			Help:      "Candidates returned per source",
		}, []string{"source"}),
		BreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		}, []string{"name"}),

		PhaseDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "phase_duration_seconds",
			Help:      "Duration of each pipeline phase",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"phase"}),
		PhaseRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "phase_runs_total",
			Help:      "Phase invocations by outcome",
		}, []string{"phase", "success"}),
		Screened: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "screening",
			Name:      "candidates_total",
			Help:      "Screened candidates by verdict",
		}, []string{"passed"}),
		RedFlags: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "screening",
			Name:      "red_flags_total",
			Help:      "Red flags raised by name and severity",
		}, []string{"flag", "severity"}),
		Evaluations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "results_total",
			Help:      "Evaluations by recommendation",
		}, []string{"recommendation"}),
		Diligence: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "diligence",
			Name:      "results_total",
			Help:      "Due diligence reports by recommendation",
		}, []string{"recommendation"}),
		SecurityLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "screening",
			Name:      "security_lookups_total",
			Help:      "Security report resolutions by origin",
		}, []string{"origin"}),

		Alerts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "received_total",
			Help:      "Scanner alerts by outcome",
		}, []string{"result"}),
		BridgeConnected: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "bridge_connected",
			Help:      "1 while the alert bridge websocket is connected",
		}),

		PoolSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "pool_size",
			Help:      "Candidates in the discovery pool",
		}),
		WatchlistSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "watchlist_size",
			Help:      "Entries on the watchlist",
		}),
	}
}

// Handler returns the /metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests, custom exporters)
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveFetch records one adapter call
func (m *Metrics) ObserveFetch(source, result string, count int, d time.Duration) {
	if m == nil {
		return
	}
	m.SourceFetches.WithLabelValues(source, result).Inc()
	if result == ResultOK {
		m.SourceFetchDuration.WithLabelValues(source).Observe(d.Seconds())
		m.SourceCandidates.WithLabelValues(source).Add(float64(count))
	}
}

// SetBreakerState records a breaker transition (0 closed, 1 half-open, 2 open)
func (m *Metrics) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

// ObservePhase records one phase run
func (m *Metrics) ObservePhase(phase string, success bool, d time.Duration) {
	if m == nil {
		return
	}
	m.PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
	ok := "false"
	if success {
		ok = "true"
	}
	m.PhaseRuns.WithLabelValues(phase, ok).Inc()
}

// ObserveScreen records a screening verdict and its red flags
func (m *Metrics) ObserveScreen(passed bool, flags map[string]string) {
	if m == nil {
		return
	}
	label := "false"
	if passed {
		label = "true"
	}
	m.Screened.WithLabelValues(label).Inc()
	for name, severity := range flags {
		m.RedFlags.WithLabelValues(name, severity).Inc()
	}
}

// ObserveSecurity records where a security report came from
func (m *Metrics) ObserveSecurity(origin string) {
	if m == nil {
		return
	}
	m.SecurityLookups.WithLabelValues(origin).Inc()
}

// ObserveEvaluation records an evaluation recommendation
func (m *Metrics) ObserveEvaluation(recommendation string) {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues(recommendation).Inc()
}

// ObserveDiligence records a DD recommendation
func (m *Metrics) ObserveDiligence(recommendation string) {
	if m == nil {
		return
	}
	m.Diligence.WithLabelValues(recommendation).Inc()
}

// ObserveAlert records an alert outcome (accepted, rejected, invalid)
func (m *Metrics) ObserveAlert(result string) {
	if m == nil {
		return
	}
	m.Alerts.WithLabelValues(result).Inc()
}

// SetBridgeConnected flags the alert bridge connection state
func (m *Metrics) SetBridgeConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.BridgeConnected.Set(1)
	} else {
		m.BridgeConnected.Set(0)
	}
}

// SetSessionSizes records pool and watchlist sizes
func (m *Metrics) SetSessionSizes(pool, watchlist int) {
	if m == nil {
		return
	}
	m.PoolSize.Set(float64(pool))
	m.WatchlistSize.Set(float64(watchlist))
}
