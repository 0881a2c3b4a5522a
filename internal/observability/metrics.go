package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels shared by render and tool metrics.
const (
	OutcomeOK             = "ok"
	OutcomeFailed         = "failed"
	OutcomeSkippedOverlap = "skipped_overlap"
	OutcomeSkippedBusy    = "skipped_busy"
)

var (
	registerOnce sync.Once

	renderPasses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rotorctl",
			Subsystem: "render",
			Name:      "passes_total",
			Help:      "Render passes by outcome.",
		},
		[]string{"outcome"},
	)
	renderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rotorctl",
			Subsystem: "render",
			Name:      "pass_duration_seconds",
			Help:      "Render pass duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
	publishedEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rotorctl",
			Subsystem: "render",
			Name:      "published_entries",
			Help:      "Entries in the last published document.",
		},
	)
	toolRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rotorctl",
			Subsystem: "tool",
			Name:      "runs_total",
			Help:      "Rotation tool invocations by outcome.",
		},
		[]string{"outcome"},
	)
	toolDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rotorctl",
			Subsystem: "tool",
			Name:      "run_duration_seconds",
			Help:      "Rotation tool run duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rotorctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rotorctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			renderPasses,
			renderDuration,
			publishedEntries,
			toolRuns,
			toolDuration,
			httpRequests,
			httpDuration,
		)
	})
}

func RecordRenderPass(outcome string, duration time.Duration) {
	RegisterMetrics()
	renderPasses.WithLabelValues(outcome).Inc()
	renderDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func SetPublishedEntries(n int) {
	RegisterMetrics()
	publishedEntries.Set(float64(n))
}

func RecordToolRun(outcome string, duration time.Duration) {
	RegisterMetrics()
	toolRuns.WithLabelValues(outcome).Inc()
	toolDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
