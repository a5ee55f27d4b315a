package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	BlocksPlayed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "videowall",
			Name:      "blocks_played_total",
			Help:      "Playback blocks handed to the player, by category.",
		},
		[]string{"category"},
	)

	HeartbeatsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "videowall",
			Name:      "heartbeats_sent_total",
			Help:      "Leader heartbeats broadcast on the sync channel.",
		},
	)

	MessagesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "videowall",
			Name:      "messages_received_total",
			Help:      "Leader frames seen on the sync channel, by kind.",
		},
		[]string{"kind"},
	)

	AdvancesApplied = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "videowall",
			Name:      "advances_applied_total",
			Help:      "Leader advance announcements this node resynchronized to.",
		},
	)

	AdvancesIgnored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "videowall",
			Name:      "advances_ignored_total",
			Help:      "Duplicate advance announcements dropped (already at step).",
		},
	)

	CategoriesSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "videowall",
			Name:      "categories_skipped_total",
			Help:      "Scheduled categories skipped for lack of usable media.",
		},
	)

	LeaderPresent = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "videowall",
			Name:      "leader_present",
			Help:      "1 while a leader heartbeat has been seen within the absence timeout.",
		},
	)

	CurrentStep = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "videowall",
			Name:      "current_step",
			Help:      "Position of this node in the circular category sequence.",
		},
	)

	// ---- Process / build info ----
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "videowall",
			Name:      "build_info",
			Help:      "Build info (constant 1, labeled by version and git_sha).",
		},
		[]string{"version", "git_sha"},
	)

	startTime = time.Now()
	uptime    = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "videowall",
			Name:      "uptime_seconds",
			Help:      "Process uptime in seconds.",
		},
		func() float64 { return time.Since(startTime).Seconds() },
	)
)

func init() {
	Registry.MustRegister(
		BlocksPlayed, HeartbeatsSent, MessagesReceived,
		AdvancesApplied, AdvancesIgnored, CategoriesSkipped,
		LeaderPresent, CurrentStep, buildInfo, uptime,
	)
}

// MetricsHandler exposes /metrics. Mount it with mux.Handle("/metrics", telemetry.MetricsHandler()).
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// SetBuildInfo should be called once at startup, e.g. with ldflags-provided values.
func SetBuildInfo(version, gitSHA string) {
	buildInfo.WithLabelValues(version, gitSHA).Set(1)
}

// ---- Middleware instrumentation ----

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "videowall",
			Name:      "http_requests_total",
			Help:      "Status endpoint requests.",
		},
		[]string{"op", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "videowall",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of status endpoint requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 13),
		},
		[]string{"op"},
	)
)

func init() {
	Registry.MustRegister(httpRequests, httpDuration)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Instrument wraps an http.Handler to record metrics under the provided "op" label.
func Instrument(op string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: 200}
		start := time.Now()

		next.ServeHTTP(sw, r)

		class := strconv.Itoa(sw.status/100) + "xx"
		httpRequests.WithLabelValues(op, class).Inc()
		httpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	})
}
