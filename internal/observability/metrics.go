package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	RoleClient = "client"
	RoleAgent  = "agent"
)

var (
	registerOnce sync.Once

	framesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcconnect",
			Subsystem: "session",
			Name:      "frames_written_total",
			Help:      "Frames written to the connection.",
		},
		[]string{"role"},
	)
	framesRead = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcconnect",
			Subsystem: "session",
			Name:      "frames_read_total",
			Help:      "Frames read and decoded from the connection.",
		},
		[]string{"role"},
	)
	readErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcconnect",
			Subsystem: "session",
			Name:      "read_errors_total",
			Help:      "Frame read failures other than clean end of stream.",
		},
		[]string{"role", "kind"},
	)
	unmatchedResponses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mcconnect",
			Subsystem: "session",
			Name:      "unmatched_responses_total",
			Help:      "Responses discarded because no waiter was registered under their id.",
		},
	)
	pendingWaiters = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mcconnect",
			Subsystem: "session",
			Name:      "pending_waiters",
			Help:      "Requests awaiting a response across all client sessions.",
		},
	)
	handlerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mcconnect",
			Subsystem: "agent",
			Name:      "handler_duration_seconds",
			Help:      "Handler execution time by request tag and reply tag.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"tag", "reply"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(framesWritten, framesRead, readErrors, unmatchedResponses, pendingWaiters, handlerDuration)
	})
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}

func RecordFrameWritten(role string) {
	RegisterMetrics()
	framesWritten.WithLabelValues(role).Inc()
}

func RecordFrameRead(role string) {
	RegisterMetrics()
	framesRead.WithLabelValues(role).Inc()
}

func RecordReadError(role, kind string) {
	RegisterMetrics()
	readErrors.WithLabelValues(role, kind).Inc()
}

func RecordUnmatchedResponse() {
	RegisterMetrics()
	unmatchedResponses.Inc()
}

func AddPendingWaiters(delta int) {
	RegisterMetrics()
	pendingWaiters.Add(float64(delta))
}

func RecordHandler(tag, reply string, duration time.Duration) {
	RegisterMetrics()
	handlerDuration.WithLabelValues(tag, reply).Observe(duration.Seconds())
}
