// Package metrics exposes the engine's counters and gauges over
// Prometheus, wired into the StatusBus HTTP server at /metrics. Pattern
// adapted from the retrieval pack's promauto-based metrics (the teacher
// itself carries no metrics layer).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	framesCaptured = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vcsengine",
		Subsystem: "ingress",
		Name:      "frames_captured_total",
		Help:      "Total frames accepted by CaptureIngress.on_frame, including dropped and rejected ones.",
	})

	framesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vcsengine",
		Subsystem: "ingress",
		Name:      "frames_processed_total",
		Help:      "Total frames that completed mark_processed().",
	})

	framesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vcsengine",
		Subsystem: "ingress",
		Name:      "frames_skipped_total",
		Help:      "Total frames dropped under back-pressure in on_frame's fast path.",
	})

	signalState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vcsengine",
		Subsystem: "ingress",
		Name:      "signal_state",
		Help:      "Current SignalState: 0=Receiving, 1=NoSignal, 2=InvalidSignal.",
	})

	missedFrameCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vcsengine",
		Subsystem: "ingress",
		Name:      "missed_frame_count",
		Help:      "Current value of CaptureIngress.skipped, surfaced as missed_frame_count().",
	})

	cycleWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vcsengine",
		Subsystem: "filtergraph",
		Name:      "cycle_warnings_total",
		Help:      "Total GraphCycleDetected warnings raised during chain extraction.",
	})

	pipelineTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vcsengine",
		Subsystem: "pipeline",
		Name:      "ticks_total",
		Help:      "Total pipeline ticks by the event kind dispatched.",
	}, []string{"event"})
)

// RecordCaptured increments the captured-frames counter.
func RecordCaptured() { framesCaptured.Inc() }

// RecordProcessed increments the processed-frames counter.
func RecordProcessed() { framesProcessed.Inc() }

// RecordSkipped increments the skipped-frames counter.
func RecordSkipped() { framesSkipped.Inc() }

// SetSignalState publishes the current SignalState as a gauge value.
func SetSignalState(v int) { signalState.Set(float64(v)) }

// SetMissedFrameCount publishes CaptureIngress.skipped().
func SetMissedFrameCount(v uint64) { missedFrameCount.Set(float64(v)) }

// RecordCycleWarning increments the cycle-warning counter.
func RecordCycleWarning() { cycleWarnings.Inc() }

// RecordTick increments the per-event-kind pipeline tick counter.
func RecordTick(event string) { pipelineTicks.WithLabelValues(event).Inc() }

// Handler returns the Prometheus scrape handler for mounting at /metrics.
func Handler() http.Handler { return promhttp.Handler() }
