// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// StageDuration tracks per-stage pipeline duration.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_stage_duration_seconds",
			Help:    "Story pipeline stage duration",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 45, 60, 90},
		},
		[]string{"stage", "status"},
	)

	// TokensEmitted tracks tokens emitted to callers.
	TokensEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_tokens_emitted_total",
			Help: "Total token events emitted to callers",
		},
	)

	// TimelineEvents tracks extracted timeline events by outcome.
	TimelineEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timeline_events_total",
			Help: "Timeline marker payloads by outcome",
		},
		[]string{"outcome"},
	)

	// QualityScore tracks quality-gate scores.
	QualityScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quality_gate_score",
			Help:    "Quality gate score distribution",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)

	// QualityRejections tracks enhanced-text rejections by reason.
	QualityRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quality_gate_rejections_total",
			Help: "Quality gate enhancement rejections by reason",
		},
		[]string{"reason"},
	)

	// StreamsActive tracks active pipeline streams.
	StreamsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_streams_active",
			Help: "Number of active pipeline streams",
		},
	)

	// GeocodeLookups tracks geocoding lookups by result.
	GeocodeLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocode_lookups_total",
			Help: "Geocoding lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	// VoiceSynthesisDuration tracks TTS synthesis duration by provider.
	VoiceSynthesisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voice_synthesis_duration_seconds",
			Help:    "Voice synthesis duration",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"provider", "status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordStage records duration and status for one pipeline stage.
func RecordStage(stage, status string, duration float64) {
	StageDuration.WithLabelValues(stage, status).Observe(duration)
}

// IncrementStreams increments the active stream count.
func IncrementStreams() {
	StreamsActive.Inc()
}

// DecrementStreams decrements the active stream count.
func DecrementStreams() {
	StreamsActive.Dec()
}
