// ABOUTME: Prometheus metrics for the audio bridge
// ABOUTME: Counters and gauges for both link directions on a private registry
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains all Prometheus metrics for the bridge. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Transmit metrics
	BytesSent     prometheus.Counter
	ChunksSent    prometheus.Counter
	Cycles        prometheus.Counter
	DecoderErrors prometheus.Counter
	LinkErrors    prometheus.Counter
	PacingBacklog prometheus.Gauge
	CycleDuration prometheus.Histogram

	// Receive metrics
	BytesReceived  prometheus.Counter
	BytesForwarded prometheus.Counter
	ChunksDropped  prometheus.Counter
	SinkErrors     prometheus.Counter
	SinkOverflow   prometheus.Gauge

	// Marker metrics
	Markers *prometheus.CounterVec
}

// NewMetrics creates all metrics on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		BytesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "bison_bytes_sent_total",
			Help: "Total PCM bytes written to the link",
		}),
		ChunksSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "bison_chunks_sent_total",
			Help: "Total chunks written to the link",
		}),
		Cycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "bison_playback_cycles_total",
			Help: "Total completed playback cycles",
		}),
		DecoderErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "bison_decoder_errors_total",
			Help: "Total decoder failures",
		}),
		LinkErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "bison_link_errors_total",
			Help: "Total link write failures",
		}),
		PacingBacklog: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bison_pacing_backlog_bytes",
			Help: "Bytes owed by the pacing schedule but not yet decoded",
		}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bison_cycle_duration_seconds",
			Help:    "Wall-clock duration of playback cycles",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s to ~17 minutes
		}),

		BytesReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "bison_bytes_received_total",
			Help: "Total bytes read from the link, markers included",
		}),
		BytesForwarded: factory.NewCounter(prometheus.CounterOpts{
			Name: "bison_bytes_forwarded_total",
			Help: "Total audio bytes handed to the sink",
		}),
		ChunksDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "bison_chunks_dropped_total",
			Help: "Chunks dropped because the sink was not ready",
		}),
		SinkErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "bison_sink_errors_total",
			Help: "Total sink write failures",
		}),
		SinkOverflow: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bison_sink_overflow_bytes",
			Help: "Audio bytes the sink discarded because playback fell behind",
		}),

		Markers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bison_markers_total",
			Help: "Firmware status markers reported, by id",
		}, []string{"id"}),
	}
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordSent records released chunks
func (m *Metrics) RecordSent(chunks, bytes int) {
	if m == nil {
		return
	}
	m.ChunksSent.Add(float64(chunks))
	m.BytesSent.Add(float64(bytes))
}

// RecordBacklog sets the pacing backlog gauge
func (m *Metrics) RecordBacklog(bytes int64) {
	if m == nil {
		return
	}
	m.PacingBacklog.Set(float64(bytes))
}

// RecordCycle records a finished playback cycle
func (m *Metrics) RecordCycle(seconds float64) {
	if m == nil {
		return
	}
	m.Cycles.Inc()
	m.CycleDuration.Observe(seconds)
}

// RecordDecoderError counts a decoder failure
func (m *Metrics) RecordDecoderError() {
	if m == nil {
		return
	}
	m.DecoderErrors.Inc()
}

// RecordLinkError counts a link write failure
func (m *Metrics) RecordLinkError() {
	if m == nil {
		return
	}
	m.LinkErrors.Inc()
}

// RecordReceived records inbound bytes
func (m *Metrics) RecordReceived(bytes int) {
	if m == nil {
		return
	}
	m.BytesReceived.Add(float64(bytes))
}

// RecordForwarded records bytes handed to the sink
func (m *Metrics) RecordForwarded(bytes int) {
	if m == nil {
		return
	}
	m.BytesForwarded.Add(float64(bytes))
}

// RecordDropped counts a chunk dropped before the sink was ready
func (m *Metrics) RecordDropped() {
	if m == nil {
		return
	}
	m.ChunksDropped.Inc()
}

// RecordSinkError counts a sink write failure
func (m *Metrics) RecordSinkError() {
	if m == nil {
		return
	}
	m.SinkErrors.Inc()
}

// RecordSinkOverflow records the sink's running overflow total
func (m *Metrics) RecordSinkOverflow(bytes int64) {
	if m == nil {
		return
	}
	m.SinkOverflow.Set(float64(bytes))
}

// RecordMarker counts a reported marker
func (m *Metrics) RecordMarker(id byte) {
	if m == nil {
		return
	}
	m.Markers.WithLabelValues(fmt.Sprintf("0x%02X", id)).Inc()
}
