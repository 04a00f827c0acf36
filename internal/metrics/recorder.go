package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements api.RequestMetrics, stream.StreamMetrics, and
// archive.Observer using Prometheus collectors.
type Recorder struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	connectsTotal   prometheus.Counter
	reconnectsTotal *prometheus.CounterVec
	messagesTotal   *prometheus.CounterVec
	connected       prometheus.Gauge

	rowsTotal        *prometheus.CounterVec
	flushDuration    prometheus.Histogram
	writeErrorsTotal prometheus.Counter

	queueDepth prometheus.Gauge
}

// NewRecorder creates a Recorder with all collectors registered on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oracle_api_requests_total",
				Help: "REST requests by operation and status class",
			},
			[]string{"op", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oracle_api_request_duration_seconds",
				Help:    "REST request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		connectsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "oracle_stream_connects_total",
				Help: "Successful WebSocket connections",
			},
		),
		reconnectsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oracle_stream_reconnects_total",
				Help: "Reconnect attempts by trigger reason",
			},
			[]string{"reason"},
		),
		messagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oracle_stream_messages_total",
				Help: "Stream messages by type",
			},
			[]string{"type"},
		),
		connected: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "oracle_stream_connected",
				Help: "1 while the stream connection is up",
			},
		),
		rowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oracle_archive_rows_total",
				Help: "Archived rows by outcome (inserted or conflict)",
			},
			[]string{"outcome"},
		),
		flushDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "oracle_archive_flush_duration_seconds",
				Help:    "Archive batch flush duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		writeErrorsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "oracle_archive_write_errors_total",
				Help: "Failed archive batch writes",
			},
		),
		queueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "oracle_queue_depth",
				Help: "Signals waiting in the archive queue",
			},
		),
	}
}

// ObserveRequest records one completed REST request. A status code of 0
// marks a transport failure.
func (r *Recorder) ObserveRequest(op string, statusCode int, elapsed time.Duration) {
	r.requestsTotal.WithLabelValues(op, statusClass(statusCode)).Inc()
	r.requestDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// RecordConnect counts a successful WebSocket connection.
func (r *Recorder) RecordConnect() {
	r.connectsTotal.Inc()
}

// RecordReconnect counts a reconnect attempt by reason.
func (r *Recorder) RecordReconnect(reason string) {
	r.reconnectsTotal.WithLabelValues(reason).Inc()
}

// RecordMessage counts a stream message by type.
func (r *Recorder) RecordMessage(msgType string) {
	r.messagesTotal.WithLabelValues(msgType).Inc()
}

// SetConnected reflects the stream connection state.
func (r *Recorder) SetConnected(connected bool) {
	if connected {
		r.connected.Set(1)
	} else {
		r.connected.Set(0)
	}
}

// ObserveFlush records one archive batch flush.
func (r *Recorder) ObserveFlush(inserted, conflicts int, elapsed time.Duration) {
	r.rowsTotal.WithLabelValues("inserted").Add(float64(inserted))
	r.rowsTotal.WithLabelValues("conflict").Add(float64(conflicts))
	r.flushDuration.Observe(elapsed.Seconds())
}

// RecordWriteError counts a failed archive batch write.
func (r *Recorder) RecordWriteError() {
	r.writeErrorsTotal.Inc()
}

// SetQueueDepth reports the archive queue backlog.
func (r *Recorder) SetQueueDepth(depth int) {
	r.queueDepth.Set(float64(depth))
}

// statusClass collapses an HTTP status code into a low-cardinality
// label: "2xx", "4xx", "5xx", or "error" for transport failures.
func statusClass(code int) string {
	if code <= 0 {
		return "error"
	}
	return fmt.Sprintf("%dxx", code/100)
}

// Serve exposes reg on addr at path in a background goroutine. Callers
// shut the server down with srv.Shutdown or srv.Close.
func Serve(addr, path string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
