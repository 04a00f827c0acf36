package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dynamolabs/oracle-alpha/internal/api"
	"github.com/dynamolabs/oracle-alpha/internal/archive"
	"github.com/dynamolabs/oracle-alpha/internal/stream"
)

func TestRecorder_Interfaces(t *testing.T) {
	// Verify that one Recorder serves every pipeline hook.
	var _ api.RequestMetrics = (*Recorder)(nil)
	var _ stream.StreamMetrics = (*Recorder)(nil)
	var _ archive.Observer = (*Recorder)(nil)
}

func TestRecorder_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)

	rec.ObserveRequest("list_signals", 200, 42*time.Millisecond)
	rec.RecordConnect()
	rec.RecordReconnect(stream.ReasonClosed)
	rec.RecordMessage("signal")
	rec.SetConnected(true)
	rec.ObserveFlush(90, 10, 15*time.Millisecond)
	rec.RecordWriteError()
	rec.SetQueueDepth(3)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	got := make(map[string]bool, len(mfs))
	for _, mf := range mfs {
		got[mf.GetName()] = true
	}

	want := []string{
		"oracle_api_requests_total",
		"oracle_api_request_duration_seconds",
		"oracle_stream_connects_total",
		"oracle_stream_reconnects_total",
		"oracle_stream_messages_total",
		"oracle_stream_connected",
		"oracle_archive_rows_total",
		"oracle_archive_flush_duration_seconds",
		"oracle_archive_write_errors_total",
		"oracle_queue_depth",
	}
	for _, name := range want {
		if !got[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}

func TestRecorder_FlushOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)

	rec.ObserveFlush(90, 10, time.Millisecond)
	rec.ObserveFlush(5, 0, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	values := make(map[string]float64)
	for _, mf := range mfs {
		if mf.GetName() != "oracle_archive_rows_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" {
					values[l.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}

	if values["inserted"] != 95 {
		t.Errorf("inserted = %v, want 95", values["inserted"])
	}
	if values["conflict"] != 10 {
		t.Errorf("conflict = %v, want 10", values["conflict"])
	}
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "2xx"},
		{201, "2xx"},
		{404, "4xx"},
		{429, "4xx"},
		{500, "5xx"},
		{0, "error"},
		{-1, "error"},
	}

	for _, tt := range tests {
		if got := statusClass(tt.code); got != tt.want {
			t.Errorf("statusClass(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestRecorder_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)
	rec.RecordMessage("signal")

	server := httptest.NewServer(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(string(body), "oracle_stream_messages_total") {
		t.Error("scrape output missing oracle_stream_messages_total")
	}
}
