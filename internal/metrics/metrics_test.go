package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerExposesRegisteredMetrics(t *testing.T) {
	RecordValid()
	RecordRejected("tcp-dial-failure")

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "proxyscan_valid_total") {
		t.Fatal("expected proxyscan_valid_total in /metrics output")
	}
	if !strings.Contains(body, "proxyscan_rejected_total") {
		t.Fatal("expected proxyscan_rejected_total in /metrics output")
	}
}

func TestProbeStartedFinishedGauge(t *testing.T) {
	ProbeStarted()
	ProbeFinished()
	// No panic and the gauge remains registered; detailed value assertions
	// would require the registry's internal API, which this thin wrapper
	// deliberately does not expose.
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(w.Body.String(), "proxyscan_probes_inflight") {
		t.Fatal("expected proxyscan_probes_inflight in /metrics output")
	}
}
