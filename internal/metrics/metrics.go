// Package metrics defines the Prometheus counters/gauges for the
// validation engine, modeled on
// felipecampolina-FCReverseProxy/internal/metrics's low-cardinality
// CounterVec/GaugeVec layering. Kept intentionally low-cardinality: the
// only label used is the rejection reason, a small fixed set (spec.md
// §3's ProbeResult reasons), never the endpoint itself.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// tasksDispatched counts every task a worker has picked up.
	tasksDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "proxyscan_tasks_dispatched_total",
		Help: "Total number of probe tasks dispatched to workers",
	})

	// validTotal counts accepted (Valid) probe results.
	validTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "proxyscan_valid_total",
		Help: "Total number of endpoints confirmed as working proxies",
	})

	// rejectedTotal counts Rejected probe results by reason.
	rejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proxyscan_rejected_total",
		Help: "Total number of rejected probes by reason",
	}, []string{"reason"})

	// probesInflight tracks probes currently executing across all workers.
	probesInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "proxyscan_probes_inflight",
		Help: "Number of probes currently in flight",
	})
)

// TaskDispatched records that a worker has begun processing a task.
func TaskDispatched() { tasksDispatched.Inc() }

// ProbeStarted/ProbeFinished bracket a single probe's execution.
func ProbeStarted()  { probesInflight.Inc() }
func ProbeFinished() { probesInflight.Dec() }

// RecordValid records a confirmed endpoint.
func RecordValid() { validTotal.Inc() }

// RecordRejected records a rejection under the given reason label.
func RecordRejected(reason string) { rejectedTotal.WithLabelValues(reason).Inc() }

// Handler returns the Prometheus scrape handler for /metrics.
func Handler() http.Handler { return promhttp.Handler() }
