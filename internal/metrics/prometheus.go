// internal/metrics/prometheus.go
package metrics

import (
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics
var (
    CheckDuration = promauto.NewHistogramVec(
        prometheus.HistogramOpts{
            Name:    "fiscal_check_duration_seconds",
            Help:    "Time spent probing one monitored asset",
            Buckets: prometheus.DefBuckets,
        },
        []string{"family", "status"},
    )

    CheckTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "fiscal_checks_total",
            Help: "Total number of asset checks evaluated",
        },
        []string{"family", "status"},
    )

    RunFailures = promauto.NewCounter(
        prometheus.CounterOpts{
            Name: "fiscal_run_failures_total",
            Help: "Number of audit runs that finished with errors",
        },
    )

    RunDuration = promauto.NewHistogram(
        prometheus.HistogramOpts{
            Name:    "fiscal_run_duration_seconds",
            Help:    "Wall-clock duration of full audit runs",
            Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
        },
    )

    LastRunAssets = promauto.NewGaugeVec(
        prometheus.GaugeOpts{
            Name: "fiscal_last_run_assets",
            Help: "Number of assets evaluated per family in the last run",
        },
        []string{"family"},
    )

    AuditRows = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "fiscal_audit_rows_total",
            Help: "Audit rows written to the log table",
        },
        []string{"result"},
    )

    WebSocketConnections = promauto.NewGauge(
        prometheus.GaugeOpts{
            Name: "fiscal_websocket_connections_active",
            Help: "Number of active WebSocket connections",
        },
    )
)

type Collector struct{}

func NewCollector() *Collector {
    return &Collector{}
}

// RecordCheck observes one asset evaluation. The family label is the
// check kind, the status the simplified audit outcome.
func (c *Collector) RecordCheck(family, status string, duration time.Duration) {
    CheckDuration.WithLabelValues(family, status).Observe(duration.Seconds())
    CheckTotal.WithLabelValues(family, status).Inc()
}

// RecordRun observes the run totals after the sink write.
func (c *Collector) RecordRun(duration time.Duration, perFamily map[string]int, inserted, failed int, ok bool) {
    RunDuration.Observe(duration.Seconds())
    for family, count := range perFamily {
        LastRunAssets.WithLabelValues(family).Set(float64(count))
    }
    AuditRows.WithLabelValues("inserted").Add(float64(inserted))
    AuditRows.WithLabelValues("failed").Add(float64(failed))
    if !ok {
        RunFailures.Inc()
    }
}

func (c *Collector) RecordWebSocketConnection(delta int) {
    WebSocketConnections.Add(float64(delta))
}
