// Package metrics exposes prometheus instrumentation for the dunning engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dunning"

// Metrics holds every collector of the engine. A nil *Metrics is valid and records nothing.
type Metrics struct {
	dispatchTotal       *prometheus.CounterVec
	sendDuration        *prometheus.HistogramVec
	paymentsTotal       *prometheus.CounterVec
	reconciliationRuns  *prometheus.CounterVec
	reconciliationFound prometheus.Counter
	reconciliationLast  prometheus.Gauge
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in production
// and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		dispatchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reminder",
				Name:      "dispatch_total",
				Help:      "Reminder dispatch outcomes by kind and result",
			},
			[]string{"kind", "result"},
		),
		sendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "reminder",
				Name:      "send_duration_seconds",
				Help:      "Latency of calls to the notification sender",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
			},
			[]string{"result"},
		),
		paymentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "payments_total",
				Help:      "Ledger mutations by operation and result",
			},
			[]string{"operation", "result"},
		),
		reconciliationRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reconciliation",
				Name:      "runs_total",
				Help:      "Completed reconciliation runs by status",
			},
			[]string{"status"},
		),
		reconciliationFound: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reconciliation",
				Name:      "occasions_found_total",
				Help:      "Due reminder occasions found by reconciliation",
			},
		),
		reconciliationLast: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "reconciliation",
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time of the last finished reconciliation run",
			},
		),
	}
}

func (m *Metrics) ObserveDispatch(kind, result string) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) ObserveSend(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.sendDuration.WithLabelValues(result).Observe(d.Seconds())
}

func (m *Metrics) ObservePayment(operation, result string) {
	if m == nil {
		return
	}
	m.paymentsTotal.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) ObserveReconciliation(status string, found int, at time.Time) {
	if m == nil {
		return
	}
	m.reconciliationRuns.WithLabelValues(status).Inc()
	m.reconciliationFound.Add(float64(found))
	m.reconciliationLast.Set(float64(at.Unix()))
}
