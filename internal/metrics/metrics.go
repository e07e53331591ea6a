// Package metrics declares the Prometheus counters shared by the vault, the
// audit recorder and the store server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

var (
	// OperationsTotal counts vault and store operations by outcome.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credvault_operations_total",
			Help: "Total number of vault operations",
		},
		[]string{"operation", "status"},
	)
	// UnlockAttemptsTotal counts unlock attempts: ok, invalid_password,
	// throttled, setup_required, integrity.
	UnlockAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credvault_unlock_attempts_total",
			Help: "Total number of vault unlock attempts",
		},
		[]string{"result"},
	)
	// AuditEventsTotal counts access log writes: written, failed, dropped, panic.
	AuditEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credvault_audit_events_total",
			Help: "Total number of access log events by outcome",
		},
		[]string{"result"},
	)
)

// ObserveOperation records one operation with a status derived from err.
func ObserveOperation(operation string, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	OperationsTotal.WithLabelValues(operation, status).Inc()
}
