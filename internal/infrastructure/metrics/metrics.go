package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/janhq/library-api/internal/domain/notification"
	"github.com/janhq/library-api/internal/domain/reminder"
)

const (
	namespace = "library"
	subsystem = "api"
)

// Library-API metrics
var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	LoansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "loans_total",
			Help:      "Total loan lifecycle events",
		},
		[]string{"event"},
	)

	RemindersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reminders_queued_total",
			Help:      "Reminders queued by the daily scheduler",
		},
		[]string{"kind"},
	)

	ReminderRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reminder_runs_total",
			Help:      "Reminder scheduler runs by outcome",
		},
		[]string{"outcome"},
	)

	ReminderRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reminder_run_duration_seconds",
			Help:      "Reminder scheduler run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		},
	)

	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notification_deliveries_total",
			Help:      "Notification delivery attempts by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	OutboxDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbox_depth",
			Help:      "Notification intents waiting for delivery",
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordLoanCreated counts a new loan
func RecordLoanCreated() {
	LoansTotal.WithLabelValues("created").Inc()
}

// RecordLoanReturned counts a returned loan
func RecordLoanReturned() {
	LoansTotal.WithLabelValues("returned").Inc()
}

// Collector adapts the package collectors to the scheduler and worker hooks.
type Collector struct{}

// NewCollector returns the process-wide collector.
func NewCollector() *Collector {
	return &Collector{}
}

// ObserveReminderRun records a finished scheduler run.
func (Collector) ObserveReminderRun(report *reminder.RunReport) {
	if report == nil {
		return
	}
	switch {
	case report.Contended:
		ReminderRunsTotal.WithLabelValues("contended").Inc()
		return
	case report.Failed > 0:
		ReminderRunsTotal.WithLabelValues("partial").Inc()
	default:
		ReminderRunsTotal.WithLabelValues("ok").Inc()
	}
	RemindersTotal.WithLabelValues(string(notification.KindDueSoon)).Add(float64(report.DueSoon))
	RemindersTotal.WithLabelValues(string(notification.KindLate)).Add(float64(report.Late))
	if !report.FinishedAt.IsZero() && !report.StartedAt.IsZero() {
		ReminderRunDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	}
}

// ObserveDelivery records a delivery outcome.
func (Collector) ObserveDelivery(kind notification.Kind, outcome string) {
	DeliveriesTotal.WithLabelValues(string(kind), outcome).Inc()
}

// SetOutboxDepth sets the current outbox depth.
func (Collector) SetOutboxDepth(depth int64) {
	OutboxDepth.Set(float64(depth))
}
