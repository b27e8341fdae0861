package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Classification metrics
	TransitionsReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "postnotify_transitions_received_total",
		Help: "Total number of entity state transitions handed to the classifier",
	}, []string{"entity_type"})
	NotificationsClassified = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "postnotify_notifications_classified_total",
		Help: "Total number of transitions classified to a notification kind",
	}, []string{"kind"})
	NotificationsSuppressed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "postnotify_notifications_suppressed_total",
		Help: "Total number of transitions suppressed without a notification",
	}, []string{"reason"})

	// Recipient resolution metrics
	RecipientsResolved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "postnotify_recipients_resolved_total",
		Help: "Total number of recipients resolved for dispatches",
	}, []string{"source"})
	DirectoryLookupErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "postnotify_directory_lookup_errors_total",
		Help: "Total number of directory lookups skipped due to errors",
	}, []string{"kind"})

	// Mail metrics
	MailSendSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "postnotify_mail_send_success_total",
		Help: "Total number of successful mail sends",
	}, []string{"host"})
	MailSendFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "postnotify_mail_send_failure_total",
		Help: "Total number of failed mail sends",
	}, []string{"host"})

	// Audit sink metrics
	AuditEventsWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "postnotify_audit_events_written_total",
		Help: "Total number of dispatch audit events written to the sink",
	}, []string{"sink"})
	AuditEventsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "postnotify_audit_events_dropped_total",
		Help: "Total number of dispatch audit events dropped due to sink errors",
	}, []string{"sink", "reason"})
)

func init() {
	prometheus.MustRegister(TransitionsReceived)
	prometheus.MustRegister(NotificationsClassified)
	prometheus.MustRegister(NotificationsSuppressed)
	prometheus.MustRegister(RecipientsResolved)
	prometheus.MustRegister(DirectoryLookupErrors)
	prometheus.MustRegister(MailSendSuccess)
	prometheus.MustRegister(MailSendFailure)
	prometheus.MustRegister(AuditEventsWritten)
	prometheus.MustRegister(AuditEventsDropped)
}

// MetricsHandler returns an http.Handler exposing Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
