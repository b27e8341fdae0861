// Package metrics defines Prometheus metrics for the notification
// dispatcher, covering classification outcomes, recipient resolution,
// mail delivery, and the audit sink.
package metrics
