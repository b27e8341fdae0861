package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/contenthub/postnotify/pkg/metrics"
)

// Sink is a destination for dispatch audit events.
type Sink interface {
	// Write sends one audit event to the sink.
	Write(ctx context.Context, event *Event) error

	// Close releases any resources held by the sink.
	Close() error

	// Name returns the sink's identifier.
	Name() string
}

// LogSink writes audit events to the structured logger.
type LogSink struct {
	log *zap.SugaredLogger
}

// NewLogSink creates a LogSink.
func NewLogSink(log *zap.SugaredLogger) *LogSink {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &LogSink{log: log.Named("audit")}
}

// Write logs the audit event.
func (s *LogSink) Write(_ context.Context, event *Event) error {
	s.log.Infow("audit_event",
		"event_id", event.ID,
		"kind", event.Kind,
		"entity_id", event.EntityID,
		"entity_type", event.EntityType,
		"outcome", event.Outcome,
		"recipients", len(event.Recipients),
		"failed", len(event.Failed),
	)
	metrics.AuditEventsWritten.WithLabelValues(s.Name()).Inc()
	return nil
}

// Close is a no-op for LogSink.
func (s *LogSink) Close() error { return nil }

// Name returns the sink identifier.
func (s *LogSink) Name() string { return "log" }
