package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
	"go.uber.org/zap"

	"github.com/contenthub/postnotify/pkg/metrics"
)

// KafkaSinkConfig configures a KafkaSink.
type KafkaSinkConfig struct {
	// Brokers is the list of Kafka broker addresses.
	Brokers []string `yaml:"brokers"`

	// Topic is the Kafka topic to write audit events to.
	Topic string `yaml:"topic"`

	// SASLMechanism is "", "PLAIN", "SCRAM-SHA-256" or "SCRAM-SHA-512".
	SASLMechanism string `yaml:"saslMechanism"`
	SASLUsername  string `yaml:"saslUsername"`
	SASLPassword  string `yaml:"saslPassword"`

	// BatchTimeout is the maximum time to wait before flushing a batch.
	// Default: 1 second
	BatchTimeout time.Duration `yaml:"batchTimeout"`

	// WriteTimeout is the timeout for writing messages.
	// Default: 10 seconds
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

// Configured reports whether the sink has enough configuration to run.
func (c KafkaSinkConfig) Configured() bool {
	return len(c.Brokers) > 0 && c.Topic != ""
}

// KafkaSink writes audit events to a Kafka topic.
type KafkaSink struct {
	writer *kafka.Writer
	log    *zap.SugaredLogger
	mu     sync.Mutex
	closed bool
}

// NewKafkaSink creates a KafkaSink.
func NewKafkaSink(cfg KafkaSinkConfig, log *zap.SugaredLogger) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one Kafka broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("Kafka topic is required")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	transport := &kafka.Transport{}
	if cfg.SASLMechanism != "" {
		mechanism, err := buildSASLMechanism(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to build SASL mechanism: %w", err)
		}
		transport.SASL = mechanism
	}

	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           batchTimeout,
		WriteTimeout:           writeTimeout,
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		Transport:              transport,
		AllowAutoTopicCreation: false,
	}

	log.Infow("Kafka audit sink created",
		"brokers", cfg.Brokers, "topic", cfg.Topic,
		"sasl_enabled", cfg.SASLMechanism != "")

	return &KafkaSink{writer: writer, log: log.Named("kafka-audit")}, nil
}

func buildSASLMechanism(cfg KafkaSinkConfig) (sasl.Mechanism, error) {
	switch cfg.SASLMechanism {
	case "PLAIN":
		return plain.Mechanism{Username: cfg.SASLUsername, Password: cfg.SASLPassword}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.SASLUsername, cfg.SASLPassword)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.SASLUsername, cfg.SASLPassword)
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism: %s", cfg.SASLMechanism)
	}
}

// Write sends one audit event to Kafka. The event ID keys the message so
// records for the same dispatch land in one partition.
func (s *KafkaSink) Write(ctx context.Context, event *Event) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		metrics.AuditEventsDropped.WithLabelValues(s.Name(), "closed").Inc()
		return fmt.Errorf("kafka sink is closed")
	}
	s.mu.Unlock()

	value, err := json.Marshal(event)
	if err != nil {
		metrics.AuditEventsDropped.WithLabelValues(s.Name(), "serialization").Inc()
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", event.EntityID)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(event.Kind)},
			{Key: "outcome", Value: []byte(event.Outcome)},
			{Key: "timestamp", Value: []byte(event.Time.Format(time.RFC3339))},
		},
	}

	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		metrics.AuditEventsDropped.WithLabelValues(s.Name(), "write").Inc()
		s.log.Warnw("Failed to write audit event to Kafka",
			"event_id", event.ID, "error", err)
		return fmt.Errorf("failed to write to Kafka: %w", err)
	}

	metrics.AuditEventsWritten.WithLabelValues(s.Name()).Inc()
	return nil
}

// Close closes the Kafka writer.
func (s *KafkaSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.writer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka writer: %w", err)
	}
	return nil
}

// Name returns the sink identifier.
func (s *KafkaSink) Name() string { return "kafka" }
