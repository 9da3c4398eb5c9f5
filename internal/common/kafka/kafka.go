package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"gr4vydemo/internal/common/events"
)

// Config holds Kafka producer configuration. No brokers disables Kafka.
type Config struct {
	Brokers        []string      `envconfig:"KAFKA_BROKERS"`
	Topic          string        `envconfig:"KAFKA_TOPIC" default:"gr4vydemo.events"`
	ProduceTimeout time.Duration `envconfig:"KAFKA_PRODUCE_TIMEOUT" default:"10s"`
}

// Enabled reports whether any broker was configured
func (c Config) Enabled() bool {
	return len(c.Brokers) > 0
}

// Publisher publishes events to a Kafka topic
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

var _ events.EventPublisher = (*Publisher)(nil)

// NewPublisher creates a producer and checks the brokers are reachable
func NewPublisher(ctx context.Context, cfg Config, logger *slog.Logger) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProduceRequestTimeout(cfg.ProduceTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kafka producer: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging kafka: %w", err)
	}

	logger.Info("kafka producer ready", "brokers", cfg.Brokers, "topic", cfg.Topic)

	return &Publisher{
		client: client,
		topic:  cfg.Topic,
		logger: logger,
	}, nil
}

// Record converts an event into a Kafka record keyed by its aggregate
func Record(topic string, event *events.Event) (*kgo.Record, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshaling event: %w", err)
	}

	return &kgo.Record{
		Topic: topic,
		Key:   []byte(event.AggregateType + ":" + event.AggregateID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "correlation_id", Value: []byte(event.CorrelationID)},
		},
	}, nil
}

// Publish produces an event and waits for acknowledgement
func (p *Publisher) Publish(ctx context.Context, event *events.Event) error {
	record, err := Record(p.topic, event)
	if err != nil {
		return err
	}

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("producing event: %w", err)
	}

	p.logger.Debug("event produced",
		"event_id", event.ID,
		"type", event.Type,
		"topic", p.topic,
	)
	return nil
}

// HealthCheck pings the brokers
func (p *Publisher) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Close flushes and closes the producer
func (p *Publisher) Close() {
	p.client.Close()
}
