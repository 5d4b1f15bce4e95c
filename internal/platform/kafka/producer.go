// Package kafka provides the franz-go producer used by the notification
// pipeline. Emission is best-effort: the inbox row in postgres is the source
// of truth and a broker outage must never fail a business operation.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"vowline/internal/platform/config"
)

// Producer publishes JSON events to a single topic.
type Producer struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewProducer connects to the brokers and ensures the topic exists.
// Returns nil if no brokers are configured (event emission disabled).
func NewProducer(ctx context.Context, cfg config.KafkaConfig, logger *slog.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, cfg.Topic); err != nil {
		client.Close()
		return nil, err
	}

	return &Producer{client: client, topic: cfg.Topic, logger: logger}, nil
}

// Publish marshals the event and produces it asynchronously keyed by key.
// Errors are logged, never returned; see package comment.
func (p *Producer) Publish(ctx context.Context, key string, event any) {
	if p == nil {
		return
	}
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "marshal event failed", "error", err)
		return
	}
	record := &kgo.Record{Topic: p.topic, Key: []byte(key), Value: value}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.WarnContext(ctx, "event publish failed",
				"topic", p.topic,
				"error", err,
			)
		}
	})
}

// Close flushes buffered records and releases the client.
func (p *Producer) Close(ctx context.Context) error {
	if p == nil {
		return nil
	}
	err := p.client.Flush(ctx)
	p.client.Close()
	return err
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	topics, err := adm.ListTopics(ctx)
	if err != nil {
		return fmt.Errorf("list topics: %w", err)
	}
	if topics.Has(topic) {
		return nil
	}
	if _, err := adm.CreateTopic(ctx, 3, 1, nil, topic); err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	return nil
}
