package trigger

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Consumer feeds change events from a Kafka topic into a Dispatcher. Each
// message is handled once and committed whatever the outcome so a bad
// document cannot stall the partition.
type Consumer struct {
	reader     *kafka.Reader
	dispatcher *Dispatcher
	logger     *zap.Logger
}

func NewConsumer(brokers []string, topic, groupID string, d *Dispatcher, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MaxBytes: 10e6, // 10MB
		}),
		dispatcher: d,
		logger:     logger.Named("kafka"),
	}
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	cfg := c.reader.Config()
	c.logger.Info("📥 Kafka consumer started",
		zap.String("topic", cfg.Topic),
		zap.String("group_id", cfg.GroupID),
	)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			c.logger.Error("❌ Kafka fetch failed", zap.Error(err))
			return err
		}

		c.handle(ctx, m)

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Warn("⚠️ Kafka commit failed", zap.Int64("offset", m.Offset), zap.Error(err))
		}
	}
}

func (c *Consumer) handle(ctx context.Context, m kafka.Message) {
	var ev ChangeEvent
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		c.logger.Warn("⚠️ Dropping undecodable change event",
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
			zap.Error(err),
		)
		return
	}

	if err := c.dispatcher.Dispatch(ctx, ev); err != nil {
		c.logger.Error("❌ Change event handler failed",
			zap.String("tenant_id", ev.TenantID),
			zap.String("resource", ev.Resource),
			zap.String("change", string(ev.ChangeType)),
			zap.Error(err),
		)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
