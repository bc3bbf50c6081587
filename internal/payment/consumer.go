package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dscommerce-be/internal/apperror"
	"dscommerce-be/internal/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Reader is the subset of *kafka.Reader used by Consumer.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
}

// Consumer feeds payment events from a topic into the payment Service.
// A message is committed once it is applied or rejected for good
// (undecodable, unknown order, invalid transition). Internal failures are
// retried with backoff; if they persist Run returns without committing so
// the group redelivers the message.
type Consumer struct {
	reader      Reader
	svc         Service
	maxAttempts int
	backoff     time.Duration
}

func NewConsumer(reader Reader, svc Service) *Consumer {
	return &Consumer{
		reader:      reader,
		svc:         svc,
		maxAttempts: 3,
		backoff:     time.Second,
	}
}

// Run blocks until ctx is canceled, the reader fails or an event keeps
// failing with an internal error.
func (c *Consumer) Run(ctx context.Context) error {
	log := logger.FromCtx(ctx).With(zap.String("layer", "consumer"))
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				log.Info("payment consumer stopped")
				return nil
			}
			return err
		}

		msgLog := log.With(
			zap.String("topic", msg.Topic),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
		)

		var ev Event
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			msgLog.Error("unmarshal failed", zap.Error(err))
		} else if err := c.process(ctx, msgLog, ev); err != nil {
			if ctx.Err() != nil {
				log.Info("payment consumer stopped")
				return nil
			}
			msgLog.Error("payment event not committed", zap.Error(err))
			return fmt.Errorf("process offset %d: %w", msg.Offset, err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			msgLog.Warn("commit failed", zap.Error(err))
		}
	}
}

// process returns an error only for internal failures that outlived every
// attempt. Rejections are logged and treated as handled.
func (c *Consumer) process(ctx context.Context, log *zap.Logger, ev Event) error {
	delay := c.backoff
	for attempt := 1; ; attempt++ {
		_, err := c.svc.Process(ctx, SourceKafka, ev)
		if err == nil {
			return nil
		}
		if apperror.KindOf(err) != apperror.KindInternal {
			log.Warn("payment event rejected", zap.Error(err))
			return nil
		}
		if attempt >= c.maxAttempts {
			return err
		}

		log.Warn("payment event failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}
