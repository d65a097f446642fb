// Package messaging consumes order lifecycle notifications from Kafka
// and feeds them into the stock application layer.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	appstock "github.com/wms/inventory/internal/application/stock"
	"github.com/wms/inventory/internal/domain/shared"
)

// Config holds Kafka consumer configuration.
type Config struct {
	Brokers  []string
	GroupID  string
	MinBytes int
	MaxBytes int
	MaxWait  time.Duration
}

// OrderCreatedHandler processes inbound order-created notifications.
type OrderCreatedHandler interface {
	HandleOrderCreated(ctx context.Context, msg appstock.OrderCreatedMessage) error
}

// OrderCancelledHandler processes inbound order-cancelled notifications.
type OrderCancelledHandler interface {
	HandleOrderCancelled(ctx context.Context, msg appstock.OrderCancelledMessage) error
}

// messageReader is the part of kafka.Reader the consumer loop uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer runs a fetch/handle/commit loop over one topic.
//
// Delivery is at least once: an offset is committed only once its
// message reached a settled state. Validation failures are settled
// immediately, committed and dropped so one malformed notification
// cannot stall the partition. Every other handler failure is treated
// as transient and retried with backoff against the same message; the
// offset stays uncommitted, so a crash or rebalance mid-outage causes
// a redelivery instead of a lost order. The order processor's
// idempotency gate makes that redelivery a no-op.
type Consumer struct {
	reader  messageReader
	topic   string
	handle  func(ctx context.Context, value []byte) error
	logger  *zap.Logger
	backoff backoffConfig

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// backoffConfig bounds the retry delay for transient handler failures.
type backoffConfig struct {
	Initial time.Duration
	Max     time.Duration
}

func defaultBackoff() backoffConfig {
	return backoffConfig{Initial: time.Second, Max: 30 * time.Second}
}

// NewOrderCreatedConsumer creates a consumer for the given topic that
// decodes order-created notifications and reserves stock through the
// handler.
func NewOrderCreatedConsumer(cfg Config, topic string, handler OrderCreatedHandler, logger *zap.Logger) *Consumer {
	c := newConsumer(cfg, topic, logger)
	c.handle = func(ctx context.Context, value []byte) error {
		var msg appstock.OrderCreatedMessage
		if err := json.Unmarshal(value, &msg); err != nil {
			return shared.NewInvalidRequestError("malformed order created message: " + err.Error())
		}
		return handler.HandleOrderCreated(ctx, msg)
	}
	return c
}

// NewOrderCancelledConsumer creates a consumer for the given topic that
// decodes order-cancelled notifications and releases reservations
// through the handler.
func NewOrderCancelledConsumer(cfg Config, topic string, handler OrderCancelledHandler, logger *zap.Logger) *Consumer {
	c := newConsumer(cfg, topic, logger)
	c.handle = func(ctx context.Context, value []byte) error {
		var msg appstock.OrderCancelledMessage
		if err := json.Unmarshal(value, &msg); err != nil {
			return shared.NewInvalidRequestError("malformed order cancelled message: " + err.Error())
		}
		return handler.HandleOrderCancelled(ctx, msg)
	}
	return c
}

func newConsumer(cfg Config, topic string, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    topic,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
		MaxWait:  cfg.MaxWait,
	})
	return &Consumer{
		reader:  reader,
		topic:   topic,
		logger:  logger,
		backoff: defaultBackoff(),
	}
}

// Start launches the consume loop.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.loop(ctx)

	c.logger.Info("kafka consumer started", zap.String("topic", c.topic))
	return nil
}

// Stop cancels the consume loop and closes the underlying reader,
// waiting for in-flight handling to finish.
func (c *Consumer) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		c.logger.Warn("kafka consumer stop timed out", zap.String("topic", c.topic))
		return ctx.Err()
	}

	if err := c.reader.Close(); err != nil {
		c.logger.Error("failed to close kafka reader",
			zap.String("topic", c.topic), zap.Error(err))
		return err
	}
	c.logger.Info("kafka consumer stopped", zap.String("topic", c.topic))
	return nil
}

func (c *Consumer) loop(ctx context.Context) {
	defer c.wg.Done()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, kafka.ErrGroupClosed) {
				return
			}
			c.logger.Error("failed to fetch kafka message",
				zap.String("topic", c.topic), zap.Error(err))
			continue
		}

		if !c.process(ctx, msg) {
			// Cancelled mid-retry; the offset stays uncommitted so the
			// message is redelivered after the next rebalance.
			return
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			c.logger.Error("failed to commit kafka message",
				zap.String("topic", c.topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		}
	}
}

// process runs the handler until the message is settled: handled,
// or failed in a way no retry can fix. Transient failures back off and
// retry in place rather than advancing the offset past an unprocessed
// order. Returns false when the context was cancelled first.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) bool {
	delay := c.backoff.Initial
	for {
		err := c.handle(ctx, msg.Value)
		if err == nil {
			return true
		}
		if isTerminal(err) {
			c.logger.Error("dropping unprocessable kafka message",
				zap.String("topic", c.topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
			return true
		}

		c.logger.Warn("transient failure handling kafka message, retrying",
			zap.String("topic", c.topic),
			zap.Int64("offset", msg.Offset),
			zap.Duration("backoff", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}

		delay *= 2
		if delay > c.backoff.Max {
			delay = c.backoff.Max
		}
	}
}

// isTerminal reports whether a handler error can never succeed on a
// retry of the same message. Validation failures are terminal;
// everything else (database outages, lock conflicts, timeouts) is
// assumed recoverable.
func isTerminal(err error) bool {
	return errors.Is(err, shared.ErrInvalidRequest) || errors.Is(err, shared.ErrInvalidState)
}
