package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"taskboard/pkg/metrics"
	"taskboard/pkg/trace"
	"taskboard/pkg/util"
)

type MessageHandler func(ctx context.Context, data json.RawMessage) error

// settlement is what the consumer does with a delivery once the handler returns.
type settlement int

const (
	settleAck settlement = iota
	settleRequeue
	settleDeadLetter
)

type Consumer struct {
	channel     *amqp091.Channel
	queue       amqp091.Queue
	routingKey  string
	consumerTag string
	handler     MessageHandler
	conn        *amqp091.Connection
	logger      *zap.Logger

	retries    *util.RetryCounter
	maxRetries int64

	stopOnce sync.Once
}

// NewConsumer creates a consumer for a specific routing key. The work queue dead-letters
// into <routingKey>.dlq on the DLQ exchange.
func NewConsumer(url, queueName, routingKey string, logger *zap.Logger) (*Consumer, error) {
	conn, err := NewConnection(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	closeAll := func() {
		ch.Close()
		conn.Close()
	}

	if err := DeclareExchange(ch); err != nil {
		closeAll()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	if err := DeclareDLQExchange(ch); err != nil {
		closeAll()
		return nil, fmt.Errorf("failed to declare dlq exchange: %w", err)
	}
	if _, err := DeclareDLQQueue(ch, routingKey); err != nil {
		closeAll()
		return nil, err
	}

	q, err := ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		deadLetterArgs(routingKey),
	)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, routingKey, ExchangeName, false, nil); err != nil {
		closeAll()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	if err := ch.Qos(16, 0, false); err != nil {
		closeAll()
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}

	logger.Info("Consumer initialized",
		zap.String("routing_key", routingKey),
		zap.String("queue", queueName),
		zap.String("exchange", ExchangeName),
	)

	return &Consumer{
		conn:        conn,
		channel:     ch,
		queue:       q,
		routingKey:  routingKey,
		consumerTag: "worker-" + queueName,
		logger:      logger,
	}, nil
}

func (c *Consumer) SetHandler(h MessageHandler) {
	c.handler = h
}

// SetRetryCounter bounds redeliveries of retryable failures. Without it, retryable
// failures are requeued indefinitely.
func (c *Consumer) SetRetryCounter(rc *util.RetryCounter, maxRetries int64) {
	c.retries = rc
	c.maxRetries = maxRetries
}

func (c *Consumer) IsConnected() bool {
	return c.conn != nil && !c.conn.IsClosed()
}

// Stop cancels the subscription; StartConsuming returns once in-flight deliveries drain.
func (c *Consumer) Stop() {
	c.stopOnce.Do(func() {
		if c.channel != nil {
			if err := c.channel.Cancel(c.consumerTag, false); err != nil {
				c.logger.Warn("Failed to cancel consumer",
					zap.String("queue", c.queue.Name),
					zap.Error(err),
				)
			}
		}
	})
}

func (c *Consumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// StartConsuming starts consuming messages. This method blocks and should be called in a goroutine.
func (c *Consumer) StartConsuming() error {
	if c.handler == nil {
		return fmt.Errorf("consumer handler not set")
	}

	deliveries, err := c.channel.Consume(
		c.queue.Name,
		c.consumerTag,
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consumer started consuming messages",
		zap.String("routing_key", c.routingKey),
		zap.String("queue", c.queue.Name),
	)

	for msg := range deliveries {
		c.process(msg)
	}

	return nil
}

// process guarantees every delivery is acked or nacked, even when the handler panics.
func (c *Consumer) process(msg amqp091.Delivery) {
	start := time.Now()
	ctx := context.Background()
	if traceID, ok := msg.Headers[HeaderTraceID].(string); ok && traceID != "" {
		ctx = trace.WithContext(ctx, traceID)
	}

	log := c.logger.With(
		zap.String("routing_key", c.routingKey),
		zap.String("queue", c.queue.Name),
		zap.String("message_id", msg.MessageId),
	)
	log.Debug("Received message", zap.Int("message_size", len(msg.Body)))

	defer func() {
		if r := recover(); r != nil {
			log.Error("Handler panic recovered", zap.Any("panic", r))
			if err := msg.Nack(false, false); err != nil {
				log.Error("Failed to nack message after panic", zap.Error(err))
			}
		}
		metrics.RecordMQConsumeLatency(c.routingKey, c.queue.Name, time.Since(start))
	}()

	handlerErr := c.handler(ctx, msg.Body)

	var attempts int64
	if handlerErr != nil && c.retries != nil && msg.MessageId != "" {
		key := util.FormatRetryKey(c.queue.Name, msg.MessageId)
		n, err := c.retries.IncrementAndGet(ctx, key)
		if err != nil {
			log.Warn("Retry counter unavailable", zap.Error(err))
		}
		attempts = n
	}

	switch decide(handlerErr, attempts, c.maxRetries, c.retries != nil) {
	case settleAck:
		if err := msg.Ack(false); err != nil {
			log.Error("Failed to ack message", zap.Error(err))
			return
		}
		if c.retries != nil && msg.MessageId != "" && msg.Redelivered {
			if err := c.retries.Reset(ctx, util.FormatRetryKey(c.queue.Name, msg.MessageId)); err != nil {
				log.Warn("Failed to reset retry counter", zap.Error(err))
			}
		}
		log.Debug("Message processed successfully")
	case settleRequeue:
		log.Warn("Handler failed, requeueing", zap.Int64("attempts", attempts), zap.Error(handlerErr))
		if err := msg.Nack(false, true); err != nil {
			log.Error("Failed to nack message", zap.Error(err))
		}
	case settleDeadLetter:
		_, kind := util.IsRetryableError(handlerErr)
		log.Error("Handler failed, dead-lettering",
			zap.String("error_type", kind),
			zap.Int64("attempts", attempts),
			zap.Error(handlerErr),
		)
		if err := msg.Nack(false, false); err != nil {
			log.Error("Failed to nack message", zap.Error(err))
		}
	}
}

func decide(handlerErr error, attempts, maxRetries int64, bounded bool) settlement {
	if handlerErr == nil {
		return settleAck
	}
	retryable, _ := util.IsRetryableError(handlerErr)
	if !retryable {
		return settleDeadLetter
	}
	if bounded && !util.ShouldRetry(attempts, maxRetries, retryable) {
		return settleDeadLetter
	}
	return settleRequeue
}
