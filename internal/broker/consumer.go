package broker

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// HandlerFunc processes one message body. A nil return acks the message;
// any error rejects it without requeue, which the broker turns into a
// dead-letter route. Handlers must be safe for concurrent calls.
type HandlerFunc func(ctx context.Context, body []byte) error

// Consumer runs one queue's consume loop on its own channel, fanning
// deliveries out to a fixed number of handler goroutines.
type Consumer struct {
	ch          *amqp.Channel
	queue       string
	concurrency int
	handler     HandlerFunc
	logger      *zap.Logger
	wg          sync.WaitGroup
}

func NewConsumer(b *Broker, queue string, prefetch, concurrency int, handler HandlerFunc) (*Consumer, error) {
	ch, err := b.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		ch.Close()
		return nil, err
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Consumer{
		ch:          ch,
		queue:       queue,
		concurrency: concurrency,
		handler:     handler,
		logger:      b.logger.With(zap.String("queue", queue)),
	}, nil
}

// Start registers the consumer and launches the handler goroutines.
// Returns immediately; call Wait after cancelling ctx to drain in-flight
// messages.
func (c *Consumer) Start(ctx context.Context) error {
	deliveries, err := c.ch.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return err
	}

	c.logger.Info("consumer started", zap.Int("concurrency", c.concurrency))

	for i := 0; i < c.concurrency; i++ {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.run(ctx, deliveries)
		}()
	}
	return nil
}

func (c *Consumer) run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-deliveries:
			if !ok {
				c.logger.Warn("delivery channel closed")
				return
			}
			c.dispatch(ctx, msg)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, msg amqp.Delivery) {
	if err := c.handler(ctx, msg.Body); err != nil {
		c.logger.Error("handler failed, dead-lettering message",
			zap.String("message_id", msg.MessageId),
			zap.Error(err),
		)
		// requeue=false: the queue's x-dead-letter args route it to the DLQ.
		if nackErr := msg.Nack(false, false); nackErr != nil {
			c.logger.Error("nack failed", zap.Error(nackErr))
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		c.logger.Error("ack failed", zap.Error(ackErr))
	}
}

// Wait blocks until every handler goroutine has returned.
func (c *Consumer) Wait() {
	c.wg.Wait()
}

func (c *Consumer) Close() error {
	return c.ch.Close()
}
