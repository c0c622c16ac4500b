package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
)

// Publisher serialises domain events onto the topic exchange.
// A publish failure is returned to the caller synchronously: the triggering
// business mutation decides whether to fail its own transaction.
type Publisher struct {
	ch     *amqp.Channel
	logger *zap.Logger
}

func NewPublisher(b *Broker) (*Publisher, error) {
	ch, err := b.Channel()
	if err != nil {
		return nil, err
	}
	return &Publisher{ch: ch, logger: b.logger}, nil
}

// Publish stamps the event with a fresh messageId and timestamp, then
// enqueues it durably under its deterministic routing key. There is no
// synchronous acknowledgement of downstream processing.
func (p *Publisher) Publish(ctx context.Context, e domain.Event) error {
	id := uuid.New().String()
	now := time.Now().UTC()
	e.Stamp(id, now)

	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	key := e.RoutingKey()
	err = p.ch.PublishWithContext(
		ctx,
		Exchange,
		key,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    id,
			Timestamp:    now,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}

	p.logger.Debug("event published",
		zap.String("message_id", id),
		zap.String("routing_key", key),
	)
	return nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}
