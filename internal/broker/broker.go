package broker

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
)

// Logical topology names. Queues are bound per event family with a wildcard
// pattern; every family queue dead-letters into the shared DLQ.
const (
	Exchange    = "notification.exchange"
	DLQExchange = "notification.dlq.exchange"
	DLQQueue    = "notification.dlq.queue"
	dlqKey      = "dead-letter"

	QueueComment = "notification.comment.queue"
	QueueTask    = "notification.task.queue"
	QueueUser    = "notification.user.queue"
	QueueProject = "notification.project.queue"
)

// QueueFor returns the durable queue name for an event family.
func QueueFor(f domain.Family) string {
	return "notification." + string(f) + ".queue"
}

// bindingFor returns the wildcard routing pattern for an event family.
func bindingFor(f domain.Family) string {
	return "notification." + string(f) + ".*"
}

// Broker owns the AMQP connection. The publisher and each consumer open
// their own channel from it so a consumer channel error cannot take the
// publish path down with it. The publisher's single channel is safe under
// concurrent handlers: amqp091-go serialises writes on a channel
// internally.
type Broker struct {
	conn   *amqp.Connection
	logger *zap.Logger
}

// Connect dials the broker and declares the full topology.
func Connect(url string, logger *zap.Logger) (*Broker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	b := &Broker{conn: conn, logger: logger}
	if err := b.declareTopology(); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("broker topology declared",
		zap.String("exchange", Exchange),
		zap.String("dlq", DLQQueue),
	)
	return b, nil
}

// Channel opens a fresh channel on the shared connection.
func (b *Broker) Channel() (*amqp.Channel, error) {
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return ch, nil
}

func (b *Broker) Close() error {
	return b.conn.Close()
}

// declareTopology declares the topic exchange, the shared dead-letter route,
// and one durable queue per event family. Declarations are idempotent on the
// broker side, so repeated startups are safe.
func (b *Broker) declareTopology() error {
	ch, err := b.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if err := ch.ExchangeDeclare(DLQExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(DLQQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := ch.QueueBind(DLQQueue, dlqKey, DLQExchange, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}

	families := []domain.Family{
		domain.FamilyComment,
		domain.FamilyTask,
		domain.FamilyUser,
		domain.FamilyProject,
	}
	for _, f := range families {
		queue := QueueFor(f)
		// Rejected messages are routed to the DLQ by the broker itself;
		// there is no application-level retry loop.
		args := amqp.Table{
			"x-dead-letter-exchange":    DLQExchange,
			"x-dead-letter-routing-key": dlqKey,
		}
		if _, err := ch.QueueDeclare(queue, true, false, false, false, args); err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}
		if err := ch.QueueBind(queue, bindingFor(f), Exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", queue, err)
		}
	}

	return nil
}
