package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/repository"
)

// Deliverer performs best-effort channel delivery for freshly persisted
// notification records. It never fails the caller: channel errors are the
// deliverer's problem to isolate and log.
type Deliverer interface {
	Deliver(ctx context.Context, batch []*domain.Notification)
}

// MetricHooks carries the metric callbacks injected by main.
// Using a struct keeps the processor constructor signature clean.
type MetricHooks struct {
	OnProcessed func(family domain.Family, latency time.Duration)
	OnFailed    func(family domain.Family)
	OnStored    func(count int)
}

func (h *MetricHooks) fill() {
	if h.OnProcessed == nil {
		h.OnProcessed = func(domain.Family, time.Duration) {}
	}
	if h.OnFailed == nil {
		h.OnFailed = func(domain.Family) {}
	}
	if h.OnStored == nil {
		h.OnStored = func(int) {}
	}
}

// Processor drives one message through the consumer state machine:
// decode → classify → build intents → persist → deliver.
//
// A nil return means the message is acked, including the unknown-subtype
// no-op case. A non-nil return means the broker dead-letters the message:
// decode failures (poison messages), assignee lookup failures, and persist
// failures all land there. Delivery failures never reach the broker — by the
// time delivery runs, the in-app channel is already durably committed.
type Processor struct {
	classifier *Classifier
	repo       repository.NotificationRepository
	deliverer  Deliverer
	logger     *zap.Logger
	hooks      MetricHooks
}

func NewProcessor(
	classifier *Classifier,
	repo repository.NotificationRepository,
	deliverer Deliverer,
	logger *zap.Logger,
	hooks MetricHooks,
) *Processor {
	hooks.fill()
	return &Processor{
		classifier: classifier,
		repo:       repo,
		deliverer:  deliverer,
		logger:     logger,
		hooks:      hooks,
	}
}

// HandleComment processes one message from the comment queue.
func (p *Processor) HandleComment(ctx context.Context, body []byte) error {
	var msg domain.CommentMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		p.hooks.OnFailed(domain.FamilyComment)
		return fmt.Errorf("decode comment message: %w", err)
	}

	log := p.logger.With(
		zap.String("message_id", msg.MessageID),
		zap.String("event_type", string(msg.EventType)),
	)

	intents, err := p.classifier.CommentIntents(ctx, &msg)
	if err != nil {
		p.hooks.OnFailed(domain.FamilyComment)
		return err
	}

	return p.finish(ctx, domain.FamilyComment, msg.EventType, intents, msg.OccurredAt, log)
}

// HandleTask processes one message from the task queue.
func (p *Processor) HandleTask(ctx context.Context, body []byte) error {
	var msg domain.TaskMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		p.hooks.OnFailed(domain.FamilyTask)
		return fmt.Errorf("decode task message: %w", err)
	}

	log := p.logger.With(
		zap.String("message_id", msg.MessageID),
		zap.String("event_type", string(msg.EventType)),
	)

	intents, err := p.classifier.TaskIntents(ctx, &msg)
	if err != nil {
		p.hooks.OnFailed(domain.FamilyTask)
		return err
	}

	return p.finish(ctx, domain.FamilyTask, msg.EventType, intents, msg.OccurredAt, log)
}

// HandleReserved serves the user and project queues. Those families carry no
// classified subtypes yet, so every message takes the unknown-subtype arm:
// logged, acked, zero intents.
func (p *Processor) HandleReserved(family domain.Family) func(ctx context.Context, body []byte) error {
	return func(_ context.Context, body []byte) error {
		var envelope struct {
			MessageID string           `json:"messageId"`
			EventType domain.EventType `json:"eventType"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			p.logger.Warn("undecodable message on reserved queue",
				zap.String("family", string(family)), zap.Error(err))
			return nil
		}
		p.logger.Warn("no classification rules for event family, acknowledging",
			zap.String("family", string(family)),
			zap.String("message_id", envelope.MessageID),
			zap.String("event_type", string(envelope.EventType)),
		)
		p.hooks.OnProcessed(family, 0)
		return nil
	}
}

func (p *Processor) finish(
	ctx context.Context,
	family domain.Family,
	eventType domain.EventType,
	intents []domain.Intent,
	occurredAt time.Time,
	log *zap.Logger,
) error {
	start := time.Now()

	if !eventType.Known() {
		log.Warn("unknown event type, acknowledging without intents")
		p.hooks.OnProcessed(family, time.Since(start))
		return nil
	}
	if len(intents) == 0 {
		log.Debug("event produced no notification intents")
		p.hooks.OnProcessed(family, time.Since(start))
		return nil
	}

	records := buildRecords(intents, time.Now().UTC())
	if err := p.repo.CreateBatch(ctx, records); err != nil {
		p.hooks.OnFailed(family)
		return fmt.Errorf("persist notifications: %w", err)
	}
	p.hooks.OnStored(len(records))

	// In-app is now durable; everything past this point is best effort and
	// must not fail the message.
	p.deliverer.Deliver(ctx, records)

	p.hooks.OnProcessed(family, time.Since(start))
	log.Info("event processed",
		zap.Int("notifications", len(records)),
		zap.Duration("event_age", time.Since(occurredAt)),
	)
	return nil
}

// buildRecords turns intents into durable notification records.
func buildRecords(intents []domain.Intent, now time.Time) []*domain.Notification {
	records := make([]*domain.Notification, len(intents))
	for i, intent := range intents {
		records[i] = &domain.Notification{
			ID:        uuid.New().String(),
			UserID:    intent.UserID,
			AuthorID:  intent.AuthorID,
			Kind:      intent.Kind,
			Priority:  intent.Priority,
			Subject:   intent.Subject,
			Body:      intent.Body,
			Link:      intent.Link,
			Channels:  intent.Channels,
			CreatedAt: now,
		}
	}
	return records
}
