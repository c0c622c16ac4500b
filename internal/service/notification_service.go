package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/repository"
)

// EventPublisher is the broker-facing half of the service.
// internal/broker.Publisher implements it; tests use a mock.
type EventPublisher interface {
	Publish(ctx context.Context, e domain.Event) error
}

// NotificationService backs the HTTP surface: the notification read-side
// (list, read, dismiss) and the event ingress used by the rest of the CRM
// to hand domain events to the pipeline.
type NotificationService struct {
	repo      repository.NotificationRepository
	publisher EventPublisher
	logger    *zap.Logger
}

func NewNotificationService(
	repo repository.NotificationRepository,
	publisher EventPublisher,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{repo: repo, publisher: publisher, logger: logger}
}

func (s *NotificationService) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Notification, int, error) {
	if filter.UserID == "" {
		return nil, 0, domain.ErrInvalidUserID
	}
	return s.repo.List(ctx, filter)
}

// MarkRead flips the read flag. Idempotent: re-reading an already-read
// notification is not an error.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id)
}

func (s *NotificationService) Dismiss(ctx context.Context, id string) error {
	return s.repo.Dismiss(ctx, id)
}

// PublishComment hands a comment-family event to the broker.
// A broker failure is reported synchronously so the triggering business
// mutation can decide whether to roll back.
func (s *NotificationService) PublishComment(ctx context.Context, msg *domain.CommentMessage) error {
	if msg.EventType == "" {
		return domain.ErrInvalidEventType
	}
	return s.publish(ctx, msg)
}

// PublishTask hands a task-family event to the broker.
func (s *NotificationService) PublishTask(ctx context.Context, msg *domain.TaskMessage) error {
	if msg.EventType == "" {
		return domain.ErrInvalidEventType
	}
	return s.publish(ctx, msg)
}

func (s *NotificationService) publish(ctx context.Context, e domain.Event) error {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Error("event publish failed",
			zap.String("routing_key", e.RoutingKey()),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", domain.ErrPublishFailed, err)
	}
	return nil
}
