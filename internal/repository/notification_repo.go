package repository

import (
	"context"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
)

// NotificationRepository defines all persistence operations for notifications.
// The pgx implementation is in pg_notification_repo.go.
// Tests use a hand-written mock (mock_notification_repo.go).
//
// CreateBatch is the pipeline's commit point for the guaranteed in-app
// channel: once it returns nil, every record is durable and best-effort
// channels may proceed. The pipeline never mutates records afterwards;
// MarkRead and Dismiss serve explicit user actions only.
type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []*domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.Notification, int, error)
	MarkRead(ctx context.Context, id string) error
	Dismiss(ctx context.Context, id string) error
}
