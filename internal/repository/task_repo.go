package repository

import (
	"context"
	"time"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
)

// TaskRepository exposes the due-date slice of the task store plus the
// authoritative "current assignees" lookup the consumers re-query instead
// of trusting publish-time recipient hints.
type TaskRepository interface {
	// Assignees returns the current assignee user IDs for a task.
	Assignees(ctx context.Context, taskID int64) ([]string, error)

	// FindOverdue returns non-completed tasks whose due time is at or
	// before the cutoff.
	FindOverdue(ctx context.Context, cutoff time.Time) ([]*domain.Task, error)

	// FindPreDueCandidates returns non-completed tasks that have not yet
	// received a pre-due notice and are due between now and the widest
	// horizon. Per-task horizon selection happens in the scheduler.
	FindPreDueCandidates(ctx context.Context, now, until time.Time) ([]*domain.Task, error)

	// MarkPreDueSent sets the pre-due flag atomically; it is a no-op if the
	// flag is already set, so concurrent scheduler instances cannot
	// double-commit an epoch.
	MarkPreDueSent(ctx context.Context, taskID int64) error
}

// UserDirectory resolves a user's email address and display name.
// Backed by the replicated users table; the identity provider itself is an
// external collaborator.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
}
