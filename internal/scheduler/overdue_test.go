package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/mailer"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/repository"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/scheduler"
)

func newOverdueChecker(lookback time.Duration) (*scheduler.OverdueChecker, *repository.MockTaskRepository, *repository.MockUserDirectory, *mailer.MockMailer) {
	tasks := repository.NewMockTaskRepository()
	users := repository.NewMockUserDirectory()
	mail := mailer.NewMockMailer()
	oc := scheduler.NewOverdueChecker(tasks, users, mail, time.Hour, lookback, zap.NewNop(), scheduler.MetricHooks{})
	return oc, tasks, users, mail
}

func dueIn(d time.Duration) *time.Time {
	t := time.Now().UTC().Add(d)
	return &t
}

func TestOverdue_NotifiesAssignees(t *testing.T) {
	oc, tasks, users, mail := newOverdueChecker(24 * time.Hour)
	users.AddUser(&domain.User{ID: "alice", Email: "alice@example.com", DisplayName: "Alice"})
	users.AddUser(&domain.User{ID: "bob", Email: "bob@example.com", DisplayName: "Bob"})
	tasks.AddTask(&domain.Task{
		ID: 1, ProjectID: 1, Title: "Late task",
		Status: domain.TaskStatusOpen, DueAt: dueIn(-48 * time.Hour),
	}, []string{"alice", "bob"})

	oc.RunOnce(context.Background())

	if mail.SentTo("alice@example.com") != 1 || mail.SentTo("bob@example.com") != 1 {
		t.Fatalf("expected one email per assignee, got alice=%d bob=%d",
			mail.SentTo("alice@example.com"), mail.SentTo("bob@example.com"))
	}
}

func TestOverdue_WithinLookbackNotNotified(t *testing.T) {
	oc, tasks, users, mail := newOverdueChecker(24 * time.Hour)
	users.AddUser(&domain.User{ID: "alice", Email: "alice@example.com", DisplayName: "Alice"})
	// Overdue, but by less than the lookback.
	tasks.AddTask(&domain.Task{
		ID: 1, ProjectID: 1, Title: "Barely late",
		Status: domain.TaskStatusOpen, DueAt: dueIn(-1 * time.Hour),
	}, []string{"alice"})

	oc.RunOnce(context.Background())

	if len(mail.Sent) != 0 {
		t.Fatalf("task inside the lookback window must not be flagged yet, got %d emails", len(mail.Sent))
	}
}

func TestOverdue_CompletedSkipped(t *testing.T) {
	oc, tasks, users, mail := newOverdueChecker(24 * time.Hour)
	users.AddUser(&domain.User{ID: "alice", Email: "alice@example.com", DisplayName: "Alice"})
	tasks.AddTask(&domain.Task{
		ID: 1, ProjectID: 1, Title: "Done late",
		Status: domain.TaskStatusCompleted, DueAt: dueIn(-48 * time.Hour),
	}, []string{"alice"})

	oc.RunOnce(context.Background())

	if len(mail.Sent) != 0 {
		t.Fatalf("completed tasks are never overdue, got %d emails", len(mail.Sent))
	}
}

func TestOverdue_RecursEveryPass(t *testing.T) {
	oc, tasks, users, mail := newOverdueChecker(24 * time.Hour)
	users.AddUser(&domain.User{ID: "alice", Email: "alice@example.com", DisplayName: "Alice"})
	tasks.AddTask(&domain.Task{
		ID: 1, ProjectID: 1, Title: "Still late",
		Status: domain.TaskStatusOpen, DueAt: dueIn(-48 * time.Hour),
	}, []string{"alice"})

	oc.RunOnce(context.Background())
	oc.RunOnce(context.Background())

	if got := mail.SentTo("alice@example.com"); got != 2 {
		t.Fatalf("overdue reminders recur until the task closes, got %d emails", got)
	}
}

func TestOverdue_PerAssigneeFailureIsolated(t *testing.T) {
	oc, tasks, users, mail := newOverdueChecker(24 * time.Hour)
	users.AddUser(&domain.User{ID: "alice", Email: "alice@example.com", DisplayName: "Alice"})
	users.AddUser(&domain.User{ID: "bob", Email: "bob@example.com", DisplayName: "Bob"})
	mail.FailFor["alice@example.com"] = errors.New("smtp timeout")
	tasks.AddTask(&domain.Task{
		ID: 1, ProjectID: 1, Title: "Late task",
		Status: domain.TaskStatusOpen, DueAt: dueIn(-48 * time.Hour),
	}, []string{"alice", "bob"})

	oc.RunOnce(context.Background())

	if mail.SentTo("bob@example.com") != 1 {
		t.Fatal("bob's email must not be blocked by alice's failure")
	}
}
