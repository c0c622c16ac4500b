package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/mailer"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/repository"
)

// OverdueChecker periodically emails assignees of tasks whose due time is
// more than the lookback in the past and that are not completed.
//
// There is deliberately no idempotency flag here: every tick may re-notify.
// Overdue reminders are meant to recur until the task is closed; the tick
// interval is the tuning knob.
type OverdueChecker struct {
	tasks    repository.TaskRepository
	users    repository.UserDirectory
	mail     mailer.Mailer
	interval time.Duration
	lookback time.Duration
	logger   *zap.Logger
	hooks    MetricHooks
}

func NewOverdueChecker(
	tasks repository.TaskRepository,
	users repository.UserDirectory,
	mail mailer.Mailer,
	interval, lookback time.Duration,
	logger *zap.Logger,
	hooks MetricHooks,
) *OverdueChecker {
	hooks.fill()
	return &OverdueChecker{
		tasks:    tasks,
		users:    users,
		mail:     mail,
		interval: interval,
		lookback: lookback,
		logger:   logger,
		hooks:    hooks,
	}
}

// Run ticks every interval until ctx is cancelled. Each poll runs to
// completion before the next tick is taken, so at most one invocation of
// this job is ever in flight.
func (oc *OverdueChecker) Run(ctx context.Context) {
	ticker := time.NewTicker(oc.interval)
	defer ticker.Stop()

	oc.logger.Info("overdue checker started",
		zap.Duration("interval", oc.interval),
		zap.Duration("lookback", oc.lookback),
	)

	for {
		select {
		case <-ctx.Done():
			oc.logger.Info("overdue checker stopping")
			return
		case <-ticker.C:
			oc.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single scan-and-notify pass.
func (oc *OverdueChecker) RunOnce(ctx context.Context) {
	oc.hooks.OnRun()
	now := time.Now().UTC()

	tasks, err := oc.tasks.FindOverdue(ctx, now.Add(-oc.lookback))
	if err != nil {
		oc.logger.Error("overdue scan failed", zap.Error(err))
		return
	}

	for _, t := range tasks {
		oc.notifyTask(ctx, t)
	}

	if len(tasks) > 0 {
		oc.logger.Info("overdue pass complete", zap.Int("tasks", len(tasks)))
	}
}

// notifyTask emails every assignee of one overdue task. A failure for one
// assignee is logged and does not block the remaining assignees or tasks.
func (oc *OverdueChecker) notifyTask(ctx context.Context, t *domain.Task) {
	log := oc.logger.With(zap.Int64("task_id", t.ID))

	assignees, err := oc.tasks.Assignees(ctx, t.ID)
	if err != nil {
		log.Error("overdue: assignee lookup failed", zap.Error(err))
		return
	}

	subject := fmt.Sprintf("Task overdue: %s", t.Title)
	message := fmt.Sprintf("The task %q was due on %s and is still open. Please update it or adjust its due date.",
		t.Title, t.DueAt.Format("Mon, 02 Jan 2006 15:04 MST"))
	link := domain.TaskLink(t.ProjectID, t.ID)

	for _, userID := range assignees {
		if err := sendUserEmail(ctx, oc.users, oc.mail, userID, subject, message, link); err != nil {
			log.Warn("overdue email failed", zap.String("user_id", userID), zap.Error(err))
			oc.hooks.OnEmailFailed()
			continue
		}
		oc.hooks.OnEmailSent()
	}
}

// sendUserEmail resolves the recipient in the user directory, renders both
// bodies, and sends. Shared by both due-date checkers.
func sendUserEmail(
	ctx context.Context,
	users repository.UserDirectory,
	mail mailer.Mailer,
	userID, subject, message, link string,
) error {
	user, err := users.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve user %s: %w", userID, err)
	}
	text := mailer.RenderText(user.DisplayName, message, link)
	html := mailer.RenderHTML(user.DisplayName, message, link)
	return mail.Send(ctx, user.Email, subject, text, html)
}
