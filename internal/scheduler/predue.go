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

// PreDueChecker periodically emails assignees of tasks approaching their
// due time: within 24h for standard tasks, within a tighter 12h window for
// rescheduled ones.
//
// This is the pipeline's only true idempotency guard. The pre_due_sent flag
// is set only after every assignee email for a task succeeds; any partial
// failure leaves the flag unset so the next tick retries the whole task.
// At most one pre-due notice fires per task per due-state epoch.
type PreDueChecker struct {
	tasks             repository.TaskRepository
	users             repository.UserDirectory
	mail              mailer.Mailer
	interval          time.Duration
	standardHorizon   time.Duration
	rescheduleHorizon time.Duration
	logger            *zap.Logger
	hooks             MetricHooks
}

func NewPreDueChecker(
	tasks repository.TaskRepository,
	users repository.UserDirectory,
	mail mailer.Mailer,
	interval, standardHorizon, rescheduleHorizon time.Duration,
	logger *zap.Logger,
	hooks MetricHooks,
) *PreDueChecker {
	hooks.fill()
	return &PreDueChecker{
		tasks:             tasks,
		users:             users,
		mail:              mail,
		interval:          interval,
		standardHorizon:   standardHorizon,
		rescheduleHorizon: rescheduleHorizon,
		logger:            logger,
		hooks:             hooks,
	}
}

// Run ticks every interval until ctx is cancelled. Each poll runs to
// completion before the next tick is taken, so at most one invocation of
// this job is ever in flight.
func (pc *PreDueChecker) Run(ctx context.Context) {
	ticker := time.NewTicker(pc.interval)
	defer ticker.Stop()

	pc.logger.Info("pre-due checker started",
		zap.Duration("interval", pc.interval),
		zap.Duration("standard_horizon", pc.standardHorizon),
		zap.Duration("reschedule_horizon", pc.rescheduleHorizon),
	)

	for {
		select {
		case <-ctx.Done():
			pc.logger.Info("pre-due checker stopping")
			return
		case <-ticker.C:
			pc.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single scan-and-notify pass.
func (pc *PreDueChecker) RunOnce(ctx context.Context) {
	pc.hooks.OnRun()
	now := time.Now().UTC()

	// Query with the widest horizon; the per-task horizon is applied below.
	widest := pc.standardHorizon
	if pc.rescheduleHorizon > widest {
		widest = pc.rescheduleHorizon
	}

	tasks, err := pc.tasks.FindPreDueCandidates(ctx, now, now.Add(widest))
	if err != nil {
		pc.logger.Error("pre-due scan failed", zap.Error(err))
		return
	}

	notified := 0
	for _, t := range tasks {
		horizon := pc.standardHorizon
		if t.Rescheduled {
			horizon = pc.rescheduleHorizon
		}
		if t.DueAt.After(now.Add(horizon)) {
			continue
		}
		if pc.notifyTask(ctx, t) {
			notified++
		}
	}

	if notified > 0 {
		pc.logger.Info("pre-due pass complete",
			zap.Int("candidates", len(tasks)),
			zap.Int("notified", notified),
		)
	}
}

// notifyTask emails every assignee of one task and commits the pre-due flag
// only on full success. Returns true if the flag was committed.
func (pc *PreDueChecker) notifyTask(ctx context.Context, t *domain.Task) bool {
	log := pc.logger.With(zap.Int64("task_id", t.ID))

	assignees, err := pc.tasks.Assignees(ctx, t.ID)
	if err != nil {
		log.Error("pre-due: assignee lookup failed", zap.Error(err))
		return false
	}

	subject := fmt.Sprintf("Task due soon: %s", t.Title)
	message := fmt.Sprintf("The task %q is due on %s. Make sure it's on track.",
		t.Title, t.DueAt.Format("Mon, 02 Jan 2006 15:04 MST"))
	link := domain.TaskLink(t.ProjectID, t.ID)

	allSent := true
	for _, userID := range assignees {
		if err := sendUserEmail(ctx, pc.users, pc.mail, userID, subject, message, link); err != nil {
			log.Warn("pre-due email failed, task will retry next tick",
				zap.String("user_id", userID), zap.Error(err))
			pc.hooks.OnEmailFailed()
			allSent = false
			continue
		}
		pc.hooks.OnEmailSent()
	}

	if !allSent {
		return false
	}

	if err := pc.tasks.MarkPreDueSent(ctx, t.ID); err != nil {
		// Flag not committed: the next tick will re-send. Acceptable —
		// duplicates are bounded by the commit retry, never the sends alone.
		log.Error("pre-due flag update failed", zap.Error(err))
		return false
	}
	return true
}
