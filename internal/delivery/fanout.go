package delivery

import (
	"context"

	"go.uber.org/zap"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/mailer"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/repository"
)

// MetricHooks carries the metric callbacks injected by main.
type MetricHooks struct {
	OnEmailSent   func()
	OnEmailFailed func()
}

func (h *MetricHooks) fill() {
	if h.OnEmailSent == nil {
		h.OnEmailSent = func() {}
	}
	if h.OnEmailFailed == nil {
		h.OnEmailFailed = func() {}
	}
}

// Fanout attempts delivery of each persisted notification on each of its
// channels. In-app is a no-op — the record being persisted IS the in-app
// delivery. Email is best effort: a failure on one channel for one
// notification is caught, logged, and never affects any sibling channel or
// notification, and never fails the consumer's message.
type Fanout struct {
	directory repository.UserDirectory
	mail      mailer.Mailer
	logger    *zap.Logger
	hooks     MetricHooks
}

func NewFanout(directory repository.UserDirectory, mail mailer.Mailer, logger *zap.Logger, hooks MetricHooks) *Fanout {
	hooks.fill()
	return &Fanout{directory: directory, mail: mail, logger: logger, hooks: hooks}
}

// Deliver fans a batch of freshly persisted notifications out to their
// channels. It intentionally returns nothing: by contract the guaranteed
// channel is already committed and everything here is best effort.
func (f *Fanout) Deliver(ctx context.Context, batch []*domain.Notification) {
	for _, n := range batch {
		for _, ch := range n.Channels {
			switch ch {
			case domain.ChannelInApp:
				// Already durable by virtue of being persisted.
			case domain.ChannelEmail:
				f.email(ctx, n)
			default:
				f.logger.Warn("unknown delivery channel",
					zap.String("notification_id", n.ID),
					zap.String("channel", string(ch)),
				)
			}
		}
	}
}

func (f *Fanout) email(ctx context.Context, n *domain.Notification) {
	log := f.logger.With(
		zap.String("notification_id", n.ID),
		zap.String("user_id", n.UserID),
	)

	user, err := f.directory.GetUser(ctx, n.UserID)
	if err != nil {
		log.Warn("email skipped: user lookup failed", zap.Error(err))
		f.hooks.OnEmailFailed()
		return
	}

	text := mailer.RenderText(user.DisplayName, n.Body, n.Link)
	html := mailer.RenderHTML(user.DisplayName, n.Body, n.Link)
	if err := f.mail.Send(ctx, user.Email, n.Subject, text, html); err != nil {
		log.Warn("email send failed", zap.Error(err))
		f.hooks.OnEmailFailed()
		return
	}

	f.hooks.OnEmailSent()
	log.Debug("email sent", zap.String("kind", string(n.Kind)))
}
