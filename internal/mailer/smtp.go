package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/ratelimiter"
)

// SMTPMailer delivers email through an SMTP relay via gomail.
// Every send passes through the shared rate limiter first, so consumers and
// schedulers together cannot exceed the provider's per-second quota.
type SMTPMailer struct {
	dialer  *gomail.Dialer
	from    string
	limiter *ratelimiter.Limiter
}

func NewSMTPMailer(host string, port int, username, password, from string, limiter *ratelimiter.Limiter) *SMTPMailer {
	return &SMTPMailer{
		dialer:  gomail.NewDialer(host, port, username, password),
		from:    from,
		limiter: limiter,
	}
}

func (s *SMTPMailer) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	if htmlBody != "" {
		m.AddAlternative("text/html", htmlBody)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}

// compile-time check that SMTPMailer implements Mailer
var _ Mailer = (*SMTPMailer)(nil)
