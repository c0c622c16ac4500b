package mailer

import "context"

// Mailer abstracts outbound email delivery. The SMTP implementation is in
// smtp.go; tests use the hand-written mock in mock_mailer.go.
type Mailer interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) error
}
