package mailer

import (
	"context"
	"sync"
)

// SentEmail records one successful MockMailer send.
type SentEmail struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// MockMailer is an in-memory Mailer for unit tests.
// FailFor maps recipient addresses to the error their sends should return.
type MockMailer struct {
	mu      sync.Mutex
	Sent    []SentEmail
	FailFor map[string]error
}

func NewMockMailer() *MockMailer {
	return &MockMailer{FailFor: make(map[string]error)}
}

func (m *MockMailer) Send(_ context.Context, to, subject, textBody, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.FailFor[to]; ok {
		return err
	}
	m.Sent = append(m.Sent, SentEmail{To: to, Subject: subject, TextBody: textBody, HTMLBody: htmlBody})
	return nil
}

// SentTo returns how many emails were delivered to the given address.
func (m *MockMailer) SentTo(to string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, e := range m.Sent {
		if e.To == to {
			count++
		}
	}
	return count
}

// compile-time check that MockMailer implements Mailer
var _ Mailer = (*MockMailer)(nil)
