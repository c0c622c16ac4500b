package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
)

// MockNotificationRepository is a hand-written, in-memory implementation of
// NotificationRepository used in unit tests. No mock-generation library needed.
type MockNotificationRepository struct {
	mu            sync.RWMutex
	notifications map[string]*domain.Notification
	order         []string

	// Optional error override — set in tests to simulate a persist failure.
	CreateBatchErr error
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{
		notifications: make(map[string]*domain.Notification),
	}
}

func (m *MockNotificationRepository) CreateBatch(_ context.Context, notifications []*domain.Notification) error {
	if m.CreateBatchErr != nil {
		return m.CreateBatchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range notifications {
		clone := *n
		m.notifications[n.ID] = &clone
		m.order = append(m.order, n.ID)
	}
	return nil
}

func (m *MockNotificationRepository) GetByID(_ context.Context, id string) (*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.notifications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *n
	return &clone, nil
}

func (m *MockNotificationRepository) List(_ context.Context, f domain.ListFilter) ([]*domain.Notification, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Notification
	for _, n := range m.notifications {
		if n.UserID != f.UserID || n.Dismissed {
			continue
		}
		if f.UnreadOnly && n.Read {
			continue
		}
		clone := *n
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, len(result), nil
}

func (m *MockNotificationRepository) MarkRead(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !n.Read {
		now := time.Now().UTC()
		n.Read = true
		n.ReadAt = &now
	}
	return nil
}

func (m *MockNotificationRepository) Dismiss(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.Dismissed = true
	return nil
}

// All returns every stored notification in insertion order.
// Test helper, not part of the NotificationRepository interface.
func (m *MockNotificationRepository) All() []*domain.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Notification, 0, len(m.order))
	for _, id := range m.order {
		clone := *m.notifications[id]
		result = append(result, &clone)
	}
	return result
}
