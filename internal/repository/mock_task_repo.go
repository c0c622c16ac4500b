package repository

import (
	"context"
	"sync"
	"time"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
)

// MockTaskRepository is an in-memory TaskRepository for unit tests.
type MockTaskRepository struct {
	mu        sync.RWMutex
	tasks     map[int64]*domain.Task
	assignees map[int64][]string

	AssigneesErr error
}

func NewMockTaskRepository() *MockTaskRepository {
	return &MockTaskRepository{
		tasks:     make(map[int64]*domain.Task),
		assignees: make(map[int64][]string),
	}
}

// AddTask seeds a task and its assignee list.
func (m *MockTaskRepository) AddTask(t *domain.Task, assignees []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *t
	m.tasks[t.ID] = &clone
	m.assignees[t.ID] = append([]string(nil), assignees...)
}

// SetAssignees replaces a task's assignee list (simulates reassignment
// between publish and consume time).
func (m *MockTaskRepository) SetAssignees(taskID int64, assignees []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignees[taskID] = append([]string(nil), assignees...)
}

func (m *MockTaskRepository) Assignees(_ context.Context, taskID int64) ([]string, error) {
	if m.AssigneesErr != nil {
		return nil, m.AssigneesErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.assignees[taskID]...), nil
}

func (m *MockTaskRepository) FindOverdue(_ context.Context, cutoff time.Time) ([]*domain.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Task
	for _, t := range m.tasks {
		if t.DueAt == nil || t.Status == domain.TaskStatusCompleted {
			continue
		}
		if !t.DueAt.After(cutoff) {
			clone := *t
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (m *MockTaskRepository) FindPreDueCandidates(_ context.Context, now, until time.Time) ([]*domain.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Task
	for _, t := range m.tasks {
		if t.DueAt == nil || t.Status == domain.TaskStatusCompleted || t.PreDueSent {
			continue
		}
		if t.DueAt.After(now) && !t.DueAt.After(until) {
			clone := *t
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (m *MockTaskRepository) MarkPreDueSent(_ context.Context, taskID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[taskID]; ok {
		t.PreDueSent = true
	}
	return nil
}

// Task returns the stored task state. Test helper.
func (m *MockTaskRepository) Task(taskID int64) *domain.Task {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[taskID]
	if !ok {
		return nil
	}
	clone := *t
	return &clone
}

// MockUserDirectory is an in-memory UserDirectory for unit tests.
type MockUserDirectory struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewMockUserDirectory() *MockUserDirectory {
	return &MockUserDirectory{users: make(map[string]*domain.User)}
}

func (m *MockUserDirectory) AddUser(u *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *u
	m.users[u.ID] = &clone
}

func (m *MockUserDirectory) GetUser(_ context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *u
	return &clone, nil
}
