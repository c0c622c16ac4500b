package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/pipeline"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/repository"
)

// recordingDeliverer captures the batches handed to Deliver.
type recordingDeliverer struct {
	mu      sync.Mutex
	batches [][]*domain.Notification
}

func (d *recordingDeliverer) Deliver(_ context.Context, batch []*domain.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.batches = append(d.batches, batch)
}

func (d *recordingDeliverer) delivered() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	total := 0
	for _, b := range d.batches {
		total += len(b)
	}
	return total
}

func newProcessor() (*pipeline.Processor, *repository.MockNotificationRepository, *repository.MockTaskRepository, *recordingDeliverer) {
	repo := repository.NewMockNotificationRepository()
	tasks := repository.NewMockTaskRepository()
	deliverer := &recordingDeliverer{}
	p := pipeline.NewProcessor(
		pipeline.NewClassifier(tasks), repo, deliverer, zap.NewNop(), pipeline.MetricHooks{},
	)
	return p, repo, tasks, deliverer
}

func commentBody(t *testing.T, msg domain.CommentMessage) []byte {
	t.Helper()
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestHandleComment_PersistsAndDelivers(t *testing.T) {
	p, repo, tasks, deliverer := newProcessor()
	tasks.AddTask(&domain.Task{ID: 10, ProjectID: 1, Title: "Ship it"}, []string{"alice", "bob"})

	err := p.HandleComment(context.Background(), commentBody(t, domain.CommentMessage{
		MessageID: "m1",
		EventType: domain.EventCommentCreated,
		TaskID:    10,
		ProjectID: 1,
		AuthorID:  "author",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.All()
	if len(stored) != 2 {
		t.Fatalf("expected 2 persisted notifications, got %d", len(stored))
	}
	for _, n := range stored {
		if n.ID == "" {
			t.Error("persisted notification missing ID")
		}
		if n.CreatedAt.IsZero() {
			t.Error("persisted notification missing CreatedAt")
		}
	}
	if deliverer.delivered() != 2 {
		t.Fatalf("expected 2 notifications handed to delivery, got %d", deliverer.delivered())
	}
}

func TestHandleComment_MalformedJSONRejected(t *testing.T) {
	p, repo, _, _ := newProcessor()

	err := p.HandleComment(context.Background(), []byte("{not json"))
	if err == nil {
		t.Fatal("expected malformed payload to be rejected to the DLQ")
	}
	if len(repo.All()) != 0 {
		t.Fatal("malformed payload must not persist anything")
	}
}

func TestHandleComment_UnknownTypeAckedWithoutIntents(t *testing.T) {
	p, repo, _, deliverer := newProcessor()

	err := p.HandleComment(context.Background(), commentBody(t, domain.CommentMessage{
		MessageID: "m1",
		EventType: "FOO_BAR",
		AuthorID:  "author",
	}))
	if err != nil {
		t.Fatalf("unknown subtype must be acked, got error: %v", err)
	}
	if len(repo.All()) != 0 || deliverer.delivered() != 0 {
		t.Fatal("unknown subtype must produce no notifications")
	}
}

func TestHandleComment_PersistFailureRejected(t *testing.T) {
	p, repo, tasks, deliverer := newProcessor()
	tasks.AddTask(&domain.Task{ID: 10, ProjectID: 1}, []string{"alice"})
	repo.CreateBatchErr = errors.New("db down")

	err := p.HandleComment(context.Background(), commentBody(t, domain.CommentMessage{
		MessageID: "m1",
		EventType: domain.EventCommentCreated,
		TaskID:    10,
		AuthorID:  "author",
	}))
	if err == nil {
		t.Fatal("expected persist failure to reject the message")
	}
	if deliverer.delivered() != 0 {
		t.Fatal("nothing may be delivered when the persist step fails")
	}
}

func TestHandleTask_PersistsForAssignees(t *testing.T) {
	p, repo, tasks, _ := newProcessor()
	tasks.AddTask(&domain.Task{ID: 20, ProjectID: 2, Title: "Review"}, []string{"carol"})

	body, _ := json.Marshal(domain.TaskMessage{
		MessageID: "m2",
		EventType: domain.EventTaskAssigned,
		TaskID:    20,
		ProjectID: 2,
		AuthorID:  "author",
		Title:     "Review",
	})
	if err := p.HandleTask(context.Background(), body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.All()
	if len(stored) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(stored))
	}
	if stored[0].UserID != "carol" || stored[0].Priority != domain.PriorityHigh {
		t.Errorf("got user=%s priority=%s", stored[0].UserID, stored[0].Priority)
	}
}

func TestHandleTask_AssigneeLookupFailureRejected(t *testing.T) {
	p, _, tasks, _ := newProcessor()
	tasks.AssigneesErr = errors.New("db down")

	body, _ := json.Marshal(domain.TaskMessage{
		MessageID: "m3",
		EventType: domain.EventTaskAssigned,
		TaskID:    20,
		AuthorID:  "author",
	})
	if err := p.HandleTask(context.Background(), body); err == nil {
		t.Fatal("expected assignee lookup failure to reject the message")
	}
}

func TestHandleReserved_AlwaysAcks(t *testing.T) {
	p, repo, _, _ := newProcessor()
	handler := p.HandleReserved(domain.FamilyUser)

	if err := handler(context.Background(), []byte(`{"messageId":"m4","eventType":"USER_DEACTIVATED"}`)); err != nil {
		t.Fatalf("reserved queue handler must ack, got %v", err)
	}
	if err := handler(context.Background(), []byte("garbage")); err != nil {
		t.Fatalf("reserved queue handler must ack undecodable payloads too, got %v", err)
	}
	if len(repo.All()) != 0 {
		t.Fatal("reserved families must not persist notifications")
	}
}
