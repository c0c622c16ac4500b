package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/pipeline"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/repository"
)

func newClassifier() (*pipeline.Classifier, *repository.MockTaskRepository) {
	tasks := repository.NewMockTaskRepository()
	return pipeline.NewClassifier(tasks), tasks
}

func seedTask(tasks *repository.MockTaskRepository, taskID int64, assignees ...string) {
	tasks.AddTask(&domain.Task{ID: taskID, ProjectID: 1, Title: "Ship the report"}, assignees)
}

func intentFor(intents []domain.Intent, userID string) *domain.Intent {
	for i := range intents {
		if intents[i].UserID == userID {
			return &intents[i]
		}
	}
	return nil
}

func TestCommentIntents_AuthorNeverNotified(t *testing.T) {
	c, tasks := newClassifier()
	seedTask(tasks, 10, "alice", "bob")

	intents, err := c.CommentIntents(context.Background(), &domain.CommentMessage{
		EventType:        domain.EventCommentCreated,
		TaskID:           10,
		ProjectID:        1,
		AuthorID:         "alice",
		MentionedUserIDs: []string{"alice"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := intentFor(intents, "alice"); got != nil {
		t.Fatal("author received a notification about their own comment")
	}
	if got := intentFor(intents, "bob"); got == nil {
		t.Fatal("expected bob to be notified")
	}
}

func TestCommentIntents_AssigneesReQueried(t *testing.T) {
	c, tasks := newClassifier()
	seedTask(tasks, 10, "old-assignee")

	// Reassignment happens between publish and consume.
	tasks.SetAssignees(10, []string{"new-assignee"})

	intents, err := c.CommentIntents(context.Background(), &domain.CommentMessage{
		EventType: domain.EventCommentCreated,
		TaskID:    10,
		ProjectID: 1,
		AuthorID:  "author",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if intentFor(intents, "old-assignee") != nil {
		t.Error("stale assignee from publish time was notified")
	}
	if intentFor(intents, "new-assignee") == nil {
		t.Error("current assignee was not notified")
	}
}

func TestCommentIntents_MentionBeatsAssignee(t *testing.T) {
	c, tasks := newClassifier()
	seedTask(tasks, 10, "carol")

	intents, err := c.CommentIntents(context.Background(), &domain.CommentMessage{
		EventType:        domain.EventCommentCreated,
		TaskID:           10,
		ProjectID:        1,
		AuthorID:         "author",
		MentionedUserIDs: []string{"carol"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(intents) != 1 {
		t.Fatalf("expected exactly 1 intent for carol, got %d", len(intents))
	}
	got := intents[0]
	if got.Kind != domain.KindMention {
		t.Errorf("expected mention to win over assignee notice, got kind=%s", got.Kind)
	}
	if got.Priority != domain.PriorityHigh {
		t.Errorf("expected high priority for mention, got %s", got.Priority)
	}
	if len(got.Channels) != 2 {
		t.Errorf("expected in_app+email for high priority, got %v", got.Channels)
	}
}

func TestCommentIntents_ReplyTargetsParentAuthor(t *testing.T) {
	c, tasks := newClassifier()
	seedTask(tasks, 10, "assignee")

	intents, err := c.CommentIntents(context.Background(), &domain.CommentMessage{
		EventType:      domain.EventCommentReply,
		TaskID:         10,
		ProjectID:      1,
		AuthorID:       "replier",
		ParentAuthorID: "parent-author",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parent := intentFor(intents, "parent-author")
	if parent == nil {
		t.Fatal("parent comment author was not notified")
	}
	if parent.Kind != domain.KindCommentReply || parent.Priority != domain.PriorityHigh {
		t.Errorf("reply intent: kind=%s priority=%s", parent.Kind, parent.Priority)
	}
	if intentFor(intents, "assignee") == nil {
		t.Error("task assignee was not notified about the reply")
	}
}

func TestCommentIntents_MentionEvent(t *testing.T) {
	c, _ := newClassifier()

	intents, err := c.CommentIntents(context.Background(), &domain.CommentMessage{
		EventType:        domain.EventMention,
		TaskID:           10,
		ProjectID:        1,
		AuthorID:         "author",
		AuthorName:       "Dana",
		Snippet:          "please review",
		MentionedUserIDs: []string{"eve", "frank"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(intents) != 2 {
		t.Fatalf("expected 2 intents, got %d", len(intents))
	}
	for _, in := range intents {
		if in.Priority != domain.PriorityHigh {
			t.Errorf("mention for %s: expected high priority, got %s", in.UserID, in.Priority)
		}
		if !strings.Contains(in.Body, "Dana") {
			t.Errorf("mention body missing author name: %q", in.Body)
		}
	}
}

func TestCommentIntents_UnknownTypeNoIntents(t *testing.T) {
	c, _ := newClassifier()

	intents, err := c.CommentIntents(context.Background(), &domain.CommentMessage{
		EventType: "COMMENT_EXPLODED",
		AuthorID:  "author",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(intents) != 0 {
		t.Fatalf("expected no intents for unknown type, got %d", len(intents))
	}
}

func TestCommentIntents_AssigneeLookupError(t *testing.T) {
	c, tasks := newClassifier()
	tasks.AssigneesErr = errors.New("db down")

	_, err := c.CommentIntents(context.Background(), &domain.CommentMessage{
		EventType: domain.EventCommentCreated,
		TaskID:    10,
		AuthorID:  "author",
	})
	if err == nil {
		t.Fatal("expected assignee lookup error to propagate")
	}
}

func TestTaskIntents_PriorityPerType(t *testing.T) {
	tests := []struct {
		eventType    domain.EventType
		wantKind     domain.Kind
		wantPriority domain.Priority
		wantChannels int
	}{
		{domain.EventTaskCreated, domain.KindTaskCreated, domain.PriorityMedium, 2},
		{domain.EventTaskAssigned, domain.KindTaskAssigned, domain.PriorityHigh, 2},
		{domain.EventTaskCompleted, domain.KindTaskCompleted, domain.PriorityLow, 1},
		{domain.EventTaskUpdated, domain.KindTaskUpdated, domain.PriorityLow, 1},
		{domain.EventStatusUpdated, domain.KindStatusUpdated, domain.PriorityMedium, 2},
	}
	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			c, tasks := newClassifier()
			seedTask(tasks, 10, "grace")

			intents, err := c.TaskIntents(context.Background(), &domain.TaskMessage{
				EventType:      tt.eventType,
				TaskID:         10,
				ProjectID:      1,
				AuthorID:       "author",
				Title:          "Ship the report",
				PreviousStatus: "open",
				NewStatus:      "in_progress",
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(intents) != 1 {
				t.Fatalf("expected 1 intent, got %d", len(intents))
			}
			got := intents[0]
			if got.Kind != tt.wantKind || got.Priority != tt.wantPriority {
				t.Errorf("got kind=%s priority=%s, want %s/%s", got.Kind, got.Priority, tt.wantKind, tt.wantPriority)
			}
			if len(got.Channels) != tt.wantChannels {
				t.Errorf("got %d channels, want %d", len(got.Channels), tt.wantChannels)
			}
		})
	}
}

func TestTaskIntents_StatusUpdateBody(t *testing.T) {
	c, tasks := newClassifier()
	seedTask(tasks, 10, "henry")

	intents, err := c.TaskIntents(context.Background(), &domain.TaskMessage{
		EventType:      domain.EventStatusUpdated,
		TaskID:         10,
		ProjectID:      1,
		AuthorID:       "author",
		Title:          "Ship the report",
		PreviousStatus: "open",
		NewStatus:      "in_progress",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := intents[0].Body
	if !strings.Contains(body, "open") || !strings.Contains(body, "in_progress") {
		t.Errorf("status change body missing statuses: %q", body)
	}
}

func TestTaskIntents_UnassignedUsesRemovedList(t *testing.T) {
	c, tasks := newClassifier()
	// The removed users are no longer in the assignee table.
	seedTask(tasks, 10, "still-assigned")

	intents, err := c.TaskIntents(context.Background(), &domain.TaskMessage{
		EventType:      domain.EventTaskUnassigned,
		TaskID:         10,
		ProjectID:      1,
		AuthorID:       "author",
		Title:          "Ship the report",
		RemovedUserIDs: []string{"removed-1", "removed-2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(intents) != 2 {
		t.Fatalf("expected 2 intents for removed users, got %d", len(intents))
	}
	if intentFor(intents, "still-assigned") != nil {
		t.Error("remaining assignee should not be notified about someone else's removal")
	}
	for _, in := range intents {
		if in.Kind != domain.KindTaskUnassigned || in.Priority != domain.PriorityMedium {
			t.Errorf("removal intent for %s: kind=%s priority=%s", in.UserID, in.Kind, in.Priority)
		}
	}
}

func TestTaskIntents_UnknownTypeNoIntents(t *testing.T) {
	c, _ := newClassifier()

	intents, err := c.TaskIntents(context.Background(), &domain.TaskMessage{
		EventType: "TASK_EXPLODED",
		AuthorID:  "author",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(intents) != 0 {
		t.Fatalf("expected no intents for unknown type, got %d", len(intents))
	}
}
