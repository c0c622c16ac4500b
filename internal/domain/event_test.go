package domain_test

import (
	"testing"
	"time"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
)

func TestCommentMessage_RoutingKey(t *testing.T) {
	tests := []struct {
		eventType domain.EventType
		want      string
	}{
		{domain.EventCommentCreated, "notification.comment.created"},
		{domain.EventCommentReply, "notification.comment.reply"},
		{domain.EventMention, "notification.comment.mention"},
		{"SOMETHING_NEW", "notification.comment.unknown"},
	}
	for _, tt := range tests {
		msg := &domain.CommentMessage{EventType: tt.eventType}
		if got := msg.RoutingKey(); got != tt.want {
			t.Errorf("RoutingKey(%s) = %s, want %s", tt.eventType, got, tt.want)
		}
	}
}

func TestTaskMessage_RoutingKey(t *testing.T) {
	tests := []struct {
		eventType domain.EventType
		want      string
	}{
		{domain.EventTaskCreated, "notification.task.created"},
		{domain.EventTaskAssigned, "notification.task.assigned"},
		{domain.EventTaskCompleted, "notification.task.completed"},
		{domain.EventTaskUpdated, "notification.task.updated"},
		{domain.EventStatusUpdated, "notification.task.status"},
		{domain.EventTaskUnassigned, "notification.task.unassigned"},
		{"TASK_EXPLODED", "notification.task.unknown"},
	}
	for _, tt := range tests {
		msg := &domain.TaskMessage{EventType: tt.eventType}
		if got := msg.RoutingKey(); got != tt.want {
			t.Errorf("RoutingKey(%s) = %s, want %s", tt.eventType, got, tt.want)
		}
	}
}

func TestEventType_Known(t *testing.T) {
	known := []domain.EventType{
		domain.EventCommentCreated, domain.EventCommentReply, domain.EventMention,
		domain.EventTaskCreated, domain.EventTaskAssigned, domain.EventTaskCompleted,
		domain.EventTaskUpdated, domain.EventStatusUpdated, domain.EventTaskUnassigned,
	}
	for _, et := range known {
		if !et.Known() {
			t.Errorf("expected %s to be known", et)
		}
	}
	if domain.EventType("FOO_BAR").Known() {
		t.Error("expected FOO_BAR to be unknown")
	}
	if domain.EventType("").Known() {
		t.Error("expected empty event type to be unknown")
	}
}

func TestStamp(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cm := &domain.CommentMessage{}
	cm.Stamp("msg-1", at)
	if cm.MessageID != "msg-1" || !cm.OccurredAt.Equal(at) {
		t.Errorf("comment stamp: got id=%s at=%v", cm.MessageID, cm.OccurredAt)
	}
	if cm.SchemaVersion != domain.EventSchemaVersion {
		t.Errorf("comment stamp: schemaVersion = %d, want %d", cm.SchemaVersion, domain.EventSchemaVersion)
	}

	tm := &domain.TaskMessage{}
	tm.Stamp("msg-2", at)
	if tm.MessageID != "msg-2" || !tm.OccurredAt.Equal(at) {
		t.Errorf("task stamp: got id=%s at=%v", tm.MessageID, tm.OccurredAt)
	}
	if tm.SchemaVersion != domain.EventSchemaVersion {
		t.Errorf("task stamp: schemaVersion = %d, want %d", tm.SchemaVersion, domain.EventSchemaVersion)
	}
}
