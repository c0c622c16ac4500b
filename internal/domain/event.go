package domain

import "time"

// EventType is the wire discriminator for domain events. It fully determines
// which optional fields of the enclosing message are meaningful.
type EventType string

const (
	EventCommentCreated EventType = "COMMENT_CREATED"
	EventCommentReply   EventType = "COMMENT_REPLY"
	EventMention        EventType = "MENTION"

	EventTaskCreated    EventType = "TASK_CREATED"
	EventTaskAssigned   EventType = "TASK_ASSIGNED"
	EventTaskCompleted  EventType = "TASK_COMPLETED"
	EventTaskUpdated    EventType = "TASK_UPDATED"
	EventStatusUpdated  EventType = "STATUS_UPDATED"
	EventTaskUnassigned EventType = "TASK_UNASSIGNED"
)

// Known reports whether the event type is one the pipeline classifies.
// Unknown types are a terminal, logged no-op on the consumer side.
func (t EventType) Known() bool {
	switch t {
	case EventCommentCreated, EventCommentReply, EventMention,
		EventTaskCreated, EventTaskAssigned, EventTaskCompleted,
		EventTaskUpdated, EventStatusUpdated, EventTaskUnassigned:
		return true
	}
	return false
}

// Family is the coarse event grouping that selects the broker queue.
type Family string

const (
	FamilyComment Family = "comment"
	FamilyTask    Family = "task"
	FamilyUser    Family = "user"
	FamilyProject Family = "project"
)

// EventSchemaVersion is the current wire-payload version, stamped onto
// every published message. Consumers of a future version bump can branch
// on it instead of sniffing for new fields.
const EventSchemaVersion = 1

// Event is anything the Publisher can put on the wire. Stamp is called by
// the publisher to assign the fresh messageId, publish timestamp, and
// schema version.
type Event interface {
	RoutingKey() string
	Stamp(messageID string, at time.Time)
}

// routingKey maps an event type to its dotted routing key. Pure function;
// an unrecognised subtype maps to the family's ".unknown" key so the message
// still lands on the family queue and hits the consumer's no-op arm.
func routingKey(family Family, t EventType) string {
	prefix := "notification." + string(family) + "."
	switch t {
	case EventCommentCreated:
		return prefix + "created"
	case EventCommentReply:
		return prefix + "reply"
	case EventMention:
		return prefix + "mention"
	case EventTaskCreated:
		return prefix + "created"
	case EventTaskAssigned:
		return prefix + "assigned"
	case EventTaskCompleted:
		return prefix + "completed"
	case EventTaskUpdated:
		return prefix + "updated"
	case EventStatusUpdated:
		return prefix + "status"
	case EventTaskUnassigned:
		return prefix + "unassigned"
	default:
		return prefix + "unknown"
	}
}

// CommentMessage is the wire payload for the comment event family.
// MentionedUserIDs is a publish-time hint only: consumers must re-resolve
// authoritative recipients where the classification rules say so.
type CommentMessage struct {
	MessageID        string    `json:"messageId"`
	SchemaVersion    int       `json:"schemaVersion"`
	EventType        EventType `json:"eventType"`
	CommentID        int64     `json:"commentId"`
	ParentCommentID  *int64    `json:"parentCommentId,omitempty"`
	ParentAuthorID   string    `json:"parentAuthorId,omitempty"`
	TaskID           int64     `json:"taskId"`
	SubtaskID        *int64    `json:"subtaskId,omitempty"`
	ProjectID        int64     `json:"projectId"`
	AuthorID         string    `json:"authorId"`
	AuthorName       string    `json:"authorName,omitempty"`
	Snippet          string    `json:"snippet,omitempty"`
	MentionedUserIDs []string  `json:"mentionedUserIds,omitempty"`
	OccurredAt       time.Time `json:"timestamp"`
}

func (m *CommentMessage) RoutingKey() string { return routingKey(FamilyComment, m.EventType) }

func (m *CommentMessage) Stamp(messageID string, at time.Time) {
	m.MessageID = messageID
	m.SchemaVersion = EventSchemaVersion
	m.OccurredAt = at
}

// TaskMessage is the wire payload for the task event family.
// AssigneeIDs is the assignee set at publish time (advisory);
// RemovedUserIDs is only meaningful for TASK_UNASSIGNED.
type TaskMessage struct {
	MessageID      string    `json:"messageId"`
	SchemaVersion  int       `json:"schemaVersion"`
	EventType      EventType `json:"eventType"`
	TaskID         int64     `json:"taskId"`
	SubtaskID      *int64    `json:"subtaskId,omitempty"`
	ProjectID      int64     `json:"projectId"`
	AuthorID       string    `json:"authorId"`
	ActorName      string    `json:"actorName,omitempty"`
	Title          string    `json:"title,omitempty"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	NewStatus      string    `json:"newStatus,omitempty"`
	AssigneeIDs    []string  `json:"assigneeIds,omitempty"`
	RemovedUserIDs []string  `json:"removedUserIds,omitempty"`
	OccurredAt     time.Time `json:"timestamp"`
}

func (m *TaskMessage) RoutingKey() string { return routingKey(FamilyTask, m.EventType) }

func (m *TaskMessage) Stamp(messageID string, at time.Time) {
	m.MessageID = messageID
	m.SchemaVersion = EventSchemaVersion
	m.OccurredAt = at
}
