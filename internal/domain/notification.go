package domain

import "time"

// Channel is the delivery channel for a notification.
type Channel string

const (
	ChannelInApp Channel = "in_app"
	ChannelEmail Channel = "email"
)

func (c Channel) IsValid() bool {
	switch c {
	case ChannelInApp, ChannelEmail:
		return true
	}
	return false
}

// Priority of a notification. It determines the channel set:
// high and medium add email on top of in-app, low is in-app only.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ChannelsFor returns the ordered channel set for a priority.
// In-app always comes first: it is the guaranteed channel, committed by the
// persist step before any best-effort email is attempted.
func ChannelsFor(p Priority) []Channel {
	switch p {
	case PriorityHigh, PriorityMedium:
		return []Channel{ChannelInApp, ChannelEmail}
	default:
		return []Channel{ChannelInApp}
	}
}

// Kind labels what a notification is about. Used for display grouping and
// for the metric counters.
type Kind string

const (
	KindComment        Kind = "comment"
	KindCommentReply   Kind = "comment_reply"
	KindMention        Kind = "mention"
	KindTaskCreated    Kind = "task_created"
	KindTaskAssigned   Kind = "task_assigned"
	KindTaskCompleted  Kind = "task_completed"
	KindTaskUpdated    Kind = "task_updated"
	KindStatusUpdated  Kind = "status_updated"
	KindTaskUnassigned Kind = "task_unassigned"
	KindTaskOverdue    Kind = "task_overdue"
	KindTaskPreDue     Kind = "task_pre_due"
)

// Intent is an in-memory decision to notify one user about one event.
// Consumers build zero or more intents per message; intents become durable
// Notification records in the bulk-persist step.
type Intent struct {
	UserID   string
	AuthorID string
	Kind     Kind
	Priority Priority
	Subject  string
	Body     string
	Link     string
	Channels []Channel
}

// Notification is the durable, queryable record of a notification.
// The pipeline never mutates it after creation; read/dismiss flags are
// flipped only by explicit user actions through the API.
type Notification struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	AuthorID  string     `json:"author_id"`
	Kind      Kind       `json:"kind"`
	Priority  Priority   `json:"priority"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	Link      string     `json:"link,omitempty"`
	Channels  []Channel  `json:"channels"`
	Read      bool       `json:"read"`
	Dismissed bool       `json:"dismissed"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

// User is the slice of the user directory this pipeline needs:
// where to email someone and what to call them.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// ListFilter holds query parameters for paginated notification listing.
type ListFilter struct {
	UserID     string
	UnreadOnly bool
	Page       int
	Limit      int
}
