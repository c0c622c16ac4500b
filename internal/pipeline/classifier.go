package pipeline

import (
	"context"
	"fmt"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
)

// AssigneeSource is the authoritative "current assignees for task T" lookup.
// Consumers use it instead of the recipient hints embedded in messages,
// which may be stale by the time a message is processed.
type AssigneeSource interface {
	Assignees(ctx context.Context, taskID int64) ([]string, error)
}

// Classifier maps a classified event message to its notification intents.
// The mapping itself is pure; the only I/O is the assignee re-query.
//
// Two invariants hold for every intent produced:
//   - the event's author is never a target (self-notification suppression)
//   - no user receives two intents for the same message (first rule wins,
//     so a mentioned assignee gets the mention, not the assignee notice)
type Classifier struct {
	assignees AssigneeSource
}

func NewClassifier(assignees AssigneeSource) *Classifier {
	return &Classifier{assignees: assignees}
}

// intentSet accumulates intents while enforcing the two invariants above.
type intentSet struct {
	authorID string
	seen     map[string]bool
	intents  []domain.Intent
}

func newIntentSet(authorID string) *intentSet {
	return &intentSet{authorID: authorID, seen: make(map[string]bool)}
}

func (s *intentSet) add(userID string, kind domain.Kind, priority domain.Priority, subject, body, link string) {
	if userID == "" || userID == s.authorID || s.seen[userID] {
		return
	}
	s.seen[userID] = true
	s.intents = append(s.intents, domain.Intent{
		UserID:   userID,
		AuthorID: s.authorID,
		Kind:     kind,
		Priority: priority,
		Subject:  subject,
		Body:     body,
		Link:     link,
		Channels: domain.ChannelsFor(priority),
	})
}

// CommentIntents builds intents for the comment event family.
// An unknown subtype yields (nil, nil): the caller logs and acks.
func (c *Classifier) CommentIntents(ctx context.Context, msg *domain.CommentMessage) ([]domain.Intent, error) {
	set := newIntentSet(msg.AuthorID)
	author := displayName(msg.AuthorName)
	link := domain.CommentLink(msg.ProjectID, msg.TaskID, msg.CommentID)

	switch msg.EventType {
	case domain.EventCommentReply:
		set.add(msg.ParentAuthorID, domain.KindCommentReply, domain.PriorityHigh,
			"New reply to your comment",
			fmt.Sprintf("%s replied to your comment: %s", author, msg.Snippet),
			link)
		if err := c.addCommentIntents(ctx, msg, set, author, link); err != nil {
			return nil, err
		}

	case domain.EventCommentCreated:
		if err := c.addCommentIntents(ctx, msg, set, author, link); err != nil {
			return nil, err
		}

	case domain.EventMention:
		for _, userID := range msg.MentionedUserIDs {
			set.add(userID, domain.KindMention, domain.PriorityHigh,
				"You were mentioned",
				fmt.Sprintf("%s mentioned you: %s", author, msg.Snippet),
				link)
		}

	default:
		return nil, nil
	}

	return set.intents, nil
}

// addCommentIntents applies the COMMENT_CREATED rules: mentioned users first
// (high priority), then the task's current assignees (medium). The assignee
// set is re-queried from the store; the message's embedded list is never
// trusted. Mentioned users are not re-validated — a deliberate, known gap.
func (c *Classifier) addCommentIntents(ctx context.Context, msg *domain.CommentMessage, set *intentSet, author, link string) error {
	for _, userID := range msg.MentionedUserIDs {
		set.add(userID, domain.KindMention, domain.PriorityHigh,
			"You were mentioned in a comment",
			fmt.Sprintf("%s mentioned you in a comment: %s", author, msg.Snippet),
			link)
	}

	assignees, err := c.assignees.Assignees(ctx, msg.TaskID)
	if err != nil {
		return fmt.Errorf("resolve assignees for task %d: %w", msg.TaskID, err)
	}
	for _, userID := range assignees {
		set.add(userID, domain.KindComment, domain.PriorityMedium,
			"New comment on your task",
			fmt.Sprintf("%s commented on a task you're assigned to: %s", author, msg.Snippet),
			link)
	}
	return nil
}

// TaskIntents builds intents for the task event family.
// Recipients are the task's current assignees except for TASK_UNASSIGNED,
// where the removed users are by definition no longer assignees and the
// message's removed list is the only possible source.
func (c *Classifier) TaskIntents(ctx context.Context, msg *domain.TaskMessage) ([]domain.Intent, error) {
	set := newIntentSet(msg.AuthorID)
	actor := displayName(msg.ActorName)
	link := domain.TaskLink(msg.ProjectID, msg.TaskID)

	var (
		kind     domain.Kind
		priority domain.Priority
		subject  string
		body     string
	)

	switch msg.EventType {
	case domain.EventTaskCreated:
		kind, priority = domain.KindTaskCreated, domain.PriorityMedium
		subject = "You were added to a new task"
		body = fmt.Sprintf("%s created the task %q and assigned it to you.", actor, msg.Title)

	case domain.EventTaskAssigned:
		kind, priority = domain.KindTaskAssigned, domain.PriorityHigh
		subject = "You were assigned to a task"
		body = fmt.Sprintf("%s assigned you to the task %q.", actor, msg.Title)

	case domain.EventTaskCompleted:
		kind, priority = domain.KindTaskCompleted, domain.PriorityLow
		subject = "Task completed"
		body = fmt.Sprintf("%s marked the task %q as completed.", actor, msg.Title)

	case domain.EventTaskUpdated:
		kind, priority = domain.KindTaskUpdated, domain.PriorityLow
		subject = "Task updated"
		body = fmt.Sprintf("%s updated the task %q.", actor, msg.Title)

	case domain.EventStatusUpdated:
		kind, priority = domain.KindStatusUpdated, domain.PriorityMedium
		subject = "Task status changed"
		body = fmt.Sprintf("%s moved the task %q from %s to %s.",
			actor, msg.Title, msg.PreviousStatus, msg.NewStatus)

	case domain.EventTaskUnassigned:
		for _, userID := range msg.RemovedUserIDs {
			set.add(userID, domain.KindTaskUnassigned, domain.PriorityMedium,
				"You were removed from a task",
				fmt.Sprintf("%s removed you from the task %q.", actor, msg.Title),
				link)
		}
		return set.intents, nil

	default:
		return nil, nil
	}

	assignees, err := c.assignees.Assignees(ctx, msg.TaskID)
	if err != nil {
		return nil, fmt.Errorf("resolve assignees for task %d: %w", msg.TaskID, err)
	}
	for _, userID := range assignees {
		set.add(userID, kind, priority, subject, body, link)
	}
	return set.intents, nil
}

func displayName(name string) string {
	if name == "" {
		return "A teammate"
	}
	return name
}
