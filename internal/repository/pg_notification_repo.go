package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
)

type pgNotificationRepository struct {
	pool *pgxpool.Pool
}

// NewPgNotificationRepository returns a NotificationRepository backed by PostgreSQL.
func NewPgNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &pgNotificationRepository{pool: pool}
}

func (r *pgNotificationRepository) CreateBatch(ctx context.Context, notifications []*domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, n := range notifications {
		_, err = tx.Exec(ctx, `
			INSERT INTO notifications
				(id, user_id, author_id, kind, priority, subject, body, link,
				 channels, read, dismissed, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			n.ID, n.UserID, n.AuthorID, n.Kind, n.Priority, n.Subject, n.Body, n.Link,
			channelStrings(n.Channels), n.Read, n.Dismissed, n.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit notifications: %w", err)
	}
	return nil
}

func (r *pgNotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, author_id, kind, priority, subject, body, link,
		       channels, read, dismissed, created_at, read_at
		FROM notifications WHERE id = $1`, id)

	n, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return n, err
}

func (r *pgNotificationRepository) List(ctx context.Context, f domain.ListFilter) ([]*domain.Notification, int, error) {
	where := " WHERE user_id = $1 AND dismissed = FALSE"
	args := []any{f.UserID}
	if f.UnreadOnly {
		where += " AND read = FALSE"
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM notifications"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	offset := (f.Page - 1) * f.Limit
	args = append(args, f.Limit, offset)
	query := fmt.Sprintf(`
		SELECT id, user_id, author_id, kind, priority, subject, body, link,
		       channels, read, dismissed, created_at, read_at
		FROM notifications%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, n)
	}
	return notifications, total, rows.Err()
}

func (r *pgNotificationRepository) MarkRead(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET read = TRUE, read_at = NOW()
		WHERE id = $1 AND read = FALSE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.exists(ctx, id)
	}
	return nil
}

func (r *pgNotificationRepository) Dismiss(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET dismissed = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// exists distinguishes "already read" (fine, idempotent) from "no such row".
func (r *pgNotificationRepository) exists(ctx context.Context, id string) error {
	var one int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM notifications WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// ---- helpers ----

func channelStrings(channels []domain.Channel) []string {
	out := make([]string, len(channels))
	for i, c := range channels {
		out[i] = string(c)
	}
	return out
}

func toChannels(raw []string) []domain.Channel {
	out := make([]domain.Channel, len(raw))
	for i, s := range raw {
		out[i] = domain.Channel(s)
	}
	return out
}

// scanNotification reads a single notification row from any pgx row type.
func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	var channels []string
	err := row.Scan(
		&n.ID, &n.UserID, &n.AuthorID, &n.Kind, &n.Priority,
		&n.Subject, &n.Body, &n.Link, &channels,
		&n.Read, &n.Dismissed, &n.CreatedAt, &n.ReadAt,
	)
	if err != nil {
		return nil, err
	}
	n.Channels = toChannels(channels)
	return &n, nil
}
