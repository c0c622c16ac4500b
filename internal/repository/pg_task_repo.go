package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
)

type pgTaskRepository struct {
	pool *pgxpool.Pool
}

// NewPgTaskRepository returns a TaskRepository backed by PostgreSQL.
func NewPgTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &pgTaskRepository{pool: pool}
}

func (r *pgTaskRepository) Assignees(ctx context.Context, taskID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM task_assignees WHERE task_id = $1 ORDER BY user_id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("query assignees: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *pgTaskRepository) FindOverdue(ctx context.Context, cutoff time.Time) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, project_id, title, status, due_at, rescheduled, pre_due_sent
		FROM tasks
		WHERE due_at IS NOT NULL
		  AND due_at <= $1
		  AND status <> 'completed'
		ORDER BY due_at ASC
		LIMIT 500`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("find overdue tasks: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *pgTaskRepository) FindPreDueCandidates(ctx context.Context, now, until time.Time) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, project_id, title, status, due_at, rescheduled, pre_due_sent
		FROM tasks
		WHERE due_at IS NOT NULL
		  AND due_at > $1
		  AND due_at <= $2
		  AND pre_due_sent = FALSE
		  AND status <> 'completed'
		ORDER BY due_at ASC
		LIMIT 500`, now, until)
	if err != nil {
		return nil, fmt.Errorf("find pre-due candidates: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *pgTaskRepository) MarkPreDueSent(ctx context.Context, taskID int64) error {
	// Conditional write: a concurrent run that already committed this epoch
	// makes this a no-op rather than an error.
	_, err := r.pool.Exec(ctx, `
		UPDATE tasks SET pre_due_sent = TRUE
		WHERE id = $1 AND pre_due_sent = FALSE`, taskID)
	return err
}

func scanTasks(rows pgx.Rows) ([]*domain.Task, error) {
	var result []*domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(
			&t.ID, &t.ProjectID, &t.Title, &t.Status,
			&t.DueAt, &t.Rescheduled, &t.PreDueSent,
		); err != nil {
			return nil, err
		}
		result = append(result, &t)
	}
	return result, rows.Err()
}

type pgUserDirectory struct {
	pool *pgxpool.Pool
}

// NewPgUserDirectory returns a UserDirectory backed by the replicated users table.
func NewPgUserDirectory(pool *pgxpool.Pool) UserDirectory {
	return &pgUserDirectory{pool: pool}
}

func (r *pgUserDirectory) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, email, display_name FROM users WHERE id = $1`, id)

	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
