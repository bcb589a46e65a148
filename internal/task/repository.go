package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repositoryTimeout = 5 * time.Second

const taskColumns = `id, user_id, title, description, completed, due_date, priority, created_at, updated_at`

var sortColumns = map[string]string{
	SortCreatedAt: "created_at",
	SortUpdatedAt: "updated_at",
	SortDueDate:   "due_date",
	SortPriority:  "CASE priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END",
	SortTitle:     "title",
	SortCompleted: "completed",
}

// Repository allows access to task persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a task repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a task for the owner.
func (r *Repository) Create(ctx context.Context, userID uuid.UUID, input NewTask) (Task, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
INSERT INTO tasks (id, user_id, title, description, completed, due_date, priority)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + taskColumns + `;`

	row := r.pool.QueryRow(ctx, query, uuid.New(), userID, input.Title, input.Description, input.Completed, input.DueDate, string(input.Priority))
	t, err := scanTask(row)
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// Get loads a task by id regardless of owner; ownership is checked by the caller.
func (r *Repository) Get(ctx context.Context, taskID uuid.UUID) (Task, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1;`

	t, err := scanTask(r.pool.QueryRow(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, ErrTaskNotFound
		}
		return Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// List returns the owner's tasks matching q and the total number of matches.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, q ListQuery) ([]Task, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	where := []string{"user_id = $1"}
	args := []any{userID}
	if q.Completed != nil {
		args = append(args, *q.Completed)
		where = append(where, fmt.Sprintf("completed = $%d", len(args)))
	}
	if q.Priority != nil {
		args = append(args, string(*q.Priority))
		where = append(where, fmt.Sprintf("priority = $%d", len(args)))
	}
	filter := strings.Join(where, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE `+filter, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns[SortCreatedAt]
	}
	direction := "ASC"
	if q.SortDesc {
		direction = "DESC"
	}

	args = append(args, q.Limit, q.Offset())
	query := fmt.Sprintf(`
SELECT %s
FROM tasks
WHERE %s
ORDER BY %s %s NULLS LAST, id
LIMIT $%d OFFSET $%d;`, taskColumns, filter, column, direction, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]Task, 0, q.Limit)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, total, nil
}

// Update writes the supplied fields and bumps updated_at.
func (r *Repository) Update(ctx context.Context, taskID uuid.UUID, u Update) (Task, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	var priority *string
	if u.Priority != nil {
		p := string(*u.Priority)
		priority = &p
	}

	query := `
UPDATE tasks
SET title = COALESCE($2, title),
    description = COALESCE($3, description),
    completed = COALESCE($4, completed),
    due_date = CASE WHEN $7::boolean AND $5::timestamptz IS NULL THEN NULL ELSE COALESCE($5::timestamptz, due_date) END,
    priority = COALESCE($6, priority),
    updated_at = NOW()
WHERE id = $1
RETURNING ` + taskColumns + `;`

	t, err := scanTask(r.pool.QueryRow(ctx, query, taskID, u.Title, u.Description, u.Completed, u.DueDate, priority, u.ClearDueDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, ErrTaskNotFound
		}
		return Task{}, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

// Delete removes a task row.
func (r *Repository) Delete(ctx context.Context, taskID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1;`, taskID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (Task, error) {
	var (
		t        Task
		priority string
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.DueDate, &priority, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return Task{}, err
	}
	t.Priority = Priority(priority)
	return t, nil
}
