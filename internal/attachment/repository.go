package attachment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

const attachmentColumns = `id, task_id, object_name, filename, size_bytes, content_type, checksum, created_at`

// Repository provides access to attachment metadata.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a new attachment repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateAttachment inserts metadata for a stored object.
func (r *Repository) CreateAttachment(ctx context.Context, a Attachment) (Attachment, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO task_attachments (id, task_id, object_name, filename, size_bytes, content_type, checksum)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + attachmentColumns + `;`

	row := r.pool.QueryRow(ctx, query, a.ID, a.TaskID, a.ObjectName, a.Filename, a.SizeBytes, a.ContentType, a.Checksum)
	stored, err := scanAttachment(row)
	if err != nil {
		return Attachment{}, fmt.Errorf("create attachment: %w", err)
	}
	return stored, nil
}

// ListAttachments returns a task's attachments, newest first.
func (r *Repository) ListAttachments(ctx context.Context, taskID uuid.UUID) ([]Attachment, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `SELECT ` + attachmentColumns + ` FROM task_attachments WHERE task_id = $1 ORDER BY created_at DESC;`

	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var list []Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attachments: %w", err)
	}
	return list, nil
}

// GetAttachment fetches one attachment of a task.
func (r *Repository) GetAttachment(ctx context.Context, taskID, attachmentID uuid.UUID) (Attachment, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `SELECT ` + attachmentColumns + ` FROM task_attachments WHERE id = $1 AND task_id = $2;`

	a, err := scanAttachment(r.pool.QueryRow(ctx, query, attachmentID, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Attachment{}, ErrAttachmentNotFound
		}
		return Attachment{}, fmt.Errorf("get attachment: %w", err)
	}
	return a, nil
}

// DeleteAttachment removes metadata and returns the deleted record.
func (r *Repository) DeleteAttachment(ctx context.Context, taskID, attachmentID uuid.UUID) (Attachment, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `DELETE FROM task_attachments WHERE id = $1 AND task_id = $2 RETURNING ` + attachmentColumns + `;`

	a, err := scanAttachment(r.pool.QueryRow(ctx, query, attachmentID, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Attachment{}, ErrAttachmentNotFound
		}
		return Attachment{}, fmt.Errorf("delete attachment: %w", err)
	}
	return a, nil
}

// DeleteTaskAttachments removes all metadata rows of a task.
func (r *Repository) DeleteTaskAttachments(ctx context.Context, taskID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, `DELETE FROM task_attachments WHERE task_id = $1;`, taskID); err != nil {
		return fmt.Errorf("delete task attachments: %w", err)
	}
	return nil
}

func scanAttachment(row pgx.Row) (Attachment, error) {
	var a Attachment
	err := row.Scan(&a.ID, &a.TaskID, &a.ObjectName, &a.Filename, &a.SizeBytes, &a.ContentType, &a.Checksum, &a.CreatedAt)
	return a, err
}
