package main

import (
	"context"
	"io"
	"time"

	"github.com/abduss/gotask/internal/attachment"
	"github.com/abduss/gotask/internal/auth"
	"github.com/abduss/gotask/internal/task"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// Store contracts shared by the Postgres repositories and memstore.

type authStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (auth.User, error)
	FindUserByEmail(ctx context.Context, email string) (auth.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (auth.User, error)
	SetRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	RotateRefreshToken(ctx context.Context, presentedHash, newHash string, expiresAt, now time.Time) (auth.User, error)
	ClearRefreshToken(ctx context.Context, userID uuid.UUID) error
}

type taskStore interface {
	Create(ctx context.Context, userID uuid.UUID, input task.NewTask) (task.Task, error)
	Get(ctx context.Context, taskID uuid.UUID) (task.Task, error)
	List(ctx context.Context, userID uuid.UUID, query task.ListQuery) ([]task.Task, int64, error)
	Update(ctx context.Context, taskID uuid.UUID, update task.Update) (task.Task, error)
	Delete(ctx context.Context, taskID uuid.UUID) error
}

type attachmentStore interface {
	CreateAttachment(ctx context.Context, a attachment.Attachment) (attachment.Attachment, error)
	ListAttachments(ctx context.Context, taskID uuid.UUID) ([]attachment.Attachment, error)
	GetAttachment(ctx context.Context, taskID, attachmentID uuid.UUID) (attachment.Attachment, error)
	DeleteAttachment(ctx context.Context, taskID, attachmentID uuid.UUID) (attachment.Attachment, error)
	DeleteTaskAttachments(ctx context.Context, taskID uuid.UUID) error
}

type objectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}
