package attachment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/abduss/gotask/internal/task"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

const defaultMaxFileSize = 10 << 20

type metadataStore interface {
	CreateAttachment(ctx context.Context, a Attachment) (Attachment, error)
	ListAttachments(ctx context.Context, taskID uuid.UUID) ([]Attachment, error)
	GetAttachment(ctx context.Context, taskID, attachmentID uuid.UUID) (Attachment, error)
	DeleteAttachment(ctx context.Context, taskID, attachmentID uuid.UUID) (Attachment, error)
	DeleteTaskAttachments(ctx context.Context, taskID uuid.UUID) error
}

type objectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// taskGuard resolves a task the requester owns, or fails with the task package's not-found/forbidden errors.
type taskGuard interface {
	Authorize(ctx context.Context, requesterID, taskID uuid.UUID) (task.Task, error)
}

// Service manages attachment lifecycle operations.
type Service struct {
	repo         metadataStore
	tasks        taskGuard
	objectStore  objectStore
	objectBucket string
	maxFileSize  int64
}

// NewService constructs an attachment service. A non-positive maxFileSize selects the 10 MiB default.
func NewService(repo metadataStore, tasks taskGuard, store objectStore, objectBucket string, maxFileSize int64) *Service {
	if maxFileSize <= 0 {
		maxFileSize = defaultMaxFileSize
	}
	return &Service{
		repo:         repo,
		tasks:        tasks,
		objectStore:  store,
		objectBucket: objectBucket,
		maxFileSize:  maxFileSize,
	}
}

// Upload stores the file contents and records its metadata against the task.
func (s *Service) Upload(ctx context.Context, requesterID, taskID uuid.UUID, fileHeader *multipart.FileHeader) (Attachment, error) {
	if _, err := s.tasks.Authorize(ctx, requesterID, taskID); err != nil {
		return Attachment{}, err
	}
	if fileHeader == nil {
		return Attachment{}, ErrMissingFile
	}
	if fileHeader.Size > s.maxFileSize {
		return Attachment{}, ErrFileTooLarge
	}

	attachmentID := uuid.New()
	objectName := fmt.Sprintf("tasks/%s/%s", taskID, attachmentID)

	file, err := fileHeader.Open()
	if err != nil {
		return Attachment{}, fmt.Errorf("open upload file: %w", err)
	}
	defer file.Close()

	hasher := sha256.New()
	reader := io.TeeReader(file, hasher)

	putOpts := minio.PutObjectOptions{ContentType: detectContentType(fileHeader)}
	info, err := s.objectStore.PutObject(ctx, s.objectBucket, objectName, reader, fileHeader.Size, putOpts)
	if err != nil {
		return Attachment{}, fmt.Errorf("store object: %w", err)
	}

	size := info.Size
	if size <= 0 {
		size = fileHeader.Size
	}
	if size > s.maxFileSize {
		_ = s.objectStore.RemoveObject(ctx, s.objectBucket, objectName, minio.RemoveObjectOptions{})
		return Attachment{}, ErrFileTooLarge
	}

	stored, err := s.repo.CreateAttachment(ctx, Attachment{
		ID:          attachmentID,
		TaskID:      taskID,
		ObjectName:  objectName,
		Filename:    sanitizeFilename(fileHeader.Filename),
		SizeBytes:   size,
		ContentType: putOpts.ContentType,
		Checksum:    hex.EncodeToString(hasher.Sum(nil)),
	})
	if err != nil {
		_ = s.objectStore.RemoveObject(ctx, s.objectBucket, objectName, minio.RemoveObjectOptions{})
		return Attachment{}, fmt.Errorf("record attachment: %w", err)
	}

	return stored, nil
}

// List returns the attachments of a task the requester owns.
func (s *Service) List(ctx context.Context, requesterID, taskID uuid.UUID) ([]Attachment, error) {
	if _, err := s.tasks.Authorize(ctx, requesterID, taskID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListAttachments(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	if list == nil {
		list = []Attachment{}
	}
	return list, nil
}

// Download returns the attachment metadata and a reader over its contents. The caller closes the reader.
func (s *Service) Download(ctx context.Context, requesterID, taskID, attachmentID uuid.UUID) (Attachment, io.ReadCloser, error) {
	if _, err := s.tasks.Authorize(ctx, requesterID, taskID); err != nil {
		return Attachment{}, nil, err
	}

	meta, err := s.repo.GetAttachment(ctx, taskID, attachmentID)
	if err != nil {
		return Attachment{}, nil, translateNotFound(err)
	}

	object, err := s.objectStore.GetObject(ctx, s.objectBucket, meta.ObjectName, minio.GetObjectOptions{})
	if err != nil {
		return Attachment{}, nil, fmt.Errorf("fetch object: %w", err)
	}
	return meta, object, nil
}

// Delete removes one attachment. The object is removed before the metadata row;
// a failed removal leaves the attachment listed.
func (s *Service) Delete(ctx context.Context, requesterID, taskID, attachmentID uuid.UUID) error {
	if _, err := s.tasks.Authorize(ctx, requesterID, taskID); err != nil {
		return err
	}

	meta, err := s.repo.GetAttachment(ctx, taskID, attachmentID)
	if err != nil {
		return translateNotFound(err)
	}

	if err := s.objectStore.RemoveObject(ctx, s.objectBucket, meta.ObjectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}

	if _, err := s.repo.DeleteAttachment(ctx, taskID, attachmentID); err != nil {
		return translateNotFound(err)
	}
	return nil
}

// DeleteForTask drops every attachment of a task. It is registered as a task delete hook
// and runs after the task's ownership has already been checked.
func (s *Service) DeleteForTask(ctx context.Context, taskID uuid.UUID) error {
	list, err := s.repo.ListAttachments(ctx, taskID)
	if err != nil {
		return fmt.Errorf("list task attachments: %w", err)
	}
	for _, meta := range list {
		if err := s.objectStore.RemoveObject(ctx, s.objectBucket, meta.ObjectName, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("remove object %s: %w", meta.ObjectName, err)
		}
	}
	if err := s.repo.DeleteTaskAttachments(ctx, taskID); err != nil {
		return fmt.Errorf("delete task attachments: %w", err)
	}
	return nil
}

func detectContentType(fileHeader *multipart.FileHeader) string {
	if contentType := fileHeader.Header.Get("Content-Type"); contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return "upload"
	}
	return name
}

func translateNotFound(err error) error {
	if errors.Is(err, ErrAttachmentNotFound) {
		return ErrNotFound
	}
	return err
}
