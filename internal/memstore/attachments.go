package memstore

import (
	"context"
	"sort"

	"github.com/abduss/gotask/internal/attachment"
	"github.com/google/uuid"
)

// CreateAttachment records attachment metadata.
func (s *Store) CreateAttachment(_ context.Context, a attachment.Attachment) (attachment.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.CreatedAt = s.nowFunc()
	s.attachments[a.ID] = a
	return a, nil
}

// ListAttachments returns a task's attachments, newest first.
func (s *Store) ListAttachments(_ context.Context, taskID uuid.UUID) ([]attachment.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]attachment.Attachment, 0)
	for _, a := range s.attachments {
		if a.TaskID == taskID {
			list = append(list, a)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

// GetAttachment fetches one attachment of a task.
func (s *Store) GetAttachment(_ context.Context, taskID, attachmentID uuid.UUID) (attachment.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.attachments[attachmentID]
	if !ok || a.TaskID != taskID {
		return attachment.Attachment{}, attachment.ErrAttachmentNotFound
	}
	return a, nil
}

// DeleteAttachment removes and returns one attachment record.
func (s *Store) DeleteAttachment(_ context.Context, taskID, attachmentID uuid.UUID) (attachment.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.attachments[attachmentID]
	if !ok || a.TaskID != taskID {
		return attachment.Attachment{}, attachment.ErrAttachmentNotFound
	}
	delete(s.attachments, attachmentID)
	return a, nil
}

// DeleteTaskAttachments removes every attachment record of a task.
func (s *Store) DeleteTaskAttachments(_ context.Context, taskID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, a := range s.attachments {
		if a.TaskID == taskID {
			delete(s.attachments, id)
		}
	}
	return nil
}
