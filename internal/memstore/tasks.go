package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/abduss/gotask/internal/task"
	"github.com/google/uuid"
)

// Create stores a task for the owner.
func (s *Store) Create(_ context.Context, userID uuid.UUID, input task.NewTask) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	t := task.Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
		DueDate:     input.DueDate,
		Priority:    input.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.tasks[t.ID] = t
	return t, nil
}

// Get loads a task by id regardless of owner.
func (s *Store) Get(_ context.Context, taskID uuid.UUID) (task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return task.Task{}, task.ErrTaskNotFound
	}
	return t, nil
}

// List filters, sorts and pages the owner's tasks.
func (s *Store) List(_ context.Context, userID uuid.UUID, q task.ListQuery) ([]task.Task, int64, error) {
	s.mu.RLock()
	matched := make([]task.Task, 0)
	for _, t := range s.tasks {
		if t.UserID != userID {
			continue
		}
		if q.Completed != nil && t.Completed != *q.Completed {
			continue
		}
		if q.Priority != nil && t.Priority != *q.Priority {
			continue
		}
		matched = append(matched, t)
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if q.SortBy == task.SortDueDate && (a.DueDate == nil) != (b.DueDate == nil) {
			return a.DueDate != nil
		}
		c := compareTasks(a, b, q.SortBy)
		if c == 0 {
			return a.ID.String() < b.ID.String()
		}
		if q.SortDesc {
			return c > 0
		}
		return c < 0
	})

	total := int64(len(matched))
	start := q.Offset()
	if start < 0 || start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// Update applies the supplied fields.
func (s *Store) Update(_ context.Context, taskID uuid.UUID, u task.Update) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]
	if !ok {
		return task.Task{}, task.ErrTaskNotFound
	}
	t = u.Apply(t)
	t.UpdatedAt = s.nowFunc()
	s.tasks[taskID] = t
	return t, nil
}

// Delete removes a task.
func (s *Store) Delete(_ context.Context, taskID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[taskID]; !ok {
		return task.ErrTaskNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

// compareTasks orders a against b on field. Missing due dates are handled by the caller.
func compareTasks(a, b task.Task, field string) int {
	switch field {
	case task.SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case task.SortDueDate:
		if a.DueDate == nil || b.DueDate == nil {
			return 0
		}
		return a.DueDate.Compare(*b.DueDate)
	case task.SortPriority:
		return a.Priority.Rank() - b.Priority.Rank()
	case task.SortTitle:
		return strings.Compare(a.Title, b.Title)
	case task.SortCompleted:
		switch {
		case a.Completed == b.Completed:
			return 0
		case a.Completed:
			return 1
		}
		return -1
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}
