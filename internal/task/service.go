package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abduss/gotask/internal/apperror"
	"github.com/google/uuid"
)

type repository interface {
	Create(ctx context.Context, userID uuid.UUID, input NewTask) (Task, error)
	Get(ctx context.Context, taskID uuid.UUID) (Task, error)
	List(ctx context.Context, userID uuid.UUID, query ListQuery) ([]Task, int64, error)
	Update(ctx context.Context, taskID uuid.UUID, update Update) (Task, error)
	Delete(ctx context.Context, taskID uuid.UUID) error
}

// DeleteHook runs after authorization and before a task row is removed.
type DeleteHook func(ctx context.Context, taskID uuid.UUID) error

// Service orchestrates task operations.
type Service struct {
	repo        repository
	deleteHooks []DeleteHook
}

// NewService constructs a task service.
func NewService(repo repository) *Service {
	return &Service{repo: repo}
}

// OnDelete registers a hook that cleans up data hanging off a task.
func (s *Service) OnDelete(hook DeleteHook) {
	s.deleteHooks = append(s.deleteHooks, hook)
}

// Authorize loads a task and checks that requesterID owns it.
// A missing task is ErrNotFound for every caller; an existing task owned by
// someone else is ErrForbidden.
func (s *Service) Authorize(ctx context.Context, requesterID, taskID uuid.UUID) (Task, error) {
	t, err := s.repo.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return Task{}, ErrNotFound
		}
		return Task{}, fmt.Errorf("get task: %w", err)
	}
	if t.UserID != requesterID {
		return Task{}, ErrForbidden
	}
	return t, nil
}

// Create stores a new task owned by userID.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input NewTask) (Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Priority == "" {
		input.Priority = PriorityMedium
	}
	if err := validateFields(&input.Title, &input.Description, &input.Priority); err != nil {
		return Task{}, err
	}
	if input.Title == "" {
		return Task{}, apperror.Validation("Please add a title")
	}

	t, err := s.repo.Create(ctx, userID, input)
	if err != nil {
		return Task{}, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// List returns one page of the owner's tasks. Other owners' rows are never read.
func (s *Service) List(ctx context.Context, userID uuid.UUID, query ListQuery) (Page, error) {
	tasks, total, err := s.repo.List(ctx, userID, query)
	if err != nil {
		return Page{}, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return Page{Tasks: tasks, Pagination: NewPagination(total, query)}, nil
}

// Get returns a task the requester owns.
func (s *Service) Get(ctx context.Context, requesterID, taskID uuid.UUID) (Task, error) {
	return s.Authorize(ctx, requesterID, taskID)
}

// Update applies a partial update to a task the requester owns.
func (s *Service) Update(ctx context.Context, requesterID, taskID uuid.UUID, update Update) (Task, error) {
	if update.Title != nil {
		trimmed := strings.TrimSpace(*update.Title)
		if trimmed == "" {
			return Task{}, apperror.Validation("Please add a title")
		}
		update.Title = &trimmed
	}
	if err := validateFields(update.Title, update.Description, update.Priority); err != nil {
		return Task{}, err
	}

	if _, err := s.Authorize(ctx, requesterID, taskID); err != nil {
		return Task{}, err
	}

	t, err := s.repo.Update(ctx, taskID, update)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return Task{}, ErrNotFound
		}
		return Task{}, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

// Delete removes a task the requester owns, running delete hooks first.
func (s *Service) Delete(ctx context.Context, requesterID, taskID uuid.UUID) error {
	if _, err := s.Authorize(ctx, requesterID, taskID); err != nil {
		return err
	}

	for _, hook := range s.deleteHooks {
		if err := hook(ctx, taskID); err != nil {
			return fmt.Errorf("task delete hook: %w", err)
		}
	}

	if err := s.repo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func validateFields(title, description *string, priority *Priority) error {
	if title != nil && len([]rune(*title)) > MaxTitleLength {
		return apperror.Validation(fmt.Sprintf("title can not be more than %d characters", MaxTitleLength))
	}
	if description != nil && len([]rune(*description)) > MaxDescriptionLength {
		return apperror.Validation(fmt.Sprintf("description can not be more than %d characters", MaxDescriptionLength))
	}
	if priority != nil && !priority.Valid() {
		return apperror.Validation("priority must be one of [low medium high]")
	}
	return nil
}
