package task

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abduss/gotask/internal/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDefaults(t *testing.T) {
	service := NewService(newMemoryRepo())
	owner := uuid.New()

	created, err := service.Create(context.Background(), owner, NewTask{Title: "  Buy milk  "})
	require.NoError(t, err)

	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, PriorityMedium, created.Priority)
	assert.False(t, created.Completed)
	assert.Equal(t, owner, created.UserID)
}

func TestCreateValidation(t *testing.T) {
	service := NewService(newMemoryRepo())

	cases := map[string]NewTask{
		"blank title":      {Title: "   "},
		"long title":       {Title: strings.Repeat("a", MaxTitleLength+1)},
		"long description": {Title: "ok", Description: strings.Repeat("a", MaxDescriptionLength+1)},
		"bad priority":     {Title: "ok", Priority: "urgent"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := service.Create(context.Background(), uuid.New(), input)
			var appErr *apperror.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperror.KindValidation, appErr.Kind)
		})
	}
}

func TestAuthorizeChecksExistenceBeforeOwnership(t *testing.T) {
	service := NewService(newMemoryRepo())
	ann, bob := uuid.New(), uuid.New()

	task, err := service.Create(context.Background(), ann, NewTask{Title: "Ann's"})
	require.NoError(t, err)

	got, err := service.Authorize(context.Background(), ann, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	_, err = service.Authorize(context.Background(), bob, task.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	for _, requester := range []uuid.UUID{ann, bob} {
		_, err = service.Authorize(context.Background(), requester, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestGuardAppliesToEveryTaskOperation(t *testing.T) {
	repo := newMemoryRepo()
	service := NewService(repo)
	ann, bob := uuid.New(), uuid.New()

	task, err := service.Create(context.Background(), ann, NewTask{Title: "Ann's"})
	require.NoError(t, err)

	_, err = service.Get(context.Background(), bob, task.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	title := "stolen"
	_, err = service.Update(context.Background(), bob, task.ID, Update{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	err = service.Delete(context.Background(), bob, task.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	stored, err := repo.Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann's", stored.Title)
}

func TestUpdateIsPartial(t *testing.T) {
	service := NewService(newMemoryRepo())
	owner := uuid.New()

	task, err := service.Create(context.Background(), owner, NewTask{Title: "Write report", Description: "Q3", Priority: PriorityHigh})
	require.NoError(t, err)

	done := true
	updated, err := service.Update(context.Background(), owner, task.ID, Update{Completed: &done})
	require.NoError(t, err)

	assert.True(t, updated.Completed)
	assert.Equal(t, "Write report", updated.Title)
	assert.Equal(t, "Q3", updated.Description)
	assert.Equal(t, PriorityHigh, updated.Priority)
	assert.Equal(t, owner, updated.UserID)
}

func TestUpdateClearsDueDate(t *testing.T) {
	service := NewService(newMemoryRepo())
	owner := uuid.New()
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	task, err := service.Create(context.Background(), owner, NewTask{Title: "File taxes", DueDate: &due})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)

	done := true
	kept, err := service.Update(context.Background(), owner, task.ID, Update{Completed: &done})
	require.NoError(t, err)
	require.NotNil(t, kept.DueDate)
	assert.True(t, due.Equal(*kept.DueDate))

	cleared, err := service.Update(context.Background(), owner, task.ID, Update{ClearDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.DueDate)
	assert.True(t, cleared.Completed)
}

func TestUpdateRejectsBlankTitle(t *testing.T) {
	service := NewService(newMemoryRepo())
	owner := uuid.New()
	task, err := service.Create(context.Background(), owner, NewTask{Title: "x"})
	require.NoError(t, err)

	blank := " "
	_, err = service.Update(context.Background(), owner, task.ID, Update{Title: &blank})
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
}

func TestDeleteRunsHooks(t *testing.T) {
	service := NewService(newMemoryRepo())
	owner := uuid.New()
	task, err := service.Create(context.Background(), owner, NewTask{Title: "x"})
	require.NoError(t, err)

	var cleaned []uuid.UUID
	service.OnDelete(func(ctx context.Context, taskID uuid.UUID) error {
		cleaned = append(cleaned, taskID)
		return nil
	})

	require.NoError(t, service.Delete(context.Background(), owner, task.ID))
	assert.Equal(t, []uuid.UUID{task.ID}, cleaned)

	assert.ErrorIs(t, service.Delete(context.Background(), owner, task.ID), ErrNotFound)
	assert.Len(t, cleaned, 1)
}

func TestDeleteStopsWhenHookFails(t *testing.T) {
	repo := newMemoryRepo()
	service := NewService(repo)
	owner := uuid.New()
	task, err := service.Create(context.Background(), owner, NewTask{Title: "x"})
	require.NoError(t, err)

	service.OnDelete(func(ctx context.Context, taskID uuid.UUID) error {
		return errors.New("object store down")
	})

	assert.Error(t, service.Delete(context.Background(), owner, task.ID))
	_, err = repo.Get(context.Background(), task.ID)
	assert.NoError(t, err)
}

func TestListScopesToOwner(t *testing.T) {
	service := NewService(newMemoryRepo())
	ann, bob := uuid.New(), uuid.New()

	for i := 0; i < 3; i++ {
		_, err := service.Create(context.Background(), ann, NewTask{Title: "ann", Priority: PriorityLow})
		require.NoError(t, err)
	}
	_, err := service.Create(context.Background(), bob, NewTask{Title: "bob", Priority: PriorityLow})
	require.NoError(t, err)

	q := DefaultListQuery()
	q.Limit = 2
	page, err := service.List(context.Background(), ann, q)
	require.NoError(t, err)

	assert.Len(t, page.Tasks, 2)
	assert.Equal(t, Pagination{Total: 3, Page: 1, Limit: 2, TotalPages: 2}, page.Pagination)
	for _, task := range page.Tasks {
		assert.Equal(t, ann, task.UserID)
	}

	empty, err := service.List(context.Background(), uuid.New(), DefaultListQuery())
	require.NoError(t, err)
	assert.NotNil(t, empty.Tasks)
	assert.Empty(t, empty.Tasks)
}

// memoryRepo implements repository for tests.
type memoryRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]Task
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{tasks: make(map[uuid.UUID]Task)}
}

func (m *memoryRepo) Create(ctx context.Context, userID uuid.UUID, input NewTask) (Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().Add(time.Duration(len(m.tasks)) * time.Millisecond)
	task := Task{
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
	m.tasks[task.ID] = task
	return task, nil
}

func (m *memoryRepo) Get(ctx context.Context, taskID uuid.UUID) (Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[taskID]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	return task, nil
}

func (m *memoryRepo) List(ctx context.Context, userID uuid.UUID, q ListQuery) ([]Task, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []Task
	for _, task := range m.tasks {
		if task.UserID != userID {
			continue
		}
		if q.Completed != nil && task.Completed != *q.Completed {
			continue
		}
		if q.Priority != nil && task.Priority != *q.Priority {
			continue
		}
		matched = append(matched, task)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := q.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *memoryRepo) Update(ctx context.Context, taskID uuid.UUID, u Update) (Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[taskID]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	task = u.Apply(task)
	task.UpdatedAt = time.Now()
	m.tasks[taskID] = task
	return task, nil
}

func (m *memoryRepo) Delete(ctx context.Context, taskID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[taskID]; !ok {
		return ErrTaskNotFound
	}
	delete(m.tasks, taskID)
	return nil
}
