package task

import (
	"time"

	"github.com/google/uuid"
)

// Priority ranks a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities low < medium < high.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	}
	return 0
}

// Field limits.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// Task is a work item owned by exactly one user.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    Priority   `json:"priority"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewTask carries the fields of a task being created.
type NewTask struct {
	Title       string
	Description string
	Completed   bool
	DueDate     *time.Time
	Priority    Priority
}

// Update carries a partial modification; nil fields are left untouched.
// ClearDueDate removes the due date and is ignored when DueDate is set.
type Update struct {
	Title        *string
	Description  *string
	Completed    *bool
	DueDate      *time.Time
	ClearDueDate bool
	Priority     *Priority
}

// Apply returns t with the supplied fields replaced.
func (u Update) Apply(t Task) Task {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
	switch {
	case u.DueDate != nil:
		due := *u.DueDate
		t.DueDate = &due
	case u.ClearDueDate:
		t.DueDate = nil
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	return t
}

// Pagination describes the slice of results returned by List.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// Page is one page of an owner's tasks.
type Page struct {
	Tasks      []Task
	Pagination Pagination
}
