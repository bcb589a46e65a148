package task

import (
	"errors"

	"github.com/abduss/gotask/internal/apperror"
)

// ErrTaskNotFound is returned by stores when no task has the given id.
var ErrTaskNotFound = errors.New("task not found")

var (
	// ErrNotFound is reported for a task id that does not exist, whoever asks.
	ErrNotFound = apperror.New(apperror.KindNotFound, apperror.CodeResourceNotFound, "Task not found")
	// ErrForbidden is reported when the task exists but belongs to someone else.
	ErrForbidden = apperror.New(apperror.KindForbidden, apperror.CodeForbidden, "Not authorized to access this task")
)
