package attachment

import (
	"errors"

	"github.com/abduss/gotask/internal/apperror"
)

// ErrAttachmentNotFound is returned by stores when the attachment is missing.
var ErrAttachmentNotFound = errors.New("attachment not found")

var (
	// ErrNotFound is reported for an attachment id that is not on the task.
	ErrNotFound = apperror.New(apperror.KindNotFound, apperror.CodeResourceNotFound, "Attachment not found")
	// ErrFileTooLarge signals that the upload exceeds the configured limit.
	ErrFileTooLarge = apperror.Validation("File exceeds the upload size limit")
	// ErrMissingFile is returned when the multipart field is absent.
	ErrMissingFile = apperror.Validation("Please add a file")
)
