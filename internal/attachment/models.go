package attachment

import (
	"time"

	"github.com/google/uuid"
)

// Attachment describes a file stored against a task.
type Attachment struct {
	ID          uuid.UUID `json:"id"`
	TaskID      uuid.UUID `json:"task"`
	ObjectName  string    `json:"-"`
	Filename    string    `json:"filename"`
	SizeBytes   int64     `json:"size"`
	ContentType string    `json:"contentType"`
	Checksum    string    `json:"checksum"`
	CreatedAt   time.Time `json:"createdAt"`
}
