// Package memstore keeps users, tasks and attachment metadata in process memory.
// It satisfies the same store contracts as the Postgres repositories, including
// the compare-and-set refresh rotation.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/abduss/gotask/internal/attachment"
	"github.com/abduss/gotask/internal/auth"
	"github.com/abduss/gotask/internal/task"
	"github.com/google/uuid"
)

// Store is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	users       map[uuid.UUID]auth.User
	emails      map[string]uuid.UUID
	tasks       map[uuid.UUID]task.Task
	attachments map[uuid.UUID]attachment.Attachment
	nowFunc     func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:       make(map[uuid.UUID]auth.User),
		emails:      make(map[string]uuid.UUID),
		tasks:       make(map[uuid.UUID]task.Task),
		attachments: make(map[uuid.UUID]attachment.Attachment),
		nowFunc:     func() time.Time { return time.Now().UTC() },
	}
}

// Ping reports only context cancellation; it lets the store stand in for a database in readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}
