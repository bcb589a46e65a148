package memstore

import (
	"context"
	"time"

	"github.com/abduss/gotask/internal/auth"
	"github.com/google/uuid"
)

// CreateUser stores a new user; emails are unique.
func (s *Store) CreateUser(_ context.Context, name, email, passwordHash string) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[email]; taken {
		return auth.User{}, auth.ErrEmailAlreadyExists
	}
	user := auth.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    s.nowFunc(),
	}
	s.users[user.ID] = user
	s.emails[email] = user.ID
	return publicUser(user), nil
}

// FindUserByEmail includes the password hash.
func (s *Store) FindUserByEmail(_ context.Context, email string) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	user := s.users[id]
	user.RefreshTokenHash = ""
	user.RefreshTokenExpiresAt = nil
	return user, nil
}

// FindUserByID omits credential material.
func (s *Store) FindUserByID(_ context.Context, id uuid.UUID) (auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return publicUser(user), nil
}

// DeleteUser removes a user and their tasks.
func (s *Store) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	delete(s.users, id)
	delete(s.emails, user.Email)
	for taskID, t := range s.tasks {
		if t.UserID == id {
			delete(s.tasks, taskID)
		}
	}
	return nil
}

// SetRefreshToken replaces the user's refresh token slot.
func (s *Store) SetRefreshToken(_ context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return auth.ErrUserNotFound
	}
	user.RefreshTokenHash = tokenHash
	user.RefreshTokenExpiresAt = &expiresAt
	s.users[userID] = user
	return nil
}

// RotateRefreshToken is a compare-and-set on the refresh slot, performed under the write lock.
func (s *Store) RotateRefreshToken(_ context.Context, presentedHash, newHash string, expiresAt, now time.Time) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if presentedHash == "" {
		return auth.User{}, auth.ErrRefreshTokenNotFound
	}
	for id, user := range s.users {
		if user.RefreshTokenHash != presentedHash {
			continue
		}
		if user.RefreshTokenExpiresAt == nil || !user.RefreshTokenExpiresAt.After(now) {
			return auth.User{}, auth.ErrRefreshTokenNotFound
		}
		user.RefreshTokenHash = newHash
		user.RefreshTokenExpiresAt = &expiresAt
		s.users[id] = user
		return publicUser(user), nil
	}
	return auth.User{}, auth.ErrRefreshTokenNotFound
}

// ClearRefreshToken empties the refresh slot; clearing twice is fine.
func (s *Store) ClearRefreshToken(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil
	}
	user.RefreshTokenHash = ""
	user.RefreshTokenExpiresAt = nil
	s.users[userID] = user
	return nil
}

func publicUser(user auth.User) auth.User {
	user.PasswordHash = ""
	user.RefreshTokenHash = ""
	user.RefreshTokenExpiresAt = nil
	return user
}
