package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents an application user as held by the credential store.
// PasswordHash is populated only by FindUserByEmail.
type User struct {
	ID                    uuid.UUID
	Name                  string
	Email                 string
	PasswordHash          string
	RefreshTokenHash      string
	RefreshTokenExpiresAt *time.Time
	CreatedAt             time.Time
}

// PublicUser is the outward profile; secrets have no field here.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public strips credential material for response payloads.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.UTC(),
	}
}

// TokenPair bundles access and refresh tokens.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}
