package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abduss/gotask/internal/apperror"
	"github.com/abduss/gotask/internal/config"
	"github.com/google/uuid"
)

// userStore abstracts the credential store.
type userStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (User, error)
	FindUserByEmail(ctx context.Context, email string) (User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (User, error)
	SetRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	// RotateRefreshToken replaces presentedHash with newHash in a single conditional update,
	// provided presentedHash is still current and unexpired at now.
	RotateRefreshToken(ctx context.Context, presentedHash, newHash string, expiresAt, now time.Time) (User, error)
	ClearRefreshToken(ctx context.Context, userID uuid.UUID) error
}

// Service encapsulates authentication use cases.
type Service struct {
	store     userStore
	hasher    *PasswordHasher
	tokens    *TokenIssuer
	nowFunc   func() time.Time
	dummyHash string
}

// NewService creates a Service with dependencies.
func NewService(store userStore, cfg config.AuthConfig) *Service {
	hasher := NewPasswordHasher(cfg.BcryptCost)
	// Compared against when the email is unknown so both login failures cost one bcrypt round.
	dummy, _ := hasher.Hash("gotask-timing-equalizer")
	return &Service{
		store:     store,
		hasher:    hasher,
		tokens:    NewTokenIssuer(cfg),
		nowFunc:   time.Now,
		dummyHash: dummy,
	}
}

// RegisterInput carries data for user registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult contains user and token information.
type AuthResult struct {
	User   User
	Tokens TokenPair
}

// Register creates a new user, hashing the password and issuing tokens.
func (s *Service) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return AuthResult{}, ErrNameRequired
	}

	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			return AuthResult{}, err
		}
		return AuthResult{}, apperror.Server(fmt.Errorf("hash password: %w", err))
	}

	user, err := s.store.CreateUser(ctx, name, normalizeEmail(input.Email), hashedPassword)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return AuthResult{}, ErrEmailAlreadyExists
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// Login authenticates credentials and issues a fresh token pair, replacing any prior refresh token.
func (s *Service) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	user, err := s.store.FindUserByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.hasher.Verify(input.Password, s.dummyHash)
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// Refresh exchanges a refresh token for a new pair. The presented token stops working
// as soon as the exchange succeeds; a concurrent exchange of the same token fails.
func (s *Service) Refresh(ctx context.Context, plainRefreshToken string) (AuthResult, error) {
	plainRefreshToken = strings.TrimSpace(plainRefreshToken)
	if plainRefreshToken == "" {
		return AuthResult{}, ErrMissingRefreshToken
	}

	next, err := s.tokens.NewRefreshToken()
	if err != nil {
		return AuthResult{}, apperror.Server(fmt.Errorf("generate refresh token: %w", err))
	}

	user, err := s.store.RotateRefreshToken(ctx, HashRefreshToken(plainRefreshToken), next.Hash, next.ExpiresAt, s.nowFunc())
	if err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) {
			return AuthResult{}, ErrInvalidRefreshToken
		}
		return AuthResult{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	accessToken, accessExpiry, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return AuthResult{}, apperror.Server(err)
	}

	return AuthResult{
		User: user,
		Tokens: TokenPair{
			AccessToken:        accessToken,
			AccessTokenExpiry:  accessExpiry,
			RefreshToken:       next.Plain,
			RefreshTokenExpiry: next.ExpiresAt,
		},
	}, nil
}

// Logout clears the stored refresh token. Calling it again is harmless.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.ClearRefreshToken(ctx, userID); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

// Authenticate verifies an access token and resolves it to a stored user.
// It performs no writes.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (User, error) {
	if strings.TrimSpace(accessToken) == "" {
		return User{}, ErrNotAuthenticated
	}

	userID, err := s.tokens.ParseAccessToken(accessToken)
	if err != nil {
		return User{}, err
	}

	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrNotAuthenticated.Wrap(err)
		}
		return User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// Me returns the profile of the authenticated user.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (User, error) {
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrNotAuthenticated.Wrap(err)
		}
		return User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *Service) issueTokens(ctx context.Context, user User) (AuthResult, error) {
	accessToken, accessExpiry, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return AuthResult{}, apperror.Server(err)
	}

	refresh, err := s.tokens.NewRefreshToken()
	if err != nil {
		return AuthResult{}, apperror.Server(fmt.Errorf("generate refresh token: %w", err))
	}

	if err := s.store.SetRefreshToken(ctx, user.ID, refresh.Hash, refresh.ExpiresAt); err != nil {
		return AuthResult{}, fmt.Errorf("store refresh token: %w", err)
	}

	user.PasswordHash = ""

	return AuthResult{
		User: user,
		Tokens: TokenPair{
			AccessToken:        accessToken,
			AccessTokenExpiry:  accessExpiry,
			RefreshToken:       refresh.Plain,
			RefreshTokenExpiry: refresh.ExpiresAt,
		},
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
