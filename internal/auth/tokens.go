package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/abduss/gotask/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const refreshTokenBytes = 32

// AccessClaims is the signed payload of an access token.
type AccessClaims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// RefreshToken is a freshly minted opaque token. Plain goes to the client once; only Hash is stored.
type RefreshToken struct {
	Plain     string
	Hash      string
	ExpiresAt time.Time
}

// TokenIssuer signs access tokens and mints refresh tokens.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	nowFunc    func() time.Time
	parser     *jwt.Parser
}

// NewTokenIssuer builds an issuer from immutable auth configuration.
func NewTokenIssuer(cfg config.AuthConfig) *TokenIssuer {
	t := &TokenIssuer{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		nowFunc:    time.Now,
	}
	t.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return t.nowFunc() }),
	)
	return t
}

// IssueAccessToken signs {id: userID} with an expiry claim.
func (t *TokenIssuer) IssueAccessToken(userID uuid.UUID) (string, time.Time, error) {
	now := t.nowFunc()
	expiresAt := now.Add(t.accessTTL)

	claims := AccessClaims{
		ID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseAccessToken verifies signature and expiry and returns the embedded user id.
// Failures are ErrTokenExpired or ErrTokenInvalid wrapping the parser error.
func (t *TokenIssuer) ParseAccessToken(tokenString string) (uuid.UUID, error) {
	claims := &AccessClaims{}
	_, err := t.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrTokenExpired.Wrap(err)
		}
		return uuid.Nil, ErrTokenInvalid.Wrap(err)
	}

	userID, err := uuid.Parse(claims.ID)
	if err != nil {
		return uuid.Nil, ErrTokenInvalid.Wrap(err)
	}
	return userID, nil
}

// NewRefreshToken generates 32 random bytes, hex-encodes them and computes the storage hash.
func (t *TokenIssuer) NewRefreshToken() (RefreshToken, error) {
	raw := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return RefreshToken{}, fmt.Errorf("read random: %w", err)
	}
	plain := hex.EncodeToString(raw)
	return RefreshToken{
		Plain:     plain,
		Hash:      HashRefreshToken(plain),
		ExpiresAt: t.nowFunc().Add(t.refreshTTL),
	}, nil
}

// HashRefreshToken returns the SHA-256 hex digest used to look up refresh tokens.
func HashRefreshToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
