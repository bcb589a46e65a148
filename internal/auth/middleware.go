package auth

import (
	"errors"
	"strings"

	"github.com/abduss/gotask/internal/httpx"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type contextKey string

const userContextKey contextKey = "gotaskUser"

// ContextUser represents the authenticated principal stored in the request context.
type ContextUser struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// AuthMiddleware resolves the caller from the access token and injects it into the context.
// The token is taken from the access cookie first, then from the Authorization header
// ("Bearer <token>" or the raw token). Invalid and expired tokens are reported to the
// client identically; the wrapped cause keeps them apart in logs.
func AuthMiddleware(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			httpx.Fail(c, ErrNotAuthenticated)
			return
		}

		user, err := service.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, ErrTokenInvalid) || errors.Is(err, ErrTokenExpired) {
				err = ErrNotAuthenticated.Wrap(err)
			}
			httpx.Fail(c, err)
			return
		}

		SetCurrentUser(c, ContextUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		})

		c.Next()
	}
}

// SetCurrentUser stores the authenticated principal on the request.
func SetCurrentUser(c *gin.Context, user ContextUser) {
	c.Set(string(userContextKey), user)
}

// CurrentUser extracts the authenticated user from the context.
func CurrentUser(c *gin.Context) (ContextUser, bool) {
	value, exists := c.Get(string(userContextKey))
	if !exists {
		return ContextUser{}, false
	}
	user, ok := value.(ContextUser)
	return user, ok
}

// RequireUser fetches the authenticated user identifier.
func RequireUser(c *gin.Context) (uuid.UUID, ContextUser, bool) {
	user, ok := CurrentUser(c)
	if !ok || user.ID == uuid.Nil {
		return uuid.Nil, ContextUser{}, false
	}
	return user.ID, user, true
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie)
	}

	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if strings.EqualFold(header, "bearer") {
		return ""
	}
	return header
}
