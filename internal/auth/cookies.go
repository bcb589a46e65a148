package auth

import (
	"net/http"
	"time"

	"github.com/abduss/gotask/internal/config"
	"github.com/gin-gonic/gin"
)

// Cookie names carrying the session tokens.
const (
	AccessTokenCookie  = "token"
	RefreshTokenCookie = "refreshToken"
)

const refreshCookieTTL = 7 * 24 * time.Hour

func setSessionCookies(c *gin.Context, cfg config.AuthConfig, tokens TokenPair) {
	writeCookie(c, cfg, AccessTokenCookie, tokens.AccessToken, cfg.CookieTTL)
	writeCookie(c, cfg, RefreshTokenCookie, tokens.RefreshToken, refreshCookieTTL)
}

func clearSessionCookies(c *gin.Context, cfg config.AuthConfig) {
	writeCookie(c, cfg, AccessTokenCookie, "", -time.Second)
	writeCookie(c, cfg, RefreshTokenCookie, "", -time.Second)
}

func writeCookie(c *gin.Context, cfg config.AuthConfig, name, value string, ttl time.Duration) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
	}
	if ttl < 0 {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
	} else {
		cookie.MaxAge = int(ttl.Seconds())
		cookie.Expires = time.Now().Add(ttl)
	}
	if cfg.SecureCookies {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteStrictMode
	}
	http.SetCookie(c.Writer, cookie)
}
