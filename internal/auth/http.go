package auth

import (
	"errors"
	"io"
	"net/http"

	"github.com/abduss/gotask/internal/config"
	"github.com/abduss/gotask/internal/httpx"
	"github.com/abduss/gotask/internal/logger"
	"github.com/abduss/gotask/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterRoutes mounts authentication endpoints under /auth.
func RegisterRoutes(router *gin.RouterGroup, service *Service, cfg config.AuthConfig) {
	handler := &httpHandler{service: service, cfg: cfg}
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", handler.register)
		authGroup.POST("/login", handler.login)
		authGroup.POST("/refresh-token", handler.refresh)

		protected := authGroup.Group("")
		protected.Use(AuthMiddleware(service))
		protected.POST("/logout", handler.logout)
		protected.GET("/me", handler.me)
	}
}

type httpHandler struct {
	service *Service
	cfg     config.AuthConfig
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *httpHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, err)
		return
	}

	result, err := h.service.Register(c.Request.Context(), RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	metrics.RecordAuthEvent("register", err)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	logger.FromContext(c).Info("user registered", zap.String("user_id", result.User.ID.String()))
	h.respondWithSession(c, http.StatusCreated, result)
}

func (h *httpHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, err)
		return
	}

	result, err := h.service.Login(c.Request.Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	metrics.RecordAuthEvent("login", err)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	h.respondWithSession(c, http.StatusOK, result)
}

func (h *httpHandler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httpx.Fail(c, err)
		return
	}
	if req.RefreshToken == "" {
		if cookie, err := c.Cookie(RefreshTokenCookie); err == nil {
			req.RefreshToken = cookie
		}
	}

	result, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	metrics.RecordAuthEvent("refresh", err)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	h.respondWithSession(c, http.StatusOK, result)
}

func (h *httpHandler) logout(c *gin.Context) {
	userID, _, ok := RequireUser(c)
	if !ok {
		httpx.Fail(c, ErrNotAuthenticated)
		return
	}

	err := h.service.Logout(c.Request.Context(), userID)
	metrics.RecordAuthEvent("logout", err)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	clearSessionCookies(c, h.cfg)
	httpx.OK(c, http.StatusOK, gin.H{})
}

func (h *httpHandler) me(c *gin.Context) {
	userID, _, ok := RequireUser(c)
	if !ok {
		httpx.Fail(c, ErrNotAuthenticated)
		return
	}

	user, err := h.service.Me(c.Request.Context(), userID)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, http.StatusOK, user.Public())
}

func (h *httpHandler) respondWithSession(c *gin.Context, status int, result AuthResult) {
	setSessionCookies(c, h.cfg, result.Tokens)
	httpx.OKWith(c, status, gin.H{
		"token":        result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
		"user":         result.User.Public(),
	})
}
