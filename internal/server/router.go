package server

import (
	"io"

	"github.com/abduss/gotask/internal/apperror"
	"github.com/abduss/gotask/internal/attachment"
	"github.com/abduss/gotask/internal/auth"
	"github.com/abduss/gotask/internal/config"
	"github.com/abduss/gotask/internal/httpx"
	"github.com/abduss/gotask/internal/logger"
	"github.com/abduss/gotask/internal/metrics"
	"github.com/abduss/gotask/internal/task"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errRouteNotFound = apperror.New(apperror.KindNotFound, apperror.CodeResourceNotFound, "Route not found")

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config            config.Config
	Logger            *zap.Logger
	DB                Pinger
	ObjectStore       Pinger
	AuthService       *auth.Service
	TaskService       *task.Service
	AttachmentService *attachment.Service
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	metrics.InitMetrics()
	httpx.UseJSONFieldNames()

	router := gin.New()
	router.Use(logger.Middleware(deps.Logger))
	router.Use(metrics.Middleware())
	router.Use(httpx.ErrorHandler(deps.Config.IsProduction()))
	router.Use(gin.CustomRecoveryWithWriter(io.Discard, httpx.Recover))

	router.NoRoute(func(c *gin.Context) {
		httpx.Fail(c, errRouteNotFound)
	})

	registerHealthRoutes(router, deps)
	if path := deps.Config.Metrics.PrometheusPath; path != "" {
		metrics.Register(router, path)
	}

	api := router.Group("/api/v1")
	if deps.AuthService != nil {
		auth.RegisterRoutes(api, deps.AuthService, deps.Config.Auth)

		protected := api.Group("/")
		protected.Use(auth.AuthMiddleware(deps.AuthService))

		if deps.TaskService != nil {
			task.RegisterRoutes(protected, deps.TaskService)
		}
		if deps.AttachmentService != nil {
			attachment.RegisterRoutes(protected, deps.AttachmentService)
		}
	}

	return router
}
