package server

import (
	"context"
	"net/http"
	"time"

	"github.com/abduss/gotask/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const readinessTimeout = 5 * time.Second

// Pinger is anything whose reachability gates readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

func registerHealthRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/health/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		checks := []struct {
			name   string
			pinger Pinger
		}{
			{deps.Config.Storage.Driver, deps.DB},
			{"minio", deps.ObjectStore},
		}
		for _, check := range checks {
			if check.pinger == nil {
				continue
			}
			if err := check.pinger.Ping(ctx); err != nil {
				logger.FromContext(c).Warn("readiness check failed", zap.String("component", check.name), zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":    "degraded",
					"component": check.name,
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
