package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/abduss/gotask/internal/attachment"
	"github.com/abduss/gotask/internal/auth"
	"github.com/abduss/gotask/internal/config"
	"github.com/abduss/gotask/internal/logger"
	"github.com/abduss/gotask/internal/memstore"
	"github.com/abduss/gotask/internal/server"
	"github.com/abduss/gotask/internal/storage"
	"github.com/abduss/gotask/internal/task"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.IsProduction())
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, cleanup, err := buildDependencies(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("build dependencies", zap.Error(err))
	}
	defer cleanup()

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      server.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zlog.Info("task API listening",
			zap.String("addr", cfg.Server.Address()),
			zap.String("env", cfg.Env),
			zap.String("storage", cfg.Storage.Driver),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	zlog.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zlog.Error("shutdown", zap.Error(err))
	}
}

// buildDependencies wires stores and services for the configured storage driver.
// The returned cleanup releases connections.
func buildDependencies(ctx context.Context, cfg config.Config, zlog *zap.Logger) (server.Dependencies, func(), error) {
	deps := server.Dependencies{Config: cfg, Logger: zlog}
	cleanup := func() {}

	var (
		users       authStore
		tasks       taskStore
		attachments attachmentStore
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := memstore.New()
		users, tasks, attachments = store, store, store
		deps.DB = store
		zlog.Warn("using in-memory storage; data is lost on restart")
	default:
		pool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return server.Dependencies{}, cleanup, err
		}
		cleanup = pool.Close

		if cfg.Storage.RunMigrations {
			if err := storage.Migrate(ctx, pool); err != nil {
				pool.Close()
				return server.Dependencies{}, func() {}, err
			}
			zlog.Info("database migrations applied")
		}

		users = auth.NewRepository(pool)
		tasks = task.NewRepository(pool)
		attachments = attachment.NewRepository(pool)
		deps.DB = pool
	}

	var objects objectStore
	if cfg.MinIO.Enabled {
		client, err := storage.NewMinIOClient(cfg.MinIO)
		if err != nil {
			cleanup()
			return server.Dependencies{}, func() {}, err
		}
		if err := storage.EnsureBucket(ctx, client, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
			cleanup()
			return server.Dependencies{}, func() {}, err
		}
		objects = attachment.NewMinIOStore(client)
		deps.ObjectStore = storage.BucketProbe{Client: client, Bucket: cfg.MinIO.Bucket}
	} else {
		objects = memstore.NewObjectStore()
		zlog.Warn("MinIO disabled; attachments are kept in memory")
	}

	deps.AuthService = auth.NewService(users, cfg.Auth)
	deps.TaskService = task.NewService(tasks)
	deps.AttachmentService = attachment.NewService(attachments, deps.TaskService, objects, cfg.MinIO.Bucket, cfg.Attachment.MaxBytes)
	deps.TaskService.OnDelete(deps.AttachmentService.DeleteForTask)

	return deps, cleanup, nil
}
