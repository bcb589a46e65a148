package attachment

import (
	"fmt"
	"io"
	"net/http"

	"github.com/abduss/gotask/internal/apperror"
	"github.com/abduss/gotask/internal/auth"
	"github.com/abduss/gotask/internal/httpx"
	"github.com/abduss/gotask/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterRoutes mounts attachment operations under /tasks/:id/attachments.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.POST("/tasks/:id/attachments", handler.upload)
	group.GET("/tasks/:id/attachments", handler.list)
	group.GET("/tasks/:id/attachments/:attachmentID/download", handler.download)
	group.DELETE("/tasks/:id/attachments/:attachmentID", handler.delete)
}

type httpHandler struct {
	service *Service
}

func (h *httpHandler) upload(c *gin.Context) {
	userID, taskID, ok := resolveTask(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		httpx.Fail(c, ErrMissingFile.Wrap(err))
		return
	}

	meta, err := h.service.Upload(c.Request.Context(), userID, taskID, fileHeader)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	logger.FromContext(c).Info("attachment stored",
		zap.String("task_id", taskID.String()),
		zap.String("attachment_id", meta.ID.String()),
		zap.Int64("size", meta.SizeBytes),
	)
	httpx.OK(c, http.StatusCreated, meta)
}

func (h *httpHandler) list(c *gin.Context) {
	userID, taskID, ok := resolveTask(c)
	if !ok {
		return
	}

	list, err := h.service.List(c.Request.Context(), userID, taskID)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	httpx.OKWith(c, http.StatusOK, gin.H{"count": len(list), "data": list})
}

func (h *httpHandler) download(c *gin.Context) {
	userID, taskID, ok := resolveTask(c)
	if !ok {
		return
	}
	attachmentID, ok := parseID(c, "attachmentID")
	if !ok {
		return
	}

	meta, reader, err := h.service.Download(c.Request.Context(), userID, taskID, attachmentID)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", meta.ContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", meta.Filename))
	c.Header("Content-Length", fmt.Sprintf("%d", meta.SizeBytes))
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, reader); err != nil {
		logger.FromContext(c).Warn("attachment stream interrupted", zap.Error(err))
	}
}

func (h *httpHandler) delete(c *gin.Context) {
	userID, taskID, ok := resolveTask(c)
	if !ok {
		return
	}
	attachmentID, ok := parseID(c, "attachmentID")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, taskID, attachmentID); err != nil {
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, http.StatusOK, gin.H{})
}

func resolveTask(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, _, ok := auth.RequireUser(c)
	if !ok {
		httpx.Fail(c, auth.ErrNotAuthenticated)
		return uuid.Nil, uuid.Nil, false
	}
	taskID, ok := parseID(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return userID, taskID, true
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		httpx.Fail(c, apperror.MalformedID(raw))
		return uuid.Nil, false
	}
	return id, true
}
