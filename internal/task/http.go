package task

import (
	"net/http"
	"strings"
	"time"

	"github.com/abduss/gotask/internal/apperror"
	"github.com/abduss/gotask/internal/auth"
	"github.com/abduss/gotask/internal/httpx"
	"github.com/abduss/gotask/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var dueDateLayouts = []string{time.RFC3339, "2006-01-02"}

// RegisterRoutes mounts task endpoints onto an authenticated group.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.GET("/tasks", handler.listTasks)
	group.POST("/tasks", handler.createTask)
	group.GET("/tasks/:id", handler.getTask)
	group.PUT("/tasks/:id", handler.updateTask)
	group.DELETE("/tasks/:id", handler.deleteTask)
}

type httpHandler struct {
	service *Service
}

type createTaskRequest struct {
	Title       string   `json:"title" binding:"required,max=100"`
	Description string   `json:"description" binding:"max=500"`
	Completed   bool     `json:"completed"`
	DueDate     *string  `json:"dueDate"`
	Priority    Priority `json:"priority" binding:"omitempty,oneof=low medium high"`
}

type updateTaskRequest struct {
	Title       *string   `json:"title" binding:"omitempty,max=100"`
	Description *string   `json:"description" binding:"omitempty,max=500"`
	Completed   *bool     `json:"completed"`
	DueDate     *string   `json:"dueDate"`
	Priority    *Priority `json:"priority" binding:"omitempty,oneof=low medium high"`
}

func (h *httpHandler) listTasks(c *gin.Context) {
	userID, _, ok := auth.RequireUser(c)
	if !ok {
		httpx.Fail(c, auth.ErrNotAuthenticated)
		return
	}

	query, err := ParseListQuery(c.Request.URL.Query())
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), userID, query)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	httpx.OKWith(c, http.StatusOK, gin.H{
		"count":      len(page.Tasks),
		"pagination": page.Pagination,
		"data":       page.Tasks,
	})
}

func (h *httpHandler) createTask(c *gin.Context) {
	userID, _, ok := auth.RequireUser(c)
	if !ok {
		httpx.Fail(c, auth.ErrNotAuthenticated)
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, err)
		return
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	t, err := h.service.Create(c.Request.Context(), userID, NewTask{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		DueDate:     dueDate,
		Priority:    req.Priority,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	logger.FromContext(c).Debug("task created", zap.String("task_id", t.ID.String()))
	httpx.OK(c, http.StatusCreated, t)
}

func (h *httpHandler) getTask(c *gin.Context) {
	userID, taskID, ok := h.resolve(c)
	if !ok {
		return
	}

	t, err := h.service.Get(c.Request.Context(), userID, taskID)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, http.StatusOK, t)
}

func (h *httpHandler) updateTask(c *gin.Context) {
	userID, taskID, ok := h.resolve(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, err)
		return
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	t, err := h.service.Update(c.Request.Context(), userID, taskID, Update{
		Title:        req.Title,
		Description:  req.Description,
		Completed:    req.Completed,
		DueDate:      dueDate,
		ClearDueDate: req.DueDate != nil && dueDate == nil,
		Priority:     req.Priority,
	})
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, http.StatusOK, t)
}

func (h *httpHandler) deleteTask(c *gin.Context) {
	userID, taskID, ok := h.resolve(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, taskID); err != nil {
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, http.StatusOK, gin.H{})
}

// resolve reads the caller and the :id path parameter, failing the request when either is unusable.
func (h *httpHandler) resolve(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, _, ok := auth.RequireUser(c)
	if !ok {
		httpx.Fail(c, auth.ErrNotAuthenticated)
		return uuid.Nil, uuid.Nil, false
	}

	raw := c.Param("id")
	taskID, err := uuid.Parse(raw)
	if err != nil {
		httpx.Fail(c, apperror.MalformedID(raw))
		return uuid.Nil, uuid.Nil, false
	}
	return userID, taskID, true
}

func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	for _, layout := range dueDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			parsed = parsed.UTC()
			return &parsed, nil
		}
	}
	return nil, apperror.Validation("dueDate must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
}
