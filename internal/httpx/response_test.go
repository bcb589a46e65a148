package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abduss/gotask/internal/apperror"
	"github.com/abduss/gotask/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type failureBody struct {
	Success bool `json:"success"`
	Error   struct {
		Message string `json:"message"`
		Code    string `json:"code"`
		Stack   string `json:"stack"`
	} `json:"error"`
}

func newEngine(production bool, core zapcore.Core, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(logger.Middleware(zap.New(core)))
	r.Use(ErrorHandler(production))
	r.Use(gin.CustomRecoveryWithWriter(io.Discard, Recover))
	r.GET("/x", handler)
	return r
}

func perform(t *testing.T, r *gin.Engine) (*httptest.ResponseRecorder, failureBody) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, "/x", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var body failureBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return rr, body
}

func TestErrorHandlerRedactsServerErrorsInProduction(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := newEngine(true, core, func(c *gin.Context) {
		Fail(c, errors.New("pq: relation users does not exist"))
	})

	rr, body := perform(t, r)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.False(t, body.Success)
	assert.Equal(t, apperror.GenericServerMessage, body.Error.Message)
	assert.Equal(t, apperror.CodeServer, body.Error.Code)
	assert.Empty(t, body.Error.Stack)

	entries := logs.FilterMessage("request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.NotEmpty(t, entries[0].ContextMap()["stack"])
}

func TestErrorHandlerExposesDetailsOutsideProduction(t *testing.T) {
	core, _ := observer.New(zapcore.DebugLevel)
	r := newEngine(false, core, func(c *gin.Context) {
		Fail(c, errors.New("pq: relation users does not exist"))
	})

	rr, body := perform(t, r)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "pq: relation users does not exist", body.Error.Message)
	assert.NotEmpty(t, body.Error.Stack)
}

func TestErrorHandlerLogsClientErrorsAsWarnings(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	forbidden := apperror.New(apperror.KindForbidden, apperror.CodeForbidden, "Not authorized")
	r := newEngine(true, core, func(c *gin.Context) {
		Fail(c, forbidden)
	})

	rr, body := perform(t, r)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Not authorized", body.Error.Message)
	assert.Equal(t, apperror.CodeForbidden, body.Error.Code)

	entries := logs.FilterMessage("request rejected").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	_, hasStack := entries[0].ContextMap()["stack"]
	assert.False(t, hasStack)
}

func TestRecoverRendersEnvelope(t *testing.T) {
	core, _ := observer.New(zapcore.DebugLevel)
	r := newEngine(true, core, func(c *gin.Context) {
		panic("boom")
	})

	rr, body := perform(t, r)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, apperror.GenericServerMessage, body.Error.Message)
}

func TestOKEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		OK(c, http.StatusOK, gin.H{"id": "1"})
	})

	req, _ := http.NewRequest(http.MethodGet, "/x", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.JSONEq(t, `{"success":true,"data":{"id":"1"}}`, rr.Body.String())
}
