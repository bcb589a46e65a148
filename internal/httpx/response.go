package httpx

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/abduss/gotask/internal/apperror"
	"github.com/abduss/gotask/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// OK writes a success envelope around data.
func OK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// OKWith writes a success envelope with top-level fields, used where the payload is not a single data value.
func OKWith(c *gin.Context, status int, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

// Fail records err for ErrorHandler and stops the chain.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler renders the last recorded error as the uniform failure envelope.
// 5xx failures are logged at error level with stack, 4xx at warn level without.
func ErrorHandler(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr := apperror.Classify(err)
		status := appErr.Status()

		fields := []zap.Field{
			zap.String("path", c.Request.URL.Path),
			zap.String("kind", appErr.Kind.String()),
			zap.String("code", appErr.Code),
			zap.Error(err),
		}
		var cause *apperror.Error
		if appErr.Cause != nil && errors.As(appErr.Cause, &cause) {
			fields = append(fields, zap.String("cause_kind", cause.Kind.String()))
		}
		log := logger.FromContext(c)
		if status >= 500 {
			log.Error("request failed", append(fields, zap.String("stack", appErr.Stack()))...)
		} else {
			log.Warn("request rejected", fields...)
		}

		message := appErr.Message
		if appErr.Kind == apperror.KindServer && appErr.Cause != nil {
			message = appErr.Cause.Error()
		}
		if production && status >= 500 {
			message = apperror.GenericServerMessage
		}

		errBody := gin.H{"message": message, "code": appErr.Code}
		if !production {
			if stack := appErr.Stack(); stack != "" {
				errBody["stack"] = stack
			}
		}

		c.JSON(status, gin.H{"success": false, "error": errBody})
	}
}

// Recover converts panics into server failures rendered by ErrorHandler.
func Recover(c *gin.Context, recovered any) {
	Fail(c, apperror.Server(fmt.Errorf("panic: %v", recovered)))
}

// UseJSONFieldNames makes binding errors report json tag names instead of Go field names.
func UseJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}
