package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/apperr"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Message string         `json:"message"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
	Stack   *string        `json:"stack"`
}

// NewErrorBody renders err. The internal cause is exposed as stack only
// outside production.
func NewErrorBody(err error, production bool) (int, ErrorBody) {
	e := apperr.From(err)
	body := ErrorBody{Message: e.Message, Code: e.Code, Details: e.Details}
	if !production {
		stack := err.Error()
		body.Stack = &stack
	}
	return e.Kind.Status(), body
}

// ErrorHandler renders the last error recorded on the context when the
// handler chain has not written a response.
func ErrorHandler(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		status, body := NewErrorBody(c.Errors.Last().Err, production)
		c.JSON(status, body)
	}
}

// Recovery converts a panic into an internal error for ErrorHandler.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.String("request_id", RequestIDFrom(c)),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", r),
					zap.Stack("stack"),
				)
				fail(c, apperr.Internal(fmt.Errorf("panic: %v", r)))
			}
		}()
		c.Next()
	}
}

// NotFound answers unmatched routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		fail(c, apperr.NotFound("Not found - "+c.Request.URL.Path))
	}
}

// Abort records err for ErrorHandler and stops the chain.
func Abort(c *gin.Context, err error) {
	fail(c, err)
}
