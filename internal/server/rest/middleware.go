package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/logging"
	"github.com/dmitrijs2005/userservice/internal/server/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
)

// RequestID reuses the caller's X-Request-Id or generates one, and echoes it
// back in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// Authenticate runs the gate and attaches the principal, if any, to the
// request context. It never aborts.
func Authenticate(gate *auth.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := gate.Attach(c.Request.Context(), c.GetHeader("Authorization"))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAuth rejects requests without a principal.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.PrincipalFromContext(c.Request.Context()); !ok {
			respondError(c, common.ErrAuthenticationRequired)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequestLogger logs method, path, status and duration of every request
// except health checks.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString(requestIDKey),
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.String())
		}
		if status >= http.StatusInternalServerError {
			logger.Error(c.Request.Context(), "request finished", args...)
		} else {
			logger.Info(c.Request.Context(), "request finished", args...)
		}
	}
}

// Recovery converts panics into a generic 500 payload.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(c.Request.Context(), "panic in handler", "panic", r, "path", c.Request.URL.Path)
				writeProblem(c, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred", nil)
				c.Abort()
			}
		}()
		c.Next()
	}
}
