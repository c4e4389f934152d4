// Package middleware holds the gin middleware shared by the core server and the gateway.
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	RequestIDKey    = "request_id"
	UserIDKey       = "user_id"
	HeaderRequestID = "X-Request-ID"
)

// ErrorBody is the error shape of every endpoint.
type ErrorBody struct {
	Error       string `json:"error"`
	Description string `json:"description"`
}

// Abort stops the chain with an error response.
func Abort(c *gin.Context, status int, kind, description string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: kind, Description: description})
}

// UserID returns the caller id stored by RequireUserID.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(UserIDKey)
}

// RequestID propagates the client's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
			c.Request.Header.Set(HeaderRequestID, id)
		}
		c.Set(RequestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// Recovery turns panics into a logged 500. It must run after RequestLogger
// and Metrics so they still see the response.
func Recovery(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Str("panic", fmt.Sprint(recovered)).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				Abort(c, http.StatusInternalServerError, "InternalError", "internal error")
			}
		}()
		c.Next()
	}
}

func RequestLogger(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= http.StatusInternalServerError {
			event = logger.Warn()
		}
		event.
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Int64("user_id", UserID(c)).
			Msg("http request")
	}
}

// Metrics records request counts and latency per route template.
func Metrics(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.ObserveHTTP(service, c.Request.Method+" "+endpoint, c.Writer.Status(), time.Since(start))
	}
}

// RequireUserID parses the caller id header into the context.
func RequireUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(models.HeaderUserID))
		if raw == "" {
			Abort(c, http.StatusBadRequest, "BadRequest", fmt.Sprintf("header %s is required", models.HeaderUserID))
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			Abort(c, http.StatusBadRequest, "BadRequest", fmt.Sprintf("header %s must be a positive integer", models.HeaderUserID))
			return
		}
		c.Set(UserIDKey, id)
		c.Next()
	}
}
