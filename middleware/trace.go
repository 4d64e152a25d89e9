// Package middleware holds the gin middleware shared by the inspector API.
package middleware

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	TraceIDKey    = "trace_id"
	TraceIDHeader = "X-Trace-ID"
	maxTraceIDLen = 64
)

type traceCtxKey struct{}

// validTraceID accepts short printable ASCII ids from callers.
func validTraceID(id string) bool {
	if id == "" || len(id) > maxTraceIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// TraceID tags every request with an id, reusing a well-formed X-Trace-ID
// header and generating a UUID otherwise. The id is echoed in the response
// and stored in both the gin and the request context.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(TraceIDHeader)
		if !validTraceID(id) {
			id = uuid.NewString()
		}
		c.Set(TraceIDKey, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), traceCtxKey{}, id))
		c.Header(TraceIDHeader, id)
		c.Next()
	}
}

// GetTraceID retrieves the trace ID from the gin context.
func GetTraceID(c *gin.Context) string {
	return c.GetString(TraceIDKey)
}

// TraceFromContext retrieves the trace ID from a request context.
func TraceFromContext(ctx context.Context) string {
	id, _ := ctx.Value(traceCtxKey{}).(string)
	return id
}

// Logger logs each request; 5xx at Error, 4xx at Warn, the rest at Debug.
func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("took", time.Since(start)),
			zap.String("trace_id", GetTraceID(c)),
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("http", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("http", fields...)
		default:
			log.Debug("http", fields...)
		}
	}
}

// Recovery turns a handler panic into a 500 and logs it with the stack.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.Any("error", r),
					zap.String("trace_id", GetTraceID(c)),
					zap.String("path", c.Request.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":    "internal server error",
					"trace_id": GetTraceID(c),
				})
			}
		}()
		c.Next()
	}
}
