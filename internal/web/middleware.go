package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/toolasset/internal/log"
	"github.com/zjrosen/toolasset/internal/tracing"
	"github.com/zjrosen/toolasset/internal/web/apierror"
)

const (
	// RequestIDKey is the gin context key holding the request id.
	RequestIDKey = "request_id"
	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-ID"
)

// RequestID reuses a well-formed incoming X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		trace.SpanFromContext(c.Request.Context()).SetAttributes(attribute.String(tracing.AttrRequestID, id))
		c.Next()
	}
}

// Recovery turns panics into 500 responses without exposing the panic value.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(log.CatWeb, "panic recovered",
					"request_id", c.GetString(RequestIDKey),
					"panic", r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("internal server error"))
			}
		}()
		c.Next()
	}
}

// Logger logs each request with method, path, status, latency and request id.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info(log.CatWeb, "request",
			"request_id", c.GetString(RequestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start))
	}
}

// respondError maps err to its status and envelope. Server errors are
// logged with the request id.
func respondError(c *gin.Context, err error) {
	status, body := apierror.From(err)
	if status >= http.StatusInternalServerError {
		log.ErrorErr(log.CatWeb, "request failed", err,
			"request_id", c.GetString(RequestIDKey),
			"path", c.FullPath())
	} else {
		log.Debug(log.CatWeb, "request rejected", "status", status, "error", err.Error())
	}
	c.AbortWithStatusJSON(status, body)
}

// badRequest answers a malformed body or parameter.
func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, apierror.New(msg))
}
