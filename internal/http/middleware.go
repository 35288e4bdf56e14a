package http

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tazhibayda/radiostation-service/internal/auth"
	"github.com/tazhibayda/radiostation-service/internal/log"
	"github.com/tazhibayda/radiostation-service/internal/metrics"
	"github.com/tazhibayda/radiostation-service/internal/security"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "X-Request-ID"
)

// BearerVerifier is the best-effort token check behind OptionalAuth.
type BearerVerifier interface {
	Verify(ctx context.Context, token string) (security.AuthClaim, bool)
}

// RequestID keeps a caller supplied X-Request-ID or mints one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func Logger(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithDD(c.Request.Context(), l).Info("request",
			zap.String("method", c.Request.Method),
			zap.String("route", route(c)),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
	}
}

// Recovery turns a panic into a generic 500 so one request cannot take the
// process down.
func Recovery(l *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		l.Error("panic recovered",
			zap.Any("panic", rec),
			zap.String("route", route(c)),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Stack("stack"),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	})
}

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.InFlight.Inc()
		start := time.Now()
		defer func() {
			metrics.InFlight.Dec()
			r := route(c)
			metrics.RequestsTotal.WithLabelValues(r, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
			metrics.ReqDuration.WithLabelValues(r, c.Request.Method).Observe(time.Since(start).Seconds())
		}()
		c.Next()
	}
}

func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		h.Set("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// OptionalAuth attaches an Identity to the request context. It never aborts:
// a missing, malformed or rejected token leaves the caller Anonymous.
func OptionalAuth(v BearerVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := auth.Anonymous()
		if tok, ok := security.BearerToken(c.GetHeader("Authorization")); ok && v != nil {
			if claim, ok := v.Verify(c.Request.Context(), tok); ok {
				id = auth.Identified(claim)
			}
		}
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func route(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return "unmatched"
}
