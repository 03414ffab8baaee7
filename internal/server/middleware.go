package server

import (
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/vladimiradmaev/farm-helper/internal/auth"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
	"github.com/vladimiradmaev/farm-helper/internal/logger"
	"github.com/vladimiradmaev/farm-helper/internal/metrics"
)

const (
	HeaderRequestID = "X-Request-ID"

	ctxRequestID = "request_id"
	ctxUserID    = "user_id"
)

var uuidPattern = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

// requestID reuses an incoming X-Request-ID or generates one, and echoes it back.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// accessLog attaches a request-scoped logger to the request context and
// logs one line per request once it completes.
func accessLog(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		l := base.With("request_id", c.GetString(ctxRequestID))
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), l))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := []any{
			"method", c.Request.Method,
			"route", route,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if id, ok := c.Get(ctxUserID); ok {
			attrs = append(attrs, "user_id", id)
		}
		logger.FromContext(c.Request.Context()).Info("HTTP request", attrs...)
	}
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = uuidPattern.ReplaceAllString(c.Request.URL.Path, ":id")
			if c.Writer.Status() == http.StatusNotFound {
				route = "unmatched"
			}
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// authenticate requires a valid bearer token and stores its subject.
func (h *handlers) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			h.abort(c, apperrors.NewAuthenticationError("Missing authorization header"))
			return
		}
		userID, err := h.Verifier.Verify(token)
		if err != nil {
			h.abort(c, err)
			return
		}

		c.Set(ctxUserID, userID)
		l := logger.FromContext(c.Request.Context()).With("user_id", userID.String())
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), l))
		c.Next()
	}
}

// rateLimit applies the injected limiter per authenticated subject.
func (h *handlers) rateLimit(limiter *httprate.RateLimiter, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := currentUser(c).String()
		if !limiter.OnLimit(c.Writer, c.Request, key) {
			c.Next()
			return
		}
		e := apperrors.New(apperrors.ErrorTypeRateLimit, "RATE_LIMIT", "Rate limit exceeded").
			WithContext("limiter", "functions")
		e.RetryAfter = window
		h.abort(c, e)
	}
}

func currentUser(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ctxUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
