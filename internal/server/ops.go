package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
	"github.com/vladimiradmaev/farm-helper/internal/logger"
)

func (h *handlers) health(c *gin.Context) {
	if h.Ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			logger.FromContext(ctx).Warn("Health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// publicObject serves uploaded images when this process is the object store.
func (h *handlers) publicObject(c *gin.Context) {
	if c.Param("bucket") != h.Bucket {
		h.abort(c, apperrors.NewNotFoundError("Object"))
		return
	}
	key := strings.TrimPrefix(c.Param("key"), "/")
	data, err := h.PublicStore.Get(c.Request.Context(), key)
	if err != nil {
		h.abort(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, mimetype.Detect(data).String(), data)
}
