package server

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vladimiradmaev/farm-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
	"github.com/vladimiradmaev/farm-helper/internal/export"
	"github.com/vladimiradmaev/farm-helper/internal/validation"
)

func (h *handlers) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.abort(c, apperrors.NewValidationError("Invalid request", apperrors.FieldError{
			Field: "id", Message: "must be a valid UUID",
		}))
		return uuid.Nil, false
	}
	return id, true
}

// respond writes v, or the error if err is set.
func (h *handlers) respond(c *gin.Context, status int, v any, err error) {
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(status, v)
}

// Soil tests and recommendations

func (h *handlers) createSoilTest(c *gin.Context) {
	var req validation.SoilTestRequest
	if !h.bind(c, &req) {
		return
	}
	test, err := h.Soil.Create(c.Request.Context(), currentUser(c), req)
	h.respond(c, http.StatusCreated, test, err)
}

func (h *handlers) listSoilTests(c *gin.Context) {
	tests, err := h.Soil.List(c.Request.Context(), currentUser(c))
	h.respond(c, http.StatusOK, tests, err)
}

func (h *handlers) latestSoilTest(c *gin.Context) {
	test, err := h.Soil.Latest(c.Request.Context(), currentUser(c))
	h.respond(c, http.StatusOK, test, err)
}

func (h *handlers) getSoilTest(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	test, err := h.Soil.Get(c.Request.Context(), currentUser(c), id)
	h.respond(c, http.StatusOK, test, err)
}

func (h *handlers) recommend(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	recs, err := h.Soil.Recommend(c.Request.Context(), currentUser(c), id)
	h.respond(c, http.StatusOK, gin.H{"recommendations": recs}, err)
}

func (h *handlers) recommendLatest(c *gin.Context) {
	recs, err := h.Soil.RecommendLatest(c.Request.Context(), currentUser(c))
	h.respond(c, http.StatusOK, gin.H{"recommendations": recs}, err)
}

func (h *handlers) listRecommendations(c *gin.Context) {
	recs, err := h.Soil.ListRecommendations(c.Request.Context(), currentUser(c))
	h.respond(c, http.StatusOK, recs, err)
}

// Crops

func (h *handlers) createCrop(c *gin.Context) {
	var req validation.CropRequest
	if !h.bind(c, &req) {
		return
	}
	crop, err := h.Crops.Create(c.Request.Context(), currentUser(c), req)
	h.respond(c, http.StatusCreated, crop, err)
}

func (h *handlers) listCrops(c *gin.Context) {
	crops, err := h.Crops.List(c.Request.Context(), currentUser(c))
	h.respond(c, http.StatusOK, crops, err)
}

func (h *handlers) getCrop(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	crop, err := h.Crops.Get(c.Request.Context(), currentUser(c), id)
	h.respond(c, http.StatusOK, crop, err)
}

func (h *handlers) updateCrop(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req validation.CropUpdateRequest
	if !h.bind(c, &req) {
		return
	}
	crop, err := h.Crops.Update(c.Request.Context(), currentUser(c), id, req)
	h.respond(c, http.StatusOK, crop, err)
}

func (h *handlers) deleteCrop(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.Crops.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		h.abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Tasks

func (h *handlers) createTask(c *gin.Context) {
	var req validation.TaskRequest
	if !h.bind(c, &req) {
		return
	}
	task, err := h.Tasks.Create(c.Request.Context(), currentUser(c), req)
	h.respond(c, http.StatusCreated, task, err)
}

func (h *handlers) createActivityTask(c *gin.Context) {
	var req validation.ActivityTaskRequest
	if !h.bind(c, &req) {
		return
	}
	task, err := h.Tasks.AddActivity(c.Request.Context(), currentUser(c), req)
	h.respond(c, http.StatusCreated, task, err)
}

func (h *handlers) listTasks(c *gin.Context) {
	tasks, err := h.Tasks.List(c.Request.Context(), currentUser(c))
	h.respond(c, http.StatusOK, tasks, err)
}

func (h *handlers) toggleTask(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	task, err := h.Tasks.Toggle(c.Request.Context(), currentUser(c), id)
	h.respond(c, http.StatusOK, task, err)
}

func (h *handlers) deleteTask(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.Tasks.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		h.abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) listDetections(c *gin.Context) {
	detections, err := h.Disease.ListDetections(c.Request.Context(), currentUser(c))
	h.respond(c, http.StatusOK, detections, err)
}

// Notifications

func (h *handlers) listNotifications(c *gin.Context) {
	unread, _ := strconv.ParseBool(c.Query("unread"))
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.abort(c, apperrors.NewValidationError("Invalid request", apperrors.FieldError{
				Field: "limit", Message: "must be a non-negative integer",
			}))
			return
		}
		limit = n
	}
	page, err := h.Notifications.List(c.Request.Context(), currentUser(c), unread, limit)
	h.respond(c, http.StatusOK, page, err)
}

func (h *handlers) markNotificationRead(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.Notifications.MarkRead(c.Request.Context(), currentUser(c), id); err != nil {
		h.abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) markAllNotificationsRead(c *gin.Context) {
	n, err := h.Notifications.MarkAllRead(c.Request.Context(), currentUser(c))
	h.respond(c, http.StatusOK, gin.H{"updated": n}, err)
}

func (h *handlers) deleteNotification(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.Notifications.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		h.abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Profile

func (h *handlers) getProfile(c *gin.Context) {
	p, err := h.Profiles.Get(c.Request.Context(), currentUser(c))
	h.respond(c, http.StatusOK, p, err)
}

func (h *handlers) saveProfile(c *gin.Context) {
	var req validation.ProfileRequest
	if !h.bind(c, &req) {
		return
	}
	p, err := h.Profiles.Save(c.Request.Context(), currentUser(c), req)
	h.respond(c, http.StatusOK, p, err)
}

// exportDataset renders into memory first so failures still get a JSON error.
func (h *handlers) exportDataset(c *gin.Context) {
	format, ok := export.ParseFormat(c.Query("format"))
	if !ok {
		h.abort(c, apperrors.NewValidationError("Invalid request", apperrors.FieldError{
			Field: "format", Message: "must be csv or xlsx",
		}))
		return
	}
	dataset := c.Param("dataset")

	var buf bytes.Buffer
	if err := h.Exports.Write(c.Request.Context(), &buf, currentUser(c), dataset, format); err != nil {
		h.abort(c, err)
		return
	}

	name := export.Filename(dataset, h.Now().UTC().Format(domain.DateLayout), format)
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
