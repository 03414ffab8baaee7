package server

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
	"github.com/vladimiradmaev/farm-helper/internal/services"
	"github.com/vladimiradmaev/farm-helper/internal/validation"
)

const multipartMemory = 32 << 20

// bind decodes and validates a JSON body into dst; it aborts the request on failure.
func (h *handlers) bind(c *gin.Context, dst any) bool {
	if err := h.Validator.Decode(c.Request.Body, dst); err != nil {
		h.abort(c, err)
		return false
	}
	return true
}

func (h *handlers) analyzeDisease(c *gin.Context) {
	var req validation.DiseaseRequest
	if !h.bind(c, &req) {
		return
	}
	result, err := h.Disease.Analyze(c.Request.Context(), currentUser(c), req)
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) generatePlan(c *gin.Context) {
	var req validation.PlanRequest
	if !h.bind(c, &req) {
		return
	}
	plan, err := h.Plans.Generate(c.Request.Context(), req)
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

func (h *handlers) getWeather(c *gin.Context) {
	var req validation.WeatherRequest
	if !h.bind(c, &req) {
		return
	}
	report, err := h.Weather.Get(c.Request.Context(), req.Location)
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// weatherNotifications only runs for the caller's own user_id.
func (h *handlers) weatherNotifications(c *gin.Context) {
	var req validation.WeatherNotificationRequest
	if !h.bind(c, &req) {
		return
	}
	target, err := uuid.Parse(req.UserID)
	if err != nil || target != currentUser(c) {
		h.abort(c, apperrors.NewAuthorizationError("Cannot create notifications for another user"))
		return
	}
	result, err := h.Weather.Notify(c.Request.Context(), target, req.Location)
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) uploadImages(c *gin.Context) {
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 5*h.MaxUploadBytes+multipartMemory)
	}
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		h.abort(c, apperrors.NewValidationError("Invalid upload", apperrors.FieldError{
			Field: "images", Message: "expected a multipart form within the size limit",
		}))
		return
	}
	defer c.Request.MultipartForm.RemoveAll()

	headers := c.Request.MultipartForm.File["images"]
	uploads := make([]services.Upload, 0, len(headers))
	for _, fh := range headers {
		data, err := h.readPart(fh)
		if err != nil {
			h.abort(c, err)
			return
		}
		uploads = append(uploads, services.Upload{Filename: fh.Filename, Data: data})
	}

	urls, err := h.Disease.UploadImages(c.Request.Context(), currentUser(c), uploads)
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imageUrls": urls})
}

// readPart reads at most one byte past the size limit so the service can
// reject oversized files.
func (h *handlers) readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid upload", apperrors.FieldError{
			Field: "images", Message: "unreadable file " + strings.TrimSpace(fh.Filename),
		})
	}
	defer f.Close()

	var r io.Reader = f
	if h.MaxUploadBytes > 0 {
		r = io.LimitReader(f, h.MaxUploadBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return data, nil
}
