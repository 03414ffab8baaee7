package server

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
	"github.com/vladimiradmaev/farm-helper/internal/logger"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error      string                 `json:"error"`
	Code       string                 `json:"code"`
	Details    []apperrors.FieldError `json:"details,omitempty"`
	RetryAfter int                    `json:"retry_after,omitempty"`
}

// errorBody exposes only the public message of an AppError; anything else
// becomes the generic message.
func errorBody(err error) (int, ErrorResponse) {
	appErr, ok := apperrors.As(err)
	if !ok {
		return apperrors.HTTPStatus(err), ErrorResponse{Error: apperrors.MsgGeneric, Code: "INTERNAL"}
	}

	resp := ErrorResponse{Error: appErr.Message, Code: appErr.Code, Details: appErr.Fields}
	if appErr.RetryAfter > 0 {
		resp.RetryAfter = int(math.Ceil(appErr.RetryAfter.Seconds()))
	}
	return appErr.HTTPStatus(), resp
}

func (h *handlers) abort(c *gin.Context, err error) {
	ctx := c.Request.Context()
	h.Errors.HandleWith(ctx, logger.FromContext(ctx), err)

	status, body := errorBody(err)
	if body.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(body.RetryAfter))
	}
	c.AbortWithStatusJSON(status, body)
}
