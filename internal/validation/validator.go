// Package validation decodes request bodies strictly and checks them against
// the request schemas.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vladimiradmaev/farm-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
)

// DateWindowYears bounds plan dates around today.
const DateWindowYears = 5

const msgInvalidRequest = "Invalid request"

var unsafeText = regexp.MustCompile(`(?i)<script|javascript:|on\w+=`)

type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// New builds a validator; now supplies "today" for the date window and
// defaults to time.Now.
func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled()), now: now}

	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	must(v.validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseDate(fl.Field().String())
		return err == nil
	}))
	must(v.validate.RegisterValidation("datewindow", func(fl validator.FieldLevel) bool {
		return v.withinWindow(fl.Field().String())
	}))
	must(v.validate.RegisterValidation("safetext", func(fl validator.FieldLevel) bool {
		return !unsafeText.MatchString(fl.Field().String())
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func (v *Validator) withinWindow(s string) bool {
	d, err := domain.ParseDate(s)
	if err != nil {
		return false
	}
	now := v.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(today.AddDate(-DateWindowYears, 0, 0)) && !d.After(today.AddDate(DateWindowYears, 0, 0))
}

// Decode reads one JSON object from r into dst, rejecting unknown fields,
// trims every string and validates the result.
func (v *Validator) Decode(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return apperrors.NewValidationError("Invalid request body")
	}
	return v.Struct(dst)
}

// Struct trims and validates an already populated request.
func (v *Validator) Struct(dst any) error {
	trimStrings(reflect.ValueOf(dst))

	err := v.validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError(msgInvalidRequest)
	}

	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperrors.FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return apperrors.NewValidationError(msgInvalidRequest, fields...)
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return apperrors.NewValidationError("Request body is required")
	case errors.As(err, &typeErr):
		return apperrors.NewValidationError(msgInvalidRequest, apperrors.FieldError{
			Field: typeErr.Field, Message: "must be of type " + typeErr.Type.String(),
		})
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		name := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return apperrors.NewValidationError(msgInvalidRequest, apperrors.FieldError{
			Field: name, Message: "is not allowed",
		})
	default:
		return apperrors.NewValidationError("Invalid request body").WithContext("decode_error", err.Error())
	}
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(fe validator.FieldError) string {
	kind := fe.Kind()
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "isodate":
		return "must be a valid date in YYYY-MM-DD format"
	case "datewindow":
		return fmt.Sprintf("must be a valid YYYY-MM-DD date within %d years of today", DateWindowYears)
	case "safetext":
		return "contains disallowed content"
	default:
		return "is invalid"
	}
}
