package middleware

import (
	"errors"
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/restapi/backend/internal/application/resource"
	"github.com/restapi/backend/internal/interfaces/form"
	"github.com/restapi/backend/internal/interfaces/http/dto"
)

// SetupValidator configures gin's binding validator like the resource validator, so
// query and URI binding errors report JSON names and know the custom tags.
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		resource.Configure(v)
	}
}

// IsValidationError reports whether err is a failure FormatValidationErrors can describe.
func IsValidationError(err error) bool {
	var verrs validator.ValidationErrors
	var tfe *form.TransformationFailedError
	return errors.As(err, &verrs) || errors.As(err, &tfe)
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, e := range verrs {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}

	var tfe *form.TransformationFailedError
	if errors.As(err, &tfe) {
		details = append(details, dto.ValidationDetail{
			Field:   tfe.Property,
			Message: tfe.Message,
		})
	}

	return dto.NewValidationErrorResponse(
		"Request validation failed",
		requestID,
		details,
	)
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "timezone":
		return "Unknown timezone"
	case "bcp47_language_tag":
		return "Invalid locale"
	case "role":
		return "Unknown role"
	default:
		return "Invalid value"
	}
}
