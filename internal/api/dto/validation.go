package dto

import (
	"errors"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/spec-kit/ideas-service/pkg/util/errorutil"
)

var notBlank = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok || s == "" {
		return nil
	}
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_not_blank", "must not be blank")
	}
	return nil
})

// wrapValidationError turns field errors into a 400 with one detail per field.
func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		details := make(map[string]any, len(fieldErrs))
		for field, fieldErr := range fieldErrs {
			details[field] = fieldErr.Error()
		}
		return apperrors.NewValidationError("please fill in all required fields", details)
	}
	return apperrors.NewValidationError(err.Error(), nil)
}
