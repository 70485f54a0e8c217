package handler

import (
	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/verdandi/internal/domain"
)

// RequestValidator adapts go-playground/validator to echo's Validator
// interface and converts tag failures into field-keyed validation errors.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates the validator used for request binding.
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator.
func (v *RequestValidator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return domain.Invalid("request.validate", "Invalid request body")
	}

	var out error
	for _, fe := range invalid {
		msg := "failed validation: " + fe.Tag()
		if out == nil {
			out = domain.NewValidationError("request.validate", fe.Field(), msg)
			continue
		}
		out = domain.AddFieldError(out, fe.Field(), msg)
	}
	return out
}
