// Package validator adapts go-playground/validator to echo's Validator interface.
package validator

import (
	domainerrors "userstore/internal/domain/errors"

	"github.com/go-playground/validator/v10"
)

// Validator validates bound request bodies.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with required-struct checking enabled.
func New() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator. Failures are ErrValidationFailed so the error handler
// answers 400 with the offending fields.
func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}
