// Package validator adapts go-playground/validator to echo's Validator
// interface.
package validator

import (
	domainerrors "beacon/internal/domain/errors"

	playground "github.com/go-playground/validator/v10"
)

// Validator wraps a shared validator instance for request structs.
type Validator struct {
	validate *playground.Validate
}

// New creates the echo request validator.
func New() *Validator {
	return &Validator{validate: playground.New()}
}

// Validate implements echo.Validator. Failures surface as
// ErrValidationFailed so the error handler renders the standard envelope.
func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}
