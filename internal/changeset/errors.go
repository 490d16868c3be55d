package changeset

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-webedit/internal/validation"
)

// failure tags user facing validation failures so callers can tell them apart
// from infrastructure errors.
func failure(err error) error {
	if err == nil {
		return nil
	}
	var fieldErr *validation.FieldError
	if !errors.As(err, &fieldErr) {
		return err
	}
	return goerrors.Wrap(fieldErr, goerrors.CategoryValidation, fieldErr.Message).
		WithTextCode(fieldErr.Code)
}

// UserMessage returns the alert text of a validation failure.
func UserMessage(err error) (string, bool) {
	var fieldErr *validation.FieldError
	if errors.As(err, &fieldErr) && fieldErr != nil {
		return fieldErr.Message, true
	}
	return "", false
}

// IsValidationFailure reports whether err aborted a build because a submitted
// value is invalid.
func IsValidationFailure(err error) bool {
	_, ok := UserMessage(err)
	return ok
}
