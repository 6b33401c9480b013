package domain

import (
	"errors"
	"fmt"
)

// ErrShopNotFound is returned when an operation references a shop domain
// with no local record.
var ErrShopNotFound = errors.New("shop not found")

// ValidationError marks a payload missing a required field. Handlers treat
// it as permanent: the resource is skipped and counted, never retried.
type ValidationError struct {
	Resource string
	Field    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: missing or invalid required field %q", e.Resource, e.Field)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
