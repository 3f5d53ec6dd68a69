package runtime

import (
	"errors"
	"fmt"
)

var (
	ErrRuntime         = errors.New("runtime error")
	ErrInvalidPlatform = errors.New("invalid platform")
)

// Wraps err so it matches both [ErrRuntime] and the original cause.
func wrap(err error, op string) error {
	return fmt.Errorf("%w: %s: %w", ErrRuntime, op, err)
}
