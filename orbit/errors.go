package orbit

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no archive lists an orbit file covering the product.
	ErrNotFound = errors.New("orbit file not found")
	// ErrNetwork wraps listing or download failures after the retry budget.
	ErrNetwork = errors.New("orbit archive unreachable")
	// ErrParse marks product ids or archive names that do not follow the
	// Sentinel-1 naming convention.
	ErrParse = errors.New("malformed name")
)

// NotFoundError names the product no orbit was found for.
type NotFoundError struct {
	Product  string
	Provider string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not find orbit file for %s on %s", e.Product, e.Provider)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func parseErr(kind, name, reason string) error {
	return fmt.Errorf("%w: %s %q: %s", ErrParse, kind, name, reason)
}

func networkErr(err error) error {
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}
