package elevation

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed requests: bad bounds, posting without
	// UTM output, unsupported antimeridian boxes.
	ErrValidation = errors.New("invalid DEM request")

	// ErrCoverageRejected means no source covers enough of the box.
	ErrCoverageRejected = errors.New("unable to find a DEM file for that area")

	// ErrCoverageMissing is returned by coverage loaders that have no
	// footprint file for a source.
	ErrCoverageMissing = errors.New("coverage not available")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// CoverageError carries the best candidate found before rejection.
type CoverageError struct {
	Best     Source
	Coverage float64
}

func (e *CoverageError) Error() string {
	return fmt.Sprintf("%v (best %s at %.1f%%)", ErrCoverageRejected, e.Best, e.Coverage*100)
}

func (e *CoverageError) Unwrap() error { return ErrCoverageRejected }
