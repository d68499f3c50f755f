package growth

import "errors"

var (
	// ErrInsufficientData means the series has fewer than two measurements.
	// It is a displayable state, not a failure.
	ErrInsufficientData = errors.New("not enough measurements to calculate growth rate")

	// ErrDegenerateInterval means the earliest and latest measurements share
	// the same instant, so no rate exists.
	ErrDegenerateInterval = errors.New("time difference is zero")

	// ErrDegenerateBase means the initial density is zero and a percentage
	// change cannot be expressed.
	ErrDegenerateBase = errors.New("initial green density is zero")

	// ErrNonFinite guards against NaN or Inf leaking out of a computation.
	ErrNonFinite = errors.New("computation produced a non-finite value")

	// ErrInvalidMeasurement is returned by Measurement.Validate.
	ErrInvalidMeasurement = errors.New("invalid measurement")
)

// IsEmpty reports whether err should be presented as "no growth data yet"
// rather than as an error.
func IsEmpty(err error) bool {
	return errors.Is(err, ErrInsufficientData) || errors.Is(err, ErrDegenerateInterval)
}
