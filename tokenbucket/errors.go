package tokenbucket

import "errors"

var (
	// ErrInvalidCapacity is returned when the bucket capacity is zero or negative.
	ErrInvalidCapacity = errors.New("bucket capacity must be positive")

	// ErrInvalidRefillRate is returned when the refill rate is zero or negative.
	ErrInvalidRefillRate = errors.New("refill rate must be positive")

	// ErrInvalidRefillInterval is returned when the refill interval is zero or negative.
	// A non-positive interval would divide by zero in the refill arithmetic.
	ErrInvalidRefillInterval = errors.New("refill interval must be positive")
)
