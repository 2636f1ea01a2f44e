package routing

import "errors"

var (
	// ErrInvalidEntry is returned when insert is called with a zero-value
	// next hop or a negative distance.
	ErrInvalidEntry = errors.New("routing: invalid entry")
)
