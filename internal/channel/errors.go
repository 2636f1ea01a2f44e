package channel

import "errors"

var (
	// ErrConsumerExists is returned by Producer.Add when handle is already
	// registered.
	ErrConsumerExists = errors.New("channel: consumer already exists")

	// ErrBackendError names the backend-error kind. The consumer does not
	// return it: an error from ConsumerBackend's ConsumeGap is passed to
	// Close unwrapped.
	ErrBackendError = errors.New("channel: backend reported a gap error")
)
