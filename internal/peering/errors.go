package peering

import "errors"

// ErrAlreadyRemoving is returned by Remove when the peering is already
// tearing down.
var ErrAlreadyRemoving = errors.New("peering: already removing")

// ErrClosed is returned by operations attempted on a peering that has
// already torn down.
var ErrClosed = errors.New("peering: closed")
