package broker

import "errors"

// ErrClosed is returned by any Endpoint method called after Close.
var ErrClosed = errors.New("broker: endpoint closed")

// ErrAlreadyStarted is returned by Start if the endpoint is already running.
var ErrAlreadyStarted = errors.New("broker: endpoint already started")
