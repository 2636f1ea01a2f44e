package ws

import "errors"

var ErrConnClosed = errors.New("ws: connection closed")
var ErrListenerClosed = errors.New("ws: listener closed")
