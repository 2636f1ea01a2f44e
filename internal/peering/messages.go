package peering

import "github.com/J-Gras/zeek-broker/pkg/types"

// Bye and ByeAck are the two wire-level graceful-close sentinel types —
// values an orchestrator's inbound dispatch type-switches on to route into
// HandleBye / HandleByeAck.
type Bye struct {
	Token types.ByeToken
}

type ByeAck struct {
	Token types.ByeToken
}
