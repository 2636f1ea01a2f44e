package wire

import "github.com/J-Gras/zeek-broker/pkg/types"

// Identify is the first frame either side of a fresh connection sends,
// naming the endpoint id the rest of the connection's traffic should be
// attributed to. The core's peerings are addressed by endpoint id from the
// moment they exist, but a WebSocket dial carries no endpoint id of its
// own, so the bridge has to learn one before it can hand the connection to
// the orchestrator as a PeerLink.
type Identify struct {
	EndpointID types.EndpointID
}
