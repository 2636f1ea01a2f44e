package peering

import "github.com/J-Gras/zeek-broker/pkg/types"

// Kind classifies a peering status observation.
type Kind int

const (
	// PeerAdded is the status a Peering starts with when New constructs it.
	PeerAdded Kind = iota
	// PeerRemoved is reported when the local side initiated a graceful
	// remove that completed (BYE-ACK received or timeout forced).
	PeerRemoved
	// PeerDisconnected is reported when the remote side initiated removal,
	// or the link dropped without either side running the BYE handshake.
	PeerDisconnected
	// PeerIncompatible is reserved for version-negotiation failures; this
	// package never produces it, version negotiation lives outside it.
	PeerIncompatible
)

func (k Kind) String() string {
	switch k {
	case PeerAdded:
		return "peer_added"
	case PeerRemoved:
		return "peer_removed"
	case PeerDisconnected:
		return "peer_disconnected"
	case PeerIncompatible:
		return "peer_incompatible"
	default:
		return "unknown"
	}
}

// Status is the observer-facing snapshot a Peering reports on every
// lifecycle transition.
type Status struct {
	Kind    Kind
	PeerID  types.EndpointID
	Context string
}
