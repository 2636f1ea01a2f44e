package types

import (
	"encoding/binary"
	"errors"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// ErrInvalidEndpointID is returned when decoding a malformed endpoint id.
var ErrInvalidEndpointID = errors.New("types: invalid endpoint id")

// EndpointID is an opaque, globally-unique identifier for a node on the bus.
//
// It is a 128-bit random value. Equality is value
// equality and map keys work directly, giving it a total order suitable for
// deterministic iteration in tests.
type EndpointID [16]byte

// EmptyEndpointID is the zero value, never assigned to a real endpoint.
var EmptyEndpointID EndpointID

// NewEndpointID generates a fresh random endpoint id.
func NewEndpointID() EndpointID {
	return EndpointID(uuid.New())
}

// String returns the canonical base58 form of the id.
func (id EndpointID) String() string {
	if id.IsEmpty() {
		return ""
	}
	return base58.Encode(id[:])
}

// ShortString returns the first 8 characters of the base58 form, for logs.
func (id EndpointID) ShortString() string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// IsEmpty reports whether id is the zero value.
func (id EndpointID) IsEmpty() bool {
	return id == EmptyEndpointID
}

// Less gives EndpointID a total order, used where deterministic iteration
// over a set of endpoints matters (e.g. tie-breaking in tests).
func (id EndpointID) Less(other EndpointID) bool {
	for i := range id {
		if id[i] != other[i] {
			return id[i] < other[i]
		}
	}
	return false
}

// EndpointIDFromString parses the base58 form produced by String.
func EndpointIDFromString(s string) (EndpointID, error) {
	if s == "" {
		return EmptyEndpointID, nil
	}
	decoded, err := base58.Decode(s)
	if err != nil || len(decoded) != 16 {
		return EmptyEndpointID, ErrInvalidEndpointID
	}
	var id EndpointID
	copy(id[:], decoded)
	return id, nil
}

// PeeringID uniquely identifies one peering instance, scoped to a single
// endpoint's lifetime. A new PeeringID is minted for every Peering
// constructed, so a re-established link gets a different id.
type PeeringID [16]byte

// NewPeeringID generates a fresh random peering id.
func NewPeeringID() PeeringID {
	return PeeringID(uuid.New())
}

// String returns the canonical base58 form of the id.
func (id PeeringID) String() string {
	return base58.Encode(id[:])
}

// ByeToken is the random value carried by a BYE and echoed by its BYE-ACK.
//
// It MUST be random, not a counter, so that a stale ack from a
// torn-down peering is never confused with the current one.
type ByeToken uint64

// NewByeToken generates a fresh random token from a UUID's first 8 bytes.
func NewByeToken() ByeToken {
	id := uuid.New()
	return ByeToken(binary.BigEndian.Uint64(id[:8]))
}
