package channel

import "github.com/J-Gras/zeek-broker/pkg/types"

// Handle identifies one consumer from the producer's point of view. It is
// opaque to the channel — in practice the orchestrator passes
// the peering id or a local-subscriber tag.
type Handle string

// Seq is a per-producer-channel sequence number. 0 is reserved as the
// sentinel meaning "before handshake".
type Seq uint64

// Event is one produced value: a sequence number and an opaque payload.
type Event struct {
	Seq     Seq
	Payload []byte
}

// OptionalEvent is a consumer buffer slot: a sequence number whose payload
// may be absent (the producer reported retransmit_failed for it).
type OptionalEvent struct {
	Seq     Seq
	Payload []byte
	Present bool
}

// Handshake carries the first sequence number a fresh consumer must expect
// and the producer's heartbeat cadence in ticks.
type Handshake struct {
	FirstSeq          Seq
	HeartbeatInterval int
}

// Ack is a cumulative acknowledgement: "I have delivered everything up to
// and including Seq."
type Ack struct {
	Seq Seq
}

// Nack lists missing sequence numbers a consumer requests. Seqs == [0] is a
// special request to resend the handshake.
type Nack struct {
	Seqs []Seq
}

// RetransmitFailed signals that the producer has discarded Seq and cannot
// resend it.
type RetransmitFailed struct {
	Seq Seq
}

// Heartbeat carries the producer's current head sequence number, letting
// idle consumers learn of events they may be missing.
type Heartbeat struct {
	Seq Seq
}

// Message is the set of values a producer may unicast/broadcast downstream,
// or a consumer may send upstream. It is intentionally a closed set of
// concrete types rather than an interface with behavior — the channel
// package does not interpret message contents beyond dispatching on type.
type Message any

// Path is the producer's bookkeeping for one downstream consumer.
type Path struct {
	Handle         Handle
	Offset         Seq // producer's seq when this consumer was added
	Acked          Seq
	FirstAckedTick types.Timestamp
	LastAckedTick  types.Timestamp
}

// State classifies a Path for observability only; it has no
// effect on behavior.
type PathState int

const (
	PathPending PathState = iota
	PathProgressing
	PathCaughtUp
)

// State returns the path's observable state: pending while no cumulative
// progress has been made since it was added, caught_up once acked reaches
// the producer's current seq, progressing in between.
func (p Path) State(producerSeq Seq) PathState {
	switch {
	case p.Acked == producerSeq:
		return PathCaughtUp
	case p.Acked == p.Offset:
		return PathPending
	default:
		return PathProgressing
	}
}
