package peering

import (
	"github.com/J-Gras/zeek-broker/internal/channel"
	"github.com/J-Gras/zeek-broker/internal/logger"
	"github.com/J-Gras/zeek-broker/pkg/types"
)

var log = logger.Logger("peering")

// State is a Peering's lifecycle stage.
type State int

const (
	StateActive State = iota
	StateClosing
	StateClosed
)

// Backend carries the two graceful-close sentinel messages and the final
// disconnect signal out to the transport.
// It is deliberately narrower than channel.ProducerBackend/ConsumerBackend:
// BYE/BYE-ACK are not reliable-channel traffic, they ride the peering's
// control path directly.
type Backend interface {
	SendBye(token types.ByeToken)
	SendByeAck(token types.ByeToken)
	Disconnect()
}

// Peering tracks one endpoint-to-endpoint link and its BYE/BYE-ACK graceful
// shutdown handshake. It owns no reliable-channel state itself —
// the orchestrator holds one Producer and one Consumer per Peering, keyed by
// InHandle/OutHandle.
type Peering struct {
	config  Config
	backend Backend

	id          types.PeeringID
	peerID      types.EndpointID
	peerAddress string

	inHandle  channel.Handle
	outHandle channel.Handle

	// heartbeatIntervalTicks is the peer's heartbeat cadence, used to size
	// the BYE timeout (default: the peer's heartbeat_interval × 4). Zero means
	// the peer has heartbeats disabled, in which case a
	// graceful remove has nothing to size a timeout from and waits for the
	// BYE-ACK indefinitely rather than firing on tick one.
	heartbeatIntervalTicks int

	state                    State
	removedFlag              bool
	byeToken                 types.ByeToken
	byeTimeoutTicksRemaining int

	lastStatus Status
	onStatus   func(Status)
}

// New creates an active Peering. heartbeatIntervalTicks is the remote peer's
// heartbeat cadence as supplied by the caller; it sizes the BYE timeout.
func New(config Config, peerID types.EndpointID, peerAddress string, inHandle, outHandle channel.Handle, heartbeatIntervalTicks int, backend Backend) *Peering {
	p := &Peering{
		config:                 config,
		backend:                backend,
		id:                     types.NewPeeringID(),
		peerID:                 peerID,
		peerAddress:            peerAddress,
		inHandle:               inHandle,
		outHandle:              outHandle,
		heartbeatIntervalTicks: heartbeatIntervalTicks,
		state:                  StateActive,
	}
	p.lastStatus = Status{Kind: PeerAdded, PeerID: peerID}
	return p
}

// SetOnStatus installs a callback invoked every time the peering's Status
// changes, letting an owner (the orchestrator) react to a teardown without
// holding a pointer back into it — a narrow callback instead of a
// reference cycle.
func (p *Peering) SetOnStatus(fn func(Status)) { p.onStatus = fn }

func (p *Peering) ID() types.PeeringID         { return p.id }
func (p *Peering) PeerID() types.EndpointID    { return p.peerID }
func (p *Peering) PeerAddress() string         { return p.peerAddress }
func (p *Peering) InHandle() channel.Handle    { return p.inHandle }
func (p *Peering) OutHandle() channel.Handle   { return p.outHandle }
func (p *Peering) State() State                { return p.state }
func (p *Peering) RemovedFlag() bool           { return p.removedFlag }
func (p *Peering) Status() Status              { return p.lastStatus }

// Remove begins a graceful shutdown: it marks the peering as locally
// initiated, mints a random BYE token, and sends it on the outbound stream.
// With withTimeout, a BYE timeout is armed for ticks worth of the peer's
// heartbeat interval × the configured multiplier; Tick must then be called
// for the timeout to ever fire.
func (p *Peering) Remove(withTimeout bool) error {
	if p.state == StateClosed {
		return ErrClosed
	}
	if p.state == StateClosing {
		return ErrAlreadyRemoving
	}

	p.removedFlag = true
	p.byeToken = types.NewByeToken()
	p.state = StateClosing
	p.byeTimeoutTicksRemaining = 0

	if withTimeout && p.heartbeatIntervalTicks > 0 {
		p.byeTimeoutTicksRemaining = p.heartbeatIntervalTicks * p.config.ByeTimeoutMultiplier
	}

	p.backend.SendBye(p.byeToken)
	log.Debug("sent bye", "peer", p.peerID.ShortString(), "with_timeout", withTimeout)
	return nil
}

// HandleByeAck processes an inbound BYE-ACK. A token that does not match the
// one most recently sent is a stale ack from a prior peering instance and is
// silently ignored, which is the whole reason for requiring a random token.
func (p *Peering) HandleByeAck(token types.ByeToken) {
	if p.state != StateClosing {
		return
	}
	if token != p.byeToken {
		log.Debug("ignoring stale bye-ack", "peer", p.peerID.ShortString())
		return
	}
	p.teardown("bye-ack received")
}

// HandleBye processes a peer-initiated BYE: it echoes the token as a
// BYE-ACK and tears down immediately, without waiting for a timeout (the
// peer has already committed to closing).
func (p *Peering) HandleBye(token types.ByeToken) {
	if p.state == StateClosed {
		return
	}
	p.backend.SendByeAck(token)
	p.teardown("peer-initiated bye")
}

// ForceDisconnect tears the peering down immediately, discarding any
// in-flight state, without an ack round trip.
func (p *Peering) ForceDisconnect() {
	if p.state == StateClosed {
		return
	}
	p.teardown("forced disconnect")
}

// Tick advances the BYE timeout by one tick when a graceful remove is
// waiting on an ack; on expiry it force-disconnects.
func (p *Peering) Tick() {
	if p.state != StateClosing || p.byeTimeoutTicksRemaining <= 0 {
		return
	}
	p.byeTimeoutTicksRemaining--
	if p.byeTimeoutTicksRemaining == 0 {
		p.teardown("bye timeout exceeded")
	}
}

func (p *Peering) teardown(context string) {
	p.state = StateClosed
	p.byeTimeoutTicksRemaining = 0
	p.backend.Disconnect()

	kind := PeerDisconnected
	if p.removedFlag {
		kind = PeerRemoved
	}
	p.lastStatus = Status{Kind: kind, PeerID: p.peerID, Context: context}
	log.Info("peering torn down", "peer", p.peerID.ShortString(), "status", kind, "context", context)
	if p.onStatus != nil {
		p.onStatus(p.lastStatus)
	}
}
