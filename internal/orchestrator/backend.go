package orchestrator

import (
	"github.com/J-Gras/zeek-broker/internal/channel"
	"github.com/J-Gras/zeek-broker/pkg/types"
)

// PeerLink is everything the orchestrator needs from a transport to drive
// one peering: the reliable channel's producer-side contract, a way to ship
// consumer-side control messages and graceful-close sentinels upstream, and
// a routing advertisement send. internal/bridge/ws is the concrete
// implementation; tests use a hand-written fake.
type PeerLink interface {
	channel.ProducerBackend

	// SendUpstream carries a consumer-side message (Ack, Nack) back to the
	// peer that is producing to us.
	SendUpstream(message channel.Message)

	SendBye(token types.ByeToken)
	SendByeAck(token types.ByeToken)
	SendAdvertisement(adv Advertisement)

	Disconnect()
}

// consumerAdapter wraps a PeerLink into a channel.ConsumerBackend, routing
// delivered payloads and gaps back into the orchestrator's own dispatch
// logic instead of handling them itself.
type consumerAdapter struct {
	orch   *Orchestrator
	peerID types.EndpointID
	link   PeerLink
}

func (a *consumerAdapter) Consume(payload []byte) {
	a.orch.handleInboundPayload(a.peerID, payload)
}

func (a *consumerAdapter) ConsumeGap() error {
	return a.orch.handleGap(a.peerID)
}

func (a *consumerAdapter) Send(message channel.Message) {
	a.link.SendUpstream(message)
}

func (a *consumerAdapter) Close(err error) {
	a.orch.handleConsumerClosed(a.peerID, err)
}

// peeringBackendAdapter wraps a PeerLink into peering.Backend.
type peeringBackendAdapter struct {
	link PeerLink
}

func (a *peeringBackendAdapter) SendBye(token types.ByeToken)    { a.link.SendBye(token) }
func (a *peeringBackendAdapter) SendByeAck(token types.ByeToken) { a.link.SendByeAck(token) }
func (a *peeringBackendAdapter) Disconnect()                     { a.link.Disconnect() }
