package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/J-Gras/zeek-broker/internal/channel"
	"github.com/J-Gras/zeek-broker/internal/peering"
	"github.com/J-Gras/zeek-broker/internal/wire"
	"github.com/J-Gras/zeek-broker/pkg/types"
)

// fakeLink wires one orchestrator's PeerLink straight into another
// orchestrator's HandleInbound, tagging every delivery with the id the
// receiving orchestrator knows the sender by.
type fakeLink struct {
	other     *Orchestrator
	fromID    types.EndpointID
	byes      []types.ByeToken
	byeAcks   []types.ByeToken
	adverts   []Advertisement
	disconnects int
}

func (l *fakeLink) deliver(message any) {
	if l.other != nil {
		l.other.HandleInbound(l.fromID, message)
	}
}

func (l *fakeLink) Send(_ channel.Handle, message channel.Message) { l.deliver(message) }
func (l *fakeLink) Broadcast(message channel.Message)              { l.deliver(message) }
func (l *fakeLink) SendUpstream(message channel.Message)           { l.deliver(message) }

func (l *fakeLink) SendBye(token types.ByeToken) {
	l.byes = append(l.byes, token)
	l.deliver(peering.Bye{Token: token})
}
func (l *fakeLink) SendByeAck(token types.ByeToken) {
	l.byeAcks = append(l.byeAcks, token)
	l.deliver(peering.ByeAck{Token: token})
}
func (l *fakeLink) SendAdvertisement(adv Advertisement) {
	l.adverts = append(l.adverts, adv)
	l.deliver(adv)
}
func (l *fakeLink) Disconnect() { l.disconnects++ }

func newTestOrchestrator(t *testing.T, onDeliver func(types.DataMessage)) (*Orchestrator, types.EndpointID) {
	id := types.NewEndpointID()
	o, err := New(DefaultConfig(), id, onDeliver)
	require.NoError(t, err)
	return o, id
}

func TestOrchestrator_AddPeering_Duplicate_Fails(t *testing.T) {
	o, _ := newTestOrchestrator(t, nil)
	peerID := types.NewEndpointID()
	link := &fakeLink{}

	require.NoError(t, o.AddPeering(peerID, "addr", link, 5))
	assert.ErrorIs(t, o.AddPeering(peerID, "addr", link, 5), ErrPeerExists)
}

func TestOrchestrator_RemovePeering_Unknown_Fails(t *testing.T) {
	o, _ := newTestOrchestrator(t, nil)
	assert.ErrorIs(t, o.RemovePeering(types.NewEndpointID(), true), ErrPeerNotFound)
}

func TestOrchestrator_AddPeering_InsertsDirectRoute(t *testing.T) {
	o, _ := newTestOrchestrator(t, nil)
	peerID := types.NewEndpointID()
	require.NoError(t, o.AddPeering(peerID, "addr", &fakeLink{}, 5))

	stats := o.RoutingStats()
	assert.Equal(t, 1, stats.Destinations)
}

func TestOrchestrator_RemovePeering_CleansUpOnByeAck(t *testing.T) {
	o, _ := newTestOrchestrator(t, nil)
	peerID := types.NewEndpointID()
	link := &fakeLink{}
	require.NoError(t, o.AddPeering(peerID, "addr", link, 5))

	require.NoError(t, o.RemovePeering(peerID, true))
	require.Len(t, link.byes, 1)

	o.HandleInbound(peerID, peering.ByeAck{Token: link.byes[0]})

	assert.Equal(t, 0, o.PeerCount())
	assert.Equal(t, 0, o.RoutingStats().Destinations)
}

func TestOrchestrator_ForceDisconnect_RemovesPeer(t *testing.T) {
	o, _ := newTestOrchestrator(t, nil)
	peerID := types.NewEndpointID()
	link := &fakeLink{}
	require.NoError(t, o.AddPeering(peerID, "addr", link, 5))

	require.NoError(t, o.ForceDisconnect(peerID))

	assert.Equal(t, 0, o.PeerCount())
	assert.Equal(t, 1, link.disconnects)
}

func TestOrchestrator_HandleInbound_UnknownPeer_Ignored(t *testing.T) {
	o, _ := newTestOrchestrator(t, nil)
	o.HandleInbound(types.NewEndpointID(), channel.Heartbeat{Seq: 1}) // must not panic
}

func TestOrchestrator_HandleInboundPayload_TTLExpired_NotDelivered(t *testing.T) {
	var delivered []types.DataMessage
	o, _ := newTestOrchestrator(t, func(m types.DataMessage) { delivered = append(delivered, m) })
	o.Subscribe("zeek")

	encoded, err := wire.EncodeDataMessage(types.DataMessage{Topic: "zeek/conn", Payload: []byte("x"), TTL: 1})
	require.NoError(t, err)

	o.handleInboundPayload(types.NewEndpointID(), encoded) // decremented to 0, dropped

	assert.Empty(t, delivered)
}

func TestOrchestrator_HandleInboundPayload_NonMatchingTopic_NotDelivered(t *testing.T) {
	var delivered []types.DataMessage
	o, _ := newTestOrchestrator(t, func(m types.DataMessage) { delivered = append(delivered, m) })
	o.Subscribe("zeek/events")

	encoded, err := wire.EncodeDataMessage(types.DataMessage{Topic: "other/topic", Payload: []byte("x"), TTL: 5})
	require.NoError(t, err)

	o.handleInboundPayload(types.NewEndpointID(), encoded)

	assert.Empty(t, delivered)
}

func TestOrchestrator_HandleInboundPayload_Duplicate_DeliveredOnce(t *testing.T) {
	var delivered []types.DataMessage
	o, _ := newTestOrchestrator(t, func(m types.DataMessage) { delivered = append(delivered, m) })
	o.Subscribe("zeek")

	encoded, err := wire.EncodeDataMessage(types.DataMessage{Topic: "zeek/conn", Payload: []byte("x"), TTL: 5})
	require.NoError(t, err)

	fromPeer := types.NewEndpointID()
	o.handleInboundPayload(fromPeer, encoded)
	o.handleInboundPayload(fromPeer, encoded) // same content: deduped

	assert.Len(t, delivered, 1)
}

// TestOrchestrator_EndToEnd_PublishForwardsAndDelivers wires two
// orchestrators so A's outbound reliable channel feeds directly into B's
// inbound dispatch, and checks a Publish on A reaches B's subscriber sink
// once B has advertised interest.
func TestOrchestrator_EndToEnd_PublishForwardsAndDelivers(t *testing.T) {
	var delivered []types.DataMessage
	b, idB := newTestOrchestrator(t, func(m types.DataMessage) { delivered = append(delivered, m) })
	a, idA := newTestOrchestrator(t, nil)

	linkAatB := &fakeLink{other: b, fromID: idA} // A's outbound channel, delivering into B
	linkBatA := &fakeLink{other: a, fromID: idB} // B's outbound channel, delivering into A

	require.NoError(t, b.AddPeering(idA, "a-addr", linkBatA, 5))
	require.NoError(t, a.AddPeering(idB, "b-addr", linkAatB, 5)) // sends the handshake B's consumer-of-A needs

	b.Subscribe("zeek")
	b.Tick() // dampening window (1 tick) elapses, advertisement goes out to A

	a.Publish("zeek/conn", []byte("payload"))

	require.Len(t, delivered, 1)
	assert.Equal(t, "zeek/conn", delivered[0].Topic)
	assert.Equal(t, []byte("payload"), delivered[0].Payload)
}

func TestOrchestrator_EndToEnd_NoMatchingSubscription_NotForwarded(t *testing.T) {
	var delivered []types.DataMessage
	b, idB := newTestOrchestrator(t, func(m types.DataMessage) { delivered = append(delivered, m) })
	a, idA := newTestOrchestrator(t, nil)

	linkAatB := &fakeLink{other: b, fromID: idA}
	linkBatA := &fakeLink{other: a, fromID: idB}

	require.NoError(t, b.AddPeering(idA, "a-addr", linkBatA, 5))
	require.NoError(t, a.AddPeering(idB, "b-addr", linkAatB, 5))

	// B never subscribes to anything: B's advertised filter, held on A's
	// peering entry, matches no topic, so nothing should cross the link.
	a.Publish("zeek/conn", []byte("payload"))

	assert.Empty(t, delivered)
}
