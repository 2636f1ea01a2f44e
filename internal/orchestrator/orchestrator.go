package orchestrator

import (
	"github.com/J-Gras/zeek-broker/internal/channel"
	"github.com/J-Gras/zeek-broker/internal/clock"
	"github.com/J-Gras/zeek-broker/internal/filter"
	"github.com/J-Gras/zeek-broker/internal/logger"
	"github.com/J-Gras/zeek-broker/internal/peering"
	"github.com/J-Gras/zeek-broker/internal/routing"
	"github.com/J-Gras/zeek-broker/internal/store"
	"github.com/J-Gras/zeek-broker/pkg/types"
)

var log = logger.Logger("orchestrator")

// peeringEntry is everything the orchestrator tracks for one peer_id: one
// reliable-channel producer per peering (outbound), and one consumer per
// peering (inbound).
type peeringEntry struct {
	peering  *peering.Peering
	producer *channel.Producer
	consumer *channel.Consumer
	link     PeerLink

	// filter is the peer's own advertised subscription interest, learned
	// from its Advertisement messages — gates forwarding toward it.
	filter *filter.Filter
}

// Orchestrator is one endpoint's core: it owns every peering, the routing
// table, the local filter and subscriber sink, and dispatches data_messages
// between them. Like channel.Producer/Consumer it owns a single-threaded
// region — every method runs at a suspension point and must not be called
// concurrently.
type Orchestrator struct {
	config         Config
	clk            *clock.Clock
	metrics        Metrics
	channelMetrics ChannelMetricsFactory

	localID     types.EndpointID
	localFilter *filter.Filter
	table       *routing.Table
	seen        *store.SeenCache

	peerings map[types.EndpointID]*peeringEntry

	onDeliver func(types.DataMessage)

	advertisePending     bool
	ticksSinceAdvertise  int64
}

// New creates an Orchestrator for localID. onDeliver, if non-nil, is
// called for every data_message matching the local filter.
func New(config Config, localID types.EndpointID, onDeliver func(types.DataMessage)) (*Orchestrator, error) {
	seen, err := store.NewSeenCache(config.SeenCacheSize)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		config:      config,
		clk:         clock.New(),
		metrics:     noopMetrics{},
		localID:     localID,
		localFilter: filter.New(),
		table:       routing.New(localID),
		seen:        seen,
		peerings:    make(map[types.EndpointID]*peeringEntry),
		onDeliver:   onDeliver,
	}, nil
}

// SetMetrics installs a Metrics sink; pass nil to go back to discarding.
func (o *Orchestrator) SetMetrics(m Metrics) {
	if m == nil {
		m = noopMetrics{}
	}
	o.metrics = m
}

// SetChannelMetrics installs the factory used to give every peering's
// reliable channel its own Metrics sink, e.g. one labeled by peer id.
// Peerings already added keep whatever they had; it only takes effect for
// peerings added afterward.
func (o *Orchestrator) SetChannelMetrics(factory ChannelMetricsFactory) {
	o.channelMetrics = factory
}

// LocalID returns this orchestrator's endpoint id.
func (o *Orchestrator) LocalID() types.EndpointID { return o.localID }

// Subscribe adds prefix to the local filter and schedules a re-advertise.
func (o *Orchestrator) Subscribe(prefix string) {
	o.localFilter.Add(prefix)
	o.scheduleAdvertise()
}

// Unsubscribe removes prefix from the local filter and schedules a
// re-advertise.
func (o *Orchestrator) Unsubscribe(prefix string) {
	o.localFilter.Remove(prefix)
	o.scheduleAdvertise()
}

// RoutingStats exposes the routing table's size, for Endpoint.RoutingStats.
func (o *Orchestrator) RoutingStats() routing.Stats { return o.table.Stats() }

// PeerCount returns the number of peerings currently tracked.
func (o *Orchestrator) PeerCount() int { return len(o.peerings) }

// PeerIDs returns the peer ids of every tracked peering.
func (o *Orchestrator) PeerIDs() []types.EndpointID {
	out := make([]types.EndpointID, 0, len(o.peerings))
	for id := range o.peerings {
		out = append(out, id)
	}
	return out
}

// PeeringStatus returns the current Status of a tracked peer's peering.
func (o *Orchestrator) PeeringStatus(peerID types.EndpointID) (peering.Status, bool) {
	entry, ok := o.peerings[peerID]
	if !ok {
		return peering.Status{}, false
	}
	return entry.peering.Status(), true
}

// AddPeering registers a newly established link to peerID, sends it the
// producer's channel handshake, and schedules a routing advertisement for
// the next Tick.
func (o *Orchestrator) AddPeering(peerID types.EndpointID, peerAddress string, link PeerLink, peerHeartbeatIntervalTicks int) error {
	if _, exists := o.peerings[peerID]; exists {
		return ErrPeerExists
	}

	handle := channel.Handle(peerID.String())

	producer := channel.NewProducer(o.config.Channel, link)
	consumer := channel.NewConsumer(o.config.Channel, &consumerAdapter{orch: o, peerID: peerID, link: link})

	entry := &peeringEntry{
		producer: producer,
		consumer: consumer,
		link:     link,
		filter:   filter.New(),
	}
	entry.peering = peering.New(o.config.Peering, peerID, peerAddress, handle, handle, peerHeartbeatIntervalTicks, &peeringBackendAdapter{link: link})
	entry.peering.SetOnStatus(func(status peering.Status) {
		o.handlePeeringStatus(peerID, status)
	})

	if o.channelMetrics != nil {
		producer.SetMetrics(o.channelMetrics(peerID))
		consumer.SetMetrics(o.channelMetrics(peerID))
	}

	if err := producer.Add(handle); err != nil {
		return err
	}

	o.peerings[peerID] = entry
	_ = o.table.InsertDirect(peerID)
	o.metrics.IncPeeringAdded()
	o.metrics.ObservePeerCount(len(o.peerings))
	o.scheduleAdvertise()

	log.Info("peering added", "peer", peerID.ShortString(), "address", peerAddress)
	return nil
}

// RemovePeering begins a graceful remove of peerID's peering. Cleanup of
// the routing table and peerings map happens once the BYE handshake
// completes (or times out), via handlePeeringStatus.
func (o *Orchestrator) RemovePeering(peerID types.EndpointID, withTimeout bool) error {
	entry, ok := o.peerings[peerID]
	if !ok {
		return ErrPeerNotFound
	}
	return entry.peering.Remove(withTimeout)
}

// ForceDisconnect immediately tears down peerID's peering without a BYE
// round trip.
func (o *Orchestrator) ForceDisconnect(peerID types.EndpointID) error {
	entry, ok := o.peerings[peerID]
	if !ok {
		return ErrPeerNotFound
	}
	entry.peering.ForceDisconnect()
	return nil
}

// handlePeeringStatus is the peering.Peering status callback: once a
// peering reaches a terminal status, its bookkeeping is torn down here.
func (o *Orchestrator) handlePeeringStatus(peerID types.EndpointID, status peering.Status) {
	switch status.Kind {
	case peering.PeerRemoved, peering.PeerDisconnected:
		delete(o.peerings, peerID)
		o.table.RemoveNextHop(peerID)
		o.metrics.IncPeeringRemoved()
		o.metrics.ObservePeerCount(len(o.peerings))
		o.scheduleAdvertise()
		log.Info("peering removed", "peer", peerID.ShortString(), "status", status.Kind, "context", status.Context)
	}
}

// HandleInbound dispatches one message received from peerID's link to the
// component that owns it: the reliable channel's consumer or producer, the
// peering's BYE handshake, or the routing advertisement merge.
func (o *Orchestrator) HandleInbound(peerID types.EndpointID, message any) {
	entry, ok := o.peerings[peerID]
	if !ok {
		log.Debug("inbound message for unknown peering, ignoring", "peer", peerID.ShortString())
		return
	}

	switch m := message.(type) {
	case channel.Handshake:
		entry.consumer.HandleHandshake(m.FirstSeq, m.HeartbeatInterval)
	case channel.Heartbeat:
		entry.consumer.HandleHeartbeat(m.Seq)
	case channel.Event:
		entry.consumer.HandleEvent(m.Seq, m.Payload)
	case channel.RetransmitFailed:
		entry.consumer.HandleRetransmitFailed(m.Seq)
	case channel.Ack:
		entry.producer.HandleAck(channel.Handle(peerID.String()), m.Seq)
	case channel.Nack:
		entry.producer.HandleNack(channel.Handle(peerID.String()), m.Seqs)
	case peering.Bye:
		entry.peering.HandleBye(m.Token)
	case peering.ByeAck:
		entry.peering.HandleByeAck(m.Token)
	case Advertisement:
		o.applyAdvertisement(peerID, m)
	default:
		log.Warn("unrecognized inbound message type, ignoring", "peer", peerID.ShortString())
	}
}

func (o *Orchestrator) scheduleAdvertise() {
	o.advertisePending = true
}

// Tick advances every owned component by one logical tick and, once the
// dampening window has elapsed, flushes any pending routing advertisement.
func (o *Orchestrator) Tick() {
	o.clk.Tick()

	for _, entry := range o.peerings {
		entry.producer.Tick()
		entry.consumer.Tick()
		entry.peering.Tick()
	}

	o.ticksSinceAdvertise++
	if o.advertisePending && o.ticksSinceAdvertise >= o.config.AdvertiseDampeningTicks {
		o.advertiseAll()
		o.advertisePending = false
		o.ticksSinceAdvertise = 0
	}
}
