package orchestrator

import (
	"github.com/J-Gras/zeek-broker/internal/store"
	"github.com/J-Gras/zeek-broker/internal/wire"
	"github.com/J-Gras/zeek-broker/pkg/types"
)

// Publish originates a data_message locally: the same dispatch rules
// run exactly as they would for a message arriving from a peer, except a
// locally-originated message starts at a fresh DefaultTTL and is never
// decremented for the hop that created it.
func (o *Orchestrator) Publish(topic string, payload []byte) {
	msg := types.DataMessage{Topic: topic, Payload: payload, TTL: types.DefaultTTL}
	o.seen.SeenBefore(store.Key(msg.Topic, msg.Payload))
	o.metrics.IncPublished()

	if o.localFilter.Matches(msg.Topic) {
		o.deliverLocal(msg)
	}
	o.forward(types.EmptyEndpointID, msg)
}

// handleInboundPayload decodes and dispatches a data_message delivered by
// one peering's reliable channel.
func (o *Orchestrator) handleInboundPayload(fromPeer types.EndpointID, payload []byte) {
	msg, err := wire.DecodeDataMessage(payload)
	if err != nil {
		log.Warn("dropping undecodable data message", "from", fromPeer.ShortString(), "error", err)
		return
	}

	key := store.Key(msg.Topic, msg.Payload)
	if o.seen.SeenBefore(key) {
		o.metrics.IncDuplicateDropped()
		return
	}

	msg.TTL--
	if msg.TTL <= 0 {
		o.metrics.IncTTLExpired()
		return
	}

	if o.localFilter.Matches(msg.Topic) {
		o.deliverLocal(msg)
	}
	o.forward(fromPeer, msg)
}

// handleGap is the reliable channel's retransmit_failed callback: the
// orchestrator has no way to recover the lost data_message, it just logs
// the gap and continues — the channel's own ordering guarantee
// means only this one message is lost, not the stream.
func (o *Orchestrator) handleGap(fromPeer types.EndpointID) error {
	log.Warn("data message permanently lost", "from", fromPeer.ShortString())
	return nil
}

func (o *Orchestrator) handleConsumerClosed(fromPeer types.EndpointID, err error) {
	log.Warn("consumer closed", "from", fromPeer.ShortString(), "error", err)
	if entry, ok := o.peerings[fromPeer]; ok {
		entry.peering.ForceDisconnect()
	}
}

// deliverLocal hands msg to the subscriber sink, if one is installed.
func (o *Orchestrator) deliverLocal(msg types.DataMessage) {
	o.metrics.IncDelivered()
	if o.onDeliver != nil {
		o.onDeliver(msg)
	}
}

// forward sends msg out every peering that is a candidate next hop for it,
// skipping the peering it arrived on — never forward back on the ingress
// peering. ingress is types.EmptyEndpointID for a locally
// originated publish, which matches no real peer id.
func (o *Orchestrator) forward(ingress types.EndpointID, msg types.DataMessage) {
	encoded, err := wire.EncodeDataMessage(msg)
	if err != nil {
		log.Error("failed to encode data message for forwarding", "error", err)
		return
	}

	forwarded := 0
	for peerID, entry := range o.peerings {
		if peerID == ingress {
			continue
		}
		if !entry.filter.Matches(msg.Topic) {
			continue
		}
		if _, reachable := o.table.DistanceTo(peerID); !reachable {
			continue // no longer a routable next hop, e.g. mid-teardown
		}

		entry.producer.Produce(encoded)
		forwarded++
	}
	if forwarded > 0 {
		o.metrics.IncForwarded()
	}
}
