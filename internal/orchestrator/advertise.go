package orchestrator

import (
	"github.com/J-Gras/zeek-broker/internal/filter"
	"github.com/J-Gras/zeek-broker/pkg/types"
)

// Advertisement is the routing advertisement message:
// {from_id, filter, sub_id→distance map}, exchanged on peering
// establishment and on local filter changes.
type Advertisement struct {
	FromID    types.EndpointID
	Filter    []string
	Distances map[types.EndpointID]int
}

// buildAdvertisement computes the advertisement this node sends to
// exclude, the peering it is tailored for.
//
// The filter sent is the aggregate of the local subscription set and every
// other peer's own advertised filter — split-horizon, the same rule
// distance-vector routing uses to avoid telling a peer about paths that
// only exist through that peer. It's also why forwarding can gate on
// "advertised filter matches" alone: a peering's advertised filter already
// encodes everyone reachable through it who is interested, so that check
// is exactly the shortest-path-toward-interest test — see forward() and
// DESIGN.md.
func (o *Orchestrator) buildAdvertisement(exclude types.EndpointID) Advertisement {
	agg := filter.New()
	agg.Merge(o.localFilter)
	for peerID, entry := range o.peerings {
		if peerID == exclude {
			continue
		}
		agg.Merge(entry.filter)
	}

	return Advertisement{
		FromID:    o.localID,
		Filter:    agg.Prefixes(),
		Distances: o.table.Snapshot(),
	}
}

// advertiseAll sends a tailored Advertisement to every active peering.
func (o *Orchestrator) advertiseAll() {
	for peerID, entry := range o.peerings {
		adv := o.buildAdvertisement(peerID)
		entry.link.SendAdvertisement(adv)
	}
	log.Debug("advertised routing state", "peers", len(o.peerings))
}

// applyAdvertisement merges an inbound Advertisement from a direct peer
// into this node's picture of that peer's interest and reachability.
func (o *Orchestrator) applyAdvertisement(fromPeer types.EndpointID, adv Advertisement) {
	entry, ok := o.peerings[fromPeer]
	if !ok {
		return
	}

	peerFilter := filter.New()
	for _, prefix := range adv.Filter {
		peerFilter.Add(prefix)
	}
	entry.filter = peerFilter

	o.table.AdvertiseFrom(fromPeer, adv.Distances)
	o.scheduleAdvertise()
}
