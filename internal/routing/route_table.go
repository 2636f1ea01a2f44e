// Package routing implements a per-destination distance table: a multimap
// from destination endpoint id to the set of next hops that can reach it,
// each tagged with a hop-count distance.
package routing

import (
	"sort"
	"sync"

	"github.com/J-Gras/zeek-broker/pkg/types"
)

// Table is a mutex-guarded multimap: destination endpoint id -> next hop
// endpoint id -> distance. It is safe for concurrent use, mirroring the
// though the metric here is a plain hop count rather than Kademlia XOR
// distance.
type Table struct {
	mu sync.RWMutex

	localID types.EndpointID
	// dst -> nextHop -> distance
	entries map[types.EndpointID]map[types.EndpointID]int
}

// New returns a Table for localID. distance_to(localID) is always 0,
// regardless of what is inserted.
func New(localID types.EndpointID) *Table {
	return &Table{
		localID: localID,
		entries: make(map[types.EndpointID]map[types.EndpointID]int),
	}
}

// Insert records that dst is reachable via nextHop at distance. It is
// idempotent on (dst, nextHop): if an entry already exists, the distance is
// updated only when the new value is lower.
func (t *Table) Insert(dst, nextHop types.EndpointID, distance int) error {
	if nextHop.IsEmpty() || distance < 0 {
		return ErrInvalidEntry
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	hops, ok := t.entries[dst]
	if !ok {
		hops = make(map[types.EndpointID]int)
		t.entries[dst] = hops
	}

	if cur, exists := hops[nextHop]; !exists || distance < cur {
		hops[nextHop] = distance
	}
	return nil
}

// InsertDirect records a direct peering to peer: a single hop at distance 1,
// with peer itself as the next hop: if A is directly peered to B,
// distance_B(A) = distance_A(B) = 1.
func (t *Table) InsertDirect(peer types.EndpointID) error {
	return t.Insert(peer, peer, 1)
}

// RemoveNextHop drops every entry routed through nextHop, across every
// destination — used when a peering is torn down.
func (t *Table) RemoveNextHop(nextHop types.EndpointID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for dst, hops := range t.entries {
		delete(hops, nextHop)
		if len(hops) == 0 {
			delete(t.entries, dst)
		}
	}
}

// DistanceTo returns the minimum distance to dst across all recorded next
// hops. It returns (0, true) for the local endpoint itself, and
// (0, false) if dst is unreachable.
func (t *Table) DistanceTo(dst types.EndpointID) (int, bool) {
	if dst == t.localID {
		return 0, true
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	hops, ok := t.entries[dst]
	if !ok || len(hops) == 0 {
		return 0, false
	}

	min := -1
	for _, d := range hops {
		if min == -1 || d < min {
			min = d
		}
	}
	return min, true
}

// NextHopsForDst returns every next hop tied for the minimum distance to
// dst, sorted for deterministic iteration. It returns nil if dst is
// unreachable or is the local endpoint (self has no next hop).
func (t *Table) NextHopsForDst(dst types.EndpointID) []types.EndpointID {
	if dst == t.localID {
		return nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	hops, ok := t.entries[dst]
	if !ok || len(hops) == 0 {
		return nil
	}

	min := -1
	for _, d := range hops {
		if min == -1 || d < min {
			min = d
		}
	}

	out := make([]types.EndpointID, 0, len(hops))
	for nh, d := range hops {
		if d == min {
			out = append(out, nh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// AdvertiseFrom merges a routing advertisement received from peer:
// advertised is the peer's own dst -> distance map. Every distance is
// incremented by one hop before insertion (the advertised path now runs
// through peer), and any entry whose destination is the local endpoint is
// ignored.
func (t *Table) AdvertiseFrom(peer types.EndpointID, advertised map[types.EndpointID]int) {
	for dst, distance := range advertised {
		if dst == t.localID {
			continue
		}
		_ = t.Insert(dst, peer, distance+1)
	}
}

// Snapshot returns the minimum distance to every known destination, the
// shape used to build this node's own advertisement to its peers.
func (t *Table) Snapshot() map[types.EndpointID]int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[types.EndpointID]int, len(t.entries))
	for dst, hops := range t.entries {
		min := -1
		for _, d := range hops {
			if min == -1 || d < min {
				min = d
			}
		}
		out[dst] = min
	}
	return out
}

// Stats summarizes the table's size.
type Stats struct {
	Destinations int
	Entries      int
}

// Stats returns the current table statistics.
func (t *Table) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := Stats{Destinations: len(t.entries)}
	for _, hops := range t.entries {
		stats.Entries += len(hops)
	}
	return stats
}
