// Package clock implements broker's logical (Lamport) clock and the
// wall-clock driver that advances it on a fixed cadence.
package clock

import "github.com/J-Gras/zeek-broker/pkg/types"

// Clock is a monotonic 64-bit tick counter local to one component.
//
// It is not safe for concurrent use by design: every component that owns a
// Clock (a channel producer, a channel consumer) runs in a single-threaded
// region, so no internal locking is needed.
type Clock struct {
	now types.Timestamp
}

// New returns a Clock starting at tick 0.
func New() *Clock {
	return &Clock{}
}

// Tick advances the clock by one and returns the new value.
func (c *Clock) Tick() types.Timestamp {
	c.now++
	return c.now
}

// Now returns the current tick without advancing it.
func (c *Clock) Now() types.Timestamp {
	return c.now
}
