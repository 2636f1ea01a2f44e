package types

// Timestamp is a Lamport tick: a monotonically increasing counter local to
// one clock instance. At 1000 ticks/s it takes north of 10^6
// years to wrap a 64-bit counter, so wraparound is not handled.
type Timestamp int64

// Sub returns the non-negative number of ticks between t and other.
//
// Subtraction always returns a non-negative difference; callers
// pass the earlier timestamp as other.
func (t Timestamp) Sub(other Timestamp) int64 {
	d := int64(t) - int64(other)
	if d < 0 {
		return -d
	}
	return d
}
