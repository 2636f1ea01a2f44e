package channel

// Config holds a channel's tunable parameters.
// Zero-value construction is unsafe; use DefaultConfig.
type Config struct {
	// HeartbeatIntervalTicks is the producer's heartbeat cadence. 0
	// disables heartbeats.
	HeartbeatIntervalTicks int

	// NackTimeoutTicks is how long a consumer stays idle with
	// next_seq < last_seq before it re-sends a nack.
	NackTimeoutTicks int

	// SendBufferHighWater optionally bounds the producer's retained event
	// count; 0 means unbounded. When set, produce evicts the oldest event
	// once the bound is exceeded, and later nacks for an evicted seq yield
	// retransmit_failed.
	SendBufferHighWater int
}

// DefaultConfig returns the recommended defaults: 5-tick heartbeat,
// 5-tick nack timeout, unbounded buffer.
func DefaultConfig() Config {
	return Config{
		HeartbeatIntervalTicks: 5,
		NackTimeoutTicks:       5,
		SendBufferHighWater:    0,
	}
}
