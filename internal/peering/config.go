package peering

// Config holds the tunables for a Peering's BYE handshake.
type Config struct {
	// ByeTimeoutMultiplier scales the peer's heartbeat interval to derive
	// the grace period a graceful remove waits for the matching BYE-ACK
	// before forcing the disconnect.
	ByeTimeoutMultiplier int
}

// DefaultConfig returns the recommended default: a BYE timeout of four
// peer heartbeat intervals.
func DefaultConfig() Config {
	return Config{ByeTimeoutMultiplier: 4}
}
