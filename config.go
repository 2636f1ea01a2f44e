package broker

import (
	"time"

	"github.com/J-Gras/zeek-broker/internal/orchestrator"
)

// Config holds every tunable an Endpoint needs beyond the per-component
// defaults internal/orchestrator already carries.
type Config struct {
	// Orchestrator holds the channel/peering/routing tunables.
	Orchestrator orchestrator.Config

	// TickInterval is the wall-clock cadence the logical clock advances at
	// (1 Hz by default; tests inject their own clock.Driver instead of
	// going through Config at all).
	TickInterval time.Duration

	// PeerHeartbeatIntervalTicks is the heartbeat cadence assumed for every
	// peer; each new peering uses it to size its BYE timeout. The channel
	// handshake carries Orchestrator.Channel.HeartbeatIntervalTicks instead.
	PeerHeartbeatIntervalTicks int

	// ListenAddress, if non-empty, is the host:port Start binds a
	// WebSocket listener to for inbound peerings. Leave empty for an
	// endpoint that only dials out.
	ListenAddress string
}

// DefaultConfig returns a 1 Hz tick cadence plus the orchestrator's own
// defaults. ListenAddress is left empty.
func DefaultConfig() Config {
	return Config{
		Orchestrator:               orchestrator.DefaultConfig(),
		TickInterval:               time.Second,
		PeerHeartbeatIntervalTicks: orchestrator.DefaultConfig().Channel.HeartbeatIntervalTicks,
	}
}
