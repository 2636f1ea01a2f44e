package orchestrator

import (
	"github.com/J-Gras/zeek-broker/internal/channel"
	"github.com/J-Gras/zeek-broker/internal/peering"
)

// Config holds the tunables for an orchestrator and the components it
// builds one of per peering.
type Config struct {
	Channel  channel.Config
	Peering  peering.Config
	// SeenCacheSize bounds the dedup cache's retained message keys.
	SeenCacheSize int
	// AdvertiseDampeningTicks is the minimum number of ticks between two
	// routing-advertisement broadcasts.
	AdvertiseDampeningTicks int64
}

// DefaultConfig returns the recognized environment defaults plus this
// module's own dampening and cache-size choices.
func DefaultConfig() Config {
	return Config{
		Channel:                 channel.DefaultConfig(),
		Peering:                 peering.DefaultConfig(),
		SeenCacheSize:           4096,
		AdvertiseDampeningTicks: 1,
	}
}
