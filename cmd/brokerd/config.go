package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/J-Gras/zeek-broker/pkg/types"
)

// fileConfig is brokerd's on-disk configuration, loaded from a YAML file
// named by --config.
type fileConfig struct {
	// ListenAddress is the host:port the daemon binds its WebSocket
	// listener to for inbound peerings.
	ListenAddress string `yaml:"listen_address"`

	// TickInterval is the wall-clock cadence the logical clock advances
	// at, in the same format time.ParseDuration accepts (1 Hz by
	// default).
	TickInterval string `yaml:"tick_interval"`

	// Subscriptions are topic prefixes subscribed to at startup.
	Subscriptions []string `yaml:"subscriptions"`

	// Peers are addresses dialed at startup.
	Peers []string `yaml:"peers"`

	// MetricsAddress, if non-empty, is the host:port the daemon exposes
	// Prometheus metrics on at /metrics.
	MetricsAddress string `yaml:"metrics_address"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		TickInterval: "1s",
	}
}

func loadFileConfig(path string) (fileConfig, error) {
	cfg := defaultFileConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c fileConfig) tickInterval() (time.Duration, error) {
	if c.TickInterval == "" {
		return time.Second, nil
	}
	return time.ParseDuration(c.TickInterval)
}

// endpointIDFromFlag parses a --id flag value, if one was supplied.
func endpointIDFromFlag(s string) (types.EndpointID, error) {
	if s == "" {
		return types.NewEndpointID(), nil
	}
	return types.EndpointIDFromString(s)
}
