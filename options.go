package broker

import (
	"github.com/J-Gras/zeek-broker/internal/metrics"
	"github.com/J-Gras/zeek-broker/pkg/types"
)

// Option configures an Endpoint at construction time.
type Option func(*Endpoint) error

// WithConfig overrides the default Config.
func WithConfig(config Config) Option {
	return func(e *Endpoint) error {
		e.config = config
		return nil
	}
}

// WithEndpointID pins the local endpoint id instead of generating a random
// one. Mainly useful for tests that need a stable id across restarts.
func WithEndpointID(id types.EndpointID) Option {
	return func(e *Endpoint) error {
		e.localID = id
		return nil
	}
}

// WithListenAddress sets the host:port Start binds its WebSocket listener
// to, overriding Config.ListenAddress.
func WithListenAddress(addr string) Option {
	return func(e *Endpoint) error {
		e.config.ListenAddress = addr
		return nil
	}
}

// WithOnDeliver installs the callback invoked for every data_message
// matching the local subscription filter, including ones this endpoint
// publishes itself. It must not block: it runs on the endpoint's single
// dispatch goroutine, same as every other orchestrator call.
func WithOnDeliver(fn func(types.DataMessage)) Option {
	return func(e *Endpoint) error {
		e.onDeliver = fn
		return nil
	}
}

// WithMetrics installs a Prometheus-backed registry that both the
// orchestrator's global counters and every peering's reliable channel
// report into.
func WithMetrics(registry *metrics.Registry) Option {
	return func(e *Endpoint) error {
		e.metrics = registry
		return nil
	}
}
