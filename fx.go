package broker

import (
	"context"

	"go.uber.org/fx"
)

// ModuleInput is the broker module's fx dependency list: a Config, with
// the zero value falling back to DefaultConfig, and any Options the host
// application wants applied on top of it.
type ModuleInput struct {
	fx.In

	Config  *Config  `optional:"true"`
	Options []Option `optional:"true"`
}

// ModuleOutput is what the broker module provides to the rest of an fx
// graph: the running Endpoint.
type ModuleOutput struct {
	fx.Out

	Endpoint *Endpoint
}

// ProvideEndpoint constructs an Endpoint from the module's inputs. Start is
// deferred to the fx.Lifecycle hook registered by Module, so construction
// here never binds a socket.
func ProvideEndpoint(input ModuleInput) (ModuleOutput, error) {
	opts := input.Options
	if input.Config != nil {
		opts = append([]Option{WithConfig(*input.Config)}, opts...)
	}

	endpoint, err := New(opts...)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Endpoint: endpoint}, nil
}

// Module returns the fx.Option wiring an Endpoint into an application's fx
// graph, starting it on fx.Lifecycle's OnStart and closing it on OnStop.
func Module() fx.Option {
	return fx.Module("broker",
		fx.Provide(ProvideEndpoint),
		fx.Invoke(registerLifecycle),
	)
}

type lifecycleInput struct {
	fx.In
	LC       fx.Lifecycle
	Endpoint *Endpoint
}

func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return input.Endpoint.Start()
		},
		OnStop: func(context.Context) error {
			return input.Endpoint.Close()
		},
	})
}
