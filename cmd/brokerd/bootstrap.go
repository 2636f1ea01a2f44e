package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	broker "github.com/J-Gras/zeek-broker"
	"github.com/J-Gras/zeek-broker/internal/metrics"
)

// bootstrapParams are the dependencies bootstrapEndpoint needs from the fx
// graph.
type bootstrapParams struct {
	fx.In
	LC       fx.Lifecycle
	Endpoint *broker.Endpoint
}

// registerBootstrap appends an OnStart hook that runs after broker.Module's
// own OnStart (Endpoint.Start), since it depends on the dispatch goroutine
// already running: dialing configured peers and installing subscriptions.
// OnStop tears down the metrics server it may have started.
func registerBootstrap(fileCfg fileConfig, registry *metrics.Registry) func(bootstrapParams) {
	return func(params bootstrapParams) {
		var metricsServer *http.Server

		params.LC.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				for _, prefix := range fileCfg.Subscriptions {
					if err := params.Endpoint.Subscribe(prefix); err != nil {
						return fmt.Errorf("subscribe %q: %w", prefix, err)
					}
				}

				for _, addr := range fileCfg.Peers {
					if _, err := params.Endpoint.Peer(ctx, addr); err != nil {
						return fmt.Errorf("peer %s: %w", addr, err)
					}
				}

				if fileCfg.MetricsAddress != "" {
					mux := http.NewServeMux()
					mux.Handle("/metrics", promhttp.HandlerFor(registry.Registerer(), promhttp.HandlerOpts{}))
					metricsServer = &http.Server{Addr: fileCfg.MetricsAddress, Handler: mux}
					go func() {
						if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
							log.Error("metrics server stopped", "error", err)
						}
					}()
				}
				return nil
			},
			OnStop: func(ctx context.Context) error {
				if metricsServer == nil {
					return nil
				}
				return metricsServer.Shutdown(ctx)
			},
		})
	}
}
