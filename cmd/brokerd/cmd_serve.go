package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	broker "github.com/J-Gras/zeek-broker"
	"github.com/J-Gras/zeek-broker/internal/metrics"
)

const (
	startTimeout = 10 * time.Second
	stopTimeout  = 10 * time.Second
)

func serveCmd(configPath *string) *cobra.Command {
	var (
		listenAddress string
		endpointID    string
		metricsAddr   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the endpoint in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			fileCfg, err := loadFileConfig(*configPath)
			if err != nil {
				return err
			}
			if listenAddress != "" {
				fileCfg.ListenAddress = listenAddress
			}
			if metricsAddr != "" {
				fileCfg.MetricsAddress = metricsAddr
			}

			id, err := endpointIDFromFlag(endpointID)
			if err != nil {
				return err
			}

			tickInterval, err := fileCfg.tickInterval()
			if err != nil {
				return err
			}

			registry := metrics.NewRegistry()

			config := broker.DefaultConfig()
			config.TickInterval = tickInterval
			config.ListenAddress = fileCfg.ListenAddress

			opts := []broker.Option{
				broker.WithConfig(config),
				broker.WithEndpointID(id),
				broker.WithMetrics(registry),
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			app := fx.New(
				fx.Supply(opts),
				broker.Module(),
				fx.Invoke(registerBootstrap(fileCfg, registry)),
				fx.WithLogger(func(zapLogger *zap.Logger) fxevent.Logger {
					return &fxevent.ZapLogger{Logger: zapLogger}
				}),
			)

			startCtx, startCancel := context.WithTimeout(context.Background(), startTimeout)
			defer startCancel()
			if err := app.Start(startCtx); err != nil {
				return err
			}

			<-ctx.Done()

			stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
			defer stopCancel()
			return app.Stop(stopCtx)
		},
	}

	cmd.Flags().StringVar(&listenAddress, "listen", "", "Bind address for inbound WebSocket peerings")
	cmd.Flags().StringVar(&endpointID, "id", "", "Pin this endpoint's id instead of generating a random one")
	cmd.Flags().StringVar(&metricsAddr, "metrics", "", "Bind address for the Prometheus /metrics endpoint")
	return cmd
}
