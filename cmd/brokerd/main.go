package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/J-Gras/zeek-broker/internal/logger"
)

var log = logger.Logger("brokerd")

// subsystems lists every logger.Logger subsystem name brokerd's components
// use, so --debug can raise all of them at once. logger's own
// BROKER_LOG_LEVEL env var remains the way to set levels individually.
var subsystems = []string{
	"broker", "orchestrator", "channel", "peering", "routing", "bridge/ws",
}

func main() {
	var (
		debug      bool
		configPath string
	)

	root := &cobra.Command{
		Use:           "brokerd",
		Short:         "Run a broker endpoint",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				for _, subsystem := range subsystems {
					logger.Logger(subsystem)
					logger.SetLevel(subsystem, slog.LevelDebug)
				}
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")

	root.AddCommand(serveCmd(&configPath))
	root.AddCommand(statusCmd(&configPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
