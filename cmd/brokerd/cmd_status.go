package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// statusCmd prints the configuration brokerd would run with, without
// starting anything. There is no running-daemon control channel to query
// (the core is a library, not a service with an admin API), so this is
// the closest thing to a "status" view: the resolved config.
func statusCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the configuration brokerd would run with",
		RunE: func(cmd *cobra.Command, args []string) error {
			fileCfg, err := loadFileConfig(*configPath)
			if err != nil {
				return err
			}

			listen := fileCfg.ListenAddress
			if listen == "" {
				listen = accent("(dial-only, no inbound listener)")
			}

			metricsAddr := fileCfg.MetricsAddress
			if metricsAddr == "" {
				metricsAddr = accent("(disabled)")
			}

			fmt.Print(keyValues(
				keyValue("config file", configPathOrDefault(*configPath)),
				keyValue("listen address", listen),
				keyValue("tick interval", fileCfg.TickInterval),
				keyValue("metrics address", metricsAddr),
				keyValue("subscriptions", strconv.Itoa(len(fileCfg.Subscriptions))+" ("+strings.Join(fileCfg.Subscriptions, ", ")+")"),
				keyValue("configured peers", strconv.Itoa(len(fileCfg.Peers))+" ("+strings.Join(fileCfg.Peers, ", ")+")"),
			))
			return nil
		},
	}
	return cmd
}

func configPathOrDefault(path string) string {
	if path == "" {
		return accent("(defaults, no --config given)")
	}
	return path
}
