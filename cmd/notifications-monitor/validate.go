package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Config was loaded and validated in PersistentPreRunE.
			var sinks []string
			if cfg.Sinks.File.Enabled {
				sinks = append(sinks, "file ("+cfg.Sinks.File.Path+")")
			}
			if cfg.Sinks.Ntfy.Enabled {
				sinks = append(sinks, "ntfy ("+cfg.Sinks.Ntfy.Topic+")")
			}
			if cfg.Sinks.WebSocket.Enabled {
				sinks = append(sinks, "websocket")
			}
			if len(sinks) == 0 {
				sinks = append(sinks, "none (log only)")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Endpoint: %s%s\n", cfg.API.BaseURL, cfg.API.Path)
			fmt.Fprintf(out, "Poll interval: %s\n", cfg.Poll.Interval)
			fmt.Fprintf(out, "Sinks: %s\n", strings.Join(sinks, ", "))
			if cfg.Server.Enabled {
				fmt.Fprintf(out, "Server: %s\n", cfg.Server.Addr)
			}
			fmt.Fprintln(out, "Configuration OK")
			return nil
		},
	}
}
