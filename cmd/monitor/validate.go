package main

import (
	"ApiMonitor/internal/config"
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration is valid.")
			fmt.Fprintf(out, "Endpoints: %d\n", len(cfg.EndpointSpecs()))
			for _, spec := range cfg.EndpointSpecs() {
				fmt.Fprintf(out, "  - %s %s %s every %s\n", spec.ID, spec.Method, spec.URL, spec.Interval)
			}
			fmt.Fprintf(out, "Channels: %d\n", len(cfg.Channels()))
			for _, ch := range cfg.Channels() {
				state := "enabled"
				if !ch.Enabled {
					state = "disabled"
				}
				fmt.Fprintf(out, "  - %s (%s, %s)\n", ch.ID, ch.Type, state)
			}
			return nil
		},
	}
}
