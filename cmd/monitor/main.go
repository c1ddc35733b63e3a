// Package main implements the apimonitor command line interface.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "dev"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "apimonitor",
		Short:         "apimonitor watches HTTP endpoints and alerts on health changes",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("APIMONITOR_CONFIG"),
		"path to a YAML or JSON configuration file")

	rootCmd.AddCommand(
		newRunCmd(&configPath),
		newCheckCmd(),
		newInitCmd(),
		newValidateCmd(&configPath),
	)

	return rootCmd
}
