package main

import (
	"ApiMonitor/internal/config"
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write an example configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "monitor.yaml"
			if len(args) == 1 {
				path = args[0]
			}

			if err := config.ExampleConfig().Write(path, force); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Successfully created %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}
