// Command streamlistd runs the StreamList HTTP API as a long-lived service.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"streamlist/internal/config"
	"streamlist/internal/daemonrun"
)

func newRootCommand() *cobra.Command {
	var configPath, bind, logLevel string

	cmd := &cobra.Command{
		Use:           "streamlistd",
		Short:         "StreamList HTTP API daemon",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel: logLevel,
				Bind:     bind,
			})
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Configuration file path")
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides server.bind)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level override")
	return cmd
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
