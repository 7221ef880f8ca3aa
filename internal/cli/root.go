// Package cli implements the command-service command line: serve (the
// default), healthcheck and version.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edgeiot/command_service/internal/config"
)

// Version, Commit and Date are set at build time via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// configFile overrides CONFIG_FILE when set.
var configFile string

// NewRootCommand creates the root command. Running it without a subcommand
// starts the server.
func NewRootCommand() *cobra.Command {
	serve := NewServeCommand()

	rootCmd := &cobra.Command{
		Use:           "command-service",
		Short:         "Relays cloud commands to edge gateways and caches sensor responses",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
		RunE:          serve.RunE,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (overrides CONFIG_FILE)")

	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(NewHealthcheckCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute runs the root command and exits non-zero on error.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		Failure(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		if err := os.Setenv("CONFIG_FILE", configFile); err != nil {
			return nil, fmt.Errorf("set CONFIG_FILE: %w", err)
		}
	}
	return config.Load()
}
