package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/rotorlabs/rotorctl/internal/config"
	"github.com/rotorlabs/rotorctl/internal/logging"
)

const version = "0.1.0"

var (
	configPath string
	logLevel   string
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "rotorctl",
		Short: "Compile layered rotation declarations into a tool config and keep it rotating",
		Long: `rotorctl merges layered rotation declarations into a single rotation tool
configuration, publishes it atomically, and invokes the tool on a fixed
cadence. Declarations live in a directory of TOML or JSONC layers; later
layers override individual fields of earlier ones.`,
		Version: version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.ConfigureRuntime()
			logging.SetLevel(logLevel)
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "/etc/rotorctl/config.toml", "daemon config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (trace|debug|info|warn|error)")

	root.AddCommand(newRenderCommand())
	root.AddCommand(newValidateCommand())
	root.AddCommand(newRunCommand())
	root.AddCommand(newTemplateCommand())
	root.AddCommand(newHistoryCommand())
	return root
}

// loadConfig reads the daemon config file. When the flag still points at
// the default location and nothing exists there, built-in defaults apply
// so the inspection commands work on an unprovisioned machine.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err == nil {
		return cfg, nil
	}
	if !cmd.Flags().Changed("config") && errors.Is(err, os.ErrNotExist) {
		return config.DefaultConfig(), nil
	}
	return config.Config{}, err
}
