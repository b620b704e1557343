package main

import (
	"github.com/milk9111/jointsync/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "jointsim",
		Short: "Run joint scenes against a 2-D physics engine",
		Long: `jointsim loads a scene of bodies and joints, keeps the physics engine's
joints in step with it every tick and reports what it built.

Scenes are read from disk first and fall back to the bundled scenes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override log.level from the config")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))

	return cmd
}

// load resolves the config and builds the logger it describes.
func (o *RootOptions) load() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	logger, err := cfg.Log.Build()
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
