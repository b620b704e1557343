package main

import (
	"github.com/milk9111/jointsync/scene"
	"github.com/spf13/cobra"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Ticks int
}

func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <scene>",
		Short: "Build a scene and report its bodies and joints",
		Long: `Build a scene, run it for a number of ticks (one by default) and print
every body and joint with its engine handle. Joints the engine could not
accept are listed with the reason they were dropped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspectScene(cmd, opts, args[0])
		},
	}

	cmd.Flags().IntVarP(&opts.Ticks, "ticks", "n", 1, "ticks to run before reporting")

	return cmd
}

func inspectScene(cmd *cobra.Command, opts *InspectOptions, path string) error {
	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	sc, err := scene.Load(path)
	if err != nil {
		return err
	}
	s, err := newSim(cfg, sc, logger)
	if err != nil {
		return err
	}

	records := snapshotJoints(s)
	for i := 0; i < opts.Ticks; i++ {
		s.tick()
	}
	return writeReport(cmd.OutOrStdout(), sc.Name, s, records)
}
