package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/milk9111/jointsync/scene"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Ticks    int
	Watch    bool
	Realtime bool
}

func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scene>",
		Short: "Simulate a scene",
		Long: `Simulate a scene at the configured timestep.

With --watch the scene file is reloaded whenever it changes on disk; joints
whose definition changed are rebuilt, removed ones are torn down.

Example:
  jointsim run pendulum.yaml --ticks 600
  jointsim run ./scenes/rig.yaml --watch --realtime`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runScene(ctx, opts, args[0])
		},
	}

	cmd.Flags().IntVarP(&opts.Ticks, "ticks", "n", 0, "stop after this many ticks (0 runs until interrupted)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "reload the scene when its file changes")
	cmd.Flags().BoolVar(&opts.Realtime, "realtime", false, "pace ticks to the wall clock")

	return cmd
}

func runScene(ctx context.Context, opts *RunOptions, path string) error {
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
	logger.Info("scene loaded",
		zap.String("scene", sc.Name),
		zap.Int("entities", len(s.instance.Entities)),
		zap.Float64("timestep", cfg.Physics.Timestep),
	)

	var reloads <-chan string
	var watchErrs <-chan error
	if opts.Watch {
		watcher, err := scene.NewWatcher(path)
		if err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		defer watcher.Close()
		reloads, watchErrs = watcher.Events, watcher.Errors
	}

	var pace <-chan time.Time
	if opts.Realtime {
		ticker := time.NewTicker(time.Duration(cfg.Physics.Timestep * float64(time.Second)))
		defer ticker.Stop()
		pace = ticker.C
	}

	target := filepath.Clean(path)
	for opts.Ticks == 0 || s.ticks < opts.Ticks {
		select {
		case <-ctx.Done():
			logger.Info("interrupted", zap.Int("ticks", s.ticks))
			return nil
		case changed, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			if changed != target {
				continue
			}
			next, err := scene.Load(path)
			if err != nil {
				logger.Warn("scene reload failed", zap.Error(err))
				continue
			}
			if err := s.reload(next); err != nil {
				logger.Warn("scene reload failed", zap.Error(err))
			}
			continue
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			logger.Warn("scene watcher", zap.Error(err))
			continue
		default:
		}

		if pace != nil {
			select {
			case <-ctx.Done():
				continue
			case <-pace:
			}
		}
		s.tick()
	}

	logger.Info("run finished",
		zap.Int("ticks", s.ticks),
		zap.Int("joints", s.pipeline.Joints.Live()),
		zap.Int("dropped", len(s.dropped)),
	)
	return nil
}
