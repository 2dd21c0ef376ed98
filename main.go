/*
Runs the frameflight demo applications on the headless device.
*/
package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spaghettifunk/frameflight/engine"
	"github.com/spaghettifunk/frameflight/engine/config"
	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/testbed"
)

// how long shutdown may wait for in flight frames
const shutdownTimeout = 10 * time.Second

type runOptions struct {
	configPath string
	app        string
	frames     uint64
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		core.LogFatal("%s", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "frameflight",
		Short:         "Frame pipelining demos on a headless GPU device",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newAppsCmd())
	return root
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a demo application",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to a TOML config file")
	cmd.Flags().StringVarP(&opts.app, "app", "a", "", "application to run, overrides the config")
	cmd.Flags().Uint64VarP(&opts.frames, "frames", "n", 0, "stop after that many frames, overrides the config")
	return cmd
}

func newAppsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apps",
		Short: "List the demo applications",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range testbed.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func loadConfig(opts *runOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}
	if opts.app != "" {
		cfg.Application.App = opts.app
	}
	if opts.frames > 0 {
		cfg.Application.MaxFrames = opts.frames
	}
	return cfg, nil
}

func run(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	g, err := testbed.New(cfg.Application.App, cfg)
	if err != nil {
		return err
	}

	e, err := engine.New(g)
	if err != nil {
		return err
	}
	if err := e.Initialize(); err != nil {
		_ = e.Shutdown(context.Background())
		return err
	}

	// capture sigterm and other system calls here
	ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	runErr := e.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	if runErr == nil {
		core.LogInfo("%s finished after %d frames", cfg.Application.App, e.FrameCount())
	}
	return runErr
}
