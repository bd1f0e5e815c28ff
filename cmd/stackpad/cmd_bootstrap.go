package main

import (
	"github.com/spf13/cobra"

	"stackpad/internal/bootstrap"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the database and build artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		return newSequencer(bootstrap.StageUninitialized).Clean(ctx)
	},
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Download module dependencies",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		return newSequencer(bootstrap.StageUninitialized).Install(ctx)
	},
}

var typecheckCmd = &cobra.Command{
	Use:     "typecheck",
	Aliases: []string{"tsc"},
	Short:   "Vet the source tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		// Invoking typecheck directly asserts dependencies are installed.
		return newSequencer(bootstrap.StageInstalled).Typecheck(ctx)
	},
}

var fullCmd = &cobra.Command{
	Use:   "full",
	Short: "Run the whole pipeline: clean, install, typecheck, browserrun, serve",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		seq := newSequencer(bootstrap.StageUninitialized)
		serveArgs := []string{"--config", configPath}
		if verbose {
			serveArgs = append(serveArgs, "--verbose")
		}
		return seq.Full(ctx, runBrowserSelfTest, serveArgs...)
	},
}

func newSequencer(start bootstrap.Stage) *bootstrap.Sequencer {
	runner := bootstrap.NewStepRunner(logger, cfg.Bootstrap.MaxOutputBytes)
	return bootstrap.NewSequencer(cfg, logger, runner, start)
}
