package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stackpad/internal/bootstrap"
	"stackpad/internal/server"
	"stackpad/internal/store"
	"stackpad/internal/swapi"
)

var (
	serveStage string
	serveAddr  string
	serveDev   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Serves the application on the configured address. The --stage flag
declares the pipeline position this process was started from; anything
other than typechecked is rejected so a broken tree cannot be served.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveStage, "stage", bootstrap.StageTypechecked.String(), "Pipeline stage this process starts from")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "Enable dev mode: bundle reloading and /api/log")
}

func runServe(cmd *cobra.Command, args []string) error {
	stage, err := bootstrap.ParseStage(serveStage)
	if err != nil {
		return err
	}
	if stage != bootstrap.StageTypechecked {
		return fmt.Errorf("serve requires stage %s, got %s", bootstrap.StageTypechecked, stage)
	}

	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveDev {
		cfg.Server.DevMode = true
	}

	todos, err := store.Open(cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer todos.Close()

	films := swapi.NewClient(cfg.SWAPI.BaseURL, cfg.GetSWAPITimeout())
	srv := server.New(cfg, logger, todos, films)

	ctx, stop := signalContext()
	defer stop()

	logger.Info("serving",
		zap.String("addr", cfg.Server.Addr),
		zap.String("store", cfg.Store.Backend),
		zap.Bool("dev", cfg.Server.DevMode))
	return srv.Run(ctx)
}
