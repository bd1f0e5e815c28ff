package main

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stackpad/internal/browsertest"
	"stackpad/internal/config"
	"stackpad/internal/server"
	"stackpad/internal/store"
	"stackpad/internal/swapi"
)

var browserrunCmd = &cobra.Command{
	Use:   "browserrun",
	Short: "Boot the server and click through every page in a headless browser",
	Long: `Starts the application in-process on an ephemeral port, backed by an
in-memory todo store and a local stub film server, then drives a headless
browser through the counter, todo, and film pages. Exits non-zero if any
step fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()
		return runBrowserSelfTest(ctx)
	},
}

// runBrowserSelfTest owns the whole self-test lifecycle: stub film server,
// application server, browser harness.
func runBrowserSelfTest(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Stub film server so the star-wars step never depends on the network.
	stubLn, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen for stub film server: %w", err)
	}
	stubSrv := &http.Server{Handler: swapi.StubHandler()}

	// The self-test always runs against a throwaway in-memory store.
	testCfg := *cfg
	testCfg.Store = config.StoreConfig{Backend: "memory"}
	testCfg.SWAPI.BaseURL = "http://" + stubLn.Addr().String()

	todos, err := store.Open(testCfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer todos.Close()

	films := swapi.NewClient(testCfg.SWAPI.BaseURL, testCfg.GetSWAPITimeout())
	srv := server.New(&testCfg, logger, todos, films)

	appLn, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen for app server: %w", err)
	}
	baseURL := "http://" + appLn.Addr().String()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := stubSrv.Serve(stubLn); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return stubSrv.Close()
	})
	g.Go(func() error {
		return srv.Serve(gctx, appLn)
	})

	harness := browsertest.New(testCfg.Browser, logger)
	runErr := func() error {
		if err := harness.Start(gctx); err != nil {
			return err
		}
		defer harness.Close()
		return harness.Run(gctx, baseURL)
	}()

	cancel()
	if err := g.Wait(); err != nil && runErr == nil {
		runErr = err
	}

	if runErr != nil {
		logger.Error("browser self-test failed", zap.Error(runErr))
		return runErr
	}
	logger.Info("browser self-test passed", zap.String("url", baseURL))
	return nil
}
