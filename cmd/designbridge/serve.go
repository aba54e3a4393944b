package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aretw0/designbridge"
	"github.com/aretw0/designbridge/internal/cli"
	"github.com/aretw0/designbridge/internal/presentation/tui"
	httpAdapter "github.com/aretw0/designbridge/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes the bridge as a JSON API over HTTP: POST /commands/{kind} sends a command,
GET /context returns the session context, GET /events streams settled commands and
GET /metrics serves Prometheus metrics. The API is described at /openapi.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd, map[string]string{"http.port": "port"})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := cli.NewRuntime(cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.Start(ctx); err != nil {
			return err
		}

		handler := httpAdapter.NewHandler(rt.Bridge,
			httpAdapter.WithStreams(rt.Streams),
			httpAdapter.WithMetrics(rt.Metrics.Handler()),
			httpAdapter.WithLogger(logger),
		)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			if tui.IsTerminal(os.Stderr) {
				tui.PrintBanner(os.Stderr, strings.TrimSpace(designbridge.Version), string(cfg.Mode))
			}
			logger.Info("Starting designbridge server", "address", srv.Addr, "state", rt.Bridge.State())
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("Start shutdown...")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("designbridge server stopped gracefully")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
}
