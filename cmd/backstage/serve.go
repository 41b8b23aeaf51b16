// Serve command: runs the HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stageworks/backstage/internal/httpapi"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the content backend HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}
		v, err := loadConfig(configDir)
		if err != nil {
			return err
		}
		cfg, err := buildConfig(v)
		if err != nil {
			return err
		}

		logger := newLogger()
		ctx := cmd.Context()

		a, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()

		// Warm the content view before accepting traffic. Failures are
		// recorded in the view state, not fatal.
		a.sync.RefreshAll(ctx)

		server := httpapi.NewServer(a.docs, a.gate, a.sync, a.orch, logger, a.serverOpts...)
		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           server.Handler(cfg.AllowedOrigins),
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info().Str("addr", cfg.HTTPAddr).Str("mode", cfg.Mode).Msg("server listening")
			errCh <- httpServer.ListenAndServe()
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case sig := <-stop:
			logger.Info().Str("signal", sig.String()).Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return err
			}
		}

		logger.Info().Msg("server stopped")
		return nil
	},
}

// newLogger builds the process logger. BACKSTAGE_LOG_LEVEL narrows output;
// the default is info.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if raw := os.Getenv("BACKSTAGE_LOG_LEVEL"); raw != "" {
		if parsed, err := zerolog.ParseLevel(raw); err == nil {
			level = parsed
		}
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
