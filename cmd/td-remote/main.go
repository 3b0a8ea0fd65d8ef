// Command td-remote serves an in-memory remote task service for local
// development: td --remote-url http://localhost:8000/api/resource/ToDo
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"todo-sync/internal/config"
	"todo-sync/internal/logging"
	"todo-sync/internal/remote"
	"todo-sync/internal/remote/fake"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var (
		addr      string
		apiKey    string
		apiSecret string
		logLevel  string
		logFormat string
		seed      []string
	)

	cmd := &cobra.Command{
		Use:           "td-remote",
		Short:         "Serve an in-memory remote task service",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.Setup(config.LogConfig{Level: logLevel, Format: logFormat}, os.Stderr)

			opts := []fake.Option{fake.WithLogger(logger)}
			if apiKey != "" {
				opts = append(opts, fake.WithToken(apiKey, apiSecret))
			}
			srv := fake.New(opts...)
			for _, description := range seed {
				srv.Seed(description, remote.StatusOpen)
			}

			return serve(cmd.Context(), addr, srv.Handler(), logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", ":8000", "Listen address")
	flags.StringVar(&apiKey, "api-key", os.Getenv("TD_REMOTE_API_KEY"), "Require this API key")
	flags.StringVar(&apiSecret, "api-secret", os.Getenv("TD_REMOTE_API_SECRET"), "Require this API secret")
	flags.StringVar(&logLevel, "log-level", "info", "Log level")
	flags.StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	flags.StringArrayVar(&seed, "seed", nil, "Create an open record with this description at startup (repeatable)")

	return cmd
}

// serve runs the HTTP server until ctx is cancelled or a signal arrives
func serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting remote task service", "addr", addr, "path", fake.ResourcePath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down remote task service")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
