package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"debateroom/internal/archive"
	"debateroom/internal/config"
	"debateroom/internal/debate"
	"debateroom/internal/handlers"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the debate server",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(v, cmd, map[string]string{
				"addr":               config.AddrKey,
				"archive":            config.ArchivePathKey,
				"queue-size":         config.QueueSizeKey,
				"max-message-length": config.MaxMessageLengthKey,
				"shutdown-timeout":   config.ShutdownTimeoutKey,
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
			}
			return serve(cmd.Context(), cfg, ln)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", "", "listen address (default :$PORT, then :8080)")
	flags.String("archive", "", "badger directory receiving transcripts on shutdown")
	flags.Int("queue-size", config.Default().QueueSize, "frames buffered per connection before it is dropped")
	flags.Int("max-message-length", config.Default().MaxMessageLength, "longest chat message in characters, 0 for no limit")
	flags.Duration("shutdown-timeout", config.Default().ShutdownTimeout, "time allowed for draining on shutdown")
	return cmd
}

// serve runs the HTTP server on ln until ctx is cancelled, then stops
// accepting requests and drains the coordinator.
func serve(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	log := logs.GetLoggerFromString(cfg.LogLevel)

	opts := debate.Options{
		QueueSize:        cfg.QueueSize,
		MaxMessageLength: cfg.MaxMessageLength,
	}
	if cfg.ArchivePath != "" {
		db, err := archive.Open(cfg.ArchivePath)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Closing archive failed", "error", err)
			}
		}()
		opts.Archive = archive.NewTranscriptRepository(db, log)
	}
	coordinator := debate.NewCoordinator(log, opts)

	server := &http.Server{
		Handler:           handlers.NewRouter(coordinator, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Debate server listening", "addr", ln.Addr().String(), "archive", cfg.ArchivePath)
		errCh <- server.Serve(ln)
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		log.Info("Shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	if err := coordinator.Shutdown(shutdownCtx); err != nil {
		log.Error("Coordinator drain failed", "error", err)
		return errors.Join(serveErr, err)
	}
	log.Info("Debate server stopped")
	return serveErr
}
