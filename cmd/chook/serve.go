package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chook-lab/chook/internal/dispatch"
	"github.com/chook-lab/chook/internal/server"
	"github.com/chook-lab/chook/internal/webhook"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()
		return serve(cmd.Context(), a)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(parent context.Context, a *app) error {
	cfg := a.cfg
	slog.Info("Loaded config", "server", cfg.Server, "handlers", cfg.Handlers, "dispatch", cfg.Dispatch)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Initial handler load. A load with problems still serves what loaded.
	snap, err := a.handlers.Reload(ctx)
	if err != nil {
		return err
	}
	if msgs := snap.ProblemMessages(); len(msgs) > 0 {
		slog.Warn("Some handlers were skipped", "count", len(msgs))
	}

	// 2. Dispatch engine.
	spawner := dispatch.NewExecSpawner(cfg.Dispatch.MaxExternalProcs, cfg.Dispatch.ExternalTimeout, a.logger)
	engine := dispatch.New(a.handlers, spawner,
		dispatch.WithLogger(a.logger),
		dispatch.WithInternalTimeout(cfg.Dispatch.InternalTimeout),
	)

	// 3. Routes.
	svc := webhook.NewService(a.decoder, engine, a.handlers, cfg.Server.MaxBodySizeMB,
		webhook.WithBasicAuth(cfg.Server.WebhooksUser, cfg.Server.WebhooksPassword))
	srv := server.New(cfg.Server.Addr(), a.handlers, cfg.Server.Mode)
	svc.RegisterRoutes(srv.Engine)

	// 4. Optional directory watcher.
	if cfg.Handlers.Watch {
		go func() {
			if err := a.handlers.Watch(ctx, cfg.Handlers.WatchDebounce); err != nil {
				slog.Error("Handler watcher stopped with error", "error", err)
			}
		}()
	} else {
		slog.Info("Handler watcher disabled by config")
	}

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
		return err
	}

	slog.Info("Waiting for in-flight handlers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := engine.Shutdown(shutdownCtx); err != nil {
		slog.Warn("In-flight handlers did not finish", "error", err, "stats", engine.Stats())
	}
	if err := spawner.Wait(shutdownCtx); err != nil {
		slog.Warn("External handlers still running", "live", spawner.Live())
	}

	slog.Info("Shutdown complete")
	return nil
}
