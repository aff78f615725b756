package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ticket-bot/internal/common/config"
	"ticket-bot/internal/common/observability"
	"ticket-bot/internal/transport"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the bot over HTTP and WebSocket",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return serve(cmd.Context(), a)
	},
}

func serve(ctx context.Context, a *app) error {
	zapLog := a.zapLog
	zapLog.Info("Starting ticket bot...",
		zap.String("version", a.cfg.App.Version),
		zap.String("environment", a.cfg.App.Environment),
	)

	obs, err := observability.New(a.cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel metrics disabled", zap.Error(err))
	}
	a.obs = obs

	if ctx == nil {
		ctx = context.Background()
	}

	cat, err := a.catalog(ctx, a.cfg.Catalog.Source)
	if err != nil {
		return err
	}
	store, err := a.sessions(ctx, a.cfg.Bot.Storage)
	if err != nil {
		return err
	}
	rec, err := a.recorder(ctx, a.cfg.Orders)
	if err != nil {
		return err
	}
	loop, err := a.loop(cat, store, rec)
	if err != nil {
		return err
	}

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	go loop.Run(loopCtx)

	if a.cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	httpServer := transport.NewHTTPServer(loop, a.log, a.pingers...)
	srv := &http.Server{
		Addr:         a.cfg.Server.Address,
		Handler:      httpServer.Routes(),
		ReadTimeout:  config.GetDuration(a.cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(a.cfg.Server.WriteTimeout),
	}

	serverErr := make(chan error, 1)
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		zapLog.Info("Shutdown signal received, stopping server...")
	case err := <-serverErr:
		zapLog.Error("HTTP server failed", zap.Error(err))
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	stopLoop()

	zapLog.Info("Ticket bot stopped gracefully")
	return nil
}
