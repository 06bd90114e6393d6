package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paarijaat/stickyapp/internal/adapter/httpserver"
	"github.com/paarijaat/stickyapp/internal/adapter/metrics"
	"github.com/paarijaat/stickyapp/internal/platform/config"
	"github.com/paarijaat/stickyapp/internal/platform/logging"
	"github.com/paarijaat/stickyapp/internal/platform/netutil"
	"github.com/paarijaat/stickyapp/internal/platform/version"
	"github.com/paarijaat/stickyapp/internal/session"
)

const serverShutdownTimeout = 10 * time.Second

// runGracefulShutdown waits for a signal or a shutdown request, starts the
// session stop fan-out, and stops the HTTP server once every session has
// exited or the grace period is over. The returned channel is closed once the server has stopped.
func runGracefulShutdown(srv *httpserver.Server, manager *session.Manager, clock clockwork.Clock, grace time.Duration) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer close(done)

		select {
		case sig := <-sigChan:
			slog.Info("Shutdown signal received", "signal", sig.String())
			srv.BeginDrain()
			manager.ShutdownAll()
		case <-srv.ShutdownRequested():
			slog.Info("Shutdown requested over HTTP")
		}

		// In-flight stops get up to the grace period to land before the
		// listener closes.
		waitCtx, cancelWait := clockwork.WithTimeout(context.Background(), clock, grace)
		if err := manager.Wait(waitCtx); err != nil {
			slog.Warn("Sessions still running after grace period", "sessions", len(manager.List()))
		}
		cancelWait()

		ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		slog.Info("Server stopped", "sessions_remaining", len(manager.List()))
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupLocalIP(cfg *config.Config) string {
	ip, err := netutil.LocalIP(cfg.AdvertiseAddr)
	if err != nil {
		slog.Error("Failed to determine local IP", "error", err)
		os.Exit(1)
	}
	return ip
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Get().String())

	localIP := setupLocalIP(cfg)

	registry := metrics.NewRegistry()
	manager := session.NewManager(
		metrics.NewSessionMetrics(registry),
		session.WithClock(clock),
		session.WithMailboxCapacity(cfg.SessionMailboxCapacity),
		session.WithStopTimeout(cfg.SessionStopTimeout),
	)

	srv := httpserver.NewServer(cfg, manager, localIP, registry, httpserver.WithClock(clock))

	done := runGracefulShutdown(srv, manager, clock, cfg.ShutdownGracePeriod)

	if err := srv.Start(); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
	slog.Info("Application stopped")
}
