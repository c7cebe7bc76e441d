package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/sharely/internal/auth"
	"github.com/mmynk/sharely/internal/config"
	"github.com/mmynk/sharely/internal/metrics"
	"github.com/mmynk/sharely/internal/storage/sqlite"
	"github.com/mmynk/sharely/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.LoadOrEnv()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.Setup(cfg.Logging.Level)

	store, err := sqlite.New(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Storage.DatabasePath)

	secret := cfg.Auth.TokenSecret
	if secret == "" {
		secret = uuid.NewString()
		slog.Warn("TOKEN_SECRET not set, edit tokens will not survive a restart")
	}
	tokens := auth.NewTokenManager(secret, cfg.Auth.TokenTTL)

	staticDir, err := filepath.Abs(cfg.Server.StaticPath)
	if err != nil {
		return fmt.Errorf("failed to resolve static path: %w", err)
	}
	slog.Info("Serving static files", "path", staticDir)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler := newRouter(routerDeps{
		store:       store,
		tokens:      tokens,
		metrics:     metrics.New(reg),
		gatherer:    reg,
		staticDir:   staticDir,
		corsOrigins: cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr: cfg.Addr(),
		// h2c serves HTTP/2 without TLS, which Connect streaming clients expect
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Connect server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
