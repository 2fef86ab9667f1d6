package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dabidoe/character-foundry/internal/config"
	"github.com/dabidoe/character-foundry/internal/orchestrators/library"
)

var (
	listenAddr string
	redisAddr  string
	logLevel   string
	skipSeed   bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP and WebSocket server",
	Long:  `Start the Character Foundry API with the portrait worker and all configured services.`,
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address, overrides HOST and PORT")
	serverCmd.Flags().StringVar(&redisAddr, "redis", "", "Comma separated Redis addresses, overrides REDIS_ADDRS")
	serverCmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error, overrides LOG_LEVEL")
	serverCmd.Flags().BoolVar(&skipSeed, "skip-seed", false, "Do not write the built-in item catalog on startup")
}

func serverOverrides(cfg *config.Config) {
	if redisAddr != "" {
		cfg.RedisAddrs = strings.Split(redisAddr, ",")
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(serverOverrides)
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if !skipSeed {
		seeded, err := a.library.SeedCatalog(ctx, &library.SeedCatalogInput{})
		if err != nil {
			return fmt.Errorf("failed to seed item catalog: %w", err)
		}
		slog.InfoContext(ctx, "Item catalog seeded", "created", seeded.Created, "updated", seeded.Updated)
	}

	addr := cfg.Addr()
	if listenAddr != "" {
		addr = listenAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var workers sync.WaitGroup
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	if a.portraits.Available() {
		workers.Add(1)
		go func() {
			defer workers.Done()
			a.portraits.Run(workerCtx)
		}()
	} else {
		slog.WarnContext(ctx, "Portrait worker not started, image generation or CDN is not configured")
	}

	errChan := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "HTTP server starting", "addr", addr, "origins", cfg.AllowedOrigins)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Received shutdown signal, gracefully stopping...")
	case err := <-errChan:
		stopWorkers()
		workers.Wait()
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	// hijacked websocket connections are not tracked by Shutdown
	a.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Graceful shutdown timeout exceeded, forcing stop", "error", err)
		_ = srv.Close()
	}

	stopWorkers()
	workers.Wait()
	slog.Info("Server stopped gracefully")

	return nil
}
