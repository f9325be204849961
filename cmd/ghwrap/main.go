package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/drpaneas/ghwrap/internal/config"
	"github.com/drpaneas/ghwrap/internal/ghstats"
	"github.com/drpaneas/ghwrap/internal/server"
)

func main() {
	var cfg config.Config
	flag.StringVar(&cfg.Addr, "addr", "", "Listen address (default :8080, or GHWRAP_ADDR)")
	flag.DurationVar(&cfg.CacheTTL, "cache-ttl", -1, "Upstream response cache TTL (default 1h, 0s disables, or GHWRAP_CACHE_TTL)")
	flag.IntVar(&cfg.SampleSize, "sample", 0, "Repositories to sample when estimating commit counts (default 10)")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ghwrap [flags]\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	// A .env file is a convenience for local runs; its absence is fine.
	_ = godotenv.Load()

	if err := cfg.LoadFromEnv(); err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, &cfg); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if cfg.GitHubToken == "" {
		slog.Warn("no GITHUB_TOKEN set: calendar, streak, and collaboration stats will be estimated")
	}

	client := ghstats.NewClient(cfg.GitHubToken, cfg.CacheTTL)
	stats := ghstats.NewService(client, ghstats.WithSampleSize(cfg.SampleSize))
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(stats).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("starting ghwrap", "addr", cfg.Addr, "authenticated", cfg.GitHubToken != "")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
