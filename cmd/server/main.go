package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/adapters/durable"
	router "github.com/dkeye/Meet/internal/adapters/http"
	signalws "github.com/dkeye/Meet/internal/adapters/signal"
	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/config"
	"github.com/dkeye/Meet/internal/store"
	"github.com/dkeye/Meet/internal/summary"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	sessions := store.NewSessionStore(durable.NewMemoryStore())
	registry := app.NewRegistry()
	coord := app.NewCoordinator(sessions, registry)

	var tiers []summary.Tier
	for _, key := range cfg.Summarizer.APIKeys {
		for _, model := range cfg.Summarizer.Models {
			tiers = append(tiers, summary.Tier{APIKey: key, Model: model})
		}
	}
	summarizer := summary.NewClient(cfg.Summarizer.BaseURL, tiers, cfg.Summarizer.MaxAttempts, cfg.Summarizer.Timeout)

	api := router.NewAPI(coord, summarizer)
	ctl := signalws.NewController(coord, cfg.ReadLimit, cfg.PingPeriod)

	r := router.SetupRouter(ctx, cfg, api, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Meet server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
