// main.go
//
// Entry point for the Bunny Rescue game server.
// Responsibilities:
//   - Load .env (development) and the environment config.
//   - Configure zerolog and load word lists / difficulty overrides.
//   - Pick the persistence backend (SQLite or in-memory).
//   - Serve HTTP until SIGINT/SIGTERM, then shut down gracefully.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/bunny-rescue/internal/config"
	"github.com/robalobadob/bunny-rescue/internal/daily"
	"github.com/robalobadob/bunny-rescue/internal/difficulty"
	"github.com/robalobadob/bunny-rescue/internal/httpserver"
	"github.com/robalobadob/bunny-rescue/internal/store"
	"github.com/robalobadob/bunny-rescue/internal/words"
)

const shutdownGrace = 10 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if !cfg.Production {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	if cfg.DifficultyFile != "" {
		if err := difficulty.LoadFile(cfg.DifficultyFile); err != nil {
			log.Fatal().Err(err).Str("file", cfg.DifficultyFile).Msg("failed to load difficulty overrides")
		}
	}
	if err := words.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := httpserver.Deps{Config: cfg, Logger: log.Logger}
	switch cfg.Store {
	case config.StoreMemory:
		deps.Store = store.NewMemoryStore()
		deps.Results = daily.NewMemoryResults()
	default:
		db, err := store.Open(ctx, cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
		}
		defer db.Close()
		deps.Store = store.NewSQLiteStore(db)
		deps.Results = daily.NewStore(db)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpserver.New(deps).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("store", string(cfg.Store)).Msg("starting bunny-rescue")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}
