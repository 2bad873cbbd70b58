package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/spordle/assets"
	"github.com/robalobadob/spordle/internal/catalog"
	"github.com/robalobadob/spordle/internal/config"
	"github.com/robalobadob/spordle/internal/daily"
	"github.com/robalobadob/spordle/internal/database"
	"github.com/robalobadob/spordle/internal/httpserver"
	"github.com/robalobadob/spordle/internal/media"
	"github.com/robalobadob/spordle/internal/metrics"
	"github.com/robalobadob/spordle/internal/round"
	"github.com/robalobadob/spordle/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer db.Close()
	if err := database.Migrate(db, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	rec := metrics.New(cfg.MetricsEnabled)
	sqlCat := catalog.NewSQLite(db)
	if cfg.SeedCatalog {
		seed, err := assets.SeedSongs()
		if err != nil {
			log.Fatal().Err(err).Msg("open seed catalog")
		}
		if _, err := catalog.Seed(context.Background(), sqlCat, seed); err != nil {
			log.Fatal().Err(err).Msg("seed catalog")
		}
		seed.Close()
	}
	cat := catalog.NewCached(sqlCat, cfg.CacheSizeMB, cfg.CacheTTL, rec)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := store.NewMemoryStore()
	rec.TrackSessions(sessions.Len)
	go store.RunJanitor(ctx, sessions, cfg.SweepInterval, cfg.SessionTTL)

	archive := daily.NewArchive(db)
	rounds := round.NewService(cat, sessions, daily.NewPicker(cfg.GameMode, cfg.DailySalt), archive, rec,
		round.Options{
			MaxMisses:       cfg.MaxMisses,
			PreviewSeconds:  cfg.PreviewSeconds,
			ExtendedSeconds: cfg.ExtendedSeconds,
		})

	srv := httpserver.New(httpserver.Deps{
		Rounds:       rounds,
		Catalog:      cat,
		Archive:      archive,
		Media:        media.New(os.DirFS(cfg.AssetsDir)),
		Metrics:      rec,
		ClientOrigin: cfg.ClientOrigin,
	})

	hs := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdown); err != nil {
			log.Warn().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", hs.Addr).Str("mode", cfg.GameMode).Msg("starting spordle server")
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}
