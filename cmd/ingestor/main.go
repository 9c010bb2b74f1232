package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/nullsam/qr-menu/internal/adapters/menuapi"
	"github.com/nullsam/qr-menu/internal/adapters/observability"
	redisad "github.com/nullsam/qr-menu/internal/adapters/redis"
	"github.com/nullsam/qr-menu/internal/app"
	"github.com/nullsam/qr-menu/internal/shared"
	mysqlrepo "github.com/nullsam/qr-menu/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.MenuAPIBase).
		Int("workers", cfg.Workers).
		Int("slugs", len(cfg.Slugs)).
		Msg("ingestor starting")

	if len(cfg.Slugs) == 0 {
		log.Fatal().Msg("INGEST_SLUGS is empty; nothing to refresh")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := menuapi.New(cfg.MenuAPIBase, cfg.MenuAPIKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize menu API client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	ing := app.NewIngestionService(client, repo, cache)
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, slug := range cfg.Slugs {
		slug := slug

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(slug string) {
			defer wg.Done()
			defer sem.Release(int64(1))

			if err := ing.IngestBusiness(ctx, slug); err != nil {
				log.Warn().Str("slug", slug).Err(err).Msg("ingest failed")
				return
			}
			log.Info().Str("slug", slug).Msg("ingest ok")
		}(slug)
	}

	wg.Wait()
	log.Info().Msg("ingestion completed")
}
