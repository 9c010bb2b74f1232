package main

import (
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "github.com/nullsam/qr-menu/internal/adapters/http_server"
	"github.com/nullsam/qr-menu/internal/adapters/menuapi"
	"github.com/nullsam/qr-menu/internal/adapters/observability"
	redisad "github.com/nullsam/qr-menu/internal/adapters/redis"
	"github.com/nullsam/qr-menu/internal/app"
	"github.com/nullsam/qr-menu/internal/render"
	"github.com/nullsam/qr-menu/internal/render/themes"
	"github.com/nullsam/qr-menu/internal/shared"
	mysqlrepo "github.com/nullsam/qr-menu/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()
	app.SetResolutionObserver(observability.ObserveTemplateResolution)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	q := app.NewQueryService(repo, cache, cfg.CacheTTL)

	reg := render.NewRegistry()
	themes.RegisterAll(reg)
	log.Info().Strs("themes", reg.List()).Msg("template registry ready")

	sessions := app.NewSessions(q, reg, cfg.ResolveWait, cfg.SessionTTL)
	go func() {
		t := time.NewTicker(cfg.SessionTTL / 2)
		defer t.Stop()
		for range t.C {
			sessions.Sweep()
		}
	}()

	client, err := menuapi.New(cfg.MenuAPIBase, cfg.MenuAPIKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize menu API client")
	}
	relay := app.NewFeedbackRelay(client)

	// http
	srv := server.New()
	promReg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(promReg))
	srv.MountHandlers(&server.Handlers{Q: q, Sessions: sessions, Feedback: relay})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
