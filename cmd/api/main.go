package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "bookingmx/internal/adapters/http_server"
	"bookingmx/internal/adapters/observability"
	"bookingmx/internal/adapters/rabbitmq"
	redisad "bookingmx/internal/adapters/redis"
	"bookingmx/internal/app"
	"bookingmx/internal/dates"
	"bookingmx/internal/domain"
	"bookingmx/internal/routegraph"
	"bookingmx/internal/shared"
	"bookingmx/internal/storage/memory"
	mysqlrepo "bookingmx/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	store := openStore(ctx, cfg)

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, quote cache disabled")
		} else {
			cache = rc
			defer rc.Close()
			log.Info().Str("addr", cfg.RedisAddr).Msg("redis cache ok")
		}
	}

	var events domain.EventPublisher
	if cfg.AMQPURL != "" {
		pub := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.EventsQueue)
		defer pub.Close()
		events = pub
		log.Info().Str("queue", cfg.EventsQueue).Msg("event publishing enabled")
	}

	graph := routegraph.New()
	if cfg.GraphFile != "" {
		g, err := routegraph.LoadFile(cfg.GraphFile)
		if err != nil {
			log.Fatal().Err(err).Msg("load graph failed")
		}
		graph = g
		log.Info().Int("cities", len(graph.Cities())).Msg("route graph loaded")
	}

	clock := dates.New(nil)
	cmd := app.NewReservationService(store, events, clock)
	q := app.NewQueryService(store, cache, cfg.CacheTTL, clock)

	// http
	srv := server.New(log.Logger, 15*time.Second)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Cmd: cmd, Q: q, Graph: graph})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.Store).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

func openStore(ctx context.Context, cfg shared.Config) domain.ReservationStore {
	if cfg.Store != "mysql" {
		log.Warn().Msg("using in-memory store; reservations are lost on restart")
		return memory.New()
	}
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	if err := mysqlrepo.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}
	log.Info().Msg("database connection ok")
	return mysqlrepo.New(db)
}
