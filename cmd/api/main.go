package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "github.com/nikola1125/villa-safira/internal/adapters/http_server"
	"github.com/nikola1125/villa-safira/internal/adapters/mailer"
	"github.com/nikola1125/villa-safira/internal/adapters/observability"
	"github.com/nikola1125/villa-safira/internal/adapters/payment"
	redisad "github.com/nikola1125/villa-safira/internal/adapters/redis"
	"github.com/nikola1125/villa-safira/internal/app"
	"github.com/nikola1125/villa-safira/internal/shared"
	mysqlrepo "github.com/nikola1125/villa-safira/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

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
	pay, err := payment.New(cfg.PaymentBase, cfg.PaymentKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize payment client")
	}
	mail := mailer.New(cfg.MailBase, cfg.MailKey, cfg.MailFrom)

	bookings := app.NewBookingService(repo, pay, mail, cache, cfg.CacheTTL)
	reviews := app.NewReviewService(repo, cache, cfg.CacheTTL)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Bookings: bookings, Reviews: reviews})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
