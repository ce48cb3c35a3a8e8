package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/nikola1125/villa-safira/internal/adapters/observability"
	redisad "github.com/nikola1125/villa-safira/internal/adapters/redis"
	"github.com/nikola1125/villa-safira/internal/app"
	"github.com/nikola1125/villa-safira/internal/shared"
	mysqlrepo "github.com/nikola1125/villa-safira/internal/storage/mysql"
)

// The sweeper expires pending bookings whose payment never completed, so
// their stays stop blocking the calendar. Run it from cron.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Dur("pending_ttl", cfg.PendingTTL).
		Int("workers", cfg.Workers).
		Msg("sweeper starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	sweep := app.NewSweepService(repo, cache)

	ids, err := sweep.StalePending(ctx, cfg.PendingTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("listing stale pending bookings failed")
	}
	if len(ids) == 0 {
		log.Info().Msg("nothing to expire")
		return
	}

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, id := range ids {
		id := id

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(bookingID string) {
			defer wg.Done()
			defer sem.Release(int64(1))

			changed, err := sweep.ExpireBooking(ctx, bookingID)
			if err != nil {
				log.Warn().Str("id", bookingID).Err(err).Msg("expire failed")
				return
			}
			if changed {
				observability.ObserveBooking("expired")
				log.Info().Str("id", bookingID).Msg("expired")
			}
		}(id)
	}

	wg.Wait()
	log.Info().Msg("sweep completed")
}
