package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	PaymentBase string
	PaymentKey  string
	MailBase    string
	MailKey     string
	MailFrom    string
	CacheTTL    time.Duration
	PendingTTL  time.Duration
	Workers     int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/safira?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),
		PaymentBase: env("PAYMENT_BASE_URL", "https://pay.example.com/v1"),
		PaymentKey:  env("PAYMENT_API_KEY", ""),
		MailBase:    env("MAIL_BASE_URL", "https://mail.example.com/v1"),
		MailKey:     env("MAIL_API_KEY", ""),
		MailFrom:    env("MAIL_FROM", "bookings@villa-safira.example"),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		PendingTTL:  time.Duration(atoi("PENDING_TTL_MINUTES", 60)) * time.Minute,
		Workers:     atoi("SWEEP_WORKERS", 4),
	}
	if c.PaymentKey == "" {
		log.Warn().Msg("PAYMENT_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
