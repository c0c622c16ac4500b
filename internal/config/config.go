package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; DATABASE_URL and AMQP_URL are required.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Broker
	AMQPURL             string
	ConsumerPrefetch    int
	ConsumerConcurrency int

	// SMTP / email
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	EmailFrom      string
	EmailRateLimit int // max email sends per second

	// Due-date schedulers
	OverdueInterval        time.Duration
	OverdueLookback        time.Duration
	PreDueInterval         time.Duration
	PreDueHorizon          time.Duration // standard tasks
	PreDueRescheduleWindow time.Duration // rescheduled tasks get the tighter horizon
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	amqpURL := os.Getenv("AMQP_URL")
	if amqpURL == "" {
		return nil, fmt.Errorf("AMQP_URL is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		AMQPURL:             amqpURL,
		ConsumerPrefetch:    getInt("CONSUMER_PREFETCH", 10),
		ConsumerConcurrency: getInt("CONSUMER_CONCURRENCY", 4),

		SMTPHost:       getEnv("SMTP_HOST", "localhost"),
		SMTPPort:       getInt("SMTP_PORT", 587),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		EmailFrom:      getEnv("EMAIL_FROM", "no-reply@example.com"),
		EmailRateLimit: getInt("EMAIL_RATE_LIMIT", 20),

		OverdueInterval:        getDuration("OVERDUE_INTERVAL", 1*time.Hour),
		OverdueLookback:        getDuration("OVERDUE_LOOKBACK", 24*time.Hour),
		PreDueInterval:         getDuration("PREDUE_INTERVAL", 30*time.Minute),
		PreDueHorizon:          getDuration("PREDUE_HORIZON", 24*time.Hour),
		PreDueRescheduleWindow: getDuration("PREDUE_RESCHEDULE_WINDOW", 12*time.Hour),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
