// Package config loads process configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string

	// Instrument universe for local runs. A production deployment
	// replaces this with an external instrument source.
	UniversePrefix string
	UniverseSize   int

	// PriceScale is the number of decimal places carried by the minor
	// price unit (2 = cents).
	PriceScale int32

	KafkaBrokers      []string
	TradeTopic        string // durable outbox topic
	FeedTopic         string // live best-effort feed topic
	OutboxDir         string
	BroadcastInterval time.Duration

	LogLevel string
}

// Load reads the environment. A missing .env file is not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ListenAddr:        envStr("HERMES_LISTEN_ADDR", ":8080"),
		UniversePrefix:    envStr("HERMES_UNIVERSE_PREFIX", "STK"),
		UniverseSize:      envInt("HERMES_UNIVERSE_SIZE", 1024),
		PriceScale:        int32(envInt("HERMES_PRICE_SCALE", 2)),
		KafkaBrokers:      envList("HERMES_KAFKA_BROKERS", nil),
		TradeTopic:        envStr("HERMES_TRADE_TOPIC", "hermes.trades"),
		FeedTopic:         envStr("HERMES_FEED_TOPIC", "hermes.feed"),
		OutboxDir:         envStr("HERMES_OUTBOX_DIR", "./data/outbox"),
		BroadcastInterval: envDuration("HERMES_BROADCAST_INTERVAL", 250*time.Millisecond),
		LogLevel:          envStr("HERMES_LOG_LEVEL", "info"),
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
