package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Engine
	CommissionRate float64 // fraction of notional charged per execution
	DefaultCapital float64 // initial capital for portfolios created via the API

	// Infrastructure
	ListenAddr    string
	MetricsAddr   string
	RedisAddr     string // empty disables the price cache
	RedisPassword string
	SQLitePath    string // empty disables the order journal

	// Price feed
	FeedURL     string // websocket tick source; empty disables the feed
	FeedSymbols string // comma-separated symbols, e.g. "TCS,INFY"
	FlushMs     int    // how often buffered ticks are applied as one snapshot

	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		CommissionRate: getEnvFloat("COMMISSION_RATE", 0.001),
		DefaultCapital: getEnvFloat("DEFAULT_CAPITAL", 100000),

		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/orders.db"),

		FeedURL:     getEnv("FEED_URL", ""),
		FeedSymbols: getEnv("FEED_SYMBOLS", "TCS,INFY"),
		FlushMs:     getEnvInt("PRICE_FLUSH_MS", 1000),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// ParseSymbols parses FeedSymbols into a slice, skipping empty entries.
func (c *Config) ParseSymbols() []string {
	parts := strings.Split(c.FeedSymbols, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		symbols = append(symbols, p)
	}
	return symbols
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid int for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("[config] invalid float for %s: %q, using %v", key, v, fallback)
		return fallback
	}
	return f
}
