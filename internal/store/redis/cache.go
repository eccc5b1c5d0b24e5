// Package redis caches the latest prices and portfolio summary snapshots so
// other services (dashboards, alerting) can read engine state without
// touching the engine itself.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"papertrade-systemv1/internal/engine"
)

const (
	pricesKey         = "papertrade:prices:latest"
	summaryKeyPrefix  = "papertrade:summary:"
	defaultSummaryTTL = 30 * time.Minute
)

// Config configures the cache connection.
type Config struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
}

// Cache writes prices and summaries to Redis.
type Cache struct {
	client *goredis.Client
}

// Client returns the underlying Redis client for health checks.
func (c *Cache) Client() *goredis.Client { return c.client }

// New creates a new Cache and pings the server.
func New(cfg Config) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Cache{client: client}, nil
}

// SetPrices stores the latest price per symbol in a single hash.
func (c *Cache) SetPrices(ctx context.Context, prices map[string]float64) error {
	if len(prices) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(prices))
	for symbol, price := range prices {
		fields[symbol] = strconv.FormatFloat(price, 'f', -1, 64)
	}
	if err := c.client.HSet(ctx, pricesKey, fields).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", pricesKey, err)
	}
	return nil
}

// GetPrices returns the latest cached price per symbol. Unparseable fields
// are skipped.
func (c *Cache) GetPrices(ctx context.Context) (map[string]float64, error) {
	fields, err := c.client.HGetAll(ctx, pricesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", pricesKey, err)
	}
	prices := make(map[string]float64, len(fields))
	for symbol, raw := range fields {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		prices[symbol] = price
	}
	return prices, nil
}

// WriteSummary stores a JSON snapshot of one portfolio's summary with a TTL.
func (c *Cache) WriteSummary(ctx context.Context, s engine.Summary) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	key := summaryKeyPrefix + s.PortfolioID
	if err := c.client.Set(ctx, key, b, defaultSummaryTTL).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// ReadSummary loads a portfolio summary snapshot. Returns goredis.Nil if the
// snapshot is missing or expired.
func (c *Cache) ReadSummary(ctx context.Context, portfolioID string) (engine.Summary, error) {
	var s engine.Summary
	b, err := c.client.Get(ctx, summaryKeyPrefix+portfolioID).Bytes()
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("unmarshal summary: %w", err)
	}
	return s, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
