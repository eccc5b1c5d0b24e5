// cmd/paperd — Paper trading engine service.
//
// Exposes the portfolio engine over HTTP, optionally consumes a websocket
// tick feed for mark-to-market, journals terminal orders to SQLite, and
// caches prices/summaries in Redis.
//
// Config (env vars): see config.Load.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"papertrade-systemv1/config"
	"papertrade-systemv1/internal/api"
	"papertrade-systemv1/internal/engine"
	"papertrade-systemv1/internal/feed"
	"papertrade-systemv1/internal/journal"
	"papertrade-systemv1/internal/logger"
	"papertrade-systemv1/internal/metrics"
	"papertrade-systemv1/internal/model"
	redisstore "papertrade-systemv1/internal/store/redis"
)

func main() {
	cfg := config.Load()
	log := logger.Init("paperd", logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := engine.NewRegistry(cfg.CommissionRate)

	var j *journal.Journal
	if cfg.SQLitePath != "" {
		var err error
		j, err = journal.New(cfg.SQLitePath)
		if err != nil {
			log.Error("journal open failed", "path", cfg.SQLitePath, "err", err)
			os.Exit(1)
		}
		defer j.Close()
	}

	var cache *redisstore.Cache
	if cfg.RedisAddr != "" {
		var err error
		cache, err = redisstore.New(redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Warn("redis unavailable, price cache disabled", "err", err)
		} else {
			defer cache.Close()
		}
	}

	m := metrics.NewMetrics()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr)
	metricsSrv.Start()

	go consumeResults(ctx, registry, j, m, log)

	if cfg.FeedURL != "" {
		tickCh := make(chan model.Tick, 1024)
		client := feed.NewClient(cfg.FeedURL)
		client.OnReconnect = m.FeedReconnects.Inc
		go client.Start(ctx, tickCh)
		go applyTicks(ctx, registry, cache, m, log, tickCh,
			time.Duration(cfg.FlushMs)*time.Millisecond)
		log.Info("feed enabled", "url", cfg.FeedURL)
	}

	srv := api.NewServer(registry, j, cache, m, log, cfg.DefaultCapital)
	httpSrv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Router(),
	}
	go func() {
		log.Info("api listening", "addr", cfg.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("api server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	httpSrv.Shutdown(shutdownCtx)
	metricsSrv.Stop(shutdownCtx)
}

// consumeResults fans terminal order events out to the journal and metrics.
func consumeResults(
	ctx context.Context,
	registry *engine.Registry,
	j *journal.Journal,
	m *metrics.Metrics,
	log *slog.Logger,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-registry.Results():
			switch res.Order.Status {
			case model.StatusFilled:
				m.OrdersFilled.Inc()
			case model.StatusCancelled:
				m.OrdersCancelled.Inc()
			case model.StatusRejected:
				m.OrdersRejected.Inc()
			}
			if a, ok := registry.Get(res.PortfolioID); ok {
				s := a.Summary()
				m.PortfolioEquity.WithLabelValues(res.PortfolioID).Set(s.Equity)
				m.RealizedPnL.WithLabelValues(res.PortfolioID).Set(s.RealizedPnL)
			}
			if j != nil {
				if err := j.Record(res); err != nil {
					log.Warn("journal write failed", "order_id", res.Order.OrderID, "err", err)
				}
			}
		}
	}
}

// applyTicks batches feed ticks into a price snapshot and applies it to every
// portfolio once per flush interval. Summaries are pushed to the cache after
// each mark so external readers see fresh valuations.
func applyTicks(
	ctx context.Context,
	registry *engine.Registry,
	cache *redisstore.Cache,
	m *metrics.Metrics,
	log *slog.Logger,
	tickCh <-chan model.Tick,
	flushEvery time.Duration,
) {
	ticker := time.NewTicker(flushEvery)
	defer ticker.Stop()

	pending := make(map[string]float64)
	for {
		select {
		case <-ctx.Done():
			return
		case tick := <-tickCh:
			pending[tick.Symbol] = tick.Price
		case <-ticker.C:
			if len(pending) == 0 {
				continue
			}
			registry.UpdateAll(pending)
			m.PriceUpdates.Inc()

			if cache != nil {
				if err := cache.SetPrices(ctx, pending); err != nil {
					log.Warn("price cache write failed", "err", err)
				}
				for _, id := range registry.List() {
					if a, ok := registry.Get(id); ok {
						if err := cache.WriteSummary(ctx, a.Summary()); err != nil {
							log.Warn("summary cache write failed", "portfolio", id, "err", err)
						}
					}
				}
			}
			pending = make(map[string]float64)
		}
	}
}
