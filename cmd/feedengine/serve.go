package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kurral/feedengine/internal/app"
	httpapi "github.com/kurral/feedengine/internal/interfaces/http"
	"github.com/kurral/feedengine/internal/metrics"
	"github.com/kurral/feedengine/internal/policy"
	"github.com/kurral/feedengine/internal/rank"
	"github.com/kurral/feedengine/internal/reputation"
	"github.com/kurral/feedengine/internal/store"
	"github.com/kurral/feedengine/internal/tune"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the feed engine HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		memory := store.NewMemoryStore()
		reg := metrics.NewRegistry()

		var scoreStore reputation.Store = memory
		var engagements store.EngagementLog = memory
		if cfg.Redis.Addr != "" {
			rdb := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err := rdb.Ping(ctx).Err(); err != nil {
				return err
			}
			scoreStore = store.NewRedisScoreStore(rdb, 0)
			engagements = store.NewRedisEngagementLog(rdb, cfg.Redis.EngagementMax)
			log.Info().Str("addr", cfg.Redis.Addr).Msg("using redis-backed stores")
		} else {
			log.Warn().Msg("no redis configured, running fully in memory")
		}

		service := app.NewService(app.Options{
			Chirps:      memory,
			Users:       memory.Users(),
			Engagements: engagements,
			Policy:      policy.NewEngine(cfg.Policy),
			Ranker:      rank.NewRanker(cfg.Ranking),
			Reputation:  reputation.NewEngine(cfg.Reputation, scoreStore),
			Suggester:   tune.NewSuggester(cfg.Tuning),
			Cache:       store.NewFeedCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval),
			Metrics:     reg,
		})

		server := httpapi.NewServer(httpapi.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		}, service, reg)

		return server.Start(ctx)
	},
}
