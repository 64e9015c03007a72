package main

import (
	"context"

	"github.com/adrian-adduci/Algo-Driven-Trading/internal/adapter/cache"
	"github.com/adrian-adduci/Algo-Driven-Trading/internal/adapter/in_memory"
	"github.com/adrian-adduci/Algo-Driven-Trading/internal/adapter/pg"
	httpapi "github.com/adrian-adduci/Algo-Driven-Trading/internal/api/http"
	"github.com/adrian-adduci/Algo-Driven-Trading/internal/config"
	"github.com/adrian-adduci/Algo-Driven-Trading/internal/core"
	"github.com/adrian-adduci/Algo-Driven-Trading/internal/logger"
	"github.com/adrian-adduci/Algo-Driven-Trading/internal/middleware"
	"github.com/adrian-adduci/Algo-Driven-Trading/internal/port"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	var repo port.Repository
	if cfg.Storage.PostgresDSN != "" {
		pgRepo, err := pg.NewRepo(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		defer pgRepo.Close()
		repo = pgRepo
		log.Info().Msg("postgres journal enabled")
	} else {
		repo = in_memory.NewMemoryRepo()
		log.Info().Msg("in-memory journal enabled")
	}

	var bookCache port.Cache
	if cfg.Storage.RedisAddr != "" {
		bookCache = cache.NewRedisCache(cfg.Storage.RedisAddr, "", cfg.Storage.RedisDB, cfg.Storage.RedisTTL)
		log.Info().Str("addr", cfg.Storage.RedisAddr).Msg("redis snapshot cache enabled")
	} else {
		bookCache = in_memory.NewCache()
	}

	engine := core.NewEngine(repo, bookCache, log)
	if len(cfg.Engine.RestoreSymbols) > 0 {
		if err := engine.Restore(ctx, cfg.Engine.RestoreSymbols); err != nil {
			log.Fatal().Err(err).Msg("failed to restore open orders")
		}
	}

	rl := middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RequireClient)
	server := httpapi.NewServer(engine, rl, log)
	if err := server.Run(cfg.HTTP.Addr); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
