package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/nameless/internal/app"
	"github.com/oggyb/nameless/internal/audit"
	"github.com/oggyb/nameless/internal/cache"
	"github.com/oggyb/nameless/internal/config"
	"github.com/oggyb/nameless/internal/db"
	"github.com/oggyb/nameless/internal/httpapi"
	"github.com/oggyb/nameless/internal/logger"
	"github.com/oggyb/nameless/internal/mail"
	"github.com/oggyb/nameless/internal/search"
	"github.com/oggyb/nameless/internal/server"
)

const healthInterval = 15 * time.Second

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	defer redisCache.Close()

	// Secondary index; collections are created best-effort so a missing
	// search cluster does not keep the API down.
	index, err := search.New(cfg)
	if err != nil {
		log.Error("failed to init search index", "err", err)
		os.Exit(1)
	}
	if err := index.EnsureCollections(ctx); err != nil {
		log.Warn("failed to create search collections", "err", err)
	}

	sender, err := mail.NewSender(cfg, log)
	if err != nil {
		log.Error("failed to init mail sender", "err", err)
		os.Exit(1)
	}
	notifier := mail.NewNotifier(sender, log, 30*time.Second)
	defer notifier.Wait()

	trail, err := audit.New(cfg)
	if err != nil {
		log.Error("failed to init audit trail", "err", err)
		os.Exit(1)
	}
	defer trail.Close()

	appCtx, err := app.New(cfg, app.Deps{
		DB:         database,
		RedisCache: redisCache,
		Index:      index,
		Notifier:   notifier,
		Audit:      trail,
		Logger:     log,
	})
	if err != nil {
		log.Error("failed to init app", "err", err)
		os.Exit(1)
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		} else if _, _, err := appCtx.Mutation.Reindex(ctx); err != nil {
			log.Warn("failed to index seeded data", "err", err)
		}
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	probe := server.Probe(database, redisCache)
	health := server.NewHealthRegistrar()
	router := httpapi.NewRouter(httpapi.NewHandler(appCtx), probe)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		server.WatchHealth(ctx, health, probe, healthInterval, log)
	}()
	go func() {
		defer wg.Done()
		if err := server.StartHTTPServer(ctx, cfg, router, log); err != nil {
			log.Error("HTTP server failed", "err", err)
			stop()
		}
	}()
	go func() {
		defer wg.Done()
		if err := server.StartGRPCServer(ctx, cfg, log, health); err != nil {
			log.Error("gRPC server failed", "err", err)
			stop()
		}
	}()

	wg.Wait()
	log.Info("shutdown complete")
}
