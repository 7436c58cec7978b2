// README: Entry point; loads config, wires stores, lock and services, then serves HTTP until signalled.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"reclaim/internal/config"
	httptransport "reclaim/internal/http"
	"reclaim/internal/infra"
	"reclaim/internal/lock"
	"reclaim/internal/maps"
	"reclaim/internal/modules/catalog"
	"reclaim/internal/modules/fleet"
	"reclaim/internal/modules/lifecycle"
	"reclaim/internal/modules/valuation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := infra.NewLogger(cfg.IsProduction(), cfg.Log.Level)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("reclaim-api stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		var err error
		if cat, err = catalog.LoadFile(cfg.CatalogFile); err != nil {
			return err
		}
	}

	var (
		store      lifecycle.Store
		driverRepo fleet.Repository
	)
	if cfg.DB.DSN != "" {
		pool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = lifecycle.NewPostgresStore(pool)
		driverRepo = fleet.NewStore(pool)
	} else {
		logger.Warn("no database configured, using in-memory store")
		drivers := fleet.NewMemoryStore()
		store = lifecycle.NewMemoryStore(drivers)
		driverRepo = drivers
	}

	var locker lock.Locker = lock.NewMemoryLocker()
	if cfg.Redis.Addr != "" {
		client, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()
		locker = lock.NewRedisLocker(client, cfg.Lifecycle.LockTTL, logger)
	}

	var distance lifecycle.DistanceEstimator = maps.StaticEstimator{Km: cfg.Maps.DefaultRoundTripKm}
	if cfg.Maps.APIKey != "" {
		routes, err := maps.NewRouteService(cfg.Maps.APIKey, cfg.Maps.DepotPostcode)
		if err != nil {
			return err
		}
		distance = maps.FallbackEstimator{Primary: routes, Secondary: distance, Log: logger}
	}

	lifecycleSvc := lifecycle.NewService(store, valuation.NewCalculator(cat), locker, distance, logger, lifecycle.Options{
		LockTimeout:     cfg.Lifecycle.LockTimeout,
		StoreTimeout:    cfg.Lifecycle.StoreTimeout,
		DistanceTimeout: cfg.Lifecycle.DistanceTimeout,
	})
	fleetSvc := fleet.NewService(driverRepo, cat)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httptransport.NewRouter(httptransport.RouterDeps{
		Lifecycle:      lifecycleSvc,
		Fleet:          fleetSvc,
		Catalog:        cat,
		Log:            logger,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
	})
	server := httptransport.NewServer(httptransport.ServerConfig{
		Addr:            cfg.HTTP.Addr,
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}, router, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx) })
	return g.Wait()
}
