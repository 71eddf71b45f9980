package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"brass-inventory/internal/lock"
	"brass-inventory/internal/model"
	"brass-inventory/internal/router"
	"brass-inventory/internal/ws"
	"brass-inventory/pkg/config"
	"brass-inventory/pkg/database"
	"brass-inventory/pkg/jwt"
	"brass-inventory/pkg/logger"
	"brass-inventory/pkg/validator"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

func main() {
	// 1. Load Env
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)
	jwt.SetSecret(cfg.JWTSecret)
	validator.SetDefaultRegion(cfg.DefaultRegion)
	log := logger.Get()

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is not set, using the built-in development key")
	}

	// 2. Setup Database
	db := database.ConnectDB(cfg)
	// Auto Migrate (production deployments may prefer a dedicated migration tool)
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// 3. Locks and cache. Without Redis the process runs as a single instance.
	var (
		locker lock.Locker = lock.NewLocalLocker()
		cache  *redis.Client
	)
	if cfg.RedisAddress != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
		})
		if err := cache.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to connect to redis at %s: %v", cfg.RedisAddress, err)
		}
		locker = lock.NewRedisLocker(redislock.New(cache), cfg.LockTTL)
		log.WithField("addr", cfg.RedisAddress).Info("Using redis for locks and dashboard cache")
	} else {
		log.Info("REDIS_ADDRESS not set, using in-process locks")
	}

	// 4. Setup WebSocket Hub
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wsHub := ws.NewHub()
	go wsHub.Run(ctx)

	// 5. Wiring
	app := router.New(router.Deps{
		Config: cfg,
		DB:     db,
		Locker: locker,
		Hub:    wsHub,
		Cache:  cache,
	})

	// 6. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	cancel()
	if cache != nil {
		_ = cache.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info("Server exited")
}
