package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/josanv1n/DIZA-FOOD/internal/cache"
	"github.com/josanv1n/DIZA-FOOD/internal/config"
	"github.com/josanv1n/DIZA-FOOD/internal/database"
	"github.com/josanv1n/DIZA-FOOD/internal/handlers"
	"github.com/josanv1n/DIZA-FOOD/internal/ledger"
	"github.com/josanv1n/DIZA-FOOD/internal/logging"
	"github.com/josanv1n/DIZA-FOOD/internal/middleware"
)

func main() {
	// 1. Load .env first
	envLoaded := config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logging.InitLogger(cfg.LogLevel)
	if !envLoaded {
		log.Warn(".env not found, using system environment")
	}

	// 2. Connect Database
	db, err := database.Connect(cfg.DSN(), cfg.DBLogLevel)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	// 3. Repositories, cache and ledger
	menuRepo := database.NewMenuRepository(db)
	store := database.NewTransactionStore(db)

	var menuCache cache.Store = cache.Nop{}
	if cfg.RedisAddr != "" {
		redisStore := cache.NewRedisStore(cfg.RedisAddr, "diza-food")
		defer redisStore.Close()
		pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisStore.Ping(pingCtx); err != nil {
			log.Warn("redis unreachable, menu reads fall back to the database", "redis", cfg.RedisAddr, "error", err)
		}
		cancelPing()
		menuCache = redisStore
		log.Info("menu cache enabled", "redis", cfg.RedisAddr, "ttl", cfg.MenuCacheTTL)
	}

	deps := handlers.Deps{
		Users:     database.NewUserRepository(db),
		Menu:      menuRepo,
		MenuCache: cache.NewMenuCache(menuRepo, menuCache, cfg.MenuCacheTTL),
		Promo:     database.NewPromoRepository(db),
		Committer: ledger.NewCommitter(store, ledger.WithCommitTimeout(cfg.CommitTimeout)),
		Reader:    ledger.NewReader(store, ledger.WithWindow(cfg.LedgerWindow)),
		JWTSecret: cfg.JWTSecret,
		JWTTTL:    cfg.JWTTTL,
		Location:  cfg.Location,
	}

	// 4. HTTP server
	app := fiber.New(fiber.Config{
		AppName:      "DIZA FOOD API",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestContext())
	app.Use(logger.New(logger.Config{
		Format: "${time} | ${status} | ${latency} | ${locals:requestid} | ${method} ${path}\n",
	}))
	app.Use(cors.New())

	handlers.Register(app, deps)

	go func() {
		log.Info("server running", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
