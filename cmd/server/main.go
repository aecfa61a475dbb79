package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campusmatch/campusmatch/internal/app"
	"github.com/campusmatch/campusmatch/internal/cache"
	"github.com/campusmatch/campusmatch/internal/config"
	"github.com/campusmatch/campusmatch/internal/db"
	"github.com/campusmatch/campusmatch/internal/logger"
	"github.com/campusmatch/campusmatch/internal/realtime"
	"github.com/campusmatch/campusmatch/internal/server"
	"github.com/campusmatch/campusmatch/internal/service/account"
	"github.com/campusmatch/campusmatch/internal/service/chat"
	"github.com/campusmatch/campusmatch/internal/service/explore"
	"github.com/campusmatch/campusmatch/internal/service/swipe"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(database, redisCache, log)

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	hub := realtime.NewHub()
	accounts := account.NewAccountService(appCtx, cfg.JWT.Secret, cfg.JWT.AccessTTL)
	swipes := swipe.NewSwipeService(appCtx, hub)
	exploreSvc := explore.NewExploreService(appCtx)
	chatSvc := chat.NewChatService(appCtx, hub)

	srv := server.New(cfg, appCtx, hub, accounts, swipes, exploreSvc, chatSvc)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server error", "err", err)
		}
	case sig := <-quit:
		log.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}
}
