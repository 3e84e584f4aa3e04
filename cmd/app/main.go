package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bookabite/reservations/api"
	"github.com/bookabite/reservations/config"
	"github.com/bookabite/reservations/internal/auth"
	"github.com/bookabite/reservations/internal/bootstrap"
	"github.com/bookabite/reservations/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logg.Sync() //nolint:errcheck

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg, logg)
	if err != nil {
		logg.Fatal("init app", zap.Error(err))
	}
	defer app.Close()

	router := api.NewRouter(app.RouterDeps(auth.NewJWTVerifier(cfg.Auth.JWTSecret)))
	if err := bootstrap.Run(ctx, cfg.HTTP.Address, router, logg); err != nil {
		logg.Error("server error", zap.Error(err))
	}
}
