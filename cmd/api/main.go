package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/stockpix/stockpix-backend/api/routes"
	authsvc "github.com/stockpix/stockpix-backend/internal/auth"
	imagesvc "github.com/stockpix/stockpix-backend/internal/images"
	usersvc "github.com/stockpix/stockpix-backend/internal/users"
	"github.com/stockpix/stockpix-backend/pkg/config"
	"github.com/stockpix/stockpix-backend/pkg/db"
	"github.com/stockpix/stockpix-backend/pkg/logger"
	"github.com/stockpix/stockpix-backend/pkg/metrics"
	"github.com/stockpix/stockpix-backend/pkg/migrate"
	"github.com/stockpix/stockpix-backend/pkg/redis"
	"github.com/stockpix/stockpix-backend/pkg/storage"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	fileStore := storage.NewLocal(cfg.Storage)

	userRepo := usersvc.NewRepository(dbClient.DB())
	imageRepo := imagesvc.NewRepository(dbClient.DB())

	authService := authsvc.NewService(userRepo, redisClient, cfg, logg)
	userService := usersvc.NewService(userRepo, cfg.Password, logg)
	imageService := imagesvc.NewService(imageRepo, fileStore, logg)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			Registry:     registry,
			HTTPMetrics:  httpMetrics,
			AuthService:  authService,
			ImageService: imageService,
			UserService:  userService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
