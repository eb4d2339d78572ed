package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/permalearn/assessment-service/internal/cache"
	"github.com/permalearn/assessment-service/internal/config"
	"github.com/permalearn/assessment-service/internal/handlers"
	"github.com/permalearn/assessment-service/internal/repositories/postgres"
	"github.com/permalearn/assessment-service/internal/services"
	"github.com/permalearn/assessment-service/internal/utils"
	"github.com/permalearn/assessment-service/pkg"
)

func main() {
	migrate := flag.Bool("migrate", false, "run database migrations on startup")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	var slogger *slog.Logger
	if cfg.IsDevelopment() {
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		slogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	slog.SetDefault(slogger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		slogger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if *migrate {
		if err := pkg.MigrateDatabase(db); err != nil {
			slogger.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
		slogger.Info("Database migration complete")
	}

	var cacheService cache.CacheService
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		slogger.Warn("Redis unavailable, falling back to no-op cache", "error", err)
		cacheService = cache.NewNoopCache()
	} else {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, slogger)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		slogger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	defer repo.Close()

	validator := utils.NewValidator()
	serviceManager := services.NewServiceManager(repo, cacheService, publisher, slogger, validator)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	handlerLogger := utils.NewSlogLogger(slogger)

	router := gin.New()
	router.Use(gin.Recovery(), utils.LoggerMiddleware(handlerLogger))

	handlerManager := handlers.NewHandlerManager(serviceManager, validator, handlerLogger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slogger.Info("Starting assessment service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slogger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slogger.Error("Forced shutdown", "error", err)
	}
	slogger.Info("Server stopped")
}
