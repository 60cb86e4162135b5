package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/jarinsubahh/buet-exchange/internal/api"
	"github.com/jarinsubahh/buet-exchange/internal/config"
	"github.com/jarinsubahh/buet-exchange/internal/db"
	"github.com/jarinsubahh/buet-exchange/internal/events"
	"github.com/jarinsubahh/buet-exchange/internal/services"
	"github.com/jarinsubahh/buet-exchange/pkg/logger"
	"github.com/jarinsubahh/buet-exchange/pkg/metrics"
)

func main() {
	var cfg *config.Configuration
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		var err error
		cfg, err = config.LoadConfig(path)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	} else {
		cfg = config.InitializeDefaultConfig()
	}

	zapLogger, err := logger.NewLogger(cfg.Logging.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	config.LogConfig(zapLogger)

	database, err := db.Initialize(cfg)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}

	if err := db.SeedAdmin(database, cfg, zapLogger); err != nil {
		zapLogger.Fatal("Failed to seed admin account", zap.Error(err))
	}
	if err := db.SeedListings(database, zapLogger); err != nil {
		zapLogger.Fatal("Failed to seed listings", zap.Error(err))
	}

	metricsCollector := metrics.NewMetricsCollector()

	producer := events.NewProducer(
		cfg.Kafka.Broker,
		cfg.Kafka.Topic,
		cfg.Kafka.Username,
		cfg.Kafka.Password,
		zapLogger,
	)
	defer producer.Close()

	sessionService := services.NewSessionService(cfg.Security.SessionTimeout, zapLogger, metricsCollector)
	defer sessionService.Stop()

	listingStore := db.NewListingStore(database)
	listingService := services.NewListingService(listingStore, producer, zapLogger, metricsCollector)

	router := api.NewRouter(cfg, zapLogger, metricsCollector, sessionService, listingService, database)
	router.SetupRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}
	go func() {
		if err := router.Run(":" + port); err != nil {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()
	zapLogger.Info("Server started", zap.String("port", port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	if sqlDB, err := database.DB(); err == nil {
		sqlDB.Close()
	}
	zapLogger.Info("Server gracefully stopped")
}
