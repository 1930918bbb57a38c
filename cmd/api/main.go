package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"schoolhub-backend/internal/config"
	"schoolhub-backend/internal/handlers"
	"schoolhub-backend/internal/infrastructure/messaging"
	"schoolhub-backend/internal/infrastructure/messaging/eventbridge"
	"schoolhub-backend/internal/infrastructure/persistence/dynamodb"
	"schoolhub-backend/internal/repository"
	"schoolhub-backend/internal/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	cfg := config.Load()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Fatal("Failed to load AWS configuration", zap.Error(err))
	}

	// The raw store is wrapped in a circuit breaker so a struggling table
	// fails fast instead of queueing retries.
	store := dynamodb.NewBreakerStore(
		dynamodb.New(awsdynamodb.NewFromConfig(awsCfg), cfg.TableName, cfg.Indexes, logger),
		logger,
	)

	// Domain events are published fire-and-forget: the HTTP response never
	// waits on EventBridge.
	publisher := messaging.NewAsyncPublisher(
		eventbridge.New(awseventbridge.NewFromConfig(awsCfg), cfg.EventBusName, logger),
		logger,
	)

	retry := repository.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		MaxDelay:    cfg.Retry.MaxDelay,
		Multiplier:  cfg.Retry.Multiplier,
		Retryable:   repository.RetryableWriteError,
	}

	gate := service.NewGate()
	schools := service.NewSchoolService(store, publisher, gate, retry, logger)
	academics := service.NewAcademicsService(store, publisher, gate, retry, logger, schools)

	handler := handlers.NewRouter(schools, academics, logger).Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("port", cfg.ServerPort),
			zap.String("table", cfg.TableName),
			zap.String("eventBus", cfg.EventBusName),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	if err := logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	log.Println("Server stopped")
}
