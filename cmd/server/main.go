package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/clearbridge-dev/payments/internal/config"
	"github.com/clearbridge-dev/payments/internal/infrastructure/database"
	httpServer "github.com/clearbridge-dev/payments/internal/infrastructure/http"
	"github.com/clearbridge-dev/payments/internal/infrastructure/provider/paystack"
	"github.com/clearbridge-dev/payments/internal/infrastructure/reference"
	"github.com/clearbridge-dev/payments/internal/logger"
	"github.com/clearbridge-dev/payments/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations
	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	repos := database.NewRepositories(db, zapLogger)

	// Fixed-fee policy, when configured
	var fixedAmount *decimal.Decimal
	if cfg.Service.Payment.FixedAmount != "" {
		amount, err := decimal.NewFromString(cfg.Service.Payment.FixedAmount)
		if err != nil {
			zapLogger.Fatal("Invalid fixed amount in config",
				zap.String("fixed_amount", cfg.Service.Payment.FixedAmount),
				zap.Error(err))
		}
		fixedAmount = &amount
	}

	// Wire the payment lifecycle service
	gateway := paystack.NewClient(cfg.Service.Gateway.BaseURL, cfg.Service.Gateway.Timeout, zapLogger)
	refGen := reference.NewGenerator(cfg.Service.Payment.ReferencePrefix)
	paymentService := usecase.NewPaymentService(
		repos.Transaction,
		repos.GatewayConfig,
		gateway,
		refGen,
		fixedAmount,
		zapLogger,
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize and start the HTTP server
	httpSrv := httpServer.NewServer(cfg, zapLogger, repos, paymentService)

	go func() {
		if err := httpSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down server...")

	if err := httpSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zapLogger.Info("Server shut down successfully")
}
