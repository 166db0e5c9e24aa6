package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-reqdesk/internal/leavebalance"
	"go-reqdesk/internal/messaging/kafka"
	"go-reqdesk/internal/messaging/kafka/producer"
	"go-reqdesk/internal/shared/connection"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RunWorker drives the background side of the system: the outbox
// publisher and the daily leave accrual sweep. It blocks until
// SIGINT/SIGTERM.
func RunWorker() error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(kafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	balanceRepo := leavebalance.NewRepository(gormDB, sqlDB)
	balanceService := leavebalance.NewService(sqlDB, balanceRepo, logger)
	if v := os.Getenv("ANNUAL_LEAVE_DAYS_PER_YEAR"); v != "" {
		annualDays, err := decimal.NewFromString(v)
		if err != nil {
			return err
		}
		balanceService = leavebalance.NewServiceWithConfig(sqlDB, balanceRepo, annualDays, nil, logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		3*time.Second,
	)

	go runAccrualLoop(ctx, balanceService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}

// runAccrualLoop sweeps once on startup and then hourly. The sweep is
// idempotent per calendar day, so running it more often than daily only
// costs a no-op pass.
func runAccrualLoop(ctx context.Context, balances leavebalance.Service, logger *zap.Logger) {
	interval := time.Hour
	if v := os.Getenv("ACCRUAL_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			interval = parsed
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := balances.RunDailyAccrualAll(ctx, time.Now().UTC()); err != nil {
			logger.Error("accrual sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
