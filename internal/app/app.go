package app

import (
	"os"

	"go-reqdesk/internal/leavebalance"
	"go-reqdesk/internal/messaging/kafka"
	"go-reqdesk/internal/middleware"
	"go-reqdesk/internal/request"
	"go-reqdesk/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func BuildApp(router *gin.Engine) error {
	logger := zap.L().Named("app")

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
	logger.Info("database connection established")

	if err := gormDB.AutoMigrate(
		&request.GenericRequest{},
		&request.LeaveDetail{},
		&request.FinancialDetail{},
		&request.ResignationDetail{},
		&request.DataChangeDetail{},
		&request.RequestHistory{},
		&leavebalance.EmployeeLeaveBalance{},
		&kafka.OutboxEvent{},
	); err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	logger.Info("redis connection established")

	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))
	router.Use(middleware.RateLimitByIP(rate.Limit(20), 40))

	return registerModules(router, gormDB, redisClient)
}
