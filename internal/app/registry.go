package app

import (
	"os"

	"go-reqdesk/internal/leavebalance"
	"go-reqdesk/internal/messaging/kafka"
	"go-reqdesk/internal/rbac"
	"go-reqdesk/internal/request"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	db, err := gormDB.DB()
	if err != nil {
		return err
	}

	// --- Repositories ---
	balanceRepo := leavebalance.NewRepository(gormDB, db)
	requestRepo := request.NewRepository(gormDB, db)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer)

	// --- Services ---
	balanceService := leavebalance.NewService(db, balanceRepo)
	if v := os.Getenv("ANNUAL_LEAVE_DAYS_PER_YEAR"); v != "" {
		annualDays, err := decimal.NewFromString(v)
		if err != nil {
			return err
		}
		balanceService = leavebalance.NewServiceWithConfig(db, balanceRepo, annualDays, nil)
	}
	requestService := request.NewServiceWithOutbox(db, requestRepo, balanceService, rbacService, outboxRepo)

	// --- Handlers ---
	balanceHandler := leavebalance.NewHandler(balanceService)
	requestHandler := request.NewHandler(requestService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		request.RegisterRoutes(api, requestHandler, rbacService, rdb)
		leavebalance.RegisterRoutes(api, balanceHandler, rbacService)
	}

	return nil
}
