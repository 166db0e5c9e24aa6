package leavebalance

import (
	"go-reqdesk/internal/middleware"
	"go-reqdesk/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	balances := r.Group("/leave-balances")
	balances.Use(middleware.AuthMiddleware())
	{
		balances.GET("/my", handler.GetMyBalances)
		balances.POST("", middleware.RequireCapability(rbacService, rbac.ResourceLeaveBalance, rbac.ActionInitialize), handler.Initialize)
		balances.POST("/accrual/run", middleware.RequireCapability(rbacService, rbac.ResourceLeaveBalance, rbac.ActionAccrue), handler.RunDailyAccrual)
	}
}
