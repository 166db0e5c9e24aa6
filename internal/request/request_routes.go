package request

import (
	"go-reqdesk/internal/middleware"
	"go-reqdesk/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
) {
	requests := r.Group("/requests")
	requests.Use(middleware.AuthMiddleware())
	{
		requests.POST("", middleware.Idempotency(rdb), handler.Create)
		requests.GET("/my", handler.ListMine)
		requests.GET("/approvals", middleware.RequireCapability(rbacService, rbac.ResourceRequest, rbac.ActionReviewQueue), handler.ListForApproval)
		requests.GET("/:id", handler.GetByID)
		requests.GET("/:id/history", handler.GetHistory)
		requests.PATCH("/:id/status", middleware.RequireCapability(rbacService, rbac.ResourceRequest, rbac.ActionApprove), handler.ChangeStatus)
	}
}
