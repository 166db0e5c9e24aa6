package leavebalance

import (
	"net/http"
	"time"

	balanceerrors "go-reqdesk/internal/leavebalance/errors"
	"go-reqdesk/internal/shared/actor"
	"go-reqdesk/internal/shared/apperror"
	"go-reqdesk/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leavebalance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavebalance.handler")
	}
	return &Handler{service: service, logger: l}
}

func actorFromContext(c *gin.Context) actor.Actor {
	return actor.Actor{
		EmployeeID: c.GetString("employee_id"),
		CompanyID:  c.GetString("company_id"),
		Roles:      c.GetStringSlice("roles"),
	}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave balance request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) GetMyBalances(c *gin.Context) {
	act := actorFromContext(c)

	resp, err := h.service.GetMyBalances(c.Request.Context(), act)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Initialize(c *gin.Context) {
	act := actorFromContext(c)

	var req InitializeBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http initialize balance validation failed", zap.Error(err))
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		h.writeServiceError(c, balanceerrors.ErrInvalidStartDate)
		return
	}

	if err := h.service.Initialize(c.Request.Context(), act.CompanyID, req.EmployeeID, startDate); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusNoContent, nil, nil)
}

func (h *Handler) RunDailyAccrual(c *gin.Context) {
	act := actorFromContext(c)

	var req RunAccrualRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.logger.Warn("http run accrual validation failed", zap.Error(err))
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	today := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			h.writeServiceError(c, balanceerrors.ErrInvalidStartDate)
			return
		}
		today = parsed
	}

	resp, err := h.service.RunDailyAccrual(c.Request.Context(), act.CompanyID, today)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
