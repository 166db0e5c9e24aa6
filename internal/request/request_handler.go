package request

import (
	"net/http"
	"strconv"

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
	l := zap.L().Named("request.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("request.handler")
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
	h.logger.Warn("request operation failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func listQueryFromContext(c *gin.Context) ListQuery {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	return ListQuery{
		Page:       page,
		PageSize:   pageSize,
		SortBy:     c.Query("sort_by"),
		Desc:       c.DefaultQuery("order", "desc") == "desc",
		Term:       c.Query("q"),
		TypeFilter: c.Query("type"),
	}
}

func (h *Handler) Create(c *gin.Context) {
	act := actorFromContext(c)

	var req CreateRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http create request validation failed", zap.Error(err))
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), act, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	act := actorFromContext(c)

	resp, err := h.service.GetByID(c.Request.Context(), act, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetHistory(c *gin.Context) {
	act := actorFromContext(c)

	resp, err := h.service.GetHistory(c.Request.Context(), act, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListMine(c *gin.Context) {
	act := actorFromContext(c)
	q := listQueryFromContext(c)

	items, total, err := h.service.ListMine(c.Request.Context(), act, q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	nq := q.normalized()
	meta := response.NewPaginationMeta(total, nq.Page, nq.PageSize)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) ListForApproval(c *gin.Context) {
	act := actorFromContext(c)
	q := listQueryFromContext(c)

	items, total, err := h.service.ListForApproval(c.Request.Context(), act, q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	nq := q.normalized()
	meta := response.NewPaginationMeta(total, nq.Page, nq.PageSize)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) ChangeStatus(c *gin.Context) {
	act := actorFromContext(c)

	var req ChangeStatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http change status validation failed", zap.Error(err))
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	resp, err := h.service.ChangeStatus(c.Request.Context(), act, c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
