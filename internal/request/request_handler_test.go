package request_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-reqdesk/internal/request"
	requesterrors "go-reqdesk/internal/request/errors"
	"go-reqdesk/internal/shared/actor"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Meta  json.RawMessage `json:"meta"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeRequestService struct {
	createFn          func(ctx context.Context, act actor.Actor, req request.CreateRequestInput) (request.RequestResponse, error)
	getByIDFn         func(ctx context.Context, act actor.Actor, id string) (request.RequestResponse, error)
	getHistoryFn      func(ctx context.Context, act actor.Actor, id string) ([]request.HistoryEntryResponse, error)
	listMineFn        func(ctx context.Context, act actor.Actor, q request.ListQuery) ([]request.RequestSummary, int64, error)
	listForApprovalFn func(ctx context.Context, act actor.Actor, q request.ListQuery) ([]request.RequestSummary, int64, error)
	changeStatusFn    func(ctx context.Context, act actor.Actor, id string, req request.ChangeStatusInput) (request.RequestResponse, error)
}

func (f *fakeRequestService) Create(ctx context.Context, act actor.Actor, req request.CreateRequestInput) (request.RequestResponse, error) {
	return f.createFn(ctx, act, req)
}

func (f *fakeRequestService) GetByID(ctx context.Context, act actor.Actor, id string) (request.RequestResponse, error) {
	return f.getByIDFn(ctx, act, id)
}

func (f *fakeRequestService) GetHistory(ctx context.Context, act actor.Actor, id string) ([]request.HistoryEntryResponse, error) {
	return f.getHistoryFn(ctx, act, id)
}

func (f *fakeRequestService) ListMine(ctx context.Context, act actor.Actor, q request.ListQuery) ([]request.RequestSummary, int64, error) {
	return f.listMineFn(ctx, act, q)
}

func (f *fakeRequestService) ListForApproval(ctx context.Context, act actor.Actor, q request.ListQuery) ([]request.RequestSummary, int64, error) {
	return f.listForApprovalFn(ctx, act, q)
}

func (f *fakeRequestService) ChangeStatus(ctx context.Context, act actor.Actor, id string, req request.ChangeStatusInput) (request.RequestResponse, error) {
	return f.changeStatusFn(ctx, act, id, req)
}

func authedContext(w *httptest.ResponseRecorder, companyID, employeeID string, roles ...string) (*gin.Context, *gin.Engine) {
	c, r := gin.CreateTestContext(w)
	c.Set("company_id", companyID)
	c.Set("employee_id", employeeID)
	c.Set("roles", roles)
	return c, r
}

func TestRequestHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)
	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		svc := &fakeRequestService{
			createFn: func(ctx context.Context, act actor.Actor, req request.CreateRequestInput) (request.RequestResponse, error) {
				assert.Equal(t, companyID, act.CompanyID)
				assert.Equal(t, employeeID, act.EmployeeID)
				assert.Equal(t, request.TypeLeave, req.RequestType)
				return request.RequestResponse{
					ID:          uuid.New().String(),
					CompanyID:   act.CompanyID,
					RequestType: req.RequestType,
					Status:      request.StatusSubmitted,
					RequestedBy: act.EmployeeID,
				}, nil
			},
		}

		h := request.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := authedContext(w, companyID, employeeID, actor.RoleEmployee)
		body := `{"request_type":"LEAVE","title":"Spring break","leave":{"leave_type":"ANNUAL","start_date":"2026-04-01","end_date":"2026-04-03"}}`
		c.Request = httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got request.RequestResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, request.StatusSubmitted, got.Status)
	})

	t.Run("missing request type fails validation", func(t *testing.T) {
		svc := &fakeRequestService{
			createFn: func(ctx context.Context, act actor.Actor, req request.CreateRequestInput) (request.RequestResponse, error) {
				t.Fatal("service must not be called for invalid bodies")
				return request.RequestResponse{}, nil
			},
		}

		h := request.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := authedContext(w, companyID, employeeID, actor.RoleEmployee)
		c.Request = httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(`{"title":"no type"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
	})

	t.Run("service errors map to their http status", func(t *testing.T) {
		svc := &fakeRequestService{
			createFn: func(ctx context.Context, act actor.Actor, req request.CreateRequestInput) (request.RequestResponse, error) {
				return request.RequestResponse{}, requesterrors.ErrLeaveOverlap
			},
		}

		h := request.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := authedContext(w, companyID, employeeID, actor.RoleEmployee)
		body := `{"request_type":"LEAVE","leave":{"leave_type":"ANNUAL","start_date":"2026-04-01","end_date":"2026-04-03"}}`
		c.Request = httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")

		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "CONFLICT", env.Error.Code)
	})
}

func TestRequestHandler_ListMine(t *testing.T) {
	gin.SetMode(gin.TestMode)
	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	t.Run("parses paging and filters from the query string", func(t *testing.T) {
		svc := &fakeRequestService{
			listMineFn: func(ctx context.Context, act actor.Actor, q request.ListQuery) ([]request.RequestSummary, int64, error) {
				assert.Equal(t, 2, q.Page)
				assert.Equal(t, 25, q.PageSize)
				assert.Equal(t, request.SortByStatus, q.SortBy)
				assert.False(t, q.Desc)
				assert.Equal(t, "travel", q.Term)
				assert.Equal(t, request.TypeFinancial, q.TypeFilter)
				return []request.RequestSummary{{ID: uuid.New().String()}}, 31, nil
			},
		}

		h := request.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := authedContext(w, companyID, employeeID, actor.RoleEmployee)
		c.Request = httptest.NewRequest(http.MethodGet, "/requests/my?page=2&page_size=25&sort_by=status&order=asc&q=travel&type=FINANCIAL", nil)

		h.ListMine(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)

		var meta struct {
			Total      int64 `json:"total"`
			TotalPages int   `json:"totalPages"`
			Page       int   `json:"page"`
		}
		assert.NoError(t, json.Unmarshal(env.Meta, &meta))
		assert.Equal(t, int64(31), meta.Total)
		assert.Equal(t, 2, meta.TotalPages)
		assert.Equal(t, 2, meta.Page)
	})
}

func TestRequestHandler_ChangeStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	companyID := uuid.New().String()
	approverID := uuid.New().String()
	requestID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		svc := &fakeRequestService{
			changeStatusFn: func(ctx context.Context, act actor.Actor, id string, req request.ChangeStatusInput) (request.RequestResponse, error) {
				assert.Equal(t, requestID, id)
				assert.Equal(t, request.StatusApproved, req.Status)
				assert.Equal(t, "ok to go", req.Comment)
				return request.RequestResponse{ID: id, Status: req.Status}, nil
			},
		}

		h := request.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := authedContext(w, companyID, approverID, actor.RoleHRAdmin)
		c.Request = httptest.NewRequest(http.MethodPatch, "/requests/"+requestID+"/status", strings.NewReader(`{"status":"APPROVED","comment":"ok to go"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "id", Value: requestID}}

		h.ChangeStatus(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown status fails validation", func(t *testing.T) {
		svc := &fakeRequestService{
			changeStatusFn: func(ctx context.Context, act actor.Actor, id string, req request.ChangeStatusInput) (request.RequestResponse, error) {
				t.Fatal("service must not be called for invalid bodies")
				return request.RequestResponse{}, nil
			},
		}

		h := request.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := authedContext(w, companyID, approverID, actor.RoleHRAdmin)
		c.Request = httptest.NewRequest(http.MethodPatch, "/requests/"+requestID+"/status", strings.NewReader(`{"status":"DONE"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "id", Value: requestID}}

		h.ChangeStatus(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid transition surfaces as invalid state", func(t *testing.T) {
		svc := &fakeRequestService{
			changeStatusFn: func(ctx context.Context, act actor.Actor, id string, req request.ChangeStatusInput) (request.RequestResponse, error) {
				return request.RequestResponse{}, requesterrors.InvalidTransition(request.StatusApproved, request.StatusCancelled)
			},
		}

		h := request.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := authedContext(w, companyID, approverID, actor.RoleHRAdmin)
		c.Request = httptest.NewRequest(http.MethodPatch, "/requests/"+requestID+"/status", strings.NewReader(`{"status":"CANCELLED"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Params = gin.Params{{Key: "id", Value: requestID}}

		h.ChangeStatus(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "INVALID_STATE", env.Error.Code)
	})
}

func TestRequestHandler_GetHistory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	companyID := uuid.New().String()
	employeeID := uuid.New().String()
	requestID := uuid.New().String()

	t.Run("returns entries in order", func(t *testing.T) {
		svc := &fakeRequestService{
			getHistoryFn: func(ctx context.Context, act actor.Actor, id string) ([]request.HistoryEntryResponse, error) {
				return []request.HistoryEntryResponse{
					{Action: request.ActionSubmitted},
					{Action: request.ActionStatusChanged},
				}, nil
			},
		}

		h := request.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := authedContext(w, companyID, employeeID, actor.RoleEmployee)
		c.Request = httptest.NewRequest(http.MethodGet, "/requests/"+requestID+"/history", nil)
		c.Params = gin.Params{{Key: "id", Value: requestID}}

		h.GetHistory(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		var entries []request.HistoryEntryResponse
		assert.NoError(t, json.Unmarshal(env.Data, &entries))
		assert.Len(t, entries, 2)
		assert.Equal(t, request.ActionSubmitted, entries[0].Action)
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		svc := &fakeRequestService{
			getHistoryFn: func(ctx context.Context, act actor.Actor, id string) ([]request.HistoryEntryResponse, error) {
				return nil, requesterrors.ErrRequestNotFound
			},
		}

		h := request.NewHandler(svc)
		w := httptest.NewRecorder()
		c, _ := authedContext(w, companyID, employeeID, actor.RoleEmployee)
		c.Request = httptest.NewRequest(http.MethodGet, "/requests/"+requestID+"/history", nil)
		c.Params = gin.Params{{Key: "id", Value: requestID}}

		h.GetHistory(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
