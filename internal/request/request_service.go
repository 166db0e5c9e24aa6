package request

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go-reqdesk/internal/events"
	"go-reqdesk/internal/leavebalance"
	balanceerrors "go-reqdesk/internal/leavebalance/errors"
	"go-reqdesk/internal/messaging/kafka"
	"go-reqdesk/internal/rbac"
	requesterrors "go-reqdesk/internal/request/errors"
	"go-reqdesk/internal/shared/actor"
	"go-reqdesk/internal/shared/apperror"
	"go-reqdesk/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// allowedTransitions is the exhaustive set of legal status changes. Any
// pair not listed is rejected. DRAFT only exists as an initial value and
// is never re-entered; the terminal states have no outgoing edges.
var allowedTransitions = map[string][]string{
	StatusDraft:     {StatusSubmitted},
	StatusSubmitted: {StatusInReview, StatusCancelled},
	StatusInReview:  {StatusApproved, StatusRejected},
}

func isAllowedStatusTransition(oldStatus, newStatus string) bool {
	for _, allowed := range allowedTransitions[oldStatus] {
		if allowed == newStatus {
			return true
		}
	}
	return false
}

// historyActionFor derives the audit action from the status a request
// moved into.
func historyActionFor(newStatus string) string {
	switch newStatus {
	case StatusSubmitted:
		return ActionSubmitted
	case StatusRejected:
		return ActionRejected
	case StatusCancelled:
		return ActionCancelled
	default:
		return ActionStatusChanged
	}
}

// Authorizer is the capability-check port. The rbac service satisfies it.
type Authorizer interface {
	Enforce(roles []string, resource, action string) (bool, error)
}

//go:generate mockgen -source=request_service.go -destination=mock/request_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, act actor.Actor, req CreateRequestInput) (RequestResponse, error)
	GetByID(ctx context.Context, act actor.Actor, id string) (RequestResponse, error)
	GetHistory(ctx context.Context, act actor.Actor, id string) ([]HistoryEntryResponse, error)
	ListMine(ctx context.Context, act actor.Actor, q ListQuery) ([]RequestSummary, int64, error)
	ListForApproval(ctx context.Context, act actor.Actor, q ListQuery) ([]RequestSummary, int64, error)
	ChangeStatus(ctx context.Context, act actor.Actor, id string, req ChangeStatusInput) (RequestResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	ledger leavebalance.Service
	authz  Authorizer
	outbox kafka.OutboxRepository
	now    func() time.Time
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, ledger leavebalance.Service, authz Authorizer, logger ...*zap.Logger) Service {
	l := zap.L().Named("request.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("request.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		ledger: ledger,
		authz:  authz,
		now:    time.Now,
		logger: l,
	}
}

func NewServiceWithOutbox(db *sql.DB, repo Repository, ledger leavebalance.Service, authz Authorizer, outboxRepo kafka.OutboxRepository, logger ...*zap.Logger) Service {
	s := NewService(db, repo, ledger, authz, logger...).(*service)
	s.outbox = outboxRepo
	return s
}

// NewServiceWithClock injects the clock, for tests and replays.
func NewServiceWithClock(db *sql.DB, repo Repository, ledger leavebalance.Service, authz Authorizer, now func() time.Time, logger ...*zap.Logger) Service {
	s := NewService(db, repo, ledger, authz, logger...).(*service)
	if now != nil {
		s.now = now
	}
	return s
}

func (s *service) Create(ctx context.Context, act actor.Actor, req CreateRequestInput) (RequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create request requested",
		zap.String("request_id", rid),
		zap.String("company_id", act.CompanyID),
		zap.String("employee_id", act.EmployeeID),
		zap.String("request_type", req.RequestType),
	)

	if !act.IsLinked() {
		return RequestResponse{}, requesterrors.ErrEmployeeNotLinked
	}
	companyUUID, err := uuid.Parse(act.CompanyID)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidCompanyID
	}
	employeeUUID, err := uuid.Parse(act.EmployeeID)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidEmployeeID
	}
	if err := validatePayloadShape(req); err != nil {
		return RequestResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create request begin tx failed", zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := s.now().UTC()

	envelope := &GenericRequest{
		ID:          uuid.New(),
		CompanyID:   companyUUID,
		RequestType: req.RequestType,
		Status:      StatusSubmitted,
		RequestedBy: employeeUUID,
		Title:       req.Title,
		Description: req.Description,
		RequestedAt: now,
	}

	// Validation must complete before any write so a failure leaves no
	// partial state.
	switch req.RequestType {
	case TypeLeave:
		detail, err := s.validateLeave(ctx, qtx, act, envelope.ID, *req.Leave, now)
		if err != nil {
			s.logger.Warn("create leave request validation failed", zap.Error(err))
			return RequestResponse{}, err
		}
		envelope.Leave = detail

	case TypeFinancial:
		detail, err := validateFinancial(envelope.ID, *req.Financial)
		if err != nil {
			s.logger.Warn("create financial request validation failed", zap.Error(err))
			return RequestResponse{}, err
		}
		envelope.Financial = detail

	case TypeResignation:
		detail, err := validateResignation(envelope.ID, *req.Resignation, now)
		if err != nil {
			s.logger.Warn("create resignation request validation failed", zap.Error(err))
			return RequestResponse{}, err
		}
		envelope.Resignation = detail

	case TypeDataChange:
		detail, err := validateDataChange(envelope.ID, *req.DataChange)
		if err != nil {
			s.logger.Warn("create data change request validation failed", zap.Error(err))
			return RequestResponse{}, err
		}
		envelope.DataChange = detail
	}

	if err := qtx.CreateEnvelope(ctx, envelope); err != nil {
		s.logger.Error("create request persist envelope failed", zap.Error(err))
		return RequestResponse{}, err
	}
	if err := s.persistDetail(ctx, qtx, envelope); err != nil {
		s.logger.Error("create request persist detail failed", zap.Error(err))
		return RequestResponse{}, err
	}

	submitted := StatusSubmitted
	if err := qtx.AppendHistory(ctx, &RequestHistory{
		ID:               uuid.New(),
		GenericRequestID: envelope.ID,
		Action:           ActionSubmitted,
		NewStatus:        &submitted,
		PerformedBy:      employeeUUID,
		PerformedAt:      now,
	}); err != nil {
		s.logger.Error("create request persist history failed", zap.Error(err))
		return RequestResponse{}, err
	}

	if s.outbox != nil {
		event := events.RequestSubmittedEvent{
			EventType:   "request_submitted",
			RequestID:   envelope.ID.String(),
			TraceID:     rid,
			CompanyID:   act.CompanyID,
			EmployeeID:  act.EmployeeID,
			RequestType: envelope.RequestType,
			OccurredAt:  now,
		}
		if err := s.enqueueEvent(ctx, tx, envelope.ID.String(), rid, event.EventType, events.RequestSubmittedTopic, event); err != nil {
			return RequestResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create request commit failed", zap.Error(err))
		return RequestResponse{}, err
	}

	s.logger.Info("create request success",
		zap.String("generic_request_id", envelope.ID.String()),
		zap.String("request_type", envelope.RequestType),
		zap.String("company_id", act.CompanyID),
	)
	return mapToResponse(*envelope), nil
}

func (s *service) validateLeave(ctx context.Context, qtx Repository, act actor.Actor, requestID uuid.UUID, in LeaveInput, now time.Time) (*LeaveDetail, error) {
	startDate, err := parseDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate(in.EndDate)
	if err != nil {
		return nil, err
	}
	if startDate.After(endDate) {
		return nil, requesterrors.ErrInvalidDateRange
	}
	if endDate.Before(dateOnly(now)) {
		return nil, requesterrors.ErrLeaveEndInPast
	}

	totalDays := int(endDate.Sub(startDate).Hours()/24) + 1
	if totalDays <= 0 {
		return nil, requesterrors.ErrInvalidDateRange
	}

	overlap, err := qtx.HasOverlappingLeave(ctx, act.CompanyID, act.EmployeeID, startDate, endDate)
	if err != nil {
		s.logger.Error("create leave overlap check failed", zap.Error(err))
		return nil, err
	}
	if overlap {
		s.logger.Warn("create leave overlap detected",
			zap.String("company_id", act.CompanyID),
			zap.String("employee_id", act.EmployeeID),
			zap.String("start_date", in.StartDate),
			zap.String("end_date", in.EndDate),
		)
		return nil, requesterrors.ErrLeaveOverlap
	}

	return &LeaveDetail{
		ID:               uuid.New(),
		GenericRequestID: requestID,
		LeaveType:        in.LeaveType,
		StartDate:        startDate,
		EndDate:          endDate,
		TotalDays:        totalDays,
		Reason:           in.Reason,
	}, nil
}

func validateFinancial(requestID uuid.UUID, in FinancialInput) (*FinancialDetail, error) {
	amount, err := decimal.NewFromString(in.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, requesterrors.ErrInvalidAmount
	}

	var fromDate, toDate *time.Time
	if in.FromDate != "" {
		parsed, err := parseDate(in.FromDate)
		if err != nil {
			return nil, err
		}
		fromDate = &parsed
	}
	if in.ToDate != "" {
		parsed, err := parseDate(in.ToDate)
		if err != nil {
			return nil, err
		}
		toDate = &parsed
	}
	if fromDate != nil && toDate != nil && fromDate.After(*toDate) {
		return nil, requesterrors.ErrInvalidDateRange
	}

	return &FinancialDetail{
		ID:               uuid.New(),
		GenericRequestID: requestID,
		FinancialType:    in.FinancialType,
		Amount:           amount,
		Currency:         in.Currency,
		FromDate:         fromDate,
		ToDate:           toDate,
		Details:          in.Details,
	}, nil
}

func validateResignation(requestID uuid.UUID, in ResignationInput, now time.Time) (*ResignationDetail, error) {
	lastDay, err := parseDate(in.ProposedLastWorkingDate)
	if err != nil {
		return nil, err
	}
	if lastDay.Before(dateOnly(now)) {
		return nil, requesterrors.ErrLastWorkingDateInPast
	}

	return &ResignationDetail{
		ID:                      uuid.New(),
		GenericRequestID:        requestID,
		ProposedLastWorkingDate: lastDay,
		Reason:                  in.Reason,
		IsVoluntary:             *in.IsVoluntary,
		Notes:                   in.Notes,
	}, nil
}

func validateDataChange(requestID uuid.UUID, in DataChangeInput) (*DataChangeDetail, error) {
	if len(in.Changes) == 0 {
		return nil, requesterrors.ErrEmptyChangeList
	}

	changes := make([]FieldChange, len(in.Changes))
	for i, c := range in.Changes {
		changes[i] = FieldChange{
			FieldName: c.FieldName,
			OldValue:  c.OldValue,
			NewValue:  c.NewValue,
		}
	}
	blob, err := EncodeFieldChanges(changes)
	if err != nil {
		return nil, err
	}

	return &DataChangeDetail{
		ID:               uuid.New(),
		GenericRequestID: requestID,
		RequestedChanges: blob,
	}, nil
}

func (s *service) persistDetail(ctx context.Context, qtx Repository, envelope *GenericRequest) error {
	switch envelope.RequestType {
	case TypeLeave:
		return qtx.CreateLeaveDetail(ctx, envelope.Leave)
	case TypeFinancial:
		return qtx.CreateFinancialDetail(ctx, envelope.Financial)
	case TypeResignation:
		return qtx.CreateResignationDetail(ctx, envelope.Resignation)
	case TypeDataChange:
		return qtx.CreateDataChangeDetail(ctx, envelope.DataChange)
	}
	return requesterrors.ErrPayloadMismatch
}

func (s *service) ChangeStatus(ctx context.Context, act actor.Actor, id string, req ChangeStatusInput) (RequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("change request status requested",
		zap.String("request_id", rid),
		zap.String("generic_request_id", id),
		zap.String("company_id", act.CompanyID),
		zap.String("actor_id", act.EmployeeID),
		zap.String("target_status", req.Status),
	)

	if !act.IsLinked() {
		return RequestResponse{}, requesterrors.ErrEmployeeNotLinked
	}
	actorUUID, err := uuid.Parse(act.EmployeeID)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidEmployeeID
	}
	if _, err := uuid.Parse(id); err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidRequestID
	}

	allowed, err := s.authz.Enforce(act.Roles, rbac.ResourceRequest, rbac.ActionApprove)
	if err != nil {
		s.logger.Error("change status capability check failed", zap.Error(err))
		return RequestResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "authorization check failed", 500)
	}
	if !allowed {
		return RequestResponse{}, requesterrors.ErrApproverRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("change status begin tx failed", zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	envelope, err := qtx.FindForUpdate(ctx, act.CompanyID, id)
	if err != nil {
		s.logger.Error("change status load failed", zap.Error(err))
		return RequestResponse{}, err
	}
	if envelope == nil {
		return RequestResponse{}, requesterrors.ErrRequestNotFound
	}

	oldStatus := envelope.Status
	if !isAllowedStatusTransition(oldStatus, req.Status) {
		s.logger.Warn("change status transition invalid",
			zap.String("generic_request_id", id),
			zap.String("from_status", oldStatus),
			zap.String("to_status", req.Status),
		)
		return RequestResponse{}, requesterrors.InvalidTransition(oldStatus, req.Status)
	}

	now := s.now().UTC()

	// Approving a leave request consumes balance days inside this same
	// transaction; a failed consume aborts the whole transition.
	if envelope.RequestType == TypeLeave && req.Status == StatusApproved {
		if envelope.Leave == nil {
			s.logger.Error("change status leave detail missing",
				zap.String("generic_request_id", id),
			)
			return RequestResponse{}, requesterrors.ErrLeaveDetailMissing
		}

		days := decimal.NewFromInt(int64(envelope.Leave.TotalDays))
		consumed, err := s.ledger.TryConsume(ctx, tx, act.CompanyID, envelope.RequestedBy.String(), envelope.Leave.LeaveType, days)
		if err != nil {
			s.logger.Error("change status consume balance failed", zap.Error(err))
			return RequestResponse{}, err
		}
		if !consumed {
			return RequestResponse{}, balanceerrors.ErrInsufficientBalance
		}
	}

	if envelope.RequestType == TypeDataChange && req.Status == StatusApproved && envelope.DataChange != nil {
		if err := qtx.ApplyDataChange(ctx, id, envelope.DataChange.RequestedChanges, now); err != nil {
			s.logger.Error("change status apply data change failed", zap.Error(err))
			return RequestResponse{}, err
		}
		envelope.DataChange.ApprovedChanges = envelope.DataChange.RequestedChanges
		envelope.DataChange.AppliedAt = &now
	}

	if err := qtx.UpdateStatus(ctx, id, req.Status, now); err != nil {
		s.logger.Error("change status persist failed",
			zap.String("generic_request_id", id),
			zap.Error(err),
		)
		return RequestResponse{}, err
	}
	envelope.Status = req.Status
	envelope.LastUpdatedAt = &now

	newStatus := req.Status
	if err := qtx.AppendHistory(ctx, &RequestHistory{
		ID:               uuid.New(),
		GenericRequestID: envelope.ID,
		Action:           historyActionFor(req.Status),
		OldStatus:        &oldStatus,
		NewStatus:        &newStatus,
		Comment:          req.Comment,
		PerformedBy:      actorUUID,
		PerformedAt:      now,
	}); err != nil {
		s.logger.Error("change status persist history failed", zap.Error(err))
		return RequestResponse{}, err
	}

	if s.outbox != nil {
		event := events.RequestStatusChangedEvent{
			EventType:   "request_status_changed",
			RequestID:   envelope.ID.String(),
			TraceID:     rid,
			CompanyID:   act.CompanyID,
			RequestType: envelope.RequestType,
			OldStatus:   oldStatus,
			NewStatus:   req.Status,
			PerformedBy: act.EmployeeID,
			OccurredAt:  now,
		}
		if err := s.enqueueEvent(ctx, tx, envelope.ID.String(), rid, event.EventType, events.RequestStatusChangedTopic, event); err != nil {
			return RequestResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("change status commit failed",
			zap.String("generic_request_id", id),
			zap.Error(err),
		)
		return RequestResponse{}, err
	}

	s.logger.Info("change request status success",
		zap.String("generic_request_id", id),
		zap.String("from_status", oldStatus),
		zap.String("to_status", req.Status),
	)
	return mapToResponse(*envelope), nil
}

func (s *service) enqueueEvent(ctx context.Context, tx *sql.Tx, aggregateID, traceID, eventType, topic string, payload any) error {
	blob, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("marshal event failed", zap.Error(err))
		return err
	}

	outboxRepo := s.outbox.WithTx(tx)
	if err := outboxRepo.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     traceID,
		AggregateType: "generic_request",
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         topic,
		Payload:       blob,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("outbox persist failed",
			zap.String("aggregate_id", aggregateID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, act actor.Actor, id string) (RequestResponse, error) {
	if !act.IsLinked() {
		return RequestResponse{}, requesterrors.ErrEmployeeNotLinked
	}

	envelope, err := s.repo.FindByIDAndCompany(ctx, act.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, requesterrors.ErrRequestNotFound
		}
		return RequestResponse{}, err
	}

	if err := s.canRead(act, envelope); err != nil {
		return RequestResponse{}, err
	}

	return mapToResponse(*envelope), nil
}

func (s *service) GetHistory(ctx context.Context, act actor.Actor, id string) ([]HistoryEntryResponse, error) {
	if !act.IsLinked() {
		return nil, requesterrors.ErrEmployeeNotLinked
	}

	envelope, err := s.repo.FindByIDAndCompany(ctx, act.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, requesterrors.ErrRequestNotFound
		}
		return nil, err
	}
	if err := s.canRead(act, envelope); err != nil {
		return nil, err
	}

	entries, err := s.repo.ListHistory(ctx, act.CompanyID, id)
	if err != nil {
		return nil, err
	}

	resp := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = HistoryEntryResponse{
			ID:          e.ID.String(),
			Action:      e.Action,
			OldStatus:   e.OldStatus,
			NewStatus:   e.NewStatus,
			Comment:     e.Comment,
			PerformedBy: e.PerformedBy.String(),
			PerformedAt: e.PerformedAt.Format(time.RFC3339),
		}
	}
	return resp, nil
}

// canRead allows the request owner, and anyone with the read-any
// capability, to see a request.
func (s *service) canRead(act actor.Actor, envelope *GenericRequest) error {
	if envelope.RequestedBy.String() == act.EmployeeID {
		return nil
	}
	allowed, err := s.authz.Enforce(act.Roles, rbac.ResourceRequest, rbac.ActionReadAny)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "authorization check failed", 500)
	}
	if !allowed {
		return apperror.ErrForbidden
	}
	return nil
}

func (s *service) ListMine(ctx context.Context, act actor.Actor, q ListQuery) ([]RequestSummary, int64, error) {
	if !act.IsLinked() {
		return nil, 0, requesterrors.ErrEmployeeNotLinked
	}
	if err := validateTypeFilter(q.TypeFilter); err != nil {
		return nil, 0, err
	}

	nq := q.normalized()
	items, total, err := s.repo.List(ctx, act.CompanyID, ListFilter{
		RequestedBy: act.EmployeeID,
		RequestType: nq.TypeFilter,
		Term:        nq.Term,
		SortBy:      nq.SortBy,
		Desc:        nq.Desc,
		Page:        nq.Page,
		PageSize:    nq.PageSize,
	})
	if err != nil {
		return nil, 0, err
	}
	return mapToSummaries(items), total, nil
}

func (s *service) ListForApproval(ctx context.Context, act actor.Actor, q ListQuery) ([]RequestSummary, int64, error) {
	if !act.IsLinked() {
		return nil, 0, requesterrors.ErrEmployeeNotLinked
	}

	allowed, err := s.authz.Enforce(act.Roles, rbac.ResourceRequest, rbac.ActionReviewQueue)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodeInternalError, "authorization check failed", 500)
	}
	if !allowed {
		return nil, 0, requesterrors.ErrApproverRequired
	}

	if err := validateTypeFilter(q.TypeFilter); err != nil {
		return nil, 0, err
	}

	nq := q.normalized()
	items, total, err := s.repo.List(ctx, act.CompanyID, ListFilter{
		Statuses:    []string{StatusSubmitted, StatusInReview},
		RequestType: nq.TypeFilter,
		Term:        nq.Term,
		SortBy:      nq.SortBy,
		Desc:        nq.Desc,
		Page:        nq.Page,
		PageSize:    nq.PageSize,
	})
	if err != nil {
		return nil, 0, err
	}
	return mapToSummaries(items), total, nil
}

func validatePayloadShape(req CreateRequestInput) error {
	sections := 0
	if req.Leave != nil {
		sections++
	}
	if req.Financial != nil {
		sections++
	}
	if req.Resignation != nil {
		sections++
	}
	if req.DataChange != nil {
		sections++
	}
	if sections != 1 {
		return requesterrors.ErrPayloadMismatch
	}

	matches := map[string]bool{
		TypeLeave:       req.Leave != nil,
		TypeFinancial:   req.Financial != nil,
		TypeResignation: req.Resignation != nil,
		TypeDataChange:  req.DataChange != nil,
	}
	if !matches[req.RequestType] {
		return requesterrors.ErrPayloadMismatch
	}
	return nil
}

func validateTypeFilter(filter string) error {
	switch filter {
	case "", TypeLeave, TypeFinancial, TypeResignation, TypeDataChange:
		return nil
	}
	return requesterrors.ErrInvalidTypeFilter
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, requesterrors.ErrInvalidDateFormat
	}
	return t, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func mapToResponse(r GenericRequest) RequestResponse {
	resp := RequestResponse{
		ID:          r.ID.String(),
		CompanyID:   r.CompanyID.String(),
		RequestType: r.RequestType,
		Status:      r.Status,
		RequestedBy: r.RequestedBy.String(),
		Title:       r.Title,
		Description: r.Description,
		RequestedAt: r.RequestedAt.Format(time.RFC3339),
	}
	if r.LastUpdatedAt != nil {
		v := r.LastUpdatedAt.Format(time.RFC3339)
		resp.LastUpdatedAt = &v
	}

	if r.Leave != nil {
		resp.Leave = &LeaveView{
			LeaveType: r.Leave.LeaveType,
			StartDate: r.Leave.StartDate.Format("2006-01-02"),
			EndDate:   r.Leave.EndDate.Format("2006-01-02"),
			TotalDays: r.Leave.TotalDays,
			Reason:    r.Leave.Reason,
		}
	}
	if r.Financial != nil {
		view := &FinancialView{
			FinancialType: r.Financial.FinancialType,
			Amount:        r.Financial.Amount.StringFixed(2),
			Currency:      r.Financial.Currency,
			Details:       r.Financial.Details,
		}
		if r.Financial.FromDate != nil {
			v := r.Financial.FromDate.Format("2006-01-02")
			view.FromDate = &v
		}
		if r.Financial.ToDate != nil {
			v := r.Financial.ToDate.Format("2006-01-02")
			view.ToDate = &v
		}
		resp.Financial = view
	}
	if r.Resignation != nil {
		resp.Resignation = &ResignationView{
			ProposedLastWorkingDate: r.Resignation.ProposedLastWorkingDate.Format("2006-01-02"),
			Reason:                  r.Resignation.Reason,
			IsVoluntary:             r.Resignation.IsVoluntary,
			Notes:                   r.Resignation.Notes,
		}
	}
	if r.DataChange != nil {
		view := &DataChangeView{}
		view.Changes, _ = DecodeFieldChanges(r.DataChange.RequestedChanges)
		view.ApprovedChanges, _ = DecodeFieldChanges(r.DataChange.ApprovedChanges)
		if r.DataChange.AppliedAt != nil {
			v := r.DataChange.AppliedAt.Format(time.RFC3339)
			view.AppliedAt = &v
		}
		resp.DataChange = view
	}
	return resp
}

func mapToSummaries(items []GenericRequest) []RequestSummary {
	summaries := make([]RequestSummary, len(items))
	for i, r := range items {
		summaries[i] = RequestSummary{
			ID:          r.ID.String(),
			RequestType: r.RequestType,
			Status:      r.Status,
			RequestedBy: r.RequestedBy.String(),
			Title:       r.Title,
			RequestedAt: r.RequestedAt.Format(time.RFC3339),
		}
		if r.LastUpdatedAt != nil {
			v := r.LastUpdatedAt.Format(time.RFC3339)
			summaries[i].LastUpdatedAt = &v
		}
	}
	return summaries
}
