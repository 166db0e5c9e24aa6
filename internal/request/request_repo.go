package request

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go-reqdesk/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListFilter struct {
	RequestedBy string
	Statuses    []string
	RequestType string
	Term        string
	SortBy      string
	Desc        bool
	Page        int
	PageSize    int
}

//go:generate mockgen -source=request_repo.go -destination=mock/request_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreateEnvelope(ctx context.Context, r *GenericRequest) error
	CreateLeaveDetail(ctx context.Context, d *LeaveDetail) error
	CreateFinancialDetail(ctx context.Context, d *FinancialDetail) error
	CreateResignationDetail(ctx context.Context, d *ResignationDetail) error
	CreateDataChangeDetail(ctx context.Context, d *DataChangeDetail) error

	// FindByIDAndCompany is the untracked read path, payloads preloaded.
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*GenericRequest, error)
	// FindForUpdate locks the envelope row and loads its typed detail,
	// for use inside a status-change transaction. Returns (nil, nil)
	// when the request does not exist in the company.
	FindForUpdate(ctx context.Context, companyID, id string) (*GenericRequest, error)
	UpdateStatus(ctx context.Context, id, status string, lastUpdatedAt time.Time) error
	ApplyDataChange(ctx context.Context, genericRequestID string, approvedChanges []byte, appliedAt time.Time) error

	// HasOverlappingLeave reports whether the employee already has a
	// leave request in SUBMITTED, IN_REVIEW or APPROVED whose date
	// range overlaps [startDate, endDate].
	HasOverlappingLeave(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time) (bool, error)

	AppendHistory(ctx context.Context, h *RequestHistory) error
	ListHistory(ctx context.Context, companyID, requestID string) ([]RequestHistory, error)

	List(ctx context.Context, companyID string, f ListFilter) ([]GenericRequest, int64, error)
}

type repository struct {
	gdb *gorm.DB
	db  *sql.DB
	tx  *sql.Tx
}

func NewRepository(gormDB *gorm.DB, db *sql.DB) Repository {
	return &repository{gdb: gormDB, db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{gdb: r.gdb, db: r.db, tx: tx}
}

func (r *repository) CreateEnvelope(ctx context.Context, req *GenericRequest) error {
	query := `
INSERT INTO generic_requests (
	id, company_id, request_type, status, requested_by, title, description,
	requested_at, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
`
	_, err := r.execer().ExecContext(
		ctx, query,
		req.ID, req.CompanyID, req.RequestType, req.Status, req.RequestedBy,
		req.Title, req.Description, req.RequestedAt,
	)
	return err
}

func (r *repository) CreateLeaveDetail(ctx context.Context, d *LeaveDetail) error {
	query := `
INSERT INTO leave_request_details (
	id, generic_request_id, leave_type, start_date, end_date, total_days, reason
) VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err := r.execer().ExecContext(
		ctx, query,
		d.ID, d.GenericRequestID, d.LeaveType, d.StartDate, d.EndDate, d.TotalDays, d.Reason,
	)
	return err
}

func (r *repository) CreateFinancialDetail(ctx context.Context, d *FinancialDetail) error {
	query := `
INSERT INTO financial_request_details (
	id, generic_request_id, financial_type, amount, currency, from_date, to_date, details
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err := r.execer().ExecContext(
		ctx, query,
		d.ID, d.GenericRequestID, d.FinancialType, d.Amount, d.Currency, d.FromDate, d.ToDate, d.Details,
	)
	return err
}

func (r *repository) CreateResignationDetail(ctx context.Context, d *ResignationDetail) error {
	query := `
INSERT INTO resignation_request_details (
	id, generic_request_id, proposed_last_working_date, reason, is_voluntary, notes
) VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err := r.execer().ExecContext(
		ctx, query,
		d.ID, d.GenericRequestID, d.ProposedLastWorkingDate, d.Reason, d.IsVoluntary, d.Notes,
	)
	return err
}

func (r *repository) CreateDataChangeDetail(ctx context.Context, d *DataChangeDetail) error {
	query := `
INSERT INTO data_change_request_details (
	id, generic_request_id, requested_changes
) VALUES ($1, $2, $3)
`
	_, err := r.execer().ExecContext(
		ctx, query,
		d.ID, d.GenericRequestID, d.RequestedChanges,
	)
	return err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*GenericRequest, error) {
	var req GenericRequest
	err := r.gdb.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Leave").
		Preload("Financial").
		Preload("Resignation").
		Preload("DataChange").
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) FindForUpdate(ctx context.Context, companyID, id string) (*GenericRequest, error) {
	query := `
SELECT
	id::text,
	company_id::text,
	request_type,
	status,
	requested_by::text,
	title,
	description,
	requested_at,
	last_updated_at
FROM generic_requests
WHERE company_id = $1 AND id = $2 AND deleted_at IS NULL
FOR UPDATE
`
	row := r.queryer().QueryRowContext(ctx, query, companyID, id)

	var (
		req                      GenericRequest
		idStr, companyStr, reqBy string
	)
	err := row.Scan(
		&idStr,
		&companyStr,
		&req.RequestType,
		&req.Status,
		&reqBy,
		&req.Title,
		&req.Description,
		&req.RequestedAt,
		&req.LastUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if req.ID, err = uuid.Parse(idStr); err != nil {
		return nil, err
	}
	if req.CompanyID, err = uuid.Parse(companyStr); err != nil {
		return nil, err
	}
	if req.RequestedBy, err = uuid.Parse(reqBy); err != nil {
		return nil, err
	}

	if err := r.loadDetail(ctx, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) loadDetail(ctx context.Context, req *GenericRequest) error {
	switch req.RequestType {
	case TypeLeave:
		query := `
SELECT id::text, leave_type, start_date, end_date, total_days, reason
FROM leave_request_details
WHERE generic_request_id = $1
`
		var (
			d     LeaveDetail
			idStr string
		)
		err := r.queryer().QueryRowContext(ctx, query, req.ID).Scan(
			&idStr, &d.LeaveType, &d.StartDate, &d.EndDate, &d.TotalDays, &d.Reason,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}
		if d.ID, err = uuid.Parse(idStr); err != nil {
			return err
		}
		d.GenericRequestID = req.ID
		req.Leave = &d

	case TypeFinancial:
		query := `
SELECT id::text, financial_type, amount, currency, from_date, to_date, details
FROM financial_request_details
WHERE generic_request_id = $1
`
		var (
			d     FinancialDetail
			idStr string
		)
		err := r.queryer().QueryRowContext(ctx, query, req.ID).Scan(
			&idStr, &d.FinancialType, &d.Amount, &d.Currency, &d.FromDate, &d.ToDate, &d.Details,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}
		if d.ID, err = uuid.Parse(idStr); err != nil {
			return err
		}
		d.GenericRequestID = req.ID
		req.Financial = &d

	case TypeResignation:
		query := `
SELECT id::text, proposed_last_working_date, reason, is_voluntary, notes
FROM resignation_request_details
WHERE generic_request_id = $1
`
		var (
			d     ResignationDetail
			idStr string
		)
		err := r.queryer().QueryRowContext(ctx, query, req.ID).Scan(
			&idStr, &d.ProposedLastWorkingDate, &d.Reason, &d.IsVoluntary, &d.Notes,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}
		if d.ID, err = uuid.Parse(idStr); err != nil {
			return err
		}
		d.GenericRequestID = req.ID
		req.Resignation = &d

	case TypeDataChange:
		query := `
SELECT id::text, requested_changes, approved_changes, applied_at
FROM data_change_request_details
WHERE generic_request_id = $1
`
		var (
			d     DataChangeDetail
			idStr string
		)
		err := r.queryer().QueryRowContext(ctx, query, req.ID).Scan(
			&idStr, &d.RequestedChanges, &d.ApprovedChanges, &d.AppliedAt,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}
		if d.ID, err = uuid.Parse(idStr); err != nil {
			return err
		}
		d.GenericRequestID = req.ID
		req.DataChange = &d
	}

	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id, status string, lastUpdatedAt time.Time) error {
	query := `
UPDATE generic_requests
SET status = $2, last_updated_at = $3, updated_at = NOW()
WHERE id = $1
`
	_, err := r.execer().ExecContext(ctx, query, id, status, lastUpdatedAt)
	return err
}

func (r *repository) ApplyDataChange(ctx context.Context, genericRequestID string, approvedChanges []byte, appliedAt time.Time) error {
	query := `
UPDATE data_change_request_details
SET approved_changes = $2, applied_at = $3
WHERE generic_request_id = $1
`
	_, err := r.execer().ExecContext(ctx, query, genericRequestID, approvedChanges, appliedAt)
	return err
}

func (r *repository) HasOverlappingLeave(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time) (bool, error) {
	query := `
SELECT COUNT(1)
FROM generic_requests gr
JOIN leave_request_details ld ON ld.generic_request_id = gr.id
WHERE gr.company_id = $1
	AND gr.requested_by = $2
	AND gr.deleted_at IS NULL
	AND gr.status IN ($3, $4, $5)
	AND ld.start_date <= $7
	AND ld.end_date >= $6
`
	var count int64
	err := r.queryer().QueryRowContext(
		ctx, query,
		companyID, employeeID,
		StatusSubmitted, StatusInReview, StatusApproved,
		startDate, endDate,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) AppendHistory(ctx context.Context, h *RequestHistory) error {
	query := `
INSERT INTO request_histories (
	id, generic_request_id, action, old_status, new_status, comment, performed_by, performed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err := r.execer().ExecContext(
		ctx, query,
		h.ID, h.GenericRequestID, h.Action, h.OldStatus, h.NewStatus,
		h.Comment, h.PerformedBy, h.PerformedAt,
	)
	return err
}

func (r *repository) ListHistory(ctx context.Context, companyID, requestID string) ([]RequestHistory, error) {
	var entries []RequestHistory
	err := r.gdb.WithContext(ctx).
		Joins("JOIN generic_requests ON generic_requests.id = request_histories.generic_request_id").
		Where("generic_requests.company_id = ?", companyID).
		Where("request_histories.generic_request_id = ?", requestID).
		Order("request_histories.performed_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *repository) List(ctx context.Context, companyID string, f ListFilter) ([]GenericRequest, int64, error) {
	q := r.gdb.WithContext(ctx).
		Model(&GenericRequest{}).
		Scopes(tenant.Scope(companyID))

	if f.RequestedBy != "" {
		q = q.Where("requested_by = ?", f.RequestedBy)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.RequestType != "" {
		q = q.Where("request_type = ?", f.RequestType)
	}
	if f.Term != "" {
		term := "%" + strings.ToLower(f.Term) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", term, term)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortCol := "requested_at"
	if f.SortBy == SortByStatus {
		sortCol = "status"
	}
	direction := "ASC"
	if f.Desc {
		direction = "DESC"
	}

	var items []GenericRequest
	err := q.Order(sortCol + " " + direction).
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *repository) queryer() interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}
