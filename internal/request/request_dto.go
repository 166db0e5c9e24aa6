package request

type LeaveInput struct {
	LeaveType string `json:"leave_type" binding:"required,oneof=ANNUAL SICK UNPAID"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason"`
}

type FinancialInput struct {
	FinancialType string `json:"financial_type" binding:"required,oneof=REIMBURSEMENT ADVANCE ALLOWANCE"`
	Amount        string `json:"amount" binding:"required"`
	Currency      string `json:"currency" binding:"required,len=3,uppercase"`
	FromDate      string `json:"from_date"`
	ToDate        string `json:"to_date"`
	Details       string `json:"details"`
}

type ResignationInput struct {
	ProposedLastWorkingDate string `json:"proposed_last_working_date" binding:"required"`
	Reason                  string `json:"reason" binding:"required"`
	IsVoluntary             *bool  `json:"is_voluntary" binding:"required"`
	Notes                   string `json:"notes"`
}

type FieldChangeInput struct {
	FieldName string  `json:"field_name" binding:"required"`
	OldValue  *string `json:"old_value"`
	NewValue  *string `json:"new_value"`
}

type DataChangeInput struct {
	Changes []FieldChangeInput `json:"changes" binding:"required,min=1,dive"`
}

// CreateRequestInput carries the envelope fields plus exactly one typed
// section matching RequestType.
type CreateRequestInput struct {
	RequestType string `json:"request_type" binding:"required,oneof=LEAVE FINANCIAL RESIGNATION EMPLOYEE_DATA_CHANGE"`
	Title       string `json:"title"`
	Description string `json:"description"`

	Leave       *LeaveInput       `json:"leave,omitempty"`
	Financial   *FinancialInput   `json:"financial,omitempty"`
	Resignation *ResignationInput `json:"resignation,omitempty"`
	DataChange  *DataChangeInput  `json:"data_change,omitempty"`
}

type ChangeStatusInput struct {
	Status  string `json:"status" binding:"required,oneof=SUBMITTED IN_REVIEW APPROVED REJECTED CANCELLED"`
	Comment string `json:"comment"`
}

const (
	SortByRequestedAt = "requested_at"
	SortByStatus      = "status"

	defaultPageSize = 10
	maxPageSize     = 100
)

type ListQuery struct {
	Page       int
	PageSize   int
	SortBy     string
	Desc       bool
	Term       string
	TypeFilter string
}

// normalized clamps paging to sane bounds and falls back to the default
// sort key.
func (q ListQuery) normalized() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	if q.SortBy != SortByStatus {
		q.SortBy = SortByRequestedAt
	}
	return q
}

type RequestSummary struct {
	ID            string  `json:"id"`
	RequestType   string  `json:"request_type"`
	Status        string  `json:"status"`
	RequestedBy   string  `json:"requested_by"`
	Title         string  `json:"title,omitempty"`
	RequestedAt   string  `json:"requested_at"`
	LastUpdatedAt *string `json:"last_updated_at,omitempty"`
}

type LeaveView struct {
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	TotalDays int    `json:"total_days"`
	Reason    string `json:"reason,omitempty"`
}

type FinancialView struct {
	FinancialType string  `json:"financial_type"`
	Amount        string  `json:"amount"`
	Currency      string  `json:"currency"`
	FromDate      *string `json:"from_date,omitempty"`
	ToDate        *string `json:"to_date,omitempty"`
	Details       string  `json:"details,omitempty"`
}

type ResignationView struct {
	ProposedLastWorkingDate string `json:"proposed_last_working_date"`
	Reason                  string `json:"reason"`
	IsVoluntary             bool   `json:"is_voluntary"`
	Notes                   string `json:"notes,omitempty"`
}

type DataChangeView struct {
	Changes         []FieldChange `json:"changes"`
	ApprovedChanges []FieldChange `json:"approved_changes,omitempty"`
	AppliedAt       *string       `json:"applied_at,omitempty"`
}

type RequestResponse struct {
	ID            string  `json:"id"`
	CompanyID     string  `json:"company_id"`
	RequestType   string  `json:"request_type"`
	Status        string  `json:"status"`
	RequestedBy   string  `json:"requested_by"`
	Title         string  `json:"title,omitempty"`
	Description   string  `json:"description,omitempty"`
	RequestedAt   string  `json:"requested_at"`
	LastUpdatedAt *string `json:"last_updated_at,omitempty"`

	Leave       *LeaveView       `json:"leave,omitempty"`
	Financial   *FinancialView   `json:"financial,omitempty"`
	Resignation *ResignationView `json:"resignation,omitempty"`
	DataChange  *DataChangeView  `json:"data_change,omitempty"`
}

type HistoryEntryResponse struct {
	ID          string  `json:"id"`
	Action      string  `json:"action"`
	OldStatus   *string `json:"old_status,omitempty"`
	NewStatus   *string `json:"new_status,omitempty"`
	Comment     string  `json:"comment,omitempty"`
	PerformedBy string  `json:"performed_by"`
	PerformedAt string  `json:"performed_at"`
}
