package request

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TypeLeave       = "LEAVE"
	TypeFinancial   = "FINANCIAL"
	TypeResignation = "RESIGNATION"
	TypeDataChange  = "EMPLOYEE_DATA_CHANGE"
)

const (
	StatusDraft     = "DRAFT"
	StatusSubmitted = "SUBMITTED"
	StatusInReview  = "IN_REVIEW"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

const (
	ActionSubmitted     = "SUBMITTED"
	ActionStatusChanged = "STATUS_CHANGED"
	ActionRejected      = "REJECTED"
	ActionCancelled     = "CANCELLED"
)

// GenericRequest is the type-independent envelope. Exactly one typed
// detail row exists per envelope, selected by RequestType; both are
// created in the same transaction and share lifecycle.
type GenericRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_requests_company_status"`

	RequestType string    `gorm:"type:varchar(30);not null"`
	Status      string    `gorm:"type:varchar(20);not null;default:'SUBMITTED';index:idx_requests_company_status"`
	RequestedBy uuid.UUID `gorm:"type:uuid;not null;index:idx_requests_requested_by"`
	Title       string    `gorm:"type:varchar(200)"`
	Description string    `gorm:"type:text"`

	RequestedAt   time.Time `gorm:"not null;index:idx_requests_requested_at"`
	LastUpdatedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_requests_deleted_at"`

	Leave       *LeaveDetail       `gorm:"foreignKey:GenericRequestID"`
	Financial   *FinancialDetail   `gorm:"foreignKey:GenericRequestID"`
	Resignation *ResignationDetail `gorm:"foreignKey:GenericRequestID"`
	DataChange  *DataChangeDetail  `gorm:"foreignKey:GenericRequestID"`
}

func (GenericRequest) TableName() string {
	return "generic_requests"
}

type LeaveDetail struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GenericRequestID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_leave_details_request"`

	LeaveType string    `gorm:"type:varchar(30);not null;default:'ANNUAL'"`
	StartDate time.Time `gorm:"type:date;not null"`
	EndDate   time.Time `gorm:"type:date;not null"`
	TotalDays int       `gorm:"type:int;not null;default:1"`
	Reason    string    `gorm:"type:text"`
}

func (LeaveDetail) TableName() string {
	return "leave_request_details"
}

type FinancialDetail struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GenericRequestID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_financial_details_request"`

	FinancialType string          `gorm:"type:varchar(30);not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Currency      string          `gorm:"type:varchar(3);not null"`
	FromDate      *time.Time      `gorm:"type:date"`
	ToDate        *time.Time      `gorm:"type:date"`
	Details       string          `gorm:"type:text"`
}

func (FinancialDetail) TableName() string {
	return "financial_request_details"
}

type ResignationDetail struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GenericRequestID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_resignation_details_request"`

	ProposedLastWorkingDate time.Time `gorm:"type:date;not null"`
	Reason                  string    `gorm:"type:text;not null"`
	IsVoluntary             bool      `gorm:"not null;default:true"`
	Notes                   string    `gorm:"type:text"`
}

func (ResignationDetail) TableName() string {
	return "resignation_request_details"
}

// DataChangeDetail stores the requested field changes as an opaque JSON
// blob, decoded on read. ApprovedChanges and AppliedAt are set when the
// request is approved.
type DataChangeDetail struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GenericRequestID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_data_change_details_request"`

	RequestedChanges []byte     `gorm:"type:jsonb;not null"`
	ApprovedChanges  []byte     `gorm:"type:jsonb"`
	AppliedAt        *time.Time
}

func (DataChangeDetail) TableName() string {
	return "data_change_request_details"
}

type FieldChange struct {
	FieldName string  `json:"field_name"`
	OldValue  *string `json:"old_value,omitempty"`
	NewValue  *string `json:"new_value,omitempty"`
}

func EncodeFieldChanges(changes []FieldChange) ([]byte, error) {
	return json.Marshal(changes)
}

func DecodeFieldChanges(blob []byte) ([]FieldChange, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	var changes []FieldChange
	if err := json.Unmarshal(blob, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// RequestHistory is the append-only audit trail. Rows are never updated
// or deleted; reads are sorted ascending by PerformedAt.
type RequestHistory struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GenericRequestID uuid.UUID `gorm:"type:uuid;not null;index:idx_request_histories_request"`

	Action      string    `gorm:"type:varchar(30);not null"`
	OldStatus   *string   `gorm:"type:varchar(20)"`
	NewStatus   *string   `gorm:"type:varchar(20)"`
	Comment     string    `gorm:"type:text"`
	PerformedBy uuid.UUID `gorm:"type:uuid;not null"`
	PerformedAt time.Time `gorm:"not null;index:idx_request_histories_performed_at"`
}

func (RequestHistory) TableName() string {
	return "request_histories"
}
