package leavebalance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LeaveTypeAnnual = "ANNUAL"
	LeaveTypeSick   = "SICK"
	LeaveTypeUnpaid = "UNPAID"
)

// EmployeeLeaveBalance is one ledger row. Absence of a row for an
// (employee, leave type) pair means the balance is not tracked, which is
// not the same as a zero balance. BalanceDays is decimal because daily
// accrual adds fractional days.
type EmployeeLeaveBalance struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_leave_balances_employee_type"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_leave_balances_employee_type"`

	LeaveType   string          `gorm:"type:varchar(30);not null;default:'ANNUAL';uniqueIndex:idx_leave_balances_employee_type"`
	BalanceDays decimal.Decimal `gorm:"type:numeric(9,4);not null;default:0"`

	LastUpdatedAt time.Time `gorm:"not null"`
	CreatedAt     time.Time
}

func (EmployeeLeaveBalance) TableName() string {
	return "employee_leave_balances"
}
