package leavebalance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-reqdesk/internal/tenant"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// FindForUpdate loads one ledger row under a row lock. Returns
	// (nil, nil) when the balance is not tracked.
	FindForUpdate(ctx context.Context, companyID, employeeID, leaveType string) (*EmployeeLeaveBalance, error)
	// ListForUpdate locks every row of the given leave type in the
	// company, for the accrual sweep.
	ListForUpdate(ctx context.Context, companyID, leaveType string) ([]EmployeeLeaveBalance, error)
	UpdateBalance(ctx context.Context, id string, balance decimal.Decimal, lastUpdatedAt time.Time) error
	// InsertIfAbsent creates the row unless one already exists for the
	// same (company, employee, leave type). Reports whether a row was
	// inserted.
	InsertIfAbsent(ctx context.Context, b *EmployeeLeaveBalance) (bool, error)
	ListByEmployee(ctx context.Context, companyID, employeeID string) ([]EmployeeLeaveBalance, error)
	// ListCompanyIDs returns every company with at least one tracked
	// balance, for the worker's accrual sweep.
	ListCompanyIDs(ctx context.Context) ([]string, error)
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

const balanceColumns = `
	id::text,
	company_id::text,
	employee_id::text,
	leave_type,
	balance_days,
	last_updated_at
`

func (r *repository) FindForUpdate(ctx context.Context, companyID, employeeID, leaveType string) (*EmployeeLeaveBalance, error) {
	query := `
SELECT` + balanceColumns + `
FROM employee_leave_balances
WHERE company_id = $1 AND employee_id = $2 AND leave_type = $3
FOR UPDATE
`
	row := r.queryer().QueryRowContext(ctx, query, companyID, employeeID, leaveType)

	b, err := scanBalance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

func (r *repository) ListForUpdate(ctx context.Context, companyID, leaveType string) ([]EmployeeLeaveBalance, error) {
	query := `
SELECT` + balanceColumns + `
FROM employee_leave_balances
WHERE company_id = $1 AND leave_type = $2
ORDER BY employee_id
FOR UPDATE
`
	rows, err := r.queryer().QueryContext(ctx, query, companyID, leaveType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []EmployeeLeaveBalance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return balances, nil
}

func (r *repository) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal, lastUpdatedAt time.Time) error {
	query := `
UPDATE employee_leave_balances
SET balance_days = $2, last_updated_at = $3
WHERE id = $1
`
	_, err := r.execer().ExecContext(ctx, query, id, balance, lastUpdatedAt)
	return err
}

func (r *repository) InsertIfAbsent(ctx context.Context, b *EmployeeLeaveBalance) (bool, error) {
	query := `
INSERT INTO employee_leave_balances (
	id, company_id, employee_id, leave_type, balance_days, last_updated_at
) VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (company_id, employee_id, leave_type) DO NOTHING
`
	res, err := r.execer().ExecContext(
		ctx, query,
		b.ID, b.CompanyID, b.EmployeeID, b.LeaveType, b.BalanceDays, b.LastUpdatedAt,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *repository) ListByEmployee(ctx context.Context, companyID, employeeID string) ([]EmployeeLeaveBalance, error) {
	var balances []EmployeeLeaveBalance
	err := r.gdb.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Order("leave_type ASC").
		Find(&balances).Error
	return balances, err
}

func (r *repository) ListCompanyIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.gdb.WithContext(ctx).
		Model(&EmployeeLeaveBalance{}).
		Distinct("company_id").
		Order("company_id ASC").
		Pluck("company_id", &ids).Error
	return ids, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBalance(row rowScanner) (*EmployeeLeaveBalance, error) {
	var (
		b                           EmployeeLeaveBalance
		idStr, companyStr, employee string
	)
	if err := row.Scan(
		&idStr,
		&companyStr,
		&employee,
		&b.LeaveType,
		&b.BalanceDays,
		&b.LastUpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if b.ID, err = uuid.Parse(idStr); err != nil {
		return nil, err
	}
	if b.CompanyID, err = uuid.Parse(companyStr); err != nil {
		return nil, err
	}
	if b.EmployeeID, err = uuid.Parse(employee); err != nil {
		return nil, err
	}
	return &b, nil
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
