package leavebalance_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-reqdesk/internal/leavebalance"
	balanceerrors "go-reqdesk/internal/leavebalance/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakeBalanceRepository struct {
	withTxFn         func(tx *sql.Tx) leavebalance.Repository
	findForUpdateFn  func(ctx context.Context, companyID, employeeID, leaveType string) (*leavebalance.EmployeeLeaveBalance, error)
	listForUpdateFn  func(ctx context.Context, companyID, leaveType string) ([]leavebalance.EmployeeLeaveBalance, error)
	updateBalanceFn  func(ctx context.Context, id string, balance decimal.Decimal, lastUpdatedAt time.Time) error
	insertIfAbsentFn func(ctx context.Context, b *leavebalance.EmployeeLeaveBalance) (bool, error)
	listByEmployeeFn func(ctx context.Context, companyID, employeeID string) ([]leavebalance.EmployeeLeaveBalance, error)
	listCompanyIDsFn func(ctx context.Context) ([]string, error)
}

func (f *fakeBalanceRepository) WithTx(tx *sql.Tx) leavebalance.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeBalanceRepository) FindForUpdate(ctx context.Context, companyID, employeeID, leaveType string) (*leavebalance.EmployeeLeaveBalance, error) {
	if f.findForUpdateFn != nil {
		return f.findForUpdateFn(ctx, companyID, employeeID, leaveType)
	}
	return nil, nil
}

func (f *fakeBalanceRepository) ListForUpdate(ctx context.Context, companyID, leaveType string) ([]leavebalance.EmployeeLeaveBalance, error) {
	if f.listForUpdateFn != nil {
		return f.listForUpdateFn(ctx, companyID, leaveType)
	}
	return nil, nil
}

func (f *fakeBalanceRepository) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal, lastUpdatedAt time.Time) error {
	if f.updateBalanceFn != nil {
		return f.updateBalanceFn(ctx, id, balance, lastUpdatedAt)
	}
	return nil
}

func (f *fakeBalanceRepository) InsertIfAbsent(ctx context.Context, b *leavebalance.EmployeeLeaveBalance) (bool, error) {
	if f.insertIfAbsentFn != nil {
		return f.insertIfAbsentFn(ctx, b)
	}
	return true, nil
}

func (f *fakeBalanceRepository) ListByEmployee(ctx context.Context, companyID, employeeID string) ([]leavebalance.EmployeeLeaveBalance, error) {
	if f.listByEmployeeFn != nil {
		return f.listByEmployeeFn(ctx, companyID, employeeID)
	}
	return nil, nil
}

func (f *fakeBalanceRepository) ListCompanyIDs(ctx context.Context) ([]string, error) {
	if f.listCompanyIDsFn != nil {
		return f.listCompanyIDsFn(ctx)
	}
	return nil, nil
}

type balanceServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service leavebalance.Service
	repo    *fakeBalanceRepository
}

func setupBalanceServiceTest(t *testing.T) *balanceServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeBalanceRepository{}
	now := func() time.Time {
		return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	}
	svc := leavebalance.NewServiceWithConfig(db, repo, decimal.NewFromInt(leavebalance.DefaultAnnualDaysPerYear), now)

	return &balanceServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
	}
}

func trackedBalance(companyID, employeeID string, days string) *leavebalance.EmployeeLeaveBalance {
	return &leavebalance.EmployeeLeaveBalance{
		ID:            uuid.New(),
		CompanyID:     uuid.MustParse(companyID),
		EmployeeID:    uuid.MustParse(employeeID),
		LeaveType:     leavebalance.LeaveTypeAnnual,
		BalanceDays:   decimal.RequireFromString(days),
		LastUpdatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBalanceService_TryConsume(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	t.Run("decrements when the balance covers the days", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findForUpdateFn = func(ctx context.Context, cid, eid, leaveType string) (*leavebalance.EmployeeLeaveBalance, error) {
			return trackedBalance(companyID, employeeID, "10"), nil
		}

		var persisted decimal.Decimal
		deps.repo.updateBalanceFn = func(ctx context.Context, id string, balance decimal.Decimal, lastUpdatedAt time.Time) error {
			persisted = balance
			return nil
		}

		ok, err := deps.service.TryConsume(ctx, nil, companyID, employeeID, leavebalance.LeaveTypeAnnual, decimal.NewFromInt(3))

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, persisted.Equal(decimal.NewFromInt(7)))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("reports false when the balance would go negative", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findForUpdateFn = func(ctx context.Context, cid, eid, leaveType string) (*leavebalance.EmployeeLeaveBalance, error) {
			return trackedBalance(companyID, employeeID, "2.5"), nil
		}
		deps.repo.updateBalanceFn = func(ctx context.Context, id string, balance decimal.Decimal, lastUpdatedAt time.Time) error {
			t.Fatal("balance must not change when it cannot cover the days")
			return nil
		}

		ok, err := deps.service.TryConsume(ctx, nil, companyID, employeeID, leavebalance.LeaveTypeAnnual, decimal.NewFromInt(3))

		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("reports false for an untracked balance", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		ok, err := deps.service.TryConsume(ctx, nil, companyID, employeeID, leavebalance.LeaveTypeAnnual, decimal.NewFromInt(1))

		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("rejects non positive day counts", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.TryConsume(ctx, nil, companyID, employeeID, leavebalance.LeaveTypeAnnual, decimal.Zero)

		assert.ErrorIs(t, err, balanceerrors.ErrInvalidDays)
	})
}

func TestBalanceService_Refund(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	t.Run("adds the days back", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findForUpdateFn = func(ctx context.Context, cid, eid, leaveType string) (*leavebalance.EmployeeLeaveBalance, error) {
			return trackedBalance(companyID, employeeID, "4"), nil
		}

		var persisted decimal.Decimal
		deps.repo.updateBalanceFn = func(ctx context.Context, id string, balance decimal.Decimal, lastUpdatedAt time.Time) error {
			persisted = balance
			return nil
		}

		err := deps.service.Refund(ctx, nil, companyID, employeeID, leavebalance.LeaveTypeAnnual, decimal.NewFromInt(3))

		assert.NoError(t, err)
		assert.True(t, persisted.Equal(decimal.NewFromInt(7)))
	})

	t.Run("fails for an untracked balance", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		err := deps.service.Refund(ctx, nil, companyID, employeeID, leavebalance.LeaveTypeAnnual, decimal.NewFromInt(3))

		assert.ErrorIs(t, err, balanceerrors.ErrBalanceNotTracked)
	})
}

func TestBalanceService_Initialize(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()
	startDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("creates a zero annual balance", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		var created *leavebalance.EmployeeLeaveBalance
		deps.repo.insertIfAbsentFn = func(ctx context.Context, b *leavebalance.EmployeeLeaveBalance) (bool, error) {
			created = b
			return true, nil
		}

		err := deps.service.Initialize(ctx, companyID, employeeID, startDate)

		assert.NoError(t, err)
		assert.Equal(t, leavebalance.LeaveTypeAnnual, created.LeaveType)
		assert.True(t, created.BalanceDays.IsZero())
		assert.Equal(t, startDate, created.LastUpdatedAt)
	})

	t.Run("repeat call is a no-op", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.repo.insertIfAbsentFn = func(ctx context.Context, b *leavebalance.EmployeeLeaveBalance) (bool, error) {
			return false, nil
		}

		err := deps.service.Initialize(ctx, companyID, employeeID, startDate)

		assert.NoError(t, err)
	})

	t.Run("rejects malformed ids", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		err := deps.service.Initialize(ctx, "not-a-uuid", employeeID, startDate)

		assert.ErrorIs(t, err, balanceerrors.ErrInvalidCompanyID)
	})
}

func TestBalanceService_RunDailyAccrual(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()
	today := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)

	t.Run("accrues the prorated rate per elapsed day", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		b := trackedBalance(companyID, employeeID, "1")
		b.LastUpdatedAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		deps.repo.listForUpdateFn = func(ctx context.Context, cid, leaveType string) ([]leavebalance.EmployeeLeaveBalance, error) {
			return []leavebalance.EmployeeLeaveBalance{*b}, nil
		}

		var persisted decimal.Decimal
		var persistedAt time.Time
		deps.repo.updateBalanceFn = func(ctx context.Context, id string, balance decimal.Decimal, lastUpdatedAt time.Time) error {
			persisted = balance
			persistedAt = lastUpdatedAt
			return nil
		}

		result, err := deps.service.RunDailyAccrual(ctx, companyID, today)

		assert.NoError(t, err)
		assert.Equal(t, 1, result.RowsAccrued)
		assert.Equal(t, 0, result.RowsUpToDate)

		// 5 elapsed days at 14/365 per day on top of 1.0
		expected := decimal.NewFromInt(1).Add(
			decimal.NewFromInt(14).Div(decimal.NewFromInt(365)).Mul(decimal.NewFromInt(5)),
		)
		assert.True(t, persisted.Equal(expected))
		assert.Equal(t, today, persistedAt)
	})

	t.Run("second run on the same day accrues nothing", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		b := trackedBalance(companyID, employeeID, "1.1917")
		b.LastUpdatedAt = today
		deps.repo.listForUpdateFn = func(ctx context.Context, cid, leaveType string) ([]leavebalance.EmployeeLeaveBalance, error) {
			return []leavebalance.EmployeeLeaveBalance{*b}, nil
		}
		deps.repo.updateBalanceFn = func(ctx context.Context, id string, balance decimal.Decimal, lastUpdatedAt time.Time) error {
			t.Fatal("an up-to-date row must not accrue again")
			return nil
		}

		result, err := deps.service.RunDailyAccrual(ctx, companyID, today)

		assert.NoError(t, err)
		assert.Equal(t, 0, result.RowsAccrued)
		assert.Equal(t, 1, result.RowsUpToDate)
	})

	t.Run("rejects malformed company id", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.RunDailyAccrual(ctx, "nope", today)

		assert.ErrorIs(t, err, balanceerrors.ErrInvalidCompanyID)
	})
}

func TestBalanceService_RunDailyAccrualAll(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)

	t.Run("one failing company does not stop the sweep", func(t *testing.T) {
		deps := setupBalanceServiceTest(t)
		defer deps.db.Close()

		companyA := uuid.New().String()
		companyB := uuid.New().String()
		deps.repo.listCompanyIDsFn = func(ctx context.Context) ([]string, error) {
			return []string{companyA, companyB}, nil
		}

		// companyA commits, companyB fails on list
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		var swept []string
		deps.repo.listForUpdateFn = func(ctx context.Context, cid, leaveType string) ([]leavebalance.EmployeeLeaveBalance, error) {
			swept = append(swept, cid)
			if cid == companyB {
				return nil, errors.New("lock timeout")
			}
			return nil, nil
		}

		err := deps.service.RunDailyAccrualAll(ctx, today)

		assert.NoError(t, err)
		assert.Equal(t, []string{companyA, companyB}, swept)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}
