package leavebalance

import (
	"context"
	"database/sql"
	"time"

	balanceerrors "go-reqdesk/internal/leavebalance/errors"
	"go-reqdesk/internal/shared/actor"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultAnnualDaysPerYear is the annual leave entitlement used for daily
// accrual unless overridden at wiring time.
const DefaultAnnualDaysPerYear = 14

const daysInYear = 365

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	// TryConsume decrements the balance by days under a row lock. It
	// reports false without mutating anything when the balance is not
	// tracked or would go negative. Callers approving a request must
	// pass their own transaction so a failed consume aborts the whole
	// status transition.
	TryConsume(ctx context.Context, tx *sql.Tx, companyID, employeeID, leaveType string, days decimal.Decimal) (bool, error)
	// Refund adds days back. Not idempotent: calling twice refunds
	// twice, so callers must guarantee at-most-once per transition.
	Refund(ctx context.Context, tx *sql.Tx, companyID, employeeID, leaveType string, days decimal.Decimal) error
	// Initialize creates a zero ANNUAL balance for the employee if none
	// exists. Safe to call repeatedly.
	Initialize(ctx context.Context, companyID, employeeID string, startDate time.Time) error
	// RunDailyAccrual adds the prorated daily entitlement to every
	// ANNUAL row whose last update predates today. Re-running on the
	// same day is a no-op because last_updated_at advances to today.
	RunDailyAccrual(ctx context.Context, companyID string, today time.Time) (AccrualRunResponse, error)
	// RunDailyAccrualAll sweeps every company with tracked balances. Each
	// company accrues in its own transaction so one failure does not roll
	// back the others.
	RunDailyAccrualAll(ctx context.Context, today time.Time) error
	GetMyBalances(ctx context.Context, act actor.Actor) ([]BalanceResponse, error)
}

type service struct {
	db                *sql.DB
	repo              Repository
	annualDaysPerYear decimal.Decimal
	now               func() time.Time
	logger            *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavebalance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavebalance.service")
	}
	return &service{
		db:                db,
		repo:              repo,
		annualDaysPerYear: decimal.NewFromInt(DefaultAnnualDaysPerYear),
		now:               time.Now,
		logger:            l,
	}
}

// NewServiceWithConfig allows overriding the annual entitlement and the
// clock, mainly for wiring and tests.
func NewServiceWithConfig(db *sql.DB, repo Repository, annualDaysPerYear decimal.Decimal, now func() time.Time, logger ...*zap.Logger) Service {
	s := NewService(db, repo, logger...).(*service)
	if annualDaysPerYear.IsPositive() {
		s.annualDaysPerYear = annualDaysPerYear
	}
	if now != nil {
		s.now = now
	}
	return s
}

func (s *service) TryConsume(ctx context.Context, tx *sql.Tx, companyID, employeeID, leaveType string, days decimal.Decimal) (bool, error) {
	if !days.IsPositive() {
		return false, balanceerrors.ErrInvalidDays
	}

	ownTx := tx == nil
	if ownTx {
		var err error
		tx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			s.logger.Error("try consume begin tx failed", zap.Error(err))
			return false, err
		}
		defer tx.Rollback()
	}

	qtx := s.repo.WithTx(tx)

	b, err := qtx.FindForUpdate(ctx, companyID, employeeID, leaveType)
	if err != nil {
		s.logger.Error("try consume load balance failed", zap.Error(err))
		return false, err
	}
	if b == nil {
		s.logger.Warn("try consume balance not tracked",
			zap.String("employee_id", employeeID),
			zap.String("leave_type", leaveType),
		)
		return false, nil
	}
	if b.BalanceDays.LessThan(days) {
		s.logger.Warn("try consume insufficient balance",
			zap.String("employee_id", employeeID),
			zap.String("leave_type", leaveType),
			zap.String("balance_days", b.BalanceDays.String()),
			zap.String("requested_days", days.String()),
		)
		return false, nil
	}

	newBalance := b.BalanceDays.Sub(days)
	if err := qtx.UpdateBalance(ctx, b.ID.String(), newBalance, s.now().UTC()); err != nil {
		s.logger.Error("try consume persist failed", zap.Error(err))
		return false, err
	}

	if ownTx {
		if err := tx.Commit(); err != nil {
			s.logger.Error("try consume commit failed", zap.Error(err))
			return false, err
		}
	}

	s.logger.Info("leave balance consumed",
		zap.String("employee_id", employeeID),
		zap.String("leave_type", leaveType),
		zap.String("days", days.String()),
		zap.String("balance_days", newBalance.String()),
	)
	return true, nil
}

func (s *service) Refund(ctx context.Context, tx *sql.Tx, companyID, employeeID, leaveType string, days decimal.Decimal) error {
	if !days.IsPositive() {
		return balanceerrors.ErrInvalidDays
	}

	ownTx := tx == nil
	if ownTx {
		var err error
		tx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			s.logger.Error("refund begin tx failed", zap.Error(err))
			return err
		}
		defer tx.Rollback()
	}

	qtx := s.repo.WithTx(tx)

	b, err := qtx.FindForUpdate(ctx, companyID, employeeID, leaveType)
	if err != nil {
		s.logger.Error("refund load balance failed", zap.Error(err))
		return err
	}
	if b == nil {
		return balanceerrors.ErrBalanceNotTracked
	}

	newBalance := b.BalanceDays.Add(days)
	if err := qtx.UpdateBalance(ctx, b.ID.String(), newBalance, s.now().UTC()); err != nil {
		s.logger.Error("refund persist failed", zap.Error(err))
		return err
	}

	if ownTx {
		if err := tx.Commit(); err != nil {
			s.logger.Error("refund commit failed", zap.Error(err))
			return err
		}
	}

	s.logger.Info("leave balance refunded",
		zap.String("employee_id", employeeID),
		zap.String("leave_type", leaveType),
		zap.String("days", days.String()),
		zap.String("balance_days", newBalance.String()),
	)
	return nil
}

func (s *service) Initialize(ctx context.Context, companyID, employeeID string, startDate time.Time) error {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return balanceerrors.ErrInvalidCompanyID
	}
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return balanceerrors.ErrInvalidEmployeeID
	}

	inserted, err := s.repo.InsertIfAbsent(ctx, &EmployeeLeaveBalance{
		ID:            uuid.New(),
		CompanyID:     companyUUID,
		EmployeeID:    employeeUUID,
		LeaveType:     LeaveTypeAnnual,
		BalanceDays:   decimal.Zero,
		LastUpdatedAt: startDate,
	})
	if err != nil {
		s.logger.Error("initialize balance failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
		return err
	}

	if inserted {
		s.logger.Info("annual leave balance initialized",
			zap.String("company_id", companyID),
			zap.String("employee_id", employeeID),
			zap.String("start_date", startDate.Format("2006-01-02")),
		)
	}
	return nil
}

func (s *service) RunDailyAccrual(ctx context.Context, companyID string, today time.Time) (AccrualRunResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return AccrualRunResponse{}, balanceerrors.ErrInvalidCompanyID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("daily accrual begin tx failed", zap.Error(err))
		return AccrualRunResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	balances, err := qtx.ListForUpdate(ctx, companyID, LeaveTypeAnnual)
	if err != nil {
		s.logger.Error("daily accrual list balances failed", zap.Error(err))
		return AccrualRunResponse{}, err
	}

	dailyRate := s.annualDaysPerYear.Div(decimal.NewFromInt(daysInYear))

	result := AccrualRunResponse{Date: today.Format("2006-01-02")}
	for _, b := range balances {
		elapsed := wholeDaysBetween(b.LastUpdatedAt, today)
		if elapsed <= 0 {
			result.RowsUpToDate++
			continue
		}

		added := dailyRate.Mul(decimal.NewFromInt(int64(elapsed)))
		newBalance := b.BalanceDays.Add(added)
		if err := qtx.UpdateBalance(ctx, b.ID.String(), newBalance, today); err != nil {
			s.logger.Error("daily accrual persist failed",
				zap.String("balance_id", b.ID.String()),
				zap.Error(err),
			)
			return AccrualRunResponse{}, err
		}
		result.RowsAccrued++
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("daily accrual commit failed", zap.Error(err))
		return AccrualRunResponse{}, err
	}

	s.logger.Info("daily accrual completed",
		zap.String("company_id", companyID),
		zap.String("date", result.Date),
		zap.Int("rows_accrued", result.RowsAccrued),
		zap.Int("rows_up_to_date", result.RowsUpToDate),
	)
	return result, nil
}

func (s *service) RunDailyAccrualAll(ctx context.Context, today time.Time) error {
	companies, err := s.repo.ListCompanyIDs(ctx)
	if err != nil {
		s.logger.Error("accrual sweep list companies failed", zap.Error(err))
		return err
	}

	var failed int
	for _, companyID := range companies {
		if _, err := s.RunDailyAccrual(ctx, companyID, today); err != nil {
			s.logger.Error("accrual sweep company failed",
				zap.String("company_id", companyID),
				zap.Error(err),
			)
			failed++
		}
	}

	s.logger.Info("accrual sweep completed",
		zap.Int("companies", len(companies)),
		zap.Int("failed", failed),
	)
	return nil
}

func (s *service) GetMyBalances(ctx context.Context, act actor.Actor) ([]BalanceResponse, error) {
	if !act.IsLinked() {
		return nil, balanceerrors.ErrInvalidEmployeeID
	}

	balances, err := s.repo.ListByEmployee(ctx, act.CompanyID, act.EmployeeID)
	if err != nil {
		return nil, err
	}

	resp := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		resp[i] = BalanceResponse{
			EmployeeID:    b.EmployeeID.String(),
			LeaveType:     b.LeaveType,
			BalanceDays:   b.BalanceDays.String(),
			LastUpdatedAt: b.LastUpdatedAt.Format(time.RFC3339),
		}
	}
	return resp, nil
}

// wholeDaysBetween counts calendar days from a to b, ignoring the time of
// day on either side.
func wholeDaysBetween(a, b time.Time) int {
	aDate := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bDate := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bDate.Sub(aDate).Hours() / 24)
}
