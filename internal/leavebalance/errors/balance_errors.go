package balanceerrors

import (
	"net/http"

	"go-reqdesk/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidDays = apperror.New(
		apperror.CodeInvalidInput,
		"days must be greater than zero",
		http.StatusBadRequest,
	)
	ErrInvalidStartDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid start_date, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrBalanceNotTracked = apperror.New(
		apperror.CodeNotFound,
		"no leave balance is tracked for this employee and leave type",
		http.StatusNotFound,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"leave balance is insufficient for the requested days",
		http.StatusConflict,
	)
)
