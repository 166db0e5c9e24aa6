package requesterrors

import (
	"fmt"
	"net/http"

	"go-reqdesk/internal/shared/apperror"
)

var (
	ErrEmployeeNotLinked = apperror.New(
		apperror.CodeUnauthorized,
		"no employee record is linked to the current user",
		http.StatusUnauthorized,
	)
	ErrApproverRequired = apperror.New(
		apperror.CodeForbidden,
		"approver capability is required for this operation",
		http.StatusForbidden,
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"request not found",
		http.StatusNotFound,
	)
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
	ErrInvalidRequestID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid request id",
		http.StatusBadRequest,
	)
	ErrPayloadMismatch = apperror.New(
		apperror.CodeInvalidInput,
		"exactly one payload section matching request_type must be provided",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrLeaveEndInPast = apperror.New(
		apperror.CodeInvalidInput,
		"end_date must not be in the past",
		http.StatusBadRequest,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"an active leave request already covers an overlapping period",
		http.StatusConflict,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"amount must be a decimal number greater than zero",
		http.StatusBadRequest,
	)
	ErrLastWorkingDateInPast = apperror.New(
		apperror.CodeInvalidInput,
		"proposed_last_working_date must not be in the past",
		http.StatusBadRequest,
	)
	ErrEmptyChangeList = apperror.New(
		apperror.CodeInvalidInput,
		"at least one field change is required",
		http.StatusBadRequest,
	)
	ErrInvalidTypeFilter = apperror.New(
		apperror.CodeInvalidInput,
		"unknown request type filter",
		http.StatusBadRequest,
	)
	ErrLeaveDetailMissing = apperror.New(
		apperror.CodeInternalError,
		"leave detail is missing for a leave request",
		http.StatusInternalServerError,
	)
)

// InvalidTransition reports a status pair outside the transition table,
// naming both statuses.
func InvalidTransition(oldStatus, newStatus string) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidState,
		fmt.Sprintf("status cannot change from %s to %s", oldStatus, newStatus),
		http.StatusBadRequest,
	)
}
