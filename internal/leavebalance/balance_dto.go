package leavebalance

type InitializeBalanceRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	StartDate  string `json:"start_date" binding:"required"`
}

type RunAccrualRequest struct {
	// Date defaults to the current day when omitted; the scheduler may
	// pass an explicit day for catch-up runs.
	Date string `json:"date"`
}

type BalanceResponse struct {
	EmployeeID    string `json:"employee_id"`
	LeaveType     string `json:"leave_type"`
	BalanceDays   string `json:"balance_days"`
	LastUpdatedAt string `json:"last_updated_at"`
}

type AccrualRunResponse struct {
	Date         string `json:"date"`
	RowsAccrued  int    `json:"rows_accrued"`
	RowsUpToDate int    `json:"rows_up_to_date"`
}
