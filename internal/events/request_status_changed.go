package events

import "time"

const (
	RequestSubmittedTopic     = "reqdesk.request.submitted"
	RequestStatusChangedTopic = "reqdesk.request.status_changed"
)

type RequestSubmittedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id"`
	TraceID     string    `json:"trace_id,omitempty"`
	CompanyID   string    `json:"company_id"`
	EmployeeID  string    `json:"employee_id"`
	RequestType string    `json:"request_type"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type RequestStatusChangedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id"`
	TraceID     string    `json:"trace_id,omitempty"`
	CompanyID   string    `json:"company_id"`
	RequestType string    `json:"request_type"`
	OldStatus   string    `json:"old_status"`
	NewStatus   string    `json:"new_status"`
	PerformedBy string    `json:"performed_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}
