package leave

import (
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/validator"
)

type BalanceQuery struct {
	UserID  string
	Year    int
	Summary bool
}

type BalanceResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	LeaveType LeaveType `json:"leave_type"`
	Year      int       `json:"year"`
	TotalDays float64   `json:"total_days"`
	UsedDays  float64   `json:"used_days"`
	Remaining float64   `json:"remaining_days"`
}

type BalanceFigures struct {
	Total     float64 `json:"total"`
	Used      float64 `json:"used"`
	Remaining float64 `json:"remaining"`
}

type BalanceSummary struct {
	UserID       string         `json:"user_id"`
	Year         int            `json:"year"`
	Annual       BalanceFigures `json:"annual"`
	Compensatory BalanceFigures `json:"compensatory"`
	Special      BalanceFigures `json:"special"`
}

type BalancesResponse struct {
	Balances []BalanceResponse `json:"balances,omitempty"`
	Summary  *BalanceSummary   `json:"summary,omitempty"`
}

type CreateGrantRequest struct {
	UserID    string  `json:"user_id"`
	LeaveType string  `json:"leave_type"`
	Days      float64 `json:"days"`
	Reason    string  `json:"reason"`
	Year      int     `json:"year"`
}

func (r *CreateGrantRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("user_id", r.UserID)
	if !validator.IsInSlice(r.LeaveType, LeaveTypes) {
		errs.Add("leave_type", "leave_type must be one of annual, compensatory, special")
	}
	if r.Days <= 0 {
		errs.Add("days", "days must be greater than 0")
	}
	if r.Year != 0 && (r.Year < 2000 || r.Year > 2100) {
		errs.Add("year", "year is out of range")
	}

	return errs.Err()
}

type GrantResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	LeaveType LeaveType `json:"leave_type"`
	Days      float64   `json:"days"`
	GrantType GrantType `json:"grant_type"`
	Reason    *string   `json:"reason"`
	GrantedBy *string   `json:"granted_by"`
	Year      int       `json:"year"`
	GrantedAt time.Time `json:"granted_at"`
}

type AutoGrantResult struct {
	Processed int              `json:"processed"`
	Skipped   int              `json:"skipped"`
	Errors    []AutoGrantError `json:"errors,omitempty"`
}

type AutoGrantError struct {
	UserID string `json:"user_id"`
	Error  string `json:"error"`
}

type TeamBalanceQuery struct {
	Year   int
	BUCode string
}

type TeamBalanceEntry struct {
	UserID  string         `json:"user_id"`
	Name    string         `json:"name"`
	BUCode  *string        `json:"bu_code"`
	Summary BalanceSummary `json:"summary"`
}

// ========================================
// REQUEST DTOs
// ========================================

type CreateLeaveRequestRequest struct {
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

func (r *CreateLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("leave_type", r.LeaveType)
	errs.Required("start_date", r.StartDate)
	errs.Required("end_date", r.EndDate)
	errs.Required("reason", r.Reason)

	if r.LeaveType != "" && !validator.IsInSlice(r.LeaveType, RequestTypes) {
		errs.Add("leave_type", "invalid leave_type")
	}

	start, startOK := parseDate(&errs, "start_date", r.StartDate)
	end, endOK := parseDate(&errs, "end_date", r.EndDate)
	if startOK && endOK {
		if end.Before(start) {
			errs.Add("end_date", "end_date must not be before start_date")
		}
		if RequestType(r.LeaveType).IsHalfDay() && !start.Equal(end) {
			errs.Add("end_date", "half day leave covers a single date")
		}
	}

	return errs.Err()
}

func parseDate(errs *validator.ValidationErrors, field, value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, ok := validator.IsValidDate(value)
	if !ok {
		errs.Add(field, field+" must be in YYYY-MM-DD format")
	}
	return t, ok
}

type RequestFilter struct {
	RequesterID string
	Status      string
}

func (f *RequestFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Status != "" && !validator.IsInSlice(f.Status, approval.Statuses) {
		errs.Add("status", "status must be one of pending, approved, rejected")
	}
	return errs.Err()
}

type LeaveRequestResponse struct {
	ID              string                 `json:"id"`
	RequesterID     string                 `json:"requester_id"`
	RequesterName   *string                `json:"requester_name,omitempty"`
	RequesterBUCode *string                `json:"requester_bu_code,omitempty"`
	LeaveType       RequestType            `json:"leave_type"`
	StartDate       string                 `json:"start_date"`
	EndDate         string                 `json:"end_date"`
	DaysUsed        float64                `json:"days_used"`
	Reason          string                 `json:"reason"`
	Approval        approval.StateResponse `json:"approval"`
	CreatedAt       time.Time              `json:"created_at"`
}

type CreateCompensatoryRequest struct {
	WorkDate string  `json:"work_date"`
	Days     float64 `json:"days"`
	Reason   string  `json:"reason"`
}

func (r *CreateCompensatoryRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("work_date", r.WorkDate)
	errs.Required("reason", r.Reason)
	parseDate(&errs, "work_date", r.WorkDate)
	if r.Days <= 0 {
		errs.Add("days", "days must be greater than 0")
	}

	return errs.Err()
}

type CompensatoryResponse struct {
	ID              string                 `json:"id"`
	RequesterID     string                 `json:"requester_id"`
	RequesterName   *string                `json:"requester_name,omitempty"`
	RequesterBUCode *string                `json:"requester_bu_code,omitempty"`
	WorkDate        string                 `json:"work_date"`
	Days            float64                `json:"days"`
	Reason          string                 `json:"reason"`
	Approval        approval.StateResponse `json:"approval"`
	CreatedAt       time.Time              `json:"created_at"`
}

type PendingResponse struct {
	LeaveRequests        []LeaveRequestResponse `json:"leave_requests"`
	CompensatoryRequests []CompensatoryResponse `json:"compensatory_requests"`
}
