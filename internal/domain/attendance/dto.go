package attendance

import (
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/validator"
)

// ========================================
// ATTENDANCE LOG DTOs
// ========================================

type AttendanceLogResponse struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	UserName           *string    `json:"user_name,omitempty"`
	WorkDate           string     `json:"work_date"`
	CheckInAt          *time.Time `json:"check_in_at"`
	CheckOutAt         *time.Time `json:"check_out_at"`
	BreakMinutes       int        `json:"break_minutes"`
	IsOvertime         bool       `json:"is_overtime"`
	Status             Status     `json:"status"`
	IsModified         bool       `json:"is_modified"`
	ModificationReason *string    `json:"modification_reason"`
	IsAutoCheckout     bool       `json:"is_auto_checkout"`
	UserConfirmed      bool       `json:"user_confirmed"`
	WorkTimeMinutes    *int       `json:"work_time_minutes"`
	WorkTimeLabel      string     `json:"work_time_label,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type StatusResponse struct {
	WorkDate             string                  `json:"work_date"`
	IsCheckedIn          bool                    `json:"is_checked_in"`
	IsCheckedOut         bool                    `json:"is_checked_out"`
	CheckInAt            *time.Time              `json:"check_in_at"`
	CheckOutAt           *time.Time              `json:"check_out_at"`
	Status               Status                  `json:"status"`
	IsOvertime           bool                    `json:"is_overtime"`
	WorkTimeMinutes      int                     `json:"work_time_minutes"`
	WorkTimeLabel        string                  `json:"work_time_label"`
	PendingAutoCheckouts []AttendanceLogResponse `json:"pending_auto_checkouts"`
}

type LogFilter struct {
	UserID    string `json:"user_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (f *LogFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.UserID != "" && !validator.IsValidUUID(f.UserID) {
		errs.Add("user_id", "user_id must be a valid UUID")
	}
	start, startOK := validateOptionalDate(&errs, "start_date", f.StartDate)
	end, endOK := validateOptionalDate(&errs, "end_date", f.EndDate)
	if startOK && endOK && end.Before(start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	return errs.Err()
}

func validateOptionalDate(errs *validator.ValidationErrors, field, value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, ok := validator.IsValidDate(value)
	if !ok {
		errs.Add(field, field+" must be in YYYY-MM-DD format")
	}
	return t, ok
}

func validateOptionalClock(errs *validator.ValidationErrors, field string, value *string) {
	if value != nil && !validator.IsValidClock(*value) {
		errs.Add(field, field+" must be in HH:mm format")
	}
}

func validateOptionalStatus(errs *validator.ValidationErrors, value *string) {
	if value != nil && !validator.IsInSlice(*value, Statuses) {
		errs.Add("status", "invalid status")
	}
}

type UpdateLogRequest struct {
	ID                 string  `json:"-"`
	CheckInTime        *string `json:"check_in_time"`
	CheckOutTime       *string `json:"check_out_time"`
	Status             *string `json:"status"`
	ModificationReason *string `json:"modification_reason"`
}

func (r *UpdateLogRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("id", r.ID)
	validateOptionalClock(&errs, "check_in_time", r.CheckInTime)
	validateOptionalClock(&errs, "check_out_time", r.CheckOutTime)
	validateOptionalStatus(&errs, r.Status)
	if r.CheckInTime == nil && r.CheckOutTime == nil && r.Status == nil && r.ModificationReason == nil {
		errs.Add("body", "nothing to update")
	}

	return errs.Err()
}

type CreateLogRequest struct {
	UserID             string  `json:"user_id"`
	WorkDate           string  `json:"work_date"`
	CheckInTime        *string `json:"check_in_time"`
	CheckOutTime       *string `json:"check_out_time"`
	Status             *string `json:"status"`
	ModificationReason *string `json:"modification_reason"`
}

func (r *CreateLogRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("user_id", r.UserID)
	errs.Required("work_date", r.WorkDate)
	if r.WorkDate != "" {
		validateOptionalDate(&errs, "work_date", r.WorkDate)
	}
	if r.CheckInTime == nil && r.CheckOutTime == nil {
		errs.Add("check_in_time", "check_in_time or check_out_time is required")
	}
	validateOptionalClock(&errs, "check_in_time", r.CheckInTime)
	validateOptionalClock(&errs, "check_out_time", r.CheckOutTime)
	validateOptionalStatus(&errs, r.Status)

	return errs.Err()
}

type CorrectCheckoutRequest struct {
	ID             string  `json:"-"`
	CheckOutTime   *string `json:"check_out_time"`
	SkipCorrection bool    `json:"skip_correction"`
}

func (r *CorrectCheckoutRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.SkipCorrection {
		return nil
	}
	if r.CheckOutTime == nil || validator.IsEmpty(*r.CheckOutTime) {
		errs.Add("check_out_time", "check_out_time is required")
	} else {
		validateOptionalClock(&errs, "check_out_time", r.CheckOutTime)
	}

	return errs.Err()
}

// ========================================
// STATISTICS DTOs
// ========================================

type StatsQuery struct {
	UserID string
	Year   int
	Month  int
}

func (q *StatsQuery) Validate() error {
	var errs validator.ValidationErrors
	if q.Year != 0 && (q.Year < 2000 || q.Year > 2100) {
		errs.Add("year", "year is out of range")
	}
	if q.Month != 0 && (q.Month < 1 || q.Month > 12) {
		errs.Add("month", "month must be between 1 and 12")
	}
	return errs.Err()
}

type StatsResponse struct {
	UserID string       `json:"user_id"`
	Stats  MonthlyStats `json:"stats"`
	Daily  []DailyStats `json:"daily"`
}

type TeamStatsQuery struct {
	Year   int
	Month  int
	BUCode string
}

type TeamMemberStats struct {
	UserID         string       `json:"user_id"`
	Name           string       `json:"name"`
	BUCode         *string      `json:"bu_code"`
	Stats          MonthlyStats `json:"stats"`
	TotalWorkLabel string       `json:"total_work_label"`
}

type TeamStatsResponse struct {
	Year    int               `json:"year"`
	Month   int               `json:"month"`
	BUCode  *string           `json:"bu_code"`
	Members []TeamMemberStats `json:"members"`
}

type OverviewQuery struct {
	Date   string
	BUCode string
}

type OverviewEntry struct {
	UserID         string        `json:"user_id"`
	Name           string        `json:"name"`
	Email          string        `json:"email"`
	Role           string        `json:"role"`
	BUCode         *string       `json:"bu_code"`
	Position       *string       `json:"position"`
	DisplayStatus  DisplayStatus `json:"display_status"`
	RealtimeStatus *WorkStatus   `json:"realtime_status"`
	FirstCheckIn   *time.Time    `json:"first_check_in"`
	LastCheckOut   *time.Time    `json:"last_check_out"`
	IsOvertime     bool          `json:"is_overtime"`
	LogsCount      int           `json:"logs_count"`
}

type OverviewCounts struct {
	Total      int `json:"total"`
	Working    int `json:"working"`
	CheckedOut int `json:"checked_out"`
	OffWork    int `json:"off_work"`
	Away       int `json:"away"`
	Overtime   int `json:"overtime"`
}

type OverviewResponse struct {
	Date    string          `json:"date"`
	IsToday bool            `json:"is_today"`
	Users   []OverviewEntry `json:"users"`
	Stats   OverviewCounts  `json:"stats"`
}

// ========================================
// WORK STATUS DTOs
// ========================================

type UpdateWorkStatusRequest struct {
	Status string `json:"status"`
}

func (r *UpdateWorkStatusRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsInSlice(r.Status, WorkStatuses) {
		errs.Add("status", "status must be one of WORKING, MEETING, OUTSIDE, BREAK, OFF_WORK")
	}
	return errs.Err()
}

type WorkStatusResponse struct {
	UserID    string     `json:"user_id"`
	Status    WorkStatus `json:"status"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type AutoCheckoutResult struct {
	WorkDate  string   `json:"work_date"`
	Processed int      `json:"processed"`
	Failed    int      `json:"failed"`
	LogIDs    []string `json:"log_ids"`
}

// ========================================
// WORK REQUEST DTOs
// ========================================

type CreateWorkRequestRequest struct {
	RequestType string  `json:"request_type"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Reason      string  `json:"reason"`
}

func (r *CreateWorkRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("request_type", r.RequestType)
	errs.Required("start_date", r.StartDate)
	errs.Required("end_date", r.EndDate)
	errs.Required("reason", r.Reason)

	if r.RequestType != "" && !validator.IsInSlice(r.RequestType, WorkRequestTypes) {
		errs.Add("request_type", "invalid request_type")
	}
	start, startOK := validateOptionalDate(&errs, "start_date", r.StartDate)
	end, endOK := validateOptionalDate(&errs, "end_date", r.EndDate)
	if startOK && endOK && end.Before(start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}
	validateOptionalClock(&errs, "start_time", r.StartTime)
	validateOptionalClock(&errs, "end_time", r.EndTime)

	if WorkRequestType(r.RequestType) == WorkRequestCorrection {
		if r.StartTime == nil && r.EndTime == nil {
			errs.Add("start_time", "check-in or check-out time is required for a correction")
		}
		if startOK && endOK && !start.Equal(end) {
			errs.Add("end_date", "a correction covers a single work date")
		}
	}

	return errs.Err()
}

type WorkRequestFilter struct {
	RequesterID string
	Status      string
	// Approvable limits the list to pending requests the caller may decide on.
	Approvable bool
}

func (f *WorkRequestFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Status != "" && !validator.IsInSlice(f.Status, approval.Statuses) {
		errs.Add("status", "status must be one of pending, approved, rejected")
	}
	return errs.Err()
}

type WorkRequestResponse struct {
	ID              string                 `json:"id"`
	RequesterID     string                 `json:"requester_id"`
	RequesterName   *string                `json:"requester_name,omitempty"`
	RequesterBUCode *string                `json:"requester_bu_code,omitempty"`
	RequestType     WorkRequestType        `json:"request_type"`
	Kind            approval.Kind          `json:"kind"`
	StartDate       string                 `json:"start_date"`
	EndDate         string                 `json:"end_date"`
	StartTime       *string                `json:"start_time"`
	EndTime         *string                `json:"end_time"`
	Reason          string                 `json:"reason"`
	Approval        approval.StateResponse `json:"approval"`
	CreatedAt       time.Time              `json:"created_at"`
}
