package attendance

import "time"

const DateLayout = "2006-01-02"

type DailyStats struct {
	Date            string     `json:"date"`
	WorkTimeMinutes int        `json:"work_time_minutes"`
	CheckInAt       *time.Time `json:"check_in_at"`
	CheckOutAt      *time.Time `json:"check_out_at"`
	Status          Status     `json:"status"`
	IsLate          bool       `json:"is_late"`
	IsEarlyLeave    bool       `json:"is_early_leave"`
}

type MonthlyStats struct {
	Year               int `json:"year"`
	Month              int `json:"month"`
	TotalWorkDays      int `json:"total_work_days"`
	TotalWorkMinutes   int `json:"total_work_minutes"`
	AverageWorkMinutes int `json:"average_work_minutes"`
	LateCount          int `json:"late_count"`
	EarlyLeaveCount    int `json:"early_leave_count"`
	AbsentCount        int `json:"absent_count"`
	VacationCount      int `json:"vacation_count"`
	RemoteCount        int `json:"remote_count"`
	ExternalCount      int `json:"external_count"`
}
