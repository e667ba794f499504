package attendance

import (
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/approval"
)

type Status string

const (
	StatusPresent    Status = "present"
	StatusLate       Status = "late"
	StatusEarlyLeave Status = "early_leave"
	StatusAbsent     Status = "absent"
	StatusVacation   Status = "vacation"
	StatusRemote     Status = "remote"
	StatusExternal   Status = "external"
)

var Statuses = []string{
	string(StatusPresent), string(StatusLate), string(StatusEarlyLeave), string(StatusAbsent),
	string(StatusVacation), string(StatusRemote), string(StatusExternal),
}

// AttendanceLog is one check-in/check-out pair. A user may have several per work date.
type AttendanceLog struct {
	ID                 string
	UserID             string
	WorkDate           time.Time
	CheckInAt          *time.Time
	CheckOutAt         *time.Time
	BreakMinutes       int
	IsOvertime         bool
	Status             Status
	IsModified         bool
	ModificationReason *string
	IsAutoCheckout     bool
	UserConfirmed      bool
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Join
	UserName *string
}

// IsOpen reports a checked-in session without a checkout.
func (l AttendanceLog) IsOpen() bool {
	return l.CheckInAt != nil && l.CheckOutAt == nil
}

type WorkStatus string

const (
	WorkStatusWorking WorkStatus = "WORKING"
	WorkStatusMeeting WorkStatus = "MEETING"
	WorkStatusOutside WorkStatus = "OUTSIDE"
	WorkStatusBreak   WorkStatus = "BREAK"
	WorkStatusOffWork WorkStatus = "OFF_WORK"
)

var WorkStatuses = []string{
	string(WorkStatusWorking), string(WorkStatusMeeting), string(WorkStatusOutside),
	string(WorkStatusBreak), string(WorkStatusOffWork),
}

type UserWorkStatus struct {
	UserID    string
	Status    WorkStatus
	UpdatedAt time.Time
}

// DisplayStatus is the admin overview classification of a user's day.
type DisplayStatus string

const (
	DisplayOffWork    DisplayStatus = "OFF_WORK"
	DisplayWorking    DisplayStatus = "WORKING"
	DisplayCheckedOut DisplayStatus = "CHECKED_OUT"
	DisplayAway       DisplayStatus = "AWAY"
	DisplayOvertime   DisplayStatus = "OVERTIME"
)

type WorkRequestType string

const (
	WorkRequestExternal   WorkRequestType = "external_work"
	WorkRequestRemote     WorkRequestType = "remote_work"
	WorkRequestOvertime   WorkRequestType = "overtime"
	WorkRequestCorrection WorkRequestType = "attendance_correction"
)

var WorkRequestTypes = []string{
	string(WorkRequestExternal), string(WorkRequestRemote), string(WorkRequestOvertime), string(WorkRequestCorrection),
}

// Kind maps the request type onto its approval workflow.
func (t WorkRequestType) Kind() approval.Kind {
	if t == WorkRequestCorrection {
		return approval.KindCorrection
	}
	return approval.KindWork
}

// WorkRequest covers external, remote, overtime and attendance correction requests.
type WorkRequest struct {
	ID          string
	RequesterID string
	RequestType WorkRequestType
	StartDate   time.Time
	EndDate     time.Time
	StartTime   *string
	EndTime     *string
	Reason      string
	approval.State
	CreatedAt time.Time
	UpdatedAt time.Time

	// Join
	RequesterName   *string
	RequesterBUCode *string
}

var workRequestLabels = map[WorkRequestType]string{
	WorkRequestExternal:   "외근",
	WorkRequestRemote:     "재택",
	WorkRequestOvertime:   "연장/야근",
	WorkRequestCorrection: "출퇴근 정정",
}

// Label is the Korean display name used in notifications.
func (t WorkRequestType) Label() string {
	if l, ok := workRequestLabels[t]; ok {
		return l
	}
	return string(t)
}

// DayStatus is the attendance status an approved request marks its days with.
func (t WorkRequestType) DayStatus() (Status, bool) {
	switch t {
	case WorkRequestRemote:
		return StatusRemote, true
	case WorkRequestExternal:
		return StatusExternal, true
	default:
		return "", false
	}
}
