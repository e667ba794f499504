package leave

import (
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/approval"
)

// LeaveType is the balance a request draws from.
type LeaveType string

const (
	TypeAnnual       LeaveType = "annual"
	TypeCompensatory LeaveType = "compensatory"
	TypeSpecial      LeaveType = "special"
)

var LeaveTypes = []string{string(TypeAnnual), string(TypeCompensatory), string(TypeSpecial)}

// RequestType is what the requester asks for. Half days draw from annual leave.
type RequestType string

const (
	RequestAnnual       RequestType = "annual"
	RequestHalfAM       RequestType = "half_am"
	RequestHalfPM       RequestType = "half_pm"
	RequestCompensatory RequestType = "compensatory"
	RequestSpecial      RequestType = "special"
)

var RequestTypes = []string{
	string(RequestAnnual), string(RequestHalfAM), string(RequestHalfPM), string(RequestCompensatory), string(RequestSpecial),
}

func (t RequestType) IsHalfDay() bool {
	return t == RequestHalfAM || t == RequestHalfPM
}

var requestLabels = map[RequestType]string{
	RequestAnnual:       "연차",
	RequestHalfAM:       "오전반차",
	RequestHalfPM:       "오후반차",
	RequestCompensatory: "대체휴무",
	RequestSpecial:      "특별휴가",
}

// Label is the Korean display name used in notifications.
func (t RequestType) Label() string {
	if l, ok := requestLabels[t]; ok {
		return l
	}
	return string(t)
}

func (t RequestType) BalanceType() LeaveType {
	switch t {
	case RequestHalfAM, RequestHalfPM, RequestAnnual:
		return TypeAnnual
	default:
		return LeaveType(t)
	}
}

type GrantType string

const (
	GrantAutoMonthly          GrantType = "auto_monthly"
	GrantAutoYearly           GrantType = "auto_yearly"
	GrantManual               GrantType = "manual"
	GrantCompensatoryApproved GrantType = "compensatory_approved"
)

// Balance is the allowance of one user for one leave type and year.
// Remaining may go negative; over-use is rejected when a request is filed.
type Balance struct {
	ID        string
	UserID    string
	LeaveType LeaveType
	Year      int
	TotalDays float64
	UsedDays  float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b Balance) Remaining() float64 {
	return b.TotalDays - b.UsedDays
}

// Grant is one addition to a balance.
type Grant struct {
	ID        string
	UserID    string
	LeaveType LeaveType
	Days      float64
	GrantType GrantType
	Reason    *string
	GrantedBy *string
	Year      int
	GrantedAt time.Time
}

type LeaveRequest struct {
	ID          string
	RequesterID string
	LeaveType   RequestType
	StartDate   time.Time
	EndDate     time.Time
	DaysUsed    float64
	Reason      string
	approval.State
	CreatedAt time.Time
	UpdatedAt time.Time

	// Join
	RequesterName   *string
	RequesterBUCode *string
}

type CompensatoryRequest struct {
	ID          string
	RequesterID string
	WorkDate    time.Time
	Days        float64
	Reason      string
	approval.State
	CreatedAt time.Time
	UpdatedAt time.Time

	// Join
	RequesterName   *string
	RequesterBUCode *string
}

// DaysUsed returns the balance days a request consumes: half a day for half
// day leave, otherwise the number of weekdays between start and end inclusive.
func DaysUsed(t RequestType, start, end time.Time) float64 {
	if t.IsHalfDay() {
		return 0.5
	}
	return float64(len(Weekdays(start, end)))
}

// Weekdays lists the Monday to Friday dates between start and end inclusive.
func Weekdays(start, end time.Time) []time.Time {
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}

// AccrualRule is the annual leave schedule: BaseDays from the first full
// year, one extra day every two years up to MaxBonusDays, and one day per
// completed month (at most FirstYearCap) before that. The default grants a
// flat BaseDays with no seniority bonus.
type AccrualRule struct {
	BaseDays     int `yaml:"base_days"`
	MaxBonusDays int `yaml:"max_bonus_days"`
	FirstYearCap int `yaml:"first_year_cap"`
}

func DefaultAccrualRule() AccrualRule {
	return AccrualRule{BaseDays: 15, MaxBonusDays: 0, FirstYearCap: 11}
}
