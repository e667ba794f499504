package attendance

import (
	"fmt"
	"math"
	"time"
)

// Calculator derives work minutes, daily status and monthly aggregates from
// raw check-in/check-out timestamps. All methods are total.
type Calculator struct {
	policy Policy
}

func NewCalculator(policy Policy) *Calculator {
	return &Calculator{policy: policy}
}

func (c *Calculator) Policy() Policy {
	return c.policy
}

// ParseTimestamp parses an ISO-8601 timestamp, returning nil when malformed.
func ParseTimestamp(s string) *time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func (c *Calculator) deduct(elapsed time.Duration) int {
	minutes := int(elapsed/time.Minute) - c.policy.LunchMinutes
	if minutes < 0 {
		return 0
	}
	return minutes
}

// WorkTimeMinutes returns the minutes between checkIn and checkOut less the
// lunch deduction, or nil when either is missing or checkOut is not after checkIn.
func (c *Calculator) WorkTimeMinutes(checkIn, checkOut *time.Time) *int {
	if checkIn == nil || checkOut == nil || !checkOut.After(*checkIn) {
		return nil
	}
	minutes := c.deduct(checkOut.Sub(*checkIn))
	return &minutes
}

// CurrentWorkTimeMinutes returns the running minutes of an open session at now.
func (c *Calculator) CurrentWorkTimeMinutes(checkIn *time.Time, now time.Time) int {
	if checkIn == nil || checkIn.After(now) {
		return 0
	}
	return c.deduct(now.Sub(*checkIn))
}

// IsLate reports a check-in strictly after the late cutoff, local time, second precision.
func (c *Calculator) IsLate(checkIn *time.Time) bool {
	if checkIn == nil {
		return false
	}
	l := c.policy.Local(*checkIn)
	secs := l.Hour()*3600 + l.Minute()*60 + l.Second()
	return secs > c.policy.LateCutoff.seconds()
}

// IsEarlyLeave reports a checked-out day with fewer work minutes than the standard.
// Long lunches and late arrivals count too.
func (c *Calculator) IsEarlyLeave(checkOut *time.Time, minutes *int) bool {
	if checkOut == nil || minutes == nil {
		return false
	}
	return *minutes < c.policy.StandardMinutes
}

// DetermineStatus picks exactly one status: absent, late, early_leave, present.
func (c *Calculator) DetermineStatus(checkIn, checkOut *time.Time, minutes *int) Status {
	switch {
	case checkIn == nil:
		return StatusAbsent
	case c.IsLate(checkIn):
		return StatusLate
	case c.IsEarlyLeave(checkOut, minutes):
		return StatusEarlyLeave
	default:
		return StatusPresent
	}
}

// StatusOf recomputes the status of a log from its timestamps.
func (c *Calculator) StatusOf(log AttendanceLog) Status {
	return c.DetermineStatus(log.CheckInAt, log.CheckOutAt, c.WorkTimeMinutes(log.CheckInAt, log.CheckOutAt))
}

// DailyStats summarizes one log. Status is the stored value.
func (c *Calculator) DailyStats(log AttendanceLog) DailyStats {
	minutes := c.WorkTimeMinutes(log.CheckInAt, log.CheckOutAt)
	stats := DailyStats{
		Date:         log.WorkDate.Format(DateLayout),
		CheckInAt:    log.CheckInAt,
		CheckOutAt:   log.CheckOutAt,
		Status:       log.Status,
		IsLate:       c.IsLate(log.CheckInAt),
		IsEarlyLeave: c.IsEarlyLeave(log.CheckOutAt, minutes),
	}
	if minutes != nil {
		stats.WorkTimeMinutes = *minutes
	}
	return stats
}

// MonthlyStats aggregates the logs whose work date falls in year/month.
// Every log counts on its own, so split sessions on one date add up.
// Status counters use the stored status of each log.
func (c *Calculator) MonthlyStats(logs []AttendanceLog, year int, month time.Month) MonthlyStats {
	stats := MonthlyStats{Year: year, Month: int(month)}

	for _, log := range logs {
		if log.WorkDate.Year() != year || log.WorkDate.Month() != month {
			continue
		}

		if minutes := c.WorkTimeMinutes(log.CheckInAt, log.CheckOutAt); minutes != nil && *minutes > 0 {
			stats.TotalWorkMinutes += *minutes
			stats.TotalWorkDays++
		}

		switch log.Status {
		case StatusLate:
			stats.LateCount++
		case StatusEarlyLeave:
			stats.EarlyLeaveCount++
		case StatusAbsent:
			stats.AbsentCount++
		case StatusVacation:
			stats.VacationCount++
		case StatusRemote:
			stats.RemoteCount++
		case StatusExternal:
			stats.ExternalCount++
		}
	}

	if stats.TotalWorkDays > 0 {
		stats.AverageWorkMinutes = int(math.Round(float64(stats.TotalWorkMinutes) / float64(stats.TotalWorkDays)))
	}

	return stats
}

// FormatWorkTime renders minutes as "H시간 M분", "H시간" or "M분".
func FormatWorkTime(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	hours, mins := minutes/60, minutes%60
	switch {
	case hours == 0:
		return fmt.Sprintf("%d분", mins)
	case mins == 0:
		return fmt.Sprintf("%d시간", hours)
	default:
		return fmt.Sprintf("%d시간 %d분", hours, mins)
	}
}
