package leave

import (
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/leave"
)

type QuotaCalculator struct {
	rule leave.AccrualRule
}

func NewQuotaCalculator(rule leave.AccrualRule) *QuotaCalculator {
	return &QuotaCalculator{rule: rule}
}

// AnnualLeaveDays returns the annual leave entitlement at the given date.
func (c *QuotaCalculator) AnnualLeaveDays(hireDate, at time.Time) int {
	months := TenureMonths(hireDate, at)
	years := months / 12

	if years < 1 {
		return min(months, c.rule.FirstYearCap)
	}

	bonus := min((years-1)/2, c.rule.MaxBonusDays)
	return c.rule.BaseDays + bonus
}

// MonthlyGrantDue reports whether a first-year employee earns a day on the
// given date, which is a monthly anniversary of the hire date. It returns the
// number of completed months.
func (c *QuotaCalculator) MonthlyGrantDue(hireDate, today time.Time) (int, bool) {
	months := TenureMonths(hireDate, today)
	if months < 1 || months > c.rule.FirstYearCap || months >= 12 {
		return months, false
	}
	anniversary := addMonthsClamped(hireDate, months)
	return months, sameDate(anniversary, today)
}

// YearsOfService returns the completed years of service at the given date.
func YearsOfService(hireDate, at time.Time) int {
	return TenureMonths(hireDate, at) / 12
}

// TenureMonths calculates tenure in completed months
func TenureMonths(hireDate, at time.Time) int {
	years := at.Year() - hireDate.Year()
	months := int(at.Month()) - int(hireDate.Month())

	totalMonths := years*12 + months

	// Adjust if day hasn't passed yet
	if at.Day() < hireDate.Day() && !isMonthEndAnniversary(hireDate, at) {
		totalMonths--
	}

	if totalMonths < 0 {
		totalMonths = 0
	}

	return totalMonths
}

// isMonthEndAnniversary covers hire dates like Jan 31, whose anniversary in a
// shorter month falls on that month's last day.
func isMonthEndAnniversary(hireDate, at time.Time) bool {
	return at.AddDate(0, 0, 1).Month() != at.Month() && hireDate.Day() > at.Day()
}

func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	return time.Date(first.Year(), first.Month(), min(t.Day(), lastDay), 0, 0, 0, 0, time.UTC)
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
