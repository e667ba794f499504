package leave

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/leave"
	"github.com/stretchr/testify/assert"
)

func TestAnnualLeaveDays(t *testing.T) {
	calc := NewQuotaCalculator(leave.DefaultAccrualRule())
	jan1 := date(2025, time.January, 1)

	tests := []struct {
		name string
		hire time.Time
		want int
	}{
		{"ten months", date(2024, time.March, 1), 10},
		{"partial month not counted", date(2024, time.June, 15), 6},
		{"first full year", date(2024, time.January, 1), 15},
		{"two years", date(2023, time.January, 1), 15},
		{"three years stays flat", date(2022, time.January, 1), 15},
		{"five years stays flat", date(2020, time.January, 1), 15},
		{"long service stays flat", date(2004, time.January, 1), 15},
		{"hired today", jan1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calc.AnnualLeaveDays(tt.hire, jan1))
		})
	}
}

func TestAnnualLeaveDays_SeniorityBonus(t *testing.T) {
	calc := NewQuotaCalculator(leave.AccrualRule{BaseDays: 15, MaxBonusDays: 10, FirstYearCap: 11})
	jan1 := date(2025, time.January, 1)

	assert.Equal(t, 15, calc.AnnualLeaveDays(date(2023, time.January, 1), jan1))
	assert.Equal(t, 16, calc.AnnualLeaveDays(date(2022, time.January, 1), jan1))
	assert.Equal(t, 17, calc.AnnualLeaveDays(date(2020, time.January, 1), jan1))
	assert.Equal(t, 25, calc.AnnualLeaveDays(date(1990, time.January, 1), jan1))
}

func TestAnnualLeaveDays_FirstYearCap(t *testing.T) {
	calc := NewQuotaCalculator(leave.AccrualRule{BaseDays: 15, MaxBonusDays: 10, FirstYearCap: 5})
	assert.Equal(t, 5, calc.AnnualLeaveDays(date(2024, time.March, 1), date(2025, time.January, 1)))
}

func TestTenureMonths(t *testing.T) {
	tests := []struct {
		name     string
		hire, at time.Time
		want     int
	}{
		{"same day", date(2025, 1, 15), date(2025, 1, 15), 0},
		{"one month", date(2025, 1, 15), date(2025, 2, 15), 1},
		{"day before anniversary", date(2025, 1, 15), date(2025, 2, 14), 0},
		{"month end anniversary", date(2025, 1, 31), date(2025, 2, 28), 1},
		{"before month end", date(2025, 1, 31), date(2025, 2, 27), 0},
		{"leap year month end", date(2024, 1, 31), date(2024, 2, 29), 1},
		{"before hire", date(2025, 3, 1), date(2025, 1, 1), 0},
		{"across years", date(2023, 11, 10), date(2025, 1, 10), 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TenureMonths(tt.hire, tt.at))
		})
	}
}

func TestMonthlyGrantDue(t *testing.T) {
	calc := NewQuotaCalculator(leave.DefaultAccrualRule())

	tests := []struct {
		name       string
		hire, day  time.Time
		wantMonths int
		wantDue    bool
	}{
		{"first anniversary", date(2025, 1, 15), date(2025, 2, 15), 1, true},
		{"day after anniversary", date(2025, 1, 15), date(2025, 2, 16), 1, false},
		{"clamped to month end", date(2025, 1, 31), date(2025, 2, 28), 1, true},
		{"eleventh month", date(2024, 2, 15), date(2025, 1, 15), 11, true},
		{"twelfth month belongs to yearly", date(2024, 1, 15), date(2025, 1, 15), 12, false},
		{"hire day", date(2025, 1, 15), date(2025, 1, 15), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			months, due := calc.MonthlyGrantDue(tt.hire, tt.day)
			assert.Equal(t, tt.wantMonths, months)
			assert.Equal(t, tt.wantDue, due)
		})
	}
}

func TestYearsOfService(t *testing.T) {
	assert.Equal(t, 0, YearsOfService(date(2024, 6, 1), date(2025, 1, 1)))
	assert.Equal(t, 1, YearsOfService(date(2024, 1, 1), date(2025, 1, 1)))
	assert.Equal(t, 4, YearsOfService(date(2020, 1, 2), date(2025, 1, 1)))
}
