package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/leave"
	"gopkg.in/yaml.v3"
)

// WorkPolicy is the organization's work-time and leave accrual settings.
type WorkPolicy struct {
	Attendance  attendance.Policy
	AnnualLeave leave.AccrualRule
}

type policyFile struct {
	Timezone          string             `yaml:"timezone"`
	LunchMinutes      *int               `yaml:"lunch_minutes"`
	LateCutoff        string             `yaml:"late_cutoff"`
	StandardMinutes   *int               `yaml:"standard_minutes"`
	AutoCheckoutAt    string             `yaml:"auto_checkout_at"`
	AutoCheckoutRunAt string             `yaml:"auto_checkout_run_at"`
	AnnualLeave       *leave.AccrualRule `yaml:"annual_leave"`
}

func DefaultWorkPolicy() WorkPolicy {
	return WorkPolicy{
		Attendance:  attendance.DefaultPolicy(),
		AnnualLeave: leave.DefaultAccrualRule(),
	}
}

// LoadWorkPolicy reads the policy file at path. An empty path or a missing
// file yields the defaults; keys left out of the file keep their defaults.
func LoadWorkPolicy(path string) (WorkPolicy, error) {
	policy := DefaultWorkPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return policy, nil
		}
		return WorkPolicy{}, fmt.Errorf("failed to read work policy: %w", err)
	}

	return ParseWorkPolicy(data)
}

func ParseWorkPolicy(data []byte) (WorkPolicy, error) {
	policy := DefaultWorkPolicy()

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return WorkPolicy{}, fmt.Errorf("failed to parse work policy: %w", err)
	}

	if file.Timezone != "" {
		loc := attendance.LoadLocation(file.Timezone)
		if loc == nil {
			return WorkPolicy{}, fmt.Errorf("unknown timezone %q", file.Timezone)
		}
		policy.Attendance.Location = loc
	}
	if file.LunchMinutes != nil {
		policy.Attendance.LunchMinutes = *file.LunchMinutes
	}
	if file.StandardMinutes != nil {
		policy.Attendance.StandardMinutes = *file.StandardMinutes
	}
	if file.LateCutoff != "" {
		c, err := attendance.ParseClock(file.LateCutoff)
		if err != nil {
			return WorkPolicy{}, fmt.Errorf("late_cutoff: %w", err)
		}
		policy.Attendance.LateCutoff = c
	}
	if file.AutoCheckoutAt != "" {
		c, err := attendance.ParseClock(file.AutoCheckoutAt)
		if err != nil {
			return WorkPolicy{}, fmt.Errorf("auto_checkout_at: %w", err)
		}
		policy.Attendance.AutoCheckoutAt = c
	}
	if file.AutoCheckoutRunAt != "" {
		c, err := attendance.ParseClock(file.AutoCheckoutRunAt)
		if err != nil {
			return WorkPolicy{}, fmt.Errorf("auto_checkout_run_at: %w", err)
		}
		policy.Attendance.AutoCheckoutRunAt = c
	}
	if file.AnnualLeave != nil {
		policy.AnnualLeave = *file.AnnualLeave
	}

	if err := policy.Attendance.Validate(); err != nil {
		return WorkPolicy{}, fmt.Errorf("invalid work policy: %w", err)
	}
	if policy.AnnualLeave.BaseDays <= 0 || policy.AnnualLeave.MaxBonusDays < 0 || policy.AnnualLeave.FirstYearCap < 0 {
		return WorkPolicy{}, fmt.Errorf("invalid work policy: annual_leave values out of range")
	}

	return policy, nil
}
