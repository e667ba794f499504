package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/leave"
)

// LeaveJobs grants annual leave on the yearly and monthly schedules.
type LeaveJobs struct {
	leaveService leave.LeaveService
	loc          *time.Location
	now          func() time.Time
	yearly       dailyGate
	monthly      dailyGate
}

func NewLeaveJobs(leaveService leave.LeaveService, loc *time.Location) *LeaveJobs {
	return &LeaveJobs{
		leaveService: leaveService,
		loc:          loc,
		now:          time.Now,
	}
}

func (j *LeaveJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("annual_leave_yearly", time.Hour, j.GenerateYearly)
	scheduler.AddJob("annual_leave_monthly", time.Hour, j.GenerateMonthly)
}

// GenerateYearly runs on January 1st.
func (j *LeaveJobs) GenerateYearly(ctx context.Context) error {
	today := j.now().In(j.loc)
	if today.Month() != time.January || today.Day() != 1 {
		return nil
	}
	return j.run(ctx, &j.yearly, "yearly", today, j.leaveService.AutoGenerateYearly)
}

// GenerateMonthly runs every day; the service picks users whose anniversary is today.
func (j *LeaveJobs) GenerateMonthly(ctx context.Context) error {
	return j.run(ctx, &j.monthly, "monthly", j.now().In(j.loc), j.leaveService.AutoGenerateMonthly)
}

func (j *LeaveJobs) run(ctx context.Context, gate *dailyGate, kind string, today time.Time,
	fn func(context.Context, time.Time) (leave.AutoGrantResult, error)) error {
	day := today.Format(attendance.DateLayout)
	if !gate.claim(day) {
		return nil
	}

	result, err := fn(ctx, today)
	if err != nil {
		gate.release(day)
		return fmt.Errorf("failed to generate %s leave: %w", kind, err)
	}

	slog.Info("Cron: Annual leave generated",
		"kind", kind,
		"date", day,
		"processed", result.Processed,
		"skipped", result.Skipped,
		"errors", len(result.Errors))
	return nil
}
