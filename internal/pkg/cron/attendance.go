package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/attendance"
)

type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	policy            attendance.Policy
	now               func() time.Time
	gate              dailyGate
}

func NewAttendanceJobs(attendanceService attendance.AttendanceService, policy attendance.Policy) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceService: attendanceService,
		policy:            policy,
		now:               time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_checkout", 10*time.Minute, j.AutoCheckout)
}

// AutoCheckout closes today's open sessions once per day after the policy's
// auto checkout run time.
func (j *AttendanceJobs) AutoCheckout(ctx context.Context) error {
	now := j.policy.Local(j.now())
	if !j.policy.AutoCheckoutDue(now) {
		return nil
	}

	day := now.Format(attendance.DateLayout)
	if !j.gate.claim(day) {
		return nil
	}

	slog.Info("Cron: Starting auto checkout job", "work_date", day)

	result, err := j.attendanceService.AutoCheckout(ctx, now)
	if err != nil {
		j.gate.release(day)
		return fmt.Errorf("failed to auto checkout: %w", err)
	}

	slog.Info("Cron: Auto checkout finished",
		"work_date", result.WorkDate,
		"processed", result.Processed,
		"failed", result.Failed)
	return nil
}
