package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/user"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/slack"
)

// QuotaService grants annual leave on the statutory schedule.
type QuotaService struct {
	tx         approval.Transactor
	users      user.UserRepository
	balances   leave.BalanceRepository
	grants     leave.GrantRepository
	calculator *QuotaCalculator
	loc        *time.Location
	ops        slack.Notifier
}

func NewQuotaService(
	tx approval.Transactor,
	users user.UserRepository,
	balances leave.BalanceRepository,
	grants leave.GrantRepository,
	calculator *QuotaCalculator,
	loc *time.Location,
	ops slack.Notifier,
) *QuotaService {
	return &QuotaService{
		tx:         tx,
		users:      users,
		balances:   balances,
		grants:     grants,
		calculator: calculator,
		loc:        loc,
		ops:        ops,
	}
}

// grant records a grant and adds its days to the balance in one transaction.
func (q *QuotaService) grant(ctx context.Context, g leave.Grant) (leave.Grant, error) {
	var created leave.Grant
	err := q.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = q.grants.Create(ctx, g)
		if err != nil {
			return err
		}
		return q.balances.AddTotal(ctx, g.UserID, g.LeaveType, g.Year, g.Days)
	})
	if err != nil {
		return leave.Grant{}, fmt.Errorf("failed to grant leave: %w", err)
	}
	return created, nil
}

// localDay returns the calendar date of t in the organization's timezone as
// midnight UTC, and the instant that day starts.
func (q *QuotaService) localDay(t time.Time) (time.Time, time.Time) {
	l := t.In(q.loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC),
		time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, q.loc)
}

func (q *QuotaService) eligibleUsers(ctx context.Context) ([]user.AppUser, error) {
	users, err := q.users.List(ctx, user.UserFilter{ExcludeArtists: true, RequireHireDate: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// AutoGenerateYearly grants the year's annual leave to every user with at
// least one full year of service on January 1. A user already holding an
// auto_yearly grant for the year is skipped.
func (q *QuotaService) AutoGenerateYearly(ctx context.Context, today time.Time) (leave.AutoGrantResult, error) {
	date, _ := q.localDay(today)
	year := date.Year()
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)

	users, err := q.eligibleUsers(ctx)
	if err != nil {
		return leave.AutoGrantResult{}, err
	}

	var result leave.AutoGrantResult
	for _, u := range users {
		if YearsOfService(*u.HireDate, jan1) < 1 {
			result.Skipped++
			continue
		}

		exists, err := q.grants.Exists(ctx, u.ID, leave.GrantAutoYearly, year, nil)
		if err != nil {
			result.Errors = append(result.Errors, leave.AutoGrantError{UserID: u.ID, Error: err.Error()})
			continue
		}
		if exists {
			result.Skipped++
			continue
		}

		days := q.calculator.AnnualLeaveDays(*u.HireDate, jan1)
		reason := fmt.Sprintf("%d년 연차 자동 부여 (근속 %d년)", year, YearsOfService(*u.HireDate, jan1))
		if _, err := q.grant(ctx, leave.Grant{
			UserID:    u.ID,
			LeaveType: leave.TypeAnnual,
			Days:      float64(days),
			GrantType: leave.GrantAutoYearly,
			Reason:    &reason,
			Year:      year,
		}); err != nil {
			result.Errors = append(result.Errors, leave.AutoGrantError{UserID: u.ID, Error: err.Error()})
			continue
		}
		result.Processed++
	}

	q.report(ctx, "연차 연간 부여", year, result)
	return result, nil
}

// AutoGenerateMonthly grants one annual day to users in their first year on
// each monthly hire anniversary. Running twice on the same day grants once.
func (q *QuotaService) AutoGenerateMonthly(ctx context.Context, today time.Time) (leave.AutoGrantResult, error) {
	date, startOfDay := q.localDay(today)

	users, err := q.eligibleUsers(ctx)
	if err != nil {
		return leave.AutoGrantResult{}, err
	}

	var result leave.AutoGrantResult
	for _, u := range users {
		months, due := q.calculator.MonthlyGrantDue(*u.HireDate, date)
		if !due {
			result.Skipped++
			continue
		}

		exists, err := q.grants.Exists(ctx, u.ID, leave.GrantAutoMonthly, date.Year(), &startOfDay)
		if err != nil {
			result.Errors = append(result.Errors, leave.AutoGrantError{UserID: u.ID, Error: err.Error()})
			continue
		}
		if exists {
			result.Skipped++
			continue
		}

		reason := fmt.Sprintf("입사 %d개월 월차 부여", months)
		if _, err := q.grant(ctx, leave.Grant{
			UserID:    u.ID,
			LeaveType: leave.TypeAnnual,
			Days:      1,
			GrantType: leave.GrantAutoMonthly,
			Reason:    &reason,
			Year:      date.Year(),
		}); err != nil {
			result.Errors = append(result.Errors, leave.AutoGrantError{UserID: u.ID, Error: err.Error()})
			continue
		}
		result.Processed++
	}

	q.report(ctx, "월차 부여", date.Year(), result)
	return result, nil
}

func (q *QuotaService) report(ctx context.Context, job string, year int, result leave.AutoGrantResult) {
	slog.InfoContext(ctx, "Leave auto grant finished",
		"job", job, "year", year, "processed", result.Processed, "skipped", result.Skipped, "errors", len(result.Errors))

	if q.ops == nil || (result.Processed == 0 && len(result.Errors) == 0) {
		return
	}
	msg := fmt.Sprintf("[%s] %d년: %d명 부여, %d명 건너뜀, %d건 실패", job, year, result.Processed, result.Skipped, len(result.Errors))
	post := q.ops.Info
	if len(result.Errors) > 0 {
		post = q.ops.Error
	}
	if err := post(ctx, msg); err != nil {
		slog.WarnContext(ctx, "Failed to post leave grant summary", "error", err)
	}
}
