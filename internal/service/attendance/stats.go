package attendance

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/user"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/validator"
)

// monthRange returns the first and last work date of year/month, defaulting
// to the current month.
func (s *AttendanceServiceImpl) monthRange(year, month int) (time.Time, time.Time) {
	if year == 0 || month == 0 {
		today := s.policy().WorkDate(s.now())
		if year == 0 {
			year = today.Year()
		}
		if month == 0 {
			month = int(today.Month())
		}
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// GetStats returns the monthly summary and the per-log breakdown for one user.
func (s *AttendanceServiceImpl) GetStats(ctx context.Context, query attendance.StatsQuery) (attendance.StatsResponse, error) {
	if err := query.Validate(); err != nil {
		return attendance.StatsResponse{}, err
	}
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return attendance.StatsResponse{}, err
	}
	target, err := s.authorizeUser(ctx, actor, query.UserID)
	if err != nil {
		return attendance.StatsResponse{}, err
	}

	start, end := s.monthRange(query.Year, query.Month)
	logs, err := s.logs.List(ctx, attendance.LogQuery{UserID: target.ID, StartDate: &start, EndDate: &end})
	if err != nil {
		return attendance.StatsResponse{}, fmt.Errorf("failed to list attendance logs: %w", err)
	}

	daily := make([]attendance.DailyStats, 0, len(logs))
	for i := len(logs) - 1; i >= 0; i-- {
		daily = append(daily, s.calc.DailyStats(logs[i]))
	}

	return attendance.StatsResponse{
		UserID: target.ID,
		Stats:  s.calc.MonthlyStats(logs, start.Year(), start.Month()),
		Daily:  daily,
	}, nil
}

// teamScope resolves the business unit a team query may cover. Managers are
// pinned to their own unit; an empty result means every unit.
func teamScope(actor *user.AppUser, buCode string) (string, error) {
	if user.IsAdmin(actor) {
		return buCode, nil
	}
	if !user.IsManager(actor) {
		return "", user.ErrManagerAccessRequired
	}
	if buCode != "" && buCode != actor.BU() {
		return "", attendance.ErrForbidden
	}
	if actor.BU() == "" {
		return "", attendance.ErrForbidden
	}
	return actor.BU(), nil
}

// GetTeamStats aggregates the month for every tracked user in scope, busiest first.
func (s *AttendanceServiceImpl) GetTeamStats(ctx context.Context, query attendance.TeamStatsQuery) (attendance.TeamStatsResponse, error) {
	stats := attendance.StatsQuery{Year: query.Year, Month: query.Month}
	if err := stats.Validate(); err != nil {
		return attendance.TeamStatsResponse{}, err
	}
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return attendance.TeamStatsResponse{}, err
	}
	bu, err := teamScope(actor, query.BUCode)
	if err != nil {
		return attendance.TeamStatsResponse{}, err
	}

	start, end := s.monthRange(query.Year, query.Month)
	resp := attendance.TeamStatsResponse{
		Year:    start.Year(),
		Month:   int(start.Month()),
		Members: []attendance.TeamMemberStats{},
	}

	filter := user.UserFilter{ExcludeArtists: true}
	if bu != "" {
		filter.BUCode = &bu
		resp.BUCode = &bu
	}
	members, err := s.users.List(ctx, filter)
	if err != nil {
		return attendance.TeamStatsResponse{}, fmt.Errorf("failed to list team members: %w", err)
	}
	if len(members) == 0 {
		return resp, nil
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	logs, err := s.logs.List(ctx, attendance.LogQuery{UserIDs: ids, StartDate: &start, EndDate: &end})
	if err != nil {
		return attendance.TeamStatsResponse{}, fmt.Errorf("failed to list attendance logs: %w", err)
	}

	byUser := make(map[string][]attendance.AttendanceLog, len(members))
	for _, log := range logs {
		byUser[log.UserID] = append(byUser[log.UserID], log)
	}

	for _, m := range members {
		ms := s.calc.MonthlyStats(byUser[m.ID], start.Year(), start.Month())
		resp.Members = append(resp.Members, attendance.TeamMemberStats{
			UserID:         m.ID,
			Name:           m.Name,
			BUCode:         m.BUCode,
			Stats:          ms,
			TotalWorkLabel: attendance.FormatWorkTime(ms.TotalWorkMinutes),
		})
	}
	sort.SliceStable(resp.Members, func(i, j int) bool {
		return resp.Members[i].Stats.TotalWorkMinutes > resp.Members[j].Stats.TotalWorkMinutes
	})

	return resp, nil
}

// ExportTeamStats writes the team statistics as an XLSX workbook.
func (s *AttendanceServiceImpl) ExportTeamStats(ctx context.Context, query attendance.TeamStatsQuery, w io.Writer) error {
	team, err := s.GetTeamStats(ctx, query)
	if err != nil {
		return err
	}

	table := spreadsheet.Table{
		Sheet: fmt.Sprintf("%04d-%02d", team.Year, team.Month),
		Headers: []string{
			"이름", "사업부", "근무일수", "총 근무시간", "평균 근무(분)",
			"지각", "조퇴", "결근", "휴가", "재택", "외근",
		},
		Widths: map[int]float64{0: 16, 3: 16},
	}
	for _, m := range team.Members {
		bu := ""
		if m.BUCode != nil {
			bu = *m.BUCode
		}
		table.Rows = append(table.Rows, []any{
			m.Name, bu, m.Stats.TotalWorkDays, m.TotalWorkLabel, m.Stats.AverageWorkMinutes,
			m.Stats.LateCount, m.Stats.EarlyLeaveCount, m.Stats.AbsentCount,
			m.Stats.VacationCount, m.Stats.RemoteCount, m.Stats.ExternalCount,
		})
	}

	if err := spreadsheet.WriteXLSX(w, table); err != nil {
		return fmt.Errorf("failed to export team stats: %w", err)
	}
	return nil
}

// GetOverview classifies every tracked user's day for the admin dashboard.
func (s *AttendanceServiceImpl) GetOverview(ctx context.Context, query attendance.OverviewQuery) (attendance.OverviewResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return attendance.OverviewResponse{}, err
	}
	if !user.CanViewAllAttendance(actor) {
		return attendance.OverviewResponse{}, user.ErrAdminAccessRequired
	}

	today := s.policy().WorkDate(s.now())
	date := today
	if query.Date != "" {
		d, err := time.Parse(attendance.DateLayout, query.Date)
		if err != nil {
			var errs validator.ValidationErrors
			errs.Add("date", "date must be in YYYY-MM-DD format")
			return attendance.OverviewResponse{}, errs.Err()
		}
		date = d
	}

	resp := attendance.OverviewResponse{
		Date:    date.Format(attendance.DateLayout),
		IsToday: date.Equal(today),
		Users:   []attendance.OverviewEntry{},
	}

	filter := user.UserFilter{ExcludeArtists: true}
	if query.BUCode != "" {
		filter.BUCode = &query.BUCode
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return attendance.OverviewResponse{}, fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		return resp, nil
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	logs, err := s.logs.List(ctx, attendance.LogQuery{UserIDs: ids, WorkDate: &date})
	if err != nil {
		return attendance.OverviewResponse{}, fmt.Errorf("failed to list attendance logs: %w", err)
	}
	byUser := make(map[string][]attendance.AttendanceLog, len(users))
	for _, log := range logs {
		byUser[log.UserID] = append(byUser[log.UserID], log)
	}

	realtime := make(map[string]attendance.WorkStatus)
	if resp.IsToday {
		statuses, err := s.statuses.List(ctx)
		if err != nil {
			return attendance.OverviewResponse{}, fmt.Errorf("failed to list work statuses: %w", err)
		}
		for _, st := range statuses {
			realtime[st.UserID] = st.Status
		}
	}

	for _, u := range users {
		entry := overviewEntry(u, byUser[u.ID], realtime, resp.IsToday)
		resp.Users = append(resp.Users, entry)

		resp.Stats.Total++
		switch entry.DisplayStatus {
		case attendance.DisplayWorking:
			resp.Stats.Working++
		case attendance.DisplayCheckedOut:
			resp.Stats.CheckedOut++
		case attendance.DisplayAway:
			resp.Stats.Away++
		case attendance.DisplayOvertime:
			resp.Stats.Overtime++
		default:
			resp.Stats.OffWork++
		}
	}

	return resp, nil
}

func overviewEntry(u user.AppUser, logs []attendance.AttendanceLog, realtime map[string]attendance.WorkStatus, isToday bool) attendance.OverviewEntry {
	entry := attendance.OverviewEntry{
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		BUCode:    u.BUCode,
		Position:  u.Position,
		LogsCount: len(logs),
	}
	if st, ok := realtime[u.ID]; ok {
		entry.RealtimeStatus = &st
	}

	allClosed := true
	for _, log := range logs {
		if log.CheckInAt != nil && (entry.FirstCheckIn == nil || log.CheckInAt.Before(*entry.FirstCheckIn)) {
			entry.FirstCheckIn = log.CheckInAt
		}
		if log.CheckOutAt != nil && (entry.LastCheckOut == nil || log.CheckOutAt.After(*entry.LastCheckOut)) {
			entry.LastCheckOut = log.CheckOutAt
		}
		if log.IsOpen() {
			allClosed = false
		}
		if log.IsOvertime {
			entry.IsOvertime = true
		}
	}

	entry.DisplayStatus = displayStatus(entry, allClosed, isToday)
	return entry
}

// displayStatus applies the overview precedence: no check-in, fully checked
// out, away on a live day, overtime, working.
func displayStatus(entry attendance.OverviewEntry, allClosed, isToday bool) attendance.DisplayStatus {
	switch {
	case entry.FirstCheckIn == nil:
		return attendance.DisplayOffWork
	case allClosed:
		return attendance.DisplayCheckedOut
	case isToday && entry.RealtimeStatus != nil &&
		(*entry.RealtimeStatus == attendance.WorkStatusBreak || *entry.RealtimeStatus == attendance.WorkStatusMeeting):
		return attendance.DisplayAway
	case entry.IsOvertime:
		return attendance.DisplayOvertime
	default:
		return attendance.DisplayWorking
	}
}
