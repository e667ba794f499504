package attendance

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/user"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var (
	admin   = &user.AppUser{ID: "admin", Name: "관리자", Role: user.RoleAdmin, BUCode: ptr(user.BUHead)}
	manager = &user.AppUser{ID: "manager", Name: "매니저", Role: user.RoleManager, BUCode: ptr(user.BUGrigo)}
	member  = &user.AppUser{ID: "member", Name: "김철수", Role: user.RoleMember, BUCode: ptr(user.BUGrigo)}
	other   = &user.AppUser{ID: "other", Name: "이영희", Role: user.RoleMember, BUCode: ptr(user.BUReact)}
	artist  = &user.AppUser{ID: "artist", Name: "아티스트", Role: user.RoleArtist, BUCode: ptr(user.BUGrigo)}
)

type fixture struct {
	svc      *AttendanceServiceImpl
	logs     *memoryLogs
	statuses *memoryStatuses
	notifier *recordingNotifier
	ops      *recordingOps
}

func newFixture(now time.Time, logs ...attendance.AttendanceLog) *fixture {
	f := &fixture{
		logs:     newMemoryLogs(logs...),
		statuses: newMemoryStatuses(),
		notifier: &recordingNotifier{},
		ops:      &recordingOps{},
	}
	users := &memoryUsers{users: []user.AppUser{*admin, *manager, *member, *other, *artist}}
	f.svc = NewAttendanceService(f.logs, f.statuses, users, attendance.NewCalculator(attendance.DefaultPolicy()), f.notifier, f.ops)
	f.svc.now = func() time.Time { return now }
	return f
}

// ===== CHECK IN / OUT =====

func TestCheckIn_LateAfterCutoff(t *testing.T) {
	f := newFixture(kstTime(2025, 3, 10, 9, 5))

	log, err := f.svc.CheckIn(actorCtx(member))
	require.NoError(t, err)

	assert.Equal(t, attendance.StatusLate, log.Status)
	assert.Equal(t, "2025-03-10", log.WorkDate)
	assert.False(t, log.IsOvertime)
	assert.Equal(t, attendance.WorkStatusWorking, f.statuses.statuses[member.ID].Status)
}

func TestCheckIn_WorkDateFollowsLocalCalendar(t *testing.T) {
	// 00:30 KST on the 11th is still the 10th in UTC.
	f := newFixture(kstTime(2025, 3, 11, 0, 30))

	log, err := f.svc.CheckIn(actorCtx(member))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-11", log.WorkDate)
}

func TestCheckIn_Twice(t *testing.T) {
	f := newFixture(kstTime(2025, 3, 10, 8, 50))

	_, err := f.svc.CheckIn(actorCtx(member))
	require.NoError(t, err)

	_, err = f.svc.CheckIn(actorCtx(member))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestCheckIn_AfterCheckoutIsOvertime(t *testing.T) {
	f := newFixture(kstTime(2025, 3, 10, 20, 0), attendance.AttendanceLog{
		ID: "day", UserID: member.ID, WorkDate: date(2025, 3, 10),
		CheckInAt: ptr(kstTime(2025, 3, 10, 8, 50)), CheckOutAt: ptr(kstTime(2025, 3, 10, 18, 0)),
		Status: attendance.StatusPresent,
	})

	log, err := f.svc.CheckIn(actorCtx(member))
	require.NoError(t, err)
	assert.True(t, log.IsOvertime)
	assert.Len(t, f.logs.forUser(member.ID), 2)
}

func TestCheckIn_ArtistNotTracked(t *testing.T) {
	f := newFixture(kstTime(2025, 3, 10, 8, 50))

	_, err := f.svc.CheckIn(actorCtx(artist))
	assert.ErrorIs(t, err, attendance.ErrUserNotTracked)
}

func TestCheckIn_Unauthenticated(t *testing.T) {
	f := newFixture(kstTime(2025, 3, 10, 8, 50))

	_, err := f.svc.CheckIn(context.Background())
	assert.ErrorIs(t, err, user.ErrUnauthenticated)
}

func TestCheckOut(t *testing.T) {
	tests := []struct {
		name       string
		checkIn    time.Time
		checkOut   time.Time
		wantStatus attendance.Status
		wantWork   int
	}{
		{"full day", kstTime(2025, 3, 10, 8, 50), kstTime(2025, 3, 10, 18, 0), attendance.StatusPresent, 490},
		{"short day", kstTime(2025, 3, 10, 8, 50), kstTime(2025, 3, 10, 15, 0), attendance.StatusEarlyLeave, 310},
		{"late wins over short", kstTime(2025, 3, 10, 10, 0), kstTime(2025, 3, 10, 15, 0), attendance.StatusLate, 240},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.checkOut, attendance.AttendanceLog{
				ID: "open", UserID: member.ID, WorkDate: date(2025, 3, 10), CheckInAt: &tt.checkIn,
			})

			log, err := f.svc.CheckOut(actorCtx(member))
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, log.Status)
			require.NotNil(t, log.WorkTimeMinutes)
			assert.Equal(t, tt.wantWork, *log.WorkTimeMinutes)
			assert.Equal(t, attendance.WorkStatusOffWork, f.statuses.statuses[member.ID].Status)
		})
	}
}

func TestCheckOut_Errors(t *testing.T) {
	f := newFixture(kstTime(2025, 3, 10, 18, 0))
	_, err := f.svc.CheckOut(actorCtx(member))
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)

	f = newFixture(kstTime(2025, 3, 10, 19, 0), attendance.AttendanceLog{
		ID: "closed", UserID: member.ID, WorkDate: date(2025, 3, 10),
		CheckInAt: ptr(kstTime(2025, 3, 10, 9, 0)), CheckOutAt: ptr(kstTime(2025, 3, 10, 18, 0)),
	})
	_, err = f.svc.CheckOut(actorCtx(member))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestGetStatus_OpenSession(t *testing.T) {
	f := newFixture(kstTime(2025, 3, 10, 12, 0), attendance.AttendanceLog{
		ID: "open", UserID: member.ID, WorkDate: date(2025, 3, 10),
		CheckInAt: ptr(kstTime(2025, 3, 10, 9, 0)), Status: attendance.StatusPresent,
	})

	status, err := f.svc.GetStatus(actorCtx(member))
	require.NoError(t, err)

	assert.True(t, status.IsCheckedIn)
	assert.False(t, status.IsCheckedOut)
	assert.Equal(t, 120, status.WorkTimeMinutes)
	assert.Equal(t, "2시간", status.WorkTimeLabel)
	assert.Empty(t, status.PendingAutoCheckouts)
}

func TestGetStatus_NoLog(t *testing.T) {
	f := newFixture(kstTime(2025, 3, 10, 12, 0))

	status, err := f.svc.GetStatus(actorCtx(member))
	require.NoError(t, err)
	assert.False(t, status.IsCheckedIn)
	assert.Equal(t, attendance.StatusAbsent, status.Status)
	assert.Equal(t, "0분", status.WorkTimeLabel)
}

// ===== LOG MANAGEMENT =====

func memberLog() attendance.AttendanceLog {
	return attendance.AttendanceLog{
		ID: "log", UserID: member.ID, WorkDate: date(2025, 3, 10),
		CheckInAt: ptr(kstTime(2025, 3, 10, 9, 0)), CheckOutAt: ptr(kstTime(2025, 3, 10, 18, 0)),
		Status: attendance.StatusPresent,
	}
}

func TestGetLog_Permissions(t *testing.T) {
	f := newFixture(kstTime(2025, 3, 11, 9, 0), memberLog())

	tests := []struct {
		name  string
		actor *user.AppUser
		err   error
	}{
		{"owner", member, nil},
		{"same BU manager", manager, nil},
		{"admin", admin, nil},
		{"other member", other, attendance.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.GetLog(actorCtx(tt.actor), "log")
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestUpdateLog_RecomputesStatus(t *testing.T) {
	f := newFixture(kstTime(2025, 3, 11, 9, 0), memberLog())

	log, err := f.svc.UpdateLog(actorCtx(manager), attendance.UpdateLogRequest{
		ID:                 "log",
		CheckInTime:        ptr("09:30"),
		ModificationReason: ptr("지각 정정"),
	})
	require.NoError(t, err)

	assert.Equal(t, attendance.StatusLate, log.Status)
	assert.True(t, log.IsModified)
	assert.Equal(t, "지각 정정", *log.ModificationReason)
	assert.True(t, kstTime(2025, 3, 10, 9, 30).Equal(*log.CheckInAt))
}

func TestUpdateLog_ExplicitStatusWins(t *testing.T) {
	f := newFixture(kstTime(2025, 3, 11, 9, 0), memberLog())

	log, err := f.svc.UpdateLog(actorCtx(admin), attendance.UpdateLogRequest{
		ID:          "log",
		CheckInTime: ptr("10:00"),
		Status:      ptr(string(attendance.StatusExternal)),
	})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusExternal, log.Status)
}

func TestUpdateLog_CheckoutBeforeCheckin(t *testing.T) {
	f := newFixture(kstTime(2025, 3, 11, 9, 0), memberLog())

	_, err := f.svc.UpdateLog(actorCtx(member), attendance.UpdateLogRequest{ID: "log", CheckOutTime: ptr("08:00")})
	assert.ErrorIs(t, err, attendance.ErrCheckoutBeforeCheckin)
}

func TestUpdateLog_Validation(t *testing.T) {
	f := newFixture(kstTime(2025, 3, 11, 9, 0), memberLog())

	_, err := f.svc.UpdateLog(actorCtx(member), attendance.UpdateLogRequest{ID: "log", CheckInTime: ptr("9am")})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestDeleteLog_AdminOnly(t *testing.T) {
	f := newFixture(kstTime(2025, 3, 11, 9, 0), memberLog())

	err := f.svc.DeleteLog(actorCtx(manager), "log")
	assert.ErrorIs(t, err, user.ErrAdminAccessRequired)

	require.NoError(t, f.svc.DeleteLog(actorCtx(admin), "log"))
	assert.Empty(t, f.logs.forUser(member.ID))
}

func TestCreateLog(t *testing.T) {
	f := newFixture(kstTime(2025, 3, 11, 9, 0))

	log, err := f.svc.CreateLog(actorCtx(manager), attendance.CreateLogRequest{
		UserID:       member.ID,
		WorkDate:     "2025-03-07",
		CheckInTime:  ptr("08:45"),
		CheckOutTime: ptr("18:10"),
	})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, log.Status)
	assert.True(t, log.IsModified)

	_, err = f.svc.CreateLog(actorCtx(manager), attendance.CreateLogRequest{
		UserID:      other.ID,
		WorkDate:    "2025-03-07",
		CheckInTime: ptr("08:45"),
	})
	assert.ErrorIs(t, err, attendance.ErrForbidden)
}

func TestListLogs_DateRange(t *testing.T) {
	early := memberLog()
	early.ID, early.WorkDate = "early", date(2025, 2, 28)
	f := newFixture(kstTime(2025, 3, 11, 9, 0), memberLog(), early)

	logs, err := f.svc.ListLogs(actorCtx(member), attendance.LogFilter{StartDate: "2025-03-01", EndDate: "2025-03-31"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "log", logs[0].ID)

	_, err = f.svc.ListLogs(actorCtx(member), attendance.LogFilter{UserID: "00000000-0000-0000-0000-000000000000"})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

// ===== AUTO CHECKOUT =====

func TestAutoCheckout(t *testing.T) {
	morning := attendance.AttendanceLog{
		ID: "morning", UserID: member.ID, WorkDate: date(2025, 3, 10), CheckInAt: ptr(kstTime(2025, 3, 10, 9, 0)),
	}
	evening := attendance.AttendanceLog{
		ID: "evening", UserID: other.ID, WorkDate: date(2025, 3, 10), CheckInAt: ptr(kstTime(2025, 3, 10, 20, 0)), IsOvertime: true,
	}
	yesterday := attendance.AttendanceLog{
		ID: "yesterday", UserID: manager.ID, WorkDate: date(2025, 3, 9), CheckInAt: ptr(kstTime(2025, 3, 9, 9, 0)),
	}
	now := kstTime(2025, 3, 10, 23, 5)
	f := newFixture(now, morning, evening, yesterday)

	result, err := f.svc.AutoCheckout(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Processed)
	assert.Zero(t, result.Failed)
	assert.ElementsMatch(t, []string{"morning", "evening"}, result.LogIDs)

	got, _ := f.logs.GetByID(context.Background(), "morning")
	assert.True(t, kstTime(2025, 3, 10, 18, 0).Equal(*got.CheckOutAt))
	assert.True(t, got.IsAutoCheckout)
	assert.False(t, got.UserConfirmed)
	assert.Equal(t, autoCheckoutReason, *got.ModificationReason)

	// Started after the auto checkout time, so it closes at now.
	got, _ = f.logs.GetByID(context.Background(), "evening")
	assert.True(t, now.Equal(*got.CheckOutAt))

	got, _ = f.logs.GetByID(context.Background(), "yesterday")
	assert.Nil(t, got.CheckOutAt)

	assert.ElementsMatch(t, []string{member.ID, other.ID}, f.notifier.recipients())
	assert.Len(t, f.ops.info, 1)
	assert.Empty(t, f.ops.errors)
}

func TestAutoCheckout_ReportsFailures(t *testing.T) {
	now := kstTime(2025, 3, 10, 23, 5)
	f := newFixture(now, attendance.AttendanceLog{
		ID: "broken", UserID: member.ID, WorkDate: date(2025, 3, 10), CheckInAt: ptr(kstTime(2025, 3, 10, 9, 0)),
	})
	f.logs.failIDs["broken"] = true

	result, err := f.svc.AutoCheckout(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, f.ops.errors, 1)
	assert.Empty(t, f.notifier.recipients())
}

func TestAutoCheckout_LogsNotificationFailure(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	now := kstTime(2025, 3, 10, 23, 5)
	f := newFixture(now, attendance.AttendanceLog{
		ID: "morning", UserID: member.ID, WorkDate: date(2025, 3, 10), CheckInAt: ptr(kstTime(2025, 3, 10, 9, 0)),
	})
	f.notifier.err = errors.New("queue closed")

	result, err := f.svc.AutoCheckout(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Contains(t, buf.String(), "Failed to notify auto checkout")
	assert.Contains(t, buf.String(), "queue closed")
}

func TestAutoCheckout_NothingOpen(t *testing.T) {
	now := kstTime(2025, 3, 10, 23, 5)
	f := newFixture(now)

	result, err := f.svc.AutoCheckout(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, result.Processed)
	assert.Empty(t, f.ops.info)
}

func TestCorrectCheckout(t *testing.T) {
	auto := attendance.AttendanceLog{
		ID: "auto", UserID: member.ID, WorkDate: date(2025, 3, 10),
		CheckInAt: ptr(kstTime(2025, 3, 10, 9, 0)), CheckOutAt: ptr(kstTime(2025, 3, 10, 18, 0)),
		IsAutoCheckout: true, Status: attendance.StatusPresent,
	}
	f := newFixture(kstTime(2025, 3, 11, 9, 0), auto)

	_, err := f.svc.CorrectCheckout(actorCtx(other), attendance.CorrectCheckoutRequest{ID: "auto", SkipCorrection: true})
	assert.ErrorIs(t, err, attendance.ErrForbidden)

	log, err := f.svc.CorrectCheckout(actorCtx(member), attendance.CorrectCheckoutRequest{ID: "auto", CheckOutTime: ptr("16:00")})
	require.NoError(t, err)
	assert.True(t, log.UserConfirmed)
	assert.Equal(t, attendance.StatusEarlyLeave, log.Status)
	assert.True(t, kstTime(2025, 3, 10, 16, 0).Equal(*log.CheckOutAt))

	pending, err := f.svc.ListPendingAutoCheckouts(actorCtx(member))
	require.NoError(t, err)
	assert.Empty(t, pending)

	history, err := f.svc.ListAutoCheckoutHistory(actorCtx(member))
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCorrectCheckout_OnlyAutoCheckouts(t *testing.T) {
	f := newFixture(kstTime(2025, 3, 11, 9, 0), memberLog())

	_, err := f.svc.CorrectCheckout(actorCtx(member), attendance.CorrectCheckoutRequest{ID: "log", SkipCorrection: true})
	assert.ErrorIs(t, err, attendance.ErrNotAutoCheckout)
}

// ===== STATS =====

func marchLogs() []attendance.AttendanceLog {
	return []attendance.AttendanceLog{
		{
			ID: "m1", UserID: member.ID, WorkDate: date(2025, 3, 3), Status: attendance.StatusPresent,
			CheckInAt: ptr(kstTime(2025, 3, 3, 9, 0)), CheckOutAt: ptr(kstTime(2025, 3, 3, 18, 0)),
		},
		{
			ID: "m2", UserID: member.ID, WorkDate: date(2025, 3, 4), Status: attendance.StatusLate,
			CheckInAt: ptr(kstTime(2025, 3, 4, 9, 30)), CheckOutAt: ptr(kstTime(2025, 3, 4, 18, 0)),
		},
		{
			ID: "o1", UserID: other.ID, WorkDate: date(2025, 3, 3), Status: attendance.StatusPresent,
			CheckInAt: ptr(kstTime(2025, 3, 3, 8, 0)), CheckOutAt: ptr(kstTime(2025, 3, 3, 20, 0)),
		},
		{
			ID: "feb", UserID: member.ID, WorkDate: date(2025, 2, 28), Status: attendance.StatusPresent,
			CheckInAt: ptr(kstTime(2025, 2, 28, 9, 0)), CheckOutAt: ptr(kstTime(2025, 2, 28, 18, 0)),
		},
	}
}

func TestGetStats(t *testing.T) {
	f := newFixture(kstTime(2025, 3, 20, 9, 0), marchLogs()...)

	resp, err := f.svc.GetStats(actorCtx(member), attendance.StatsQuery{})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Stats.TotalWorkDays)
	assert.Equal(t, 480+450, resp.Stats.TotalWorkMinutes)
	assert.Equal(t, 465, resp.Stats.AverageWorkMinutes)
	assert.Equal(t, 1, resp.Stats.LateCount)
	require.Len(t, resp.Daily, 2)
	assert.Equal(t, "2025-03-03", resp.Daily[0].Date)
	assert.True(t, resp.Daily[1].IsLate)
}

func TestGetTeamStats_ManagerPinnedToOwnBU(t *testing.T) {
	f := newFixture(kstTime(2025, 3, 20, 9, 0), marchLogs()...)

	resp, err := f.svc.GetTeamStats(actorCtx(manager), attendance.TeamStatsQuery{Year: 2025, Month: 3})
	require.NoError(t, err)
	require.NotNil(t, resp.BUCode)
	assert.Equal(t, user.BUGrigo, *resp.BUCode)

	var ids []string
	for _, m := range resp.Members {
		ids = append(ids, m.UserID)
	}
	assert.ElementsMatch(t, []string{manager.ID, member.ID}, ids)
	assert.Equal(t, member.ID, resp.Members[0].UserID)

	_, err = f.svc.GetTeamStats(actorCtx(manager), attendance.TeamStatsQuery{BUCode: user.BUReact})
	assert.ErrorIs(t, err, attendance.ErrForbidden)

	_, err = f.svc.GetTeamStats(actorCtx(member), attendance.TeamStatsQuery{})
	assert.ErrorIs(t, err, user.ErrManagerAccessRequired)
}

func TestGetTeamStats_AdminSortedByWorkTime(t *testing.T) {
	f := newFixture(kstTime(2025, 3, 20, 9, 0), marchLogs()...)

	resp, err := f.svc.GetTeamStats(actorCtx(admin), attendance.TeamStatsQuery{Year: 2025, Month: 3})
	require.NoError(t, err)

	require.Len(t, resp.Members, 4)
	assert.Equal(t, member.ID, resp.Members[0].UserID)
	assert.Equal(t, other.ID, resp.Members[1].UserID)
	assert.Equal(t, "11시간", resp.Members[1].TotalWorkLabel)
}

func TestExportTeamStats(t *testing.T) {
	f := newFixture(kstTime(2025, 3, 20, 9, 0), marchLogs()...)

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportTeamStats(actorCtx(admin), attendance.TeamStatsQuery{Year: 2025, Month: 3}, &buf))

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("2025-03")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "이름", rows[0][0])
	assert.Equal(t, member.Name, rows[1][0])
}

// ===== OVERVIEW =====

func TestGetOverview(t *testing.T) {
	now := kstTime(2025, 3, 10, 15, 0)
	f := newFixture(now,
		attendance.AttendanceLog{
			ID: "done", UserID: manager.ID, WorkDate: date(2025, 3, 10),
			CheckInAt: ptr(kstTime(2025, 3, 10, 7, 0)), CheckOutAt: ptr(kstTime(2025, 3, 10, 14, 0)),
		},
		attendance.AttendanceLog{
			ID: "working", UserID: member.ID, WorkDate: date(2025, 3, 10), CheckInAt: ptr(kstTime(2025, 3, 10, 9, 0)),
		},
		attendance.AttendanceLog{
			ID: "away", UserID: other.ID, WorkDate: date(2025, 3, 10), CheckInAt: ptr(kstTime(2025, 3, 10, 9, 0)),
		},
	)
	f.statuses.statuses[other.ID] = attendance.UserWorkStatus{UserID: other.ID, Status: attendance.WorkStatusMeeting}

	resp, err := f.svc.GetOverview(actorCtx(admin), attendance.OverviewQuery{})
	require.NoError(t, err)

	assert.True(t, resp.IsToday)
	byUser := make(map[string]attendance.DisplayStatus)
	for _, u := range resp.Users {
		byUser[u.UserID] = u.DisplayStatus
	}
	assert.Equal(t, map[string]attendance.DisplayStatus{
		admin.ID:   attendance.DisplayOffWork,
		manager.ID: attendance.DisplayCheckedOut,
		member.ID:  attendance.DisplayWorking,
		other.ID:   attendance.DisplayAway,
	}, byUser)
	assert.Equal(t, attendance.OverviewCounts{Total: 4, Working: 1, CheckedOut: 1, OffWork: 1, Away: 1}, resp.Stats)

	_, err = f.svc.GetOverview(actorCtx(manager), attendance.OverviewQuery{})
	assert.ErrorIs(t, err, user.ErrAdminAccessRequired)
}

func TestDisplayStatus_Precedence(t *testing.T) {
	checkIn := ptr(kstTime(2025, 3, 10, 9, 0))
	meeting := attendance.WorkStatusMeeting

	tests := []struct {
		name      string
		entry     attendance.OverviewEntry
		allClosed bool
		isToday   bool
		want      attendance.DisplayStatus
	}{
		{"no check-in", attendance.OverviewEntry{RealtimeStatus: &meeting}, true, true, attendance.DisplayOffWork},
		{"checked out beats away", attendance.OverviewEntry{FirstCheckIn: checkIn, RealtimeStatus: &meeting}, true, true, attendance.DisplayCheckedOut},
		{"away only today", attendance.OverviewEntry{FirstCheckIn: checkIn, RealtimeStatus: &meeting}, false, false, attendance.DisplayWorking},
		{"away beats overtime", attendance.OverviewEntry{FirstCheckIn: checkIn, RealtimeStatus: &meeting, IsOvertime: true}, false, true, attendance.DisplayAway},
		{"overtime", attendance.OverviewEntry{FirstCheckIn: checkIn, IsOvertime: true}, false, true, attendance.DisplayOvertime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, displayStatus(tt.entry, tt.allClosed, tt.isToday))
		})
	}
}

// ===== WORK STATUS =====

func TestWorkStatus(t *testing.T) {
	f := newFixture(kstTime(2025, 3, 10, 9, 0))

	st, err := f.svc.GetWorkStatus(actorCtx(member))
	require.NoError(t, err)
	assert.Equal(t, attendance.WorkStatusOffWork, st.Status)
	assert.Nil(t, st.UpdatedAt)

	st, err = f.svc.UpdateWorkStatus(actorCtx(member), attendance.UpdateWorkStatusRequest{Status: "BREAK"})
	require.NoError(t, err)
	assert.Equal(t, attendance.WorkStatusBreak, st.Status)

	_, err = f.svc.UpdateWorkStatus(actorCtx(member), attendance.UpdateWorkStatusRequest{Status: "NAPPING"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}
