package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/user"
	"github.com/cmlabs-hris/erp-attendance/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestUserRepository_ListExcludesArtists(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(setup.DB)

	hire := date(2020, 3, 2)
	memberID := setup.InsertUser(t, "Kim", user.RoleMember, user.BUGrigo, &hire)
	setup.InsertUser(t, "Lee", user.RoleArtist, user.BUGrigo, nil)
	setup.InsertUser(t, "Park", user.RoleManager, user.BUFlow, nil)

	grigo := user.BUGrigo
	users, err := repo.List(ctx, user.UserFilter{BUCode: &grigo, ExcludeArtists: true})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, memberID, users[0].ID)
	assert.Equal(t, user.BUGrigo, users[0].BU())
	require.NotNil(t, users[0].HireDate)
	assert.True(t, users[0].HireDate.Equal(hire))

	managers, err := repo.ListByRole(ctx, user.RoleManager, nil)
	require.NoError(t, err)
	assert.Len(t, managers, 1)

	_, err = repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, user.ErrProfileNotFound)
}

func TestAttendanceRepository_Lifecycle(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)

	userID := setup.InsertUser(t, "Kim", user.RoleMember, user.BUReact, nil)
	workDate := date(2024, 3, 5)
	checkIn := time.Date(2024, 3, 5, 0, 10, 0, 0, time.UTC)

	created, err := repo.Create(ctx, attendance.AttendanceLog{
		UserID: userID, WorkDate: workDate, CheckInAt: &checkIn, Status: attendance.StatusLate,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	open, err := repo.ListOpen(ctx, workDate)
	require.NoError(t, err)
	require.Len(t, open, 1)

	latest, err := repo.LatestForDate(ctx, userID, workDate)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, created.ID, latest.ID)
	require.NotNil(t, latest.UserName)
	assert.Equal(t, "Kim", *latest.UserName)

	checkOut := checkIn.Add(9 * time.Hour)
	latest.CheckOutAt = &checkOut
	latest.IsAutoCheckout = true
	require.NoError(t, repo.Update(ctx, *latest))

	pending, err := repo.ListAutoCheckouts(ctx, userID, true, 30)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	none, err := repo.LatestForDate(ctx, userID, date(2024, 3, 6))
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, repo.SetDayStatus(ctx, userID, date(2024, 3, 7), attendance.StatusVacation, "연차"))
	logs, err := repo.List(ctx, attendance.LogQuery{UserID: userID})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, attendance.StatusVacation, logs[0].Status)
	assert.Nil(t, logs[0].CheckInAt)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestWorkStatusRepository_Upsert(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewWorkStatusRepository(setup.DB)

	userID := setup.InsertUser(t, "Kim", user.RoleMember, user.BUReact, nil)

	missing, err := repo.Get(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	now := time.Now().UTC()
	require.NoError(t, repo.Upsert(ctx, attendance.UserWorkStatus{UserID: userID, Status: attendance.WorkStatusMeeting, UpdatedAt: now}))
	require.NoError(t, repo.Upsert(ctx, attendance.UserWorkStatus{UserID: userID, Status: attendance.WorkStatusBreak, UpdatedAt: now}))

	got, err := repo.Get(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, attendance.WorkStatusBreak, got.Status)
}

func TestWorkRequestRepository_DecisionInTransaction(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewWorkRequestRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)

	requesterID := setup.InsertUser(t, "Kim", user.RoleMember, user.BUAst, nil)
	approverID := setup.InsertUser(t, "Choi", user.RoleManager, user.BUAst, nil)

	in := "09:00"
	created, err := repo.Create(ctx, attendance.WorkRequest{
		RequesterID: requesterID, RequestType: attendance.WorkRequestCorrection,
		StartDate: date(2024, 3, 5), EndDate: date(2024, 3, 5), StartTime: &in, Reason: "forgot",
	})
	require.NoError(t, err)

	err = tx.WithTransaction(ctx, func(ctx context.Context) error {
		req, err := repo.LockForDecision(ctx, created.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, approval.KindCorrection, req.Kind)
		assert.Equal(t, user.BUAst, req.RequesterBU)
		if err := req.State.Approve(approverID, time.Now()); err != nil {
			return err
		}
		return repo.SaveDecision(ctx, req.ID, req.State)
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, got.Status)
	require.NotNil(t, got.ApproverID)
	assert.Equal(t, approverID, *got.ApproverID)

	corrections, err := repo.List(ctx, attendance.WorkRequestQuery{Kind: approval.KindCorrection, BUCode: user.BUAst})
	require.NoError(t, err)
	assert.Len(t, corrections, 1)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	balances := postgresql.NewLeaveBalanceRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)

	userID := setup.InsertUser(t, "Kim", user.RoleMember, user.BUHead, nil)
	boom := errors.New("boom")

	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := balances.AddTotal(ctx, userID, leave.TypeAnnual, 2024, 15); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	b, err := balances.Get(ctx, userID, leave.TypeAnnual, 2024)
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestLeaveRepositories(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	balances := postgresql.NewLeaveBalanceRepository(setup.DB)
	grants := postgresql.NewLeaveGrantRepository(setup.DB)
	requests := postgresql.NewLeaveRequestRepository(setup.DB)
	compensatory := postgresql.NewCompensatoryRepository(setup.DB)

	userID := setup.InsertUser(t, "Kim", user.RoleMember, user.BUModoo, nil)

	require.NoError(t, balances.AddTotal(ctx, userID, leave.TypeAnnual, 2024, 15))
	require.NoError(t, balances.AddUsed(ctx, userID, leave.TypeAnnual, 2024, 1.5))
	b, err := balances.Get(ctx, userID, leave.TypeAnnual, 2024)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, 13.5, b.Remaining())

	grantedAt := time.Date(2024, 3, 5, 1, 0, 0, 0, time.UTC)
	_, err = grants.Create(ctx, leave.Grant{
		UserID: userID, LeaveType: leave.TypeAnnual, Days: 1, GrantType: leave.GrantAutoMonthly, Year: 2024, GrantedAt: grantedAt,
	})
	require.NoError(t, err)

	dayStart := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	exists, err := grants.Exists(ctx, userID, leave.GrantAutoMonthly, 2024, &dayStart)
	require.NoError(t, err)
	assert.True(t, exists)

	nextDay := dayStart.AddDate(0, 0, 1)
	exists, err = grants.Exists(ctx, userID, leave.GrantAutoMonthly, 2024, &nextDay)
	require.NoError(t, err)
	assert.False(t, exists)

	lr, err := requests.Create(ctx, leave.LeaveRequest{
		RequesterID: userID, LeaveType: leave.RequestHalfAM, StartDate: date(2024, 3, 8), EndDate: date(2024, 3, 8), DaysUsed: 0.5, Reason: "병원",
	})
	require.NoError(t, err)
	assert.Equal(t, approval.StatusPending, lr.Status)

	pending, err := requests.List(ctx, leave.RequestQuery{Status: string(approval.StatusPending), BUCode: user.BUModoo})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.NoError(t, requests.Delete(ctx, lr.ID))
	assert.ErrorIs(t, requests.Delete(ctx, lr.ID), leave.ErrLeaveRequestNotFound)

	cr, err := compensatory.Create(ctx, leave.CompensatoryRequest{RequesterID: userID, WorkDate: date(2024, 3, 9), Days: 1, Reason: "주말 근무"})
	require.NoError(t, err)
	locked, err := compensatory.LockForDecision(ctx, cr.ID)
	require.NoError(t, err)
	assert.Equal(t, approval.KindCompensatory, locked.Kind)
	_, ok := locked.Subject.(*leave.CompensatoryRequest)
	assert.True(t, ok)
}

func TestNotificationRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewNotificationRepository(setup.DB)

	userID := setup.InsertUser(t, "Kim", user.RoleMember, user.BUFlow, nil)

	entity := notification.EntityLeave
	require.NoError(t, repo.CreateBatch(ctx, []*notification.Notification{
		{UserID: userID, Title: "a", Message: "m", Level: notification.LevelInfo},
		{UserID: userID, Title: "b", Message: "m", Level: notification.LevelSuccess, EntityType: &entity},
	}))

	list, total, err := repo.GetByUserID(ctx, userID, 1, 10, false)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, list, 2)

	require.NoError(t, repo.MarkAsRead(ctx, []string{list[0].ID}, userID))
	unread, err := repo.GetUnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	require.NoError(t, repo.MarkAllAsRead(ctx, userID))
	unread, err = repo.GetUnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, unread)

	require.NoError(t, repo.Delete(ctx, list[0].ID, userID))
	assert.ErrorIs(t, repo.Delete(ctx, list[0].ID, userID), notification.ErrNotificationNotFound)
}
