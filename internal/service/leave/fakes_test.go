package leave

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/user"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func actorCtx(u *user.AppUser) context.Context {
	return user.WithActor(context.Background(), u)
}

type passthroughTx struct{ calls int }

func (p *passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

// ===== users =====

type memoryUsers struct {
	users []user.AppUser
}

func (m *memoryUsers) GetByID(ctx context.Context, id string) (user.AppUser, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.AppUser{}, user.ErrUserNotFound
}

func (m *memoryUsers) List(ctx context.Context, filter user.UserFilter) ([]user.AppUser, error) {
	var out []user.AppUser
	for _, u := range m.users {
		switch {
		case filter.ExcludeArtists && u.Role == user.RoleArtist,
			filter.BUCode != nil && u.BU() != *filter.BUCode,
			filter.RequireHireDate && u.HireDate == nil:
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (m *memoryUsers) ListByRole(ctx context.Context, role user.Role, buCode *string) ([]user.AppUser, error) {
	var out []user.AppUser
	for _, u := range m.users {
		if u.Role == role && (buCode == nil || u.BU() == *buCode) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memoryUsers) bu(id string) *string {
	u, err := m.GetByID(context.Background(), id)
	if err != nil {
		return nil
	}
	return u.BUCode
}

// ===== balances and grants =====

type balanceKey struct {
	userID    string
	leaveType leave.LeaveType
	year      int
}

type memoryBalances struct {
	rows map[balanceKey]*leave.Balance
}

func newMemoryBalances() *memoryBalances {
	return &memoryBalances{rows: make(map[balanceKey]*leave.Balance)}
}

func (m *memoryBalances) row(userID string, t leave.LeaveType, year int) *leave.Balance {
	k := balanceKey{userID, t, year}
	b, ok := m.rows[k]
	if !ok {
		b = &leave.Balance{ID: fmt.Sprintf("%s-%s-%d", userID, t, year), UserID: userID, LeaveType: t, Year: year}
		m.rows[k] = b
	}
	return b
}

func (m *memoryBalances) Get(ctx context.Context, userID string, t leave.LeaveType, year int) (*leave.Balance, error) {
	b, ok := m.rows[balanceKey{userID, t, year}]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (m *memoryBalances) list(match func(b leave.Balance) bool) []leave.Balance {
	var out []leave.Balance
	for _, b := range m.rows {
		if match(*b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memoryBalances) ListByUser(ctx context.Context, userID string, year int) ([]leave.Balance, error) {
	return m.list(func(b leave.Balance) bool { return b.UserID == userID && b.Year == year }), nil
}

func (m *memoryBalances) ListByYear(ctx context.Context, year int, userIDs []string) ([]leave.Balance, error) {
	ids := make(map[string]bool)
	for _, id := range userIDs {
		ids[id] = true
	}
	return m.list(func(b leave.Balance) bool { return b.Year == year && ids[b.UserID] }), nil
}

func (m *memoryBalances) AddTotal(ctx context.Context, userID string, t leave.LeaveType, year int, days float64) error {
	m.row(userID, t, year).TotalDays += days
	return nil
}

func (m *memoryBalances) AddUsed(ctx context.Context, userID string, t leave.LeaveType, year int, days float64) error {
	m.row(userID, t, year).UsedDays += days
	return nil
}

type memoryGrants struct {
	grants []leave.Grant
	now    func() time.Time
	fail   map[string]bool
}

func newMemoryGrants(now func() time.Time) *memoryGrants {
	return &memoryGrants{now: now, fail: make(map[string]bool)}
}

func (m *memoryGrants) Create(ctx context.Context, g leave.Grant) (leave.Grant, error) {
	if m.fail[g.UserID] {
		return leave.Grant{}, fmt.Errorf("insert failed")
	}
	g.ID = fmt.Sprintf("grant-%d", len(m.grants)+1)
	if g.GrantedAt.IsZero() {
		g.GrantedAt = m.now()
	}
	m.grants = append(m.grants, g)
	return g, nil
}

func (m *memoryGrants) List(ctx context.Context, q leave.GrantQuery) ([]leave.Grant, error) {
	var out []leave.Grant
	for _, g := range m.grants {
		if (q.UserID == "" || g.UserID == q.UserID) && (q.Year == 0 || g.Year == q.Year) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memoryGrants) Exists(ctx context.Context, userID string, t leave.GrantType, year int, on *time.Time) (bool, error) {
	for _, g := range m.grants {
		if g.UserID != userID || g.GrantType != t || g.Year != year {
			continue
		}
		if on != nil && (g.GrantedAt.Before(*on) || !g.GrantedAt.Before(on.Add(24*time.Hour))) {
			continue
		}
		return true, nil
	}
	return false, nil
}

// ===== requests =====

type memoryLeaveRequests struct {
	requests map[string]leave.LeaveRequest
	users    *memoryUsers
}

func (m *memoryLeaveRequests) join(lr leave.LeaveRequest) leave.LeaveRequest {
	lr.RequesterBUCode = m.users.bu(lr.RequesterID)
	return lr
}

func (m *memoryLeaveRequests) Create(ctx context.Context, r leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.ID = fmt.Sprintf("leave-%d", len(m.requests)+1)
	r.Status = approval.StatusPending
	m.requests[r.ID] = r
	return r, nil
}

func (m *memoryLeaveRequests) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return m.join(r), nil
}

func (m *memoryLeaveRequests) List(ctx context.Context, q leave.RequestQuery) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, r := range m.requests {
		r = m.join(r)
		if matches(q, r.RequesterID, string(r.Status), r.RequesterBUCode) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryLeaveRequests) Delete(ctx context.Context, id string) error {
	if _, ok := m.requests[id]; !ok {
		return leave.ErrLeaveRequestNotFound
	}
	delete(m.requests, id)
	return nil
}

func (m *memoryLeaveRequests) LockForDecision(ctx context.Context, id string) (approval.Request, error) {
	r, err := m.GetByID(ctx, id)
	if err != nil {
		return approval.Request{}, err
	}
	return approval.Request{
		ID: r.ID, Kind: approval.KindLeave, RequesterID: r.RequesterID, RequesterBU: deref(r.RequesterBUCode),
		State: r.State, Subject: &r,
	}, nil
}

func (m *memoryLeaveRequests) SaveDecision(ctx context.Context, id string, state approval.State) error {
	r := m.requests[id]
	r.State = state
	m.requests[id] = r
	return nil
}

type memoryCompensatory struct {
	requests map[string]leave.CompensatoryRequest
	users    *memoryUsers
}

func (m *memoryCompensatory) join(cr leave.CompensatoryRequest) leave.CompensatoryRequest {
	cr.RequesterBUCode = m.users.bu(cr.RequesterID)
	return cr
}

func (m *memoryCompensatory) Create(ctx context.Context, r leave.CompensatoryRequest) (leave.CompensatoryRequest, error) {
	r.ID = fmt.Sprintf("comp-%d", len(m.requests)+1)
	r.Status = approval.StatusPending
	m.requests[r.ID] = r
	return r, nil
}

func (m *memoryCompensatory) GetByID(ctx context.Context, id string) (leave.CompensatoryRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return leave.CompensatoryRequest{}, leave.ErrCompensatoryRequestNotFound
	}
	return m.join(r), nil
}

func (m *memoryCompensatory) List(ctx context.Context, q leave.RequestQuery) ([]leave.CompensatoryRequest, error) {
	var out []leave.CompensatoryRequest
	for _, r := range m.requests {
		r = m.join(r)
		if matches(q, r.RequesterID, string(r.Status), r.RequesterBUCode) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryCompensatory) LockForDecision(ctx context.Context, id string) (approval.Request, error) {
	r, err := m.GetByID(ctx, id)
	if err != nil {
		return approval.Request{}, err
	}
	return approval.Request{
		ID: r.ID, Kind: approval.KindCompensatory, RequesterID: r.RequesterID, RequesterBU: deref(r.RequesterBUCode),
		State: r.State, Subject: &r,
	}, nil
}

func (m *memoryCompensatory) SaveDecision(ctx context.Context, id string, state approval.State) error {
	r := m.requests[id]
	r.State = state
	m.requests[id] = r
	return nil
}

func matches(q leave.RequestQuery, requesterID, status string, bu *string) bool {
	switch {
	case q.RequesterID != "" && requesterID != q.RequesterID,
		q.Status != "" && status != q.Status,
		q.BUCode != "" && deref(bu) != q.BUCode:
		return false
	}
	return true
}

// ===== attendance day marks =====

type dayMark struct {
	userID string
	day    time.Time
	status attendance.Status
}

// markingLogs records SetDayStatus calls; the leave services use nothing else.
type markingLogs struct {
	attendance.AttendanceRepository
	marks []dayMark
}

func (m *markingLogs) SetDayStatus(ctx context.Context, userID string, workDate time.Time, status attendance.Status, reason string) error {
	m.marks = append(m.marks, dayMark{userID, workDate, status})
	return nil
}

// ===== notifications =====

type recordingNotifier struct {
	notification.Service
	sent []notification.CreateNotificationRequest
}

func (r *recordingNotifier) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	r.sent = append(r.sent, req)
	return nil
}

func (r *recordingNotifier) QueueBulkNotification(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	r.sent = append(r.sent, reqs...)
	return nil
}

type recordingOps struct {
	info, errors []string
}

func (r *recordingOps) Info(ctx context.Context, msg string) error {
	r.info = append(r.info, msg)
	return nil
}

func (r *recordingOps) Error(ctx context.Context, msg string) error {
	r.errors = append(r.errors, msg)
	return nil
}
