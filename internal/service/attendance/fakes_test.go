package attendance

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/user"
)

var kst = attendance.KST()

func kstTime(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, kst)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func actorCtx(u *user.AppUser) context.Context {
	return user.WithActor(context.Background(), u)
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
		if filter.ExcludeArtists && u.Role == user.RoleArtist {
			continue
		}
		if filter.BUCode != nil && u.BU() != *filter.BUCode {
			continue
		}
		if filter.RequireHireDate && u.HireDate == nil {
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

// ===== attendance logs =====

type memoryLogs struct {
	mu      sync.Mutex
	logs    map[string]attendance.AttendanceLog
	seq     int
	failIDs map[string]bool
}

func newMemoryLogs(logs ...attendance.AttendanceLog) *memoryLogs {
	m := &memoryLogs{logs: make(map[string]attendance.AttendanceLog), failIDs: make(map[string]bool)}
	for _, l := range logs {
		m.logs[l.ID] = l
	}
	return m
}

func (m *memoryLogs) Create(ctx context.Context, log attendance.AttendanceLog) (attendance.AttendanceLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	log.ID = fmt.Sprintf("log-%d", m.seq)
	m.logs[log.ID] = log
	return log, nil
}

func (m *memoryLogs) GetByID(ctx context.Context, id string) (attendance.AttendanceLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.logs[id]
	if !ok {
		return attendance.AttendanceLog{}, attendance.ErrAttendanceNotFound
	}
	return l, nil
}

func (m *memoryLogs) Update(ctx context.Context, log attendance.AttendanceLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failIDs[log.ID] {
		return fmt.Errorf("update failed")
	}
	if _, ok := m.logs[log.ID]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	m.logs[log.ID] = log
	return nil
}

func (m *memoryLogs) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.logs[id]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	delete(m.logs, id)
	return nil
}

func (m *memoryLogs) sorted() []attendance.AttendanceLog {
	out := make([]attendance.AttendanceLog, 0, len(m.logs))
	for _, l := range m.logs {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].WorkDate.Equal(out[j].WorkDate) {
			return out[i].WorkDate.After(out[j].WorkDate)
		}
		a, b := out[i].CheckInAt, out[j].CheckInAt
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.After(*b)
	})
	return out
}

func (m *memoryLogs) LatestForDate(ctx context.Context, userID string, workDate time.Time) (*attendance.AttendanceLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.sorted() {
		if l.UserID == userID && l.WorkDate.Equal(workDate) {
			return &l, nil
		}
	}
	return nil, nil
}

func (m *memoryLogs) List(ctx context.Context, q attendance.LogQuery) ([]attendance.AttendanceLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make(map[string]bool)
	for _, id := range q.UserIDs {
		ids[id] = true
	}
	var out []attendance.AttendanceLog
	for _, l := range m.sorted() {
		switch {
		case q.UserID != "" && l.UserID != q.UserID,
			len(ids) > 0 && !ids[l.UserID],
			q.WorkDate != nil && !l.WorkDate.Equal(*q.WorkDate),
			q.StartDate != nil && l.WorkDate.Before(*q.StartDate),
			q.EndDate != nil && l.WorkDate.After(*q.EndDate):
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (m *memoryLogs) ListOpen(ctx context.Context, workDate time.Time) ([]attendance.AttendanceLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.AttendanceLog
	for _, l := range m.sorted() {
		if l.WorkDate.Equal(workDate) && l.IsOpen() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memoryLogs) ListAutoCheckouts(ctx context.Context, userID string, unconfirmedOnly bool, limit int) ([]attendance.AttendanceLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.AttendanceLog
	for _, l := range m.sorted() {
		if l.UserID != userID || !l.IsAutoCheckout || (unconfirmedOnly && l.UserConfirmed) {
			continue
		}
		out = append(out, l)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memoryLogs) SetDayStatus(ctx context.Context, userID string, workDate time.Time, status attendance.Status, reason string) error {
	m.mu.Lock()
	found := false
	for id, l := range m.logs {
		if l.UserID == userID && l.WorkDate.Equal(workDate) {
			l.Status = status
			l.IsModified = true
			l.ModificationReason = &reason
			m.logs[id] = l
			found = true
		}
	}
	m.mu.Unlock()
	if found {
		return nil
	}
	_, err := m.Create(ctx, attendance.AttendanceLog{
		UserID: userID, WorkDate: workDate, Status: status, IsModified: true, ModificationReason: &reason,
	})
	return err
}

func (m *memoryLogs) forUser(userID string) []attendance.AttendanceLog {
	logs, _ := m.List(context.Background(), attendance.LogQuery{UserID: userID})
	return logs
}

// ===== work statuses =====

type memoryStatuses struct {
	statuses map[string]attendance.UserWorkStatus
}

func newMemoryStatuses() *memoryStatuses {
	return &memoryStatuses{statuses: make(map[string]attendance.UserWorkStatus)}
}

func (m *memoryStatuses) Get(ctx context.Context, userID string) (*attendance.UserWorkStatus, error) {
	st, ok := m.statuses[userID]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (m *memoryStatuses) Upsert(ctx context.Context, status attendance.UserWorkStatus) error {
	m.statuses[status.UserID] = status
	return nil
}

func (m *memoryStatuses) List(ctx context.Context) ([]attendance.UserWorkStatus, error) {
	var out []attendance.UserWorkStatus
	for _, st := range m.statuses {
		out = append(out, st)
	}
	return out, nil
}

// ===== work requests =====

type memoryWorkRequests struct {
	requests map[string]attendance.WorkRequest
	users    *memoryUsers
	seq      int
}

func newMemoryWorkRequests(users *memoryUsers) *memoryWorkRequests {
	return &memoryWorkRequests{requests: make(map[string]attendance.WorkRequest), users: users}
}

func (m *memoryWorkRequests) join(wr attendance.WorkRequest) attendance.WorkRequest {
	if u, err := m.users.GetByID(context.Background(), wr.RequesterID); err == nil {
		wr.RequesterName = &u.Name
		wr.RequesterBUCode = u.BUCode
	}
	return wr
}

func (m *memoryWorkRequests) Create(ctx context.Context, req attendance.WorkRequest) (attendance.WorkRequest, error) {
	m.seq++
	req.ID = fmt.Sprintf("wr-%d", m.seq)
	if req.Status == "" {
		req.Status = approval.StatusPending
	}
	m.requests[req.ID] = req
	return req, nil
}

func (m *memoryWorkRequests) GetByID(ctx context.Context, id string) (attendance.WorkRequest, error) {
	wr, ok := m.requests[id]
	if !ok {
		return attendance.WorkRequest{}, attendance.ErrWorkRequestNotFound
	}
	return m.join(wr), nil
}

func (m *memoryWorkRequests) List(ctx context.Context, q attendance.WorkRequestQuery) ([]attendance.WorkRequest, error) {
	var out []attendance.WorkRequest
	for _, wr := range m.requests {
		wr = m.join(wr)
		switch {
		case q.RequesterID != "" && wr.RequesterID != q.RequesterID,
			q.Status != "" && string(wr.Status) != q.Status,
			q.BUCode != "" && (wr.RequesterBUCode == nil || *wr.RequesterBUCode != q.BUCode),
			q.Kind != "" && wr.RequestType.Kind() != q.Kind:
			continue
		}
		out = append(out, wr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryWorkRequests) LockForDecision(ctx context.Context, id string) (approval.Request, error) {
	wr, err := m.GetByID(ctx, id)
	if err != nil {
		return approval.Request{}, approval.ErrRequestNotFound
	}
	bu := ""
	if wr.RequesterBUCode != nil {
		bu = *wr.RequesterBUCode
	}
	return approval.Request{
		ID: wr.ID, Kind: wr.RequestType.Kind(), RequesterID: wr.RequesterID, RequesterBU: bu,
		State: wr.State, Subject: &wr,
	}, nil
}

func (m *memoryWorkRequests) SaveDecision(ctx context.Context, id string, state approval.State) error {
	wr := m.requests[id]
	wr.State = state
	m.requests[id] = wr
	return nil
}

type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ===== notifications =====

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification.CreateNotificationRequest
	err  error
}

func (r *recordingNotifier) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, req)
	return nil
}

func (r *recordingNotifier) QueueBulkNotification(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	for _, req := range reqs {
		_ = r.QueueNotification(ctx, req)
	}
	return nil
}

func (r *recordingNotifier) GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	return &notification.NotificationListResponse{}, nil
}

func (r *recordingNotifier) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

func (r *recordingNotifier) MarkAsRead(ctx context.Context, userID string, req notification.MarkAsReadRequest) error {
	return nil
}

func (r *recordingNotifier) MarkAllAsRead(ctx context.Context, userID string) error { return nil }

func (r *recordingNotifier) Delete(ctx context.Context, userID string, notificationID string) error {
	return nil
}

func (r *recordingNotifier) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	ch := make(chan notification.SSEEvent)
	return ch, func() {}
}

func (r *recordingNotifier) Stop() {}

func (r *recordingNotifier) recipients() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, n := range r.sent {
		ids = append(ids, n.UserID)
	}
	return ids
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
