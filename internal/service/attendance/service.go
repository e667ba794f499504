package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/user"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/slack"
)

const (
	autoCheckoutReason      = "자동 퇴근 처리"
	checkoutCorrectedReason = "퇴근 시간 정정"
	autoCheckoutListLimit   = 30
)

type AttendanceServiceImpl struct {
	logs     attendance.AttendanceRepository
	statuses attendance.WorkStatusRepository
	users    user.UserRepository
	calc     *attendance.Calculator
	notifier notification.Service
	ops      slack.Notifier
	now      func() time.Time
}

func NewAttendanceService(
	logs attendance.AttendanceRepository,
	statuses attendance.WorkStatusRepository,
	users user.UserRepository,
	calc *attendance.Calculator,
	notifier notification.Service,
	ops slack.Notifier,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		logs:     logs,
		statuses: statuses,
		users:    users,
		calc:     calc,
		notifier: notifier,
		ops:      ops,
		now:      time.Now,
	}
}

func (s *AttendanceServiceImpl) policy() attendance.Policy {
	return s.calc.Policy()
}

func (s *AttendanceServiceImpl) toResponse(log attendance.AttendanceLog) attendance.AttendanceLogResponse {
	resp := attendance.AttendanceLogResponse{
		ID:                 log.ID,
		UserID:             log.UserID,
		UserName:           log.UserName,
		WorkDate:           log.WorkDate.Format(attendance.DateLayout),
		CheckInAt:          log.CheckInAt,
		CheckOutAt:         log.CheckOutAt,
		BreakMinutes:       log.BreakMinutes,
		IsOvertime:         log.IsOvertime,
		Status:             log.Status,
		IsModified:         log.IsModified,
		ModificationReason: log.ModificationReason,
		IsAutoCheckout:     log.IsAutoCheckout,
		UserConfirmed:      log.UserConfirmed,
		WorkTimeMinutes:    s.calc.WorkTimeMinutes(log.CheckInAt, log.CheckOutAt),
		CreatedAt:          log.CreatedAt,
		UpdatedAt:          log.UpdatedAt,
	}
	if resp.WorkTimeMinutes != nil {
		resp.WorkTimeLabel = attendance.FormatWorkTime(*resp.WorkTimeMinutes)
	}
	return resp
}

func (s *AttendanceServiceImpl) toResponses(logs []attendance.AttendanceLog) []attendance.AttendanceLogResponse {
	out := make([]attendance.AttendanceLogResponse, 0, len(logs))
	for _, log := range logs {
		out = append(out, s.toResponse(log))
	}
	return out
}

// trackedActor returns the caller, who must take part in attendance.
func trackedActor(ctx context.Context) (*user.AppUser, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.TracksAttendance() {
		return nil, attendance.ErrUserNotTracked
	}
	return actor, nil
}

// authorizeUser resolves the user whose attendance is read or changed and
// checks the actor may do so. An empty userID means the actor.
func (s *AttendanceServiceImpl) authorizeUser(ctx context.Context, actor *user.AppUser, userID string) (*user.AppUser, error) {
	if userID == "" || userID == actor.ID {
		return actor, nil
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.CanAccessAttendanceLog(actor, target.ID, target.BU()) {
		return nil, attendance.ErrForbidden
	}
	return &target, nil
}

// authorizeLog loads a log and checks the actor may access it.
func (s *AttendanceServiceImpl) authorizeLog(ctx context.Context, actor *user.AppUser, id string) (attendance.AttendanceLog, error) {
	log, err := s.logs.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceLog{}, err
	}
	if _, err := s.authorizeUser(ctx, actor, log.UserID); err != nil {
		return attendance.AttendanceLog{}, err
	}
	return log, nil
}

func (s *AttendanceServiceImpl) setWorkStatus(ctx context.Context, userID string, status attendance.WorkStatus) {
	err := s.statuses.Upsert(ctx, attendance.UserWorkStatus{UserID: userID, Status: status, UpdatedAt: s.now()})
	if err != nil {
		slog.WarnContext(ctx, "Failed to update work status", "user_id", userID, "status", status, "error", err)
	}
}

// CheckIn opens a session for today. A second session after checking out is overtime.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context) (attendance.AttendanceLogResponse, error) {
	actor, err := trackedActor(ctx)
	if err != nil {
		return attendance.AttendanceLogResponse{}, err
	}

	now := s.now()
	workDate := s.policy().WorkDate(now)

	latest, err := s.logs.LatestForDate(ctx, actor.ID, workDate)
	if err != nil {
		return attendance.AttendanceLogResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if latest != nil && latest.IsOpen() {
		return attendance.AttendanceLogResponse{}, attendance.ErrAlreadyCheckedIn
	}

	log, err := s.logs.Create(ctx, attendance.AttendanceLog{
		UserID:     actor.ID,
		WorkDate:   workDate,
		CheckInAt:  &now,
		IsOvertime: latest != nil && latest.CheckOutAt != nil,
		Status:     s.calc.DetermineStatus(&now, nil, nil),
	})
	if err != nil {
		return attendance.AttendanceLogResponse{}, fmt.Errorf("failed to check in: %w", err)
	}

	s.setWorkStatus(ctx, actor.ID, attendance.WorkStatusWorking)
	slog.InfoContext(ctx, "Checked in", "user_id", actor.ID, "log_id", log.ID, "status", log.Status, "overtime", log.IsOvertime)

	return s.toResponse(log), nil
}

// CheckOut closes today's open session and recomputes its status.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context) (attendance.AttendanceLogResponse, error) {
	actor, err := trackedActor(ctx)
	if err != nil {
		return attendance.AttendanceLogResponse{}, err
	}

	now := s.now()
	latest, err := s.logs.LatestForDate(ctx, actor.ID, s.policy().WorkDate(now))
	if err != nil {
		return attendance.AttendanceLogResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if latest == nil || latest.CheckInAt == nil {
		return attendance.AttendanceLogResponse{}, attendance.ErrNotCheckedIn
	}
	if latest.CheckOutAt != nil {
		return attendance.AttendanceLogResponse{}, attendance.ErrAlreadyCheckedOut
	}

	log := *latest
	log.CheckOutAt = &now
	log.Status = s.calc.StatusOf(log)
	if err := s.logs.Update(ctx, log); err != nil {
		return attendance.AttendanceLogResponse{}, fmt.Errorf("failed to check out: %w", err)
	}

	s.setWorkStatus(ctx, actor.ID, attendance.WorkStatusOffWork)
	slog.InfoContext(ctx, "Checked out", "user_id", actor.ID, "log_id", log.ID, "status", log.Status)

	return s.toResponse(log), nil
}

// GetStatus describes the caller's current day.
func (s *AttendanceServiceImpl) GetStatus(ctx context.Context) (attendance.StatusResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return attendance.StatusResponse{}, err
	}

	now := s.now()
	workDate := s.policy().WorkDate(now)

	latest, err := s.logs.LatestForDate(ctx, actor.ID, workDate)
	if err != nil {
		return attendance.StatusResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	pending, err := s.logs.ListAutoCheckouts(ctx, actor.ID, true, autoCheckoutListLimit)
	if err != nil {
		return attendance.StatusResponse{}, fmt.Errorf("failed to list pending auto checkouts: %w", err)
	}

	resp := attendance.StatusResponse{
		WorkDate:             workDate.Format(attendance.DateLayout),
		Status:               attendance.StatusAbsent,
		PendingAutoCheckouts: s.toResponses(pending),
	}
	if latest != nil {
		resp.IsCheckedIn = latest.CheckInAt != nil
		resp.IsCheckedOut = latest.CheckOutAt != nil
		resp.CheckInAt = latest.CheckInAt
		resp.CheckOutAt = latest.CheckOutAt
		resp.Status = latest.Status
		resp.IsOvertime = latest.IsOvertime
		if latest.IsOpen() {
			resp.WorkTimeMinutes = s.calc.CurrentWorkTimeMinutes(latest.CheckInAt, now)
		} else if m := s.calc.WorkTimeMinutes(latest.CheckInAt, latest.CheckOutAt); m != nil {
			resp.WorkTimeMinutes = *m
		}
	}
	resp.WorkTimeLabel = attendance.FormatWorkTime(resp.WorkTimeMinutes)

	return resp, nil
}

func (s *AttendanceServiceImpl) ListLogs(ctx context.Context, filter attendance.LogFilter) ([]attendance.AttendanceLogResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	target, err := s.authorizeUser(ctx, actor, filter.UserID)
	if err != nil {
		return nil, err
	}

	query := attendance.LogQuery{UserID: target.ID}
	if filter.StartDate != "" {
		start, _ := time.Parse(attendance.DateLayout, filter.StartDate)
		query.StartDate = &start
	}
	if filter.EndDate != "" {
		end, _ := time.Parse(attendance.DateLayout, filter.EndDate)
		query.EndDate = &end
	}

	logs, err := s.logs.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance logs: %w", err)
	}

	return s.toResponses(logs), nil
}

func (s *AttendanceServiceImpl) GetLog(ctx context.Context, id string) (attendance.AttendanceLogResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return attendance.AttendanceLogResponse{}, err
	}
	log, err := s.authorizeLog(ctx, actor, id)
	if err != nil {
		return attendance.AttendanceLogResponse{}, err
	}
	return s.toResponse(log), nil
}

// resolveTimes parses HH:mm values on workDate, keeping current values when
// a value is absent, and checks the result is ordered.
func (s *AttendanceServiceImpl) resolveTimes(workDate time.Time, checkIn, checkOut *time.Time, inClock, outClock *string) (*time.Time, *time.Time, error) {
	if inClock != nil {
		t, err := s.policy().ParseAt(workDate, *inClock)
		if err != nil {
			return nil, nil, err
		}
		checkIn = &t
	}
	if outClock != nil {
		t, err := s.policy().ParseAt(workDate, *outClock)
		if err != nil {
			return nil, nil, err
		}
		checkOut = &t
	}
	if checkIn != nil && checkOut != nil && !checkOut.After(*checkIn) {
		return nil, nil, attendance.ErrCheckoutBeforeCheckin
	}
	return checkIn, checkOut, nil
}

// UpdateLog edits a log. Without an explicit status the status is recomputed.
func (s *AttendanceServiceImpl) UpdateLog(ctx context.Context, req attendance.UpdateLogRequest) (attendance.AttendanceLogResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceLogResponse{}, err
	}
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return attendance.AttendanceLogResponse{}, err
	}
	log, err := s.authorizeLog(ctx, actor, req.ID)
	if err != nil {
		return attendance.AttendanceLogResponse{}, err
	}

	log.CheckInAt, log.CheckOutAt, err = s.resolveTimes(log.WorkDate, log.CheckInAt, log.CheckOutAt, req.CheckInTime, req.CheckOutTime)
	if err != nil {
		return attendance.AttendanceLogResponse{}, err
	}

	if req.Status != nil {
		log.Status = attendance.Status(*req.Status)
	} else if req.CheckInTime != nil || req.CheckOutTime != nil {
		log.Status = s.calc.StatusOf(log)
	}
	if req.ModificationReason != nil {
		log.ModificationReason = req.ModificationReason
	}
	log.IsModified = true

	if err := s.logs.Update(ctx, log); err != nil {
		return attendance.AttendanceLogResponse{}, fmt.Errorf("failed to update attendance log: %w", err)
	}

	slog.InfoContext(ctx, "Attendance log modified", "log_id", log.ID, "user_id", log.UserID, "actor_id", actor.ID)
	return s.toResponse(log), nil
}

// DeleteLog removes a log. Admins only.
func (s *AttendanceServiceImpl) DeleteLog(ctx context.Context, id string) error {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	if !user.IsAdmin(actor) {
		return user.ErrAdminAccessRequired
	}

	if err := s.logs.Delete(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Attendance log deleted", "log_id", id, "actor_id", actor.ID)
	return nil
}

// CreateLog records a day on behalf of a user.
func (s *AttendanceServiceImpl) CreateLog(ctx context.Context, req attendance.CreateLogRequest) (attendance.AttendanceLogResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceLogResponse{}, err
	}
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return attendance.AttendanceLogResponse{}, err
	}

	target, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return attendance.AttendanceLogResponse{}, err
	}
	if !user.CanModifyAttendance(actor, target.ID, target.BU()) {
		return attendance.AttendanceLogResponse{}, attendance.ErrForbidden
	}

	workDate, _ := time.Parse(attendance.DateLayout, req.WorkDate)
	checkIn, checkOut, err := s.resolveTimes(workDate, nil, nil, req.CheckInTime, req.CheckOutTime)
	if err != nil {
		return attendance.AttendanceLogResponse{}, err
	}

	log := attendance.AttendanceLog{
		UserID:             target.ID,
		WorkDate:           workDate,
		CheckInAt:          checkIn,
		CheckOutAt:         checkOut,
		IsModified:         true,
		ModificationReason: req.ModificationReason,
	}
	if req.Status != nil {
		log.Status = attendance.Status(*req.Status)
	} else {
		log.Status = s.calc.StatusOf(log)
	}

	created, err := s.logs.Create(ctx, log)
	if err != nil {
		return attendance.AttendanceLogResponse{}, fmt.Errorf("failed to create attendance log: %w", err)
	}

	slog.InfoContext(ctx, "Attendance log created", "log_id", created.ID, "user_id", target.ID, "actor_id", actor.ID)
	return s.toResponse(created), nil
}

func (s *AttendanceServiceImpl) ListPendingAutoCheckouts(ctx context.Context) ([]attendance.AttendanceLogResponse, error) {
	return s.listAutoCheckouts(ctx, true)
}

func (s *AttendanceServiceImpl) ListAutoCheckoutHistory(ctx context.Context) ([]attendance.AttendanceLogResponse, error) {
	return s.listAutoCheckouts(ctx, false)
}

func (s *AttendanceServiceImpl) listAutoCheckouts(ctx context.Context, unconfirmedOnly bool) ([]attendance.AttendanceLogResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	logs, err := s.logs.ListAutoCheckouts(ctx, actor.ID, unconfirmedOnly, autoCheckoutListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list auto checkouts: %w", err)
	}
	return s.toResponses(logs), nil
}

// CorrectCheckout lets users confirm or fix the checkout time of their own
// auto checked-out log.
func (s *AttendanceServiceImpl) CorrectCheckout(ctx context.Context, req attendance.CorrectCheckoutRequest) (attendance.AttendanceLogResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceLogResponse{}, err
	}
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return attendance.AttendanceLogResponse{}, err
	}

	log, err := s.logs.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceLogResponse{}, err
	}
	if log.UserID != actor.ID {
		return attendance.AttendanceLogResponse{}, attendance.ErrForbidden
	}
	if !log.IsAutoCheckout {
		return attendance.AttendanceLogResponse{}, attendance.ErrNotAutoCheckout
	}

	if !req.SkipCorrection {
		_, checkOut, err := s.resolveTimes(log.WorkDate, log.CheckInAt, nil, nil, req.CheckOutTime)
		if err != nil {
			return attendance.AttendanceLogResponse{}, err
		}
		log.CheckOutAt = checkOut
		log.Status = s.calc.StatusOf(log)
		log.IsModified = true
		reason := checkoutCorrectedReason
		log.ModificationReason = &reason
	}
	log.UserConfirmed = true

	if err := s.logs.Update(ctx, log); err != nil {
		return attendance.AttendanceLogResponse{}, fmt.Errorf("failed to correct checkout: %w", err)
	}

	return s.toResponse(log), nil
}

// AutoCheckout closes every session left open on the work date of now at the
// policy's auto checkout time, or at now when the session started later.
func (s *AttendanceServiceImpl) AutoCheckout(ctx context.Context, now time.Time) (attendance.AutoCheckoutResult, error) {
	policy := s.policy()
	workDate := policy.WorkDate(now)
	result := attendance.AutoCheckoutResult{WorkDate: workDate.Format(attendance.DateLayout), LogIDs: []string{}}

	open, err := s.logs.ListOpen(ctx, workDate)
	if err != nil {
		return result, fmt.Errorf("failed to list open sessions: %w", err)
	}

	reason := autoCheckoutReason
	for _, log := range open {
		checkOut := policy.At(workDate, policy.AutoCheckoutAt)
		if !checkOut.After(*log.CheckInAt) {
			checkOut = now
		}
		log.CheckOutAt = &checkOut
		log.IsAutoCheckout = true
		log.IsModified = true
		log.UserConfirmed = false
		log.ModificationReason = &reason
		log.Status = s.calc.StatusOf(log)

		if err := s.logs.Update(ctx, log); err != nil {
			result.Failed++
			slog.ErrorContext(ctx, "Auto checkout failed", "log_id", log.ID, "user_id", log.UserID, "error", err)
			continue
		}
		result.Processed++
		result.LogIDs = append(result.LogIDs, log.ID)
		s.setWorkStatus(ctx, log.UserID, attendance.WorkStatusOffWork)

		if s.notifier != nil {
			err := s.notifier.QueueNotification(ctx, notification.CreateNotificationRequest{
				UserID:     log.UserID,
				Title:      "자동 퇴근 처리",
				Message:    fmt.Sprintf("%s 퇴근 기록이 없어 %s로 자동 퇴근 처리되었습니다. 실제 퇴근 시간을 확인해 주세요.", result.WorkDate, policy.Local(checkOut).Format("15:04")),
				Level:      notification.LevelWarning,
				EntityType: notification.EntityAttendance,
				EntityID:   log.ID,
				ActionURL:  "/attendance",
			})
			if err != nil {
				slog.WarnContext(ctx, "Failed to notify auto checkout", "log_id", log.ID, "user_id", log.UserID, "error", err)
			}
		}
	}

	slog.InfoContext(ctx, "Auto checkout finished", "work_date", result.WorkDate, "processed", result.Processed, "failed", result.Failed)

	if s.ops != nil && (result.Processed > 0 || result.Failed > 0) {
		msg := fmt.Sprintf("[자동 퇴근] %s: %d건 처리, %d건 실패", result.WorkDate, result.Processed, result.Failed)
		post := s.ops.Info
		if result.Failed > 0 {
			post = s.ops.Error
		}
		if err := post(ctx, msg); err != nil {
			slog.WarnContext(ctx, "Failed to post auto checkout summary", "error", err)
		}
	}

	return result, nil
}

func (s *AttendanceServiceImpl) GetWorkStatus(ctx context.Context) (attendance.WorkStatusResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return attendance.WorkStatusResponse{}, err
	}

	status, err := s.statuses.Get(ctx, actor.ID)
	if err != nil {
		return attendance.WorkStatusResponse{}, fmt.Errorf("failed to get work status: %w", err)
	}
	if status == nil {
		return attendance.WorkStatusResponse{UserID: actor.ID, Status: attendance.WorkStatusOffWork}, nil
	}

	return attendance.WorkStatusResponse{UserID: actor.ID, Status: status.Status, UpdatedAt: &status.UpdatedAt}, nil
}

func (s *AttendanceServiceImpl) UpdateWorkStatus(ctx context.Context, req attendance.UpdateWorkStatusRequest) (attendance.WorkStatusResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.WorkStatusResponse{}, err
	}
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return attendance.WorkStatusResponse{}, err
	}

	status := attendance.UserWorkStatus{UserID: actor.ID, Status: attendance.WorkStatus(req.Status), UpdatedAt: s.now()}
	if err := s.statuses.Upsert(ctx, status); err != nil {
		return attendance.WorkStatusResponse{}, fmt.Errorf("failed to update work status: %w", err)
	}

	return attendance.WorkStatusResponse{UserID: actor.ID, Status: status.Status, UpdatedAt: &status.UpdatedAt}, nil
}
