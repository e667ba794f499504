package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/user"
	approvalservice "github.com/cmlabs-hris/erp-attendance/internal/service/approval"
)

const (
	leaveRequestURL   = "/leave/requests"
	compensatoryURL   = "/leave/compensatory"
	compensatoryLabel = "대체휴무 인정"
)

type RequestServiceImpl struct {
	leaves   leave.LeaveRequestRepository
	comps    leave.CompensatoryRepository
	balances leave.BalanceRepository
	grants   leave.GrantRepository
	logs     attendance.AttendanceRepository
	users    user.UserRepository
	workflow *approvalservice.Workflow
	notifier notification.Service
}

// NewRequestService registers the leave and compensatory kinds on workflow.
func NewRequestService(
	leaves leave.LeaveRequestRepository,
	comps leave.CompensatoryRepository,
	balances leave.BalanceRepository,
	grants leave.GrantRepository,
	logs attendance.AttendanceRepository,
	users user.UserRepository,
	workflow *approvalservice.Workflow,
	notifier notification.Service,
) *RequestServiceImpl {
	s := &RequestServiceImpl{
		leaves:   leaves,
		comps:    comps,
		balances: balances,
		grants:   grants,
		logs:     logs,
		users:    users,
		workflow: workflow,
		notifier: notifier,
	}

	workflow.Register(approval.KindLeave, approvalservice.Handler{
		Store:     leaves,
		OnApprove: s.applyLeave,
		Notify:    s.notifyLeaveDecision,
	})
	workflow.Register(approval.KindCompensatory, approvalservice.Handler{
		Store:     comps,
		OnApprove: s.applyCompensatory,
		Notify:    s.notifyCompensatoryDecision,
	})

	return s
}

func toLeaveRequestResponse(lr leave.LeaveRequest) leave.LeaveRequestResponse {
	return leave.LeaveRequestResponse{
		ID:              lr.ID,
		RequesterID:     lr.RequesterID,
		RequesterName:   lr.RequesterName,
		RequesterBUCode: lr.RequesterBUCode,
		LeaveType:       lr.LeaveType,
		StartDate:       lr.StartDate.Format(attendance.DateLayout),
		EndDate:         lr.EndDate.Format(attendance.DateLayout),
		DaysUsed:        lr.DaysUsed,
		Reason:          lr.Reason,
		Approval:        lr.State.Response(),
		CreatedAt:       lr.CreatedAt,
	}
}

func toCompensatoryResponse(cr leave.CompensatoryRequest) leave.CompensatoryResponse {
	return leave.CompensatoryResponse{
		ID:              cr.ID,
		RequesterID:     cr.RequesterID,
		RequesterName:   cr.RequesterName,
		RequesterBUCode: cr.RequesterBUCode,
		WorkDate:        cr.WorkDate.Format(attendance.DateLayout),
		Days:            cr.Days,
		Reason:          cr.Reason,
		Approval:        cr.State.Response(),
		CreatedAt:       cr.CreatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// canView reports whether actor may read a request of requesterID.
func canView(actor *user.AppUser, requesterID string, requesterBU *string) bool {
	return actor.ID == requesterID || user.CanViewTeamAttendance(actor, deref(requesterBU))
}

// requestQuery scopes a list query to what the actor may see: their own
// requests by default, another user's or everyone's only within team scope.
func requestQuery(actor *user.AppUser, filter leave.RequestFilter) (leave.RequestQuery, error) {
	query := leave.RequestQuery{RequesterID: filter.RequesterID, Status: filter.Status}
	if query.RequesterID == "" || query.RequesterID == actor.ID {
		query.RequesterID = actor.ID
		return query, nil
	}
	bu, err := teamScope(actor, "")
	if err != nil {
		return leave.RequestQuery{}, err
	}
	query.BUCode = bu
	return query, nil
}

func (s *RequestServiceImpl) notifyApprovers(ctx context.Context, requester *user.AppUser, entityType, entityID, label, actionURL string) {
	if s.notifier == nil {
		return
	}
	ids, err := approvalservice.ApproverIDs(ctx, s.users, requester.BU(), requester.ID)
	if err != nil {
		slog.WarnContext(ctx, "Failed to resolve approvers", "request_id", entityID, "error", err)
		return
	}

	reqs := make([]notification.CreateNotificationRequest, 0, len(ids))
	for _, id := range ids {
		reqs = append(reqs, notification.CreateNotificationRequest{
			UserID:     id,
			Title:      label + " 요청",
			Message:    fmt.Sprintf("%s님이 %s 요청을 등록했습니다.", requester.Name, label),
			Level:      notification.LevelInfo,
			EntityType: entityType,
			EntityID:   entityID,
			ActionURL:  actionURL,
		})
	}
	if err := s.notifier.QueueBulkNotification(ctx, reqs); err != nil {
		slog.WarnContext(ctx, "Failed to notify approvers", "request_id", entityID, "error", err)
	}
}

// ========================================
// LEAVE REQUESTS
// ========================================

// CreateLeaveRequest files a request after checking the balance of its year
// covers the requested days.
func (s *RequestServiceImpl) CreateLeaveRequest(ctx context.Context, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	requestType := leave.RequestType(req.LeaveType)
	start, _ := time.Parse(attendance.DateLayout, req.StartDate)
	end, _ := time.Parse(attendance.DateLayout, req.EndDate)

	days := leave.DaysUsed(requestType, start, end)
	if days <= 0 {
		return leave.LeaveRequestResponse{}, leave.ErrNoWorkingDays
	}

	balance, err := s.balances.Get(ctx, actor.ID, requestType.BalanceType(), start.Year())
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get leave balance: %w", err)
	}
	remaining := 0.0
	if balance != nil {
		remaining = balance.Remaining()
	}
	if days > remaining {
		return leave.LeaveRequestResponse{}, fmt.Errorf("%w: requested %.1f days, %.1f remaining", leave.ErrInsufficientBalance, days, remaining)
	}

	lr, err := s.leaves.Create(ctx, leave.LeaveRequest{
		RequesterID: actor.ID,
		LeaveType:   requestType,
		StartDate:   start,
		EndDate:     end,
		DaysUsed:    days,
		Reason:      req.Reason,
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	lr.RequesterName = &actor.Name
	lr.RequesterBUCode = actor.BUCode

	slog.InfoContext(ctx, "Leave request created", "request_id", lr.ID, "requester_id", actor.ID, "type", requestType, "days", days)
	s.notifyApprovers(ctx, actor, notification.EntityLeave, lr.ID, requestType.Label(), leaveRequestURL)

	return toLeaveRequestResponse(lr), nil
}

func (s *RequestServiceImpl) ListLeaveRequests(ctx context.Context, filter leave.RequestFilter) ([]leave.LeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	query, err := requestQuery(actor, filter)
	if err != nil {
		return nil, err
	}

	requests, err := s.leaves.List(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, lr := range requests {
		out = append(out, toLeaveRequestResponse(lr))
	}
	return out, nil
}

func (s *RequestServiceImpl) GetLeaveRequest(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	lr, err := s.leaves.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !canView(actor, lr.RequesterID, lr.RequesterBUCode) {
		return leave.LeaveRequestResponse{}, leave.ErrUnauthorizedAccess
	}
	return toLeaveRequestResponse(lr), nil
}

// CancelLeaveRequest deletes the caller's own pending request.
func (s *RequestServiceImpl) CancelLeaveRequest(ctx context.Context, id string) error {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	lr, err := s.leaves.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if lr.RequesterID != actor.ID || !lr.IsPending() {
		return leave.ErrCannotCancel
	}

	if err := s.leaves.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Leave request cancelled", "request_id", id, "requester_id", actor.ID)
	return nil
}

func (s *RequestServiceImpl) ApproveLeaveRequest(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	if _, err := s.workflow.Approve(ctx, approval.KindLeave, id); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return s.reloadLeave(ctx, id)
}

func (s *RequestServiceImpl) RejectLeaveRequest(ctx context.Context, id string, reason string) (leave.LeaveRequestResponse, error) {
	req := approval.RejectRequest{ID: id, RejectionReason: reason}
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if _, err := s.workflow.Reject(ctx, approval.KindLeave, id, reason); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return s.reloadLeave(ctx, id)
}

func (s *RequestServiceImpl) reloadLeave(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	lr, err := s.leaves.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return toLeaveRequestResponse(lr), nil
}

// applyLeave deducts the approved days and marks full leave days as vacation.
func (s *RequestServiceImpl) applyLeave(ctx context.Context, req approval.Request) error {
	lr, ok := req.Subject.(*leave.LeaveRequest)
	if !ok || lr == nil {
		return fmt.Errorf("unexpected subject %T for leave request %s", req.Subject, req.ID)
	}

	if err := s.balances.AddUsed(ctx, lr.RequesterID, lr.LeaveType.BalanceType(), lr.StartDate.Year(), lr.DaysUsed); err != nil {
		return err
	}
	if lr.LeaveType.IsHalfDay() {
		return nil
	}

	reason := lr.LeaveType.Label() + " 승인"
	for _, day := range leave.Weekdays(lr.StartDate, lr.EndDate) {
		if err := s.logs.SetDayStatus(ctx, lr.RequesterID, day, attendance.StatusVacation, reason); err != nil {
			return err
		}
	}
	return nil
}

func (s *RequestServiceImpl) notifyLeaveDecision(ctx context.Context, req approval.Request, action approval.Action) error {
	if s.notifier == nil {
		return nil
	}
	label := "휴가"
	if lr, ok := req.Subject.(*leave.LeaveRequest); ok && lr != nil {
		label = lr.LeaveType.Label()
	}
	return s.notifier.QueueNotification(ctx, approvalservice.DecisionNotification(req, action, label, notification.EntityLeave, leaveRequestURL))
}

// ========================================
// COMPENSATORY REQUESTS
// ========================================

func (s *RequestServiceImpl) CreateCompensatory(ctx context.Context, req leave.CreateCompensatoryRequest) (leave.CompensatoryResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.CompensatoryResponse{}, err
	}
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return leave.CompensatoryResponse{}, err
	}

	workDate, _ := time.Parse(attendance.DateLayout, req.WorkDate)
	cr, err := s.comps.Create(ctx, leave.CompensatoryRequest{
		RequesterID: actor.ID,
		WorkDate:    workDate,
		Days:        req.Days,
		Reason:      req.Reason,
	})
	if err != nil {
		return leave.CompensatoryResponse{}, err
	}
	cr.RequesterName = &actor.Name
	cr.RequesterBUCode = actor.BUCode

	slog.InfoContext(ctx, "Compensatory request created", "request_id", cr.ID, "requester_id", actor.ID, "days", cr.Days)
	s.notifyApprovers(ctx, actor, notification.EntityCompensatory, cr.ID, compensatoryLabel, compensatoryURL)

	return toCompensatoryResponse(cr), nil
}

func (s *RequestServiceImpl) ListCompensatory(ctx context.Context, filter leave.RequestFilter) ([]leave.CompensatoryResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	query, err := requestQuery(actor, filter)
	if err != nil {
		return nil, err
	}

	requests, err := s.comps.List(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]leave.CompensatoryResponse, 0, len(requests))
	for _, cr := range requests {
		out = append(out, toCompensatoryResponse(cr))
	}
	return out, nil
}

func (s *RequestServiceImpl) ApproveCompensatory(ctx context.Context, id string) (leave.CompensatoryResponse, error) {
	if _, err := s.workflow.Approve(ctx, approval.KindCompensatory, id); err != nil {
		return leave.CompensatoryResponse{}, err
	}
	return s.reloadCompensatory(ctx, id)
}

func (s *RequestServiceImpl) RejectCompensatory(ctx context.Context, id string, reason string) (leave.CompensatoryResponse, error) {
	req := approval.RejectRequest{ID: id, RejectionReason: reason}
	if err := req.Validate(); err != nil {
		return leave.CompensatoryResponse{}, err
	}
	if _, err := s.workflow.Reject(ctx, approval.KindCompensatory, id, reason); err != nil {
		return leave.CompensatoryResponse{}, err
	}
	return s.reloadCompensatory(ctx, id)
}

func (s *RequestServiceImpl) reloadCompensatory(ctx context.Context, id string) (leave.CompensatoryResponse, error) {
	cr, err := s.comps.GetByID(ctx, id)
	if err != nil {
		return leave.CompensatoryResponse{}, err
	}
	return toCompensatoryResponse(cr), nil
}

// applyCompensatory credits the approved days to the compensatory balance of
// the work date's year and records the grant.
func (s *RequestServiceImpl) applyCompensatory(ctx context.Context, req approval.Request) error {
	cr, ok := req.Subject.(*leave.CompensatoryRequest)
	if !ok || cr == nil {
		return fmt.Errorf("unexpected subject %T for compensatory request %s", req.Subject, req.ID)
	}

	year := cr.WorkDate.Year()
	reason := fmt.Sprintf("%s 근무 대체휴무", cr.WorkDate.Format(attendance.DateLayout))
	if _, err := s.grants.Create(ctx, leave.Grant{
		UserID:    cr.RequesterID,
		LeaveType: leave.TypeCompensatory,
		Days:      cr.Days,
		GrantType: leave.GrantCompensatoryApproved,
		Reason:    &reason,
		GrantedBy: req.ApproverID,
		Year:      year,
	}); err != nil {
		return err
	}
	return s.balances.AddTotal(ctx, cr.RequesterID, leave.TypeCompensatory, year, cr.Days)
}

func (s *RequestServiceImpl) notifyCompensatoryDecision(ctx context.Context, req approval.Request, action approval.Action) error {
	if s.notifier == nil {
		return nil
	}
	return s.notifier.QueueNotification(ctx, approvalservice.DecisionNotification(req, action, compensatoryLabel, notification.EntityCompensatory, compensatoryURL))
}

// ========================================
// APPROVAL QUEUE
// ========================================

// ListPending returns the pending leave and compensatory requests the caller
// may decide on, leaving out their own and those of requesters without a
// business unit.
func (s *RequestServiceImpl) ListPending(ctx context.Context) (leave.PendingResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return leave.PendingResponse{}, err
	}
	bu, err := teamScope(actor, "")
	if err != nil {
		return leave.PendingResponse{}, err
	}
	query := leave.RequestQuery{Status: string(approval.StatusPending), BUCode: bu}

	leaves, err := s.leaves.List(ctx, query)
	if err != nil {
		return leave.PendingResponse{}, err
	}
	comps, err := s.comps.List(ctx, query)
	if err != nil {
		return leave.PendingResponse{}, err
	}

	resp := leave.PendingResponse{
		LeaveRequests:        []leave.LeaveRequestResponse{},
		CompensatoryRequests: []leave.CompensatoryResponse{},
	}
	for _, lr := range leaves {
		if lr.RequesterID != actor.ID && hasBU(lr.RequesterBUCode) {
			resp.LeaveRequests = append(resp.LeaveRequests, toLeaveRequestResponse(lr))
		}
	}
	for _, cr := range comps {
		if cr.RequesterID != actor.ID && hasBU(cr.RequesterBUCode) {
			resp.CompensatoryRequests = append(resp.CompensatoryRequests, toCompensatoryResponse(cr))
		}
	}
	return resp, nil
}

func hasBU(bu *string) bool {
	return bu != nil && *bu != ""
}
