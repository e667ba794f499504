package attendance

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

const workRequestURL = "/attendance/requests"

type WorkRequestServiceImpl struct {
	requests attendance.WorkRequestRepository
	logs     attendance.AttendanceRepository
	users    user.UserRepository
	calc     *attendance.Calculator
	workflow *approvalservice.Workflow
	notifier notification.Service
}

// NewWorkRequestService registers the work and correction kinds on workflow.
func NewWorkRequestService(
	requests attendance.WorkRequestRepository,
	logs attendance.AttendanceRepository,
	users user.UserRepository,
	calc *attendance.Calculator,
	workflow *approvalservice.Workflow,
	notifier notification.Service,
) *WorkRequestServiceImpl {
	s := &WorkRequestServiceImpl{
		requests: requests,
		logs:     logs,
		users:    users,
		calc:     calc,
		workflow: workflow,
		notifier: notifier,
	}

	workflow.Register(approval.KindWork, approvalservice.Handler{
		Store:     requests,
		OnApprove: s.applyWorkRequest,
		Notify:    s.notifyDecision,
	})
	workflow.Register(approval.KindCorrection, approvalservice.Handler{
		Store:     requests,
		OnApprove: s.applyCorrection,
		Notify:    s.notifyDecision,
	})

	return s
}

func toWorkRequestResponse(wr attendance.WorkRequest) attendance.WorkRequestResponse {
	return attendance.WorkRequestResponse{
		ID:              wr.ID,
		RequesterID:     wr.RequesterID,
		RequesterName:   wr.RequesterName,
		RequesterBUCode: wr.RequesterBUCode,
		RequestType:     wr.RequestType,
		Kind:            wr.RequestType.Kind(),
		StartDate:       wr.StartDate.Format(attendance.DateLayout),
		EndDate:         wr.EndDate.Format(attendance.DateLayout),
		StartTime:       wr.StartTime,
		EndTime:         wr.EndTime,
		Reason:          wr.Reason,
		Approval:        wr.State.Response(),
		CreatedAt:       wr.CreatedAt,
	}
}

func (s *WorkRequestServiceImpl) Create(ctx context.Context, req attendance.CreateWorkRequestRequest) (attendance.WorkRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.WorkRequestResponse{}, err
	}
	actor, err := trackedActor(ctx)
	if err != nil {
		return attendance.WorkRequestResponse{}, err
	}

	start, _ := time.Parse(attendance.DateLayout, req.StartDate)
	end, _ := time.Parse(attendance.DateLayout, req.EndDate)

	wr, err := s.requests.Create(ctx, attendance.WorkRequest{
		RequesterID: actor.ID,
		RequestType: attendance.WorkRequestType(req.RequestType),
		StartDate:   start,
		EndDate:     end,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Reason:      req.Reason,
	})
	if err != nil {
		return attendance.WorkRequestResponse{}, err
	}
	wr.RequesterName = &actor.Name
	wr.RequesterBUCode = actor.BUCode

	slog.InfoContext(ctx, "Work request created", "request_id", wr.ID, "requester_id", actor.ID, "type", wr.RequestType)
	s.notifyApprovers(ctx, actor, wr)

	return toWorkRequestResponse(wr), nil
}

func (s *WorkRequestServiceImpl) notifyApprovers(ctx context.Context, requester *user.AppUser, wr attendance.WorkRequest) {
	if s.notifier == nil {
		return
	}
	ids, err := approvalservice.ApproverIDs(ctx, s.users, requester.BU(), requester.ID)
	if err != nil {
		slog.WarnContext(ctx, "Failed to resolve approvers", "request_id", wr.ID, "error", err)
		return
	}

	label := wr.RequestType.Label()
	reqs := make([]notification.CreateNotificationRequest, 0, len(ids))
	for _, id := range ids {
		reqs = append(reqs, notification.CreateNotificationRequest{
			UserID:     id,
			Title:      label + " 요청",
			Message:    fmt.Sprintf("%s님이 %s 요청을 등록했습니다.", requester.Name, label),
			Level:      notification.LevelInfo,
			EntityType: notification.EntityWorkRequest,
			EntityID:   wr.ID,
			ActionURL:  workRequestURL,
		})
	}
	if err := s.notifier.QueueBulkNotification(ctx, reqs); err != nil {
		slog.WarnContext(ctx, "Failed to notify approvers", "request_id", wr.ID, "error", err)
	}
}

// List returns the caller's requests, or with Approvable the pending requests
// the caller may decide on. Requesters without a business unit cannot be
// approved by anyone, so they never appear in the approvable list.
func (s *WorkRequestServiceImpl) List(ctx context.Context, filter attendance.WorkRequestFilter) ([]attendance.WorkRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := attendance.WorkRequestQuery{RequesterID: filter.RequesterID, Status: filter.Status}
	switch {
	case filter.Approvable:
		bu, err := teamScope(actor, "")
		if err != nil {
			return nil, err
		}
		query.BUCode = bu
		query.Status = string(approval.StatusPending)
	case query.RequesterID == "" || query.RequesterID == actor.ID:
		query.RequesterID = actor.ID
	default:
		bu, err := teamScope(actor, "")
		if err != nil {
			return nil, err
		}
		query.BUCode = bu
	}

	requests, err := s.requests.List(ctx, query)
	if err != nil {
		return nil, err
	}

	out := make([]attendance.WorkRequestResponse, 0, len(requests))
	for _, wr := range requests {
		if filter.Approvable && (wr.RequesterID == actor.ID || !hasBU(wr.RequesterBUCode)) {
			continue
		}
		out = append(out, toWorkRequestResponse(wr))
	}
	return out, nil
}

func (s *WorkRequestServiceImpl) Get(ctx context.Context, id string) (attendance.WorkRequestResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return attendance.WorkRequestResponse{}, err
	}
	wr, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return attendance.WorkRequestResponse{}, err
	}

	bu := ""
	if wr.RequesterBUCode != nil {
		bu = *wr.RequesterBUCode
	}
	if !user.CanAccessAttendanceLog(actor, wr.RequesterID, bu) {
		return attendance.WorkRequestResponse{}, attendance.ErrForbidden
	}
	return toWorkRequestResponse(wr), nil
}

func (s *WorkRequestServiceImpl) Approve(ctx context.Context, id string) (attendance.WorkRequestResponse, error) {
	kind, err := s.kindOf(ctx, id)
	if err != nil {
		return attendance.WorkRequestResponse{}, err
	}
	if _, err := s.workflow.Approve(ctx, kind, id); err != nil {
		return attendance.WorkRequestResponse{}, err
	}
	return s.reload(ctx, id)
}

func (s *WorkRequestServiceImpl) Reject(ctx context.Context, id string, reason string) (attendance.WorkRequestResponse, error) {
	req := approval.RejectRequest{ID: id, RejectionReason: reason}
	if err := req.Validate(); err != nil {
		return attendance.WorkRequestResponse{}, err
	}
	kind, err := s.kindOf(ctx, id)
	if err != nil {
		return attendance.WorkRequestResponse{}, err
	}
	if _, err := s.workflow.Reject(ctx, kind, id, reason); err != nil {
		return attendance.WorkRequestResponse{}, err
	}
	return s.reload(ctx, id)
}

func (s *WorkRequestServiceImpl) kindOf(ctx context.Context, id string) (approval.Kind, error) {
	wr, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return wr.RequestType.Kind(), nil
}

func (s *WorkRequestServiceImpl) reload(ctx context.Context, id string) (attendance.WorkRequestResponse, error) {
	wr, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return attendance.WorkRequestResponse{}, err
	}
	return toWorkRequestResponse(wr), nil
}

func subject(req approval.Request) (*attendance.WorkRequest, error) {
	wr, ok := req.Subject.(*attendance.WorkRequest)
	if !ok || wr == nil {
		return nil, fmt.Errorf("unexpected subject %T for work request %s", req.Subject, req.ID)
	}
	return wr, nil
}

// applyWorkRequest marks the weekdays of an approved remote or external
// request on the requester's attendance.
func (s *WorkRequestServiceImpl) applyWorkRequest(ctx context.Context, req approval.Request) error {
	wr, err := subject(req)
	if err != nil {
		return err
	}
	status, ok := wr.RequestType.DayStatus()
	if !ok {
		return nil
	}

	reason := wr.RequestType.Label() + " 승인"
	for _, day := range leave.Weekdays(wr.StartDate, wr.EndDate) {
		if err := s.logs.SetDayStatus(ctx, wr.RequesterID, day, status, reason); err != nil {
			return err
		}
	}
	return nil
}

// applyCorrection writes the approved times onto the requester's log for the
// work date, creating the log when the day has none.
func (s *WorkRequestServiceImpl) applyCorrection(ctx context.Context, req approval.Request) error {
	wr, err := subject(req)
	if err != nil {
		return err
	}

	log, err := s.logs.LatestForDate(ctx, wr.RequesterID, wr.StartDate)
	if err != nil {
		return err
	}
	create := log == nil
	if create {
		log = &attendance.AttendanceLog{UserID: wr.RequesterID, WorkDate: wr.StartDate}
	}

	policy := s.calc.Policy()
	if wr.StartTime != nil {
		t, err := policy.ParseAt(wr.StartDate, *wr.StartTime)
		if err != nil {
			return err
		}
		log.CheckInAt = &t
	}
	if wr.EndTime != nil {
		t, err := policy.ParseAt(wr.StartDate, *wr.EndTime)
		if err != nil {
			return err
		}
		log.CheckOutAt = &t
	}
	if log.CheckInAt != nil && log.CheckOutAt != nil && !log.CheckOutAt.After(*log.CheckInAt) {
		return attendance.ErrCheckoutBeforeCheckin
	}

	reason := wr.RequestType.Label() + " 승인: " + wr.Reason
	log.Status = s.calc.StatusOf(*log)
	log.IsModified = true
	log.ModificationReason = &reason

	if create {
		_, err = s.logs.Create(ctx, *log)
		return err
	}
	return s.logs.Update(ctx, *log)
}

func (s *WorkRequestServiceImpl) notifyDecision(ctx context.Context, req approval.Request, action approval.Action) error {
	if s.notifier == nil {
		return nil
	}
	wr, err := subject(req)
	if err != nil {
		return err
	}
	n := approvalservice.DecisionNotification(req, action, wr.RequestType.Label(), notification.EntityWorkRequest, workRequestURL)
	return s.notifier.QueueNotification(ctx, n)
}

func hasBU(bu *string) bool {
	return bu != nil && *bu != ""
}
