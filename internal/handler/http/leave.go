package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/erp-attendance/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	GetBalances(w http.ResponseWriter, r *http.Request)
	ListGrants(w http.ResponseWriter, r *http.Request)
	CreateGrant(w http.ResponseWriter, r *http.Request)
	TeamStats(w http.ResponseWriter, r *http.Request)

	CreateRequest(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	CancelRequest(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	RejectRequest(w http.ResponseWriter, r *http.Request)

	CreateCompensatory(w http.ResponseWriter, r *http.Request)
	ListCompensatory(w http.ResponseWriter, r *http.Request)
	ApproveCompensatory(w http.ResponseWriter, r *http.Request)
	RejectCompensatory(w http.ResponseWriter, r *http.Request)

	Pending(w http.ResponseWriter, r *http.Request)

	AutoGenerateYearly(w http.ResponseWriter, r *http.Request)
	AutoGenerateMonthly(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService   leave.LeaveService
	requestService leave.RequestService
	now            func() time.Time
}

func NewLeaveHandler(leaveService leave.LeaveService, requestService leave.RequestService) LeaveHandler {
	return &LeaveHandlerImpl{
		leaveService:   leaveService,
		requestService: requestService,
		now:            time.Now,
	}
}

// GetBalances implements LeaveHandler.
func (l *LeaveHandlerImpl) GetBalances(w http.ResponseWriter, r *http.Request) {
	query := leave.BalanceQuery{
		UserID:  r.URL.Query().Get("user_id"),
		Year:    getIntQueryParam(r, "year", 0),
		Summary: getBoolQueryParam(r, "summary", false),
	}

	balances, err := l.leaveService.GetBalances(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, balances)
}

// ListGrants implements LeaveHandler.
func (l *LeaveHandlerImpl) ListGrants(w http.ResponseWriter, r *http.Request) {
	query := leave.GrantQuery{
		UserID: r.URL.Query().Get("user_id"),
		Year:   getIntQueryParam(r, "year", 0),
	}

	grants, err := l.leaveService.ListGrants(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, grants)
}

// CreateGrant implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateGrant(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateGrantRequest
	if !decodeJSON(w, r, &req, "CreateGrant") {
		return
	}

	grant, err := l.leaveService.CreateGrant(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave granted", grant)
}

// TeamStats implements LeaveHandler.
func (l *LeaveHandlerImpl) TeamStats(w http.ResponseWriter, r *http.Request) {
	query := leave.TeamBalanceQuery{
		Year:   getIntQueryParam(r, "year", 0),
		BUCode: r.URL.Query().Get("bu_code"),
	}

	entries, err := l.leaveService.GetTeamBalances(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, entries)
}

// CreateRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateLeaveRequestRequest
	if !decodeJSON(w, r, &req, "CreateLeaveRequest") {
		return
	}

	result, err := l.requestService.CreateLeaveRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted", result)
}

func requestFilter(r *http.Request) leave.RequestFilter {
	return leave.RequestFilter{
		RequesterID: r.URL.Query().Get("requester_id"),
		Status:      r.URL.Query().Get("status"),
	}
}

// ListRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	result, err := l.requestService.ListLeaveRequests(r.Context(), requestFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	result, err := l.requestService.GetLeaveRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// CancelRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) CancelRequest(w http.ResponseWriter, r *http.Request) {
	if err := l.requestService.CancelLeaveRequest(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request cancelled", nil)
}

// ApproveRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	result, err := l.requestService.ApproveLeaveRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request approved", result)
}

// RejectRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) RejectRequest(w http.ResponseWriter, r *http.Request) {
	var body rejectBody
	if !decodeJSON(w, r, &body, "RejectLeaveRequest") {
		return
	}

	result, err := l.requestService.RejectLeaveRequest(r.Context(), chi.URLParam(r, "id"), body.RejectionReason)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request rejected", result)
}

// CreateCompensatory implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateCompensatory(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateCompensatoryRequest
	if !decodeJSON(w, r, &req, "CreateCompensatory") {
		return
	}

	result, err := l.requestService.CreateCompensatory(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Compensatory request submitted", result)
}

// ListCompensatory implements LeaveHandler.
func (l *LeaveHandlerImpl) ListCompensatory(w http.ResponseWriter, r *http.Request) {
	result, err := l.requestService.ListCompensatory(r.Context(), requestFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ApproveCompensatory implements LeaveHandler.
func (l *LeaveHandlerImpl) ApproveCompensatory(w http.ResponseWriter, r *http.Request) {
	result, err := l.requestService.ApproveCompensatory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Compensatory request approved", result)
}

// RejectCompensatory implements LeaveHandler.
func (l *LeaveHandlerImpl) RejectCompensatory(w http.ResponseWriter, r *http.Request) {
	var body rejectBody
	if !decodeJSON(w, r, &body, "RejectCompensatory") {
		return
	}

	result, err := l.requestService.RejectCompensatory(r.Context(), chi.URLParam(r, "id"), body.RejectionReason)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Compensatory request rejected", result)
}

// Pending implements LeaveHandler.
func (l *LeaveHandlerImpl) Pending(w http.ResponseWriter, r *http.Request) {
	result, err := l.requestService.ListPending(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// AutoGenerateYearly implements LeaveHandler. Called by the scheduler.
func (l *LeaveHandlerImpl) AutoGenerateYearly(w http.ResponseWriter, r *http.Request) {
	result, err := l.leaveService.AutoGenerateYearly(r.Context(), l.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, fmt.Sprintf("Yearly leave granted to %d users", result.Processed), result)
}

// AutoGenerateMonthly implements LeaveHandler. Called by the scheduler.
func (l *LeaveHandlerImpl) AutoGenerateMonthly(w http.ResponseWriter, r *http.Request) {
	result, err := l.leaveService.AutoGenerateMonthly(r.Context(), l.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, fmt.Sprintf("Monthly leave granted to %d users", result.Processed), result)
}
