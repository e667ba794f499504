package http

import (
	"net/http"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/erp-attendance/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type WorkRequestHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Pending(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type workRequestHandlerImpl struct {
	workRequestService attendance.WorkRequestService
}

func NewWorkRequestHandler(workRequestService attendance.WorkRequestService) WorkRequestHandler {
	return &workRequestHandlerImpl{workRequestService: workRequestService}
}

// Create implements WorkRequestHandler.
func (h *workRequestHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req attendance.CreateWorkRequestRequest
	if !decodeJSON(w, r, &req, "CreateWorkRequest") {
		return
	}

	result, err := h.workRequestService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Work request submitted", result)
}

// List implements WorkRequestHandler.
func (h *workRequestHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := attendance.WorkRequestFilter{
		RequesterID: r.URL.Query().Get("requester_id"),
		Status:      r.URL.Query().Get("status"),
	}

	result, err := h.workRequestService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Pending implements WorkRequestHandler.
func (h *workRequestHandlerImpl) Pending(w http.ResponseWriter, r *http.Request) {
	filter := attendance.WorkRequestFilter{
		Status:     string(approval.StatusPending),
		Approvable: true,
	}

	result, err := h.workRequestService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements WorkRequestHandler.
func (h *workRequestHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.workRequestService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Approve implements WorkRequestHandler.
func (h *workRequestHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	result, err := h.workRequestService.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Work request approved", result)
}

// Reject implements WorkRequestHandler.
func (h *workRequestHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	var body rejectBody
	if !decodeJSON(w, r, &body, "RejectWorkRequest") {
		return
	}

	result, err := h.workRequestService.Reject(r.Context(), chi.URLParam(r, "id"), body.RejectionReason)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Work request rejected", result)
}
