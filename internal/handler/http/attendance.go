package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/erp-attendance/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)

	ListLogs(w http.ResponseWriter, r *http.Request)
	GetLog(w http.ResponseWriter, r *http.Request)
	UpdateLog(w http.ResponseWriter, r *http.Request)
	DeleteLog(w http.ResponseWriter, r *http.Request)
	CreateLog(w http.ResponseWriter, r *http.Request)

	CorrectCheckout(w http.ResponseWriter, r *http.Request)
	PendingAutoCheckouts(w http.ResponseWriter, r *http.Request)
	AutoCheckoutHistory(w http.ResponseWriter, r *http.Request)
	AutoCheckout(w http.ResponseWriter, r *http.Request)

	Stats(w http.ResponseWriter, r *http.Request)
	TeamStats(w http.ResponseWriter, r *http.Request)
	ExportTeamStats(w http.ResponseWriter, r *http.Request)
	Overview(w http.ResponseWriter, r *http.Request)

	GetWorkStatus(w http.ResponseWriter, r *http.Request)
	UpdateWorkStatus(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	now               func() time.Time
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		now:               time.Now,
	}
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.CheckIn(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check in successful", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.CheckOut(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check out successful", result)
}

// Status implements AttendanceHandler.
func (h *attendanceHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetStatus(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListLogs implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := attendance.LogFilter{
		UserID:    query.Get("user_id"),
		StartDate: query.Get("start_date"),
		EndDate:   query.Get("end_date"),
	}

	logs, err := h.attendanceService.ListLogs(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, logs)
}

// GetLog implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetLog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Attendance ID is required", nil)
		return
	}

	log, err := h.attendanceService.GetLog(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, log)
}

// UpdateLog implements AttendanceHandler.
func (h *attendanceHandlerImpl) UpdateLog(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpdateLogRequest
	if !decodeJSON(w, r, &req, "UpdateLog") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	log, err := h.attendanceService.UpdateLog(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance updated", log)
}

// DeleteLog implements AttendanceHandler.
func (h *attendanceHandlerImpl) DeleteLog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Attendance ID is required", nil)
		return
	}

	if err := h.attendanceService.DeleteLog(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance deleted", nil)
}

// CreateLog implements AttendanceHandler.
func (h *attendanceHandlerImpl) CreateLog(w http.ResponseWriter, r *http.Request) {
	var req attendance.CreateLogRequest
	if !decodeJSON(w, r, &req, "CreateLog") {
		return
	}

	log, err := h.attendanceService.CreateLog(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance created", log)
}

// CorrectCheckout implements AttendanceHandler.
func (h *attendanceHandlerImpl) CorrectCheckout(w http.ResponseWriter, r *http.Request) {
	var req attendance.CorrectCheckoutRequest
	if !decodeJSON(w, r, &req, "CorrectCheckout") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	log, err := h.attendanceService.CorrectCheckout(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	message := "Checkout time corrected"
	if req.SkipCorrection {
		message = "Auto checkout confirmed"
	}
	response.SuccessWithMessage(w, message, log)
}

// PendingAutoCheckouts implements AttendanceHandler.
func (h *attendanceHandlerImpl) PendingAutoCheckouts(w http.ResponseWriter, r *http.Request) {
	logs, err := h.attendanceService.ListPendingAutoCheckouts(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, logs)
}

// AutoCheckoutHistory implements AttendanceHandler.
func (h *attendanceHandlerImpl) AutoCheckoutHistory(w http.ResponseWriter, r *http.Request) {
	logs, err := h.attendanceService.ListAutoCheckoutHistory(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, logs)
}

// AutoCheckout implements AttendanceHandler. Called by the scheduler.
func (h *attendanceHandlerImpl) AutoCheckout(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.AutoCheckout(r.Context(), h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, fmt.Sprintf("Auto checkout processed %d logs", result.Processed), result)
}

// Stats implements AttendanceHandler.
func (h *attendanceHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	query := attendance.StatsQuery{
		UserID: r.URL.Query().Get("user_id"),
		Year:   getIntQueryParam(r, "year", 0),
		Month:  getIntQueryParam(r, "month", 0),
	}

	stats, err := h.attendanceService.GetStats(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, stats)
}

func teamStatsQuery(r *http.Request) attendance.TeamStatsQuery {
	return attendance.TeamStatsQuery{
		Year:   getIntQueryParam(r, "year", 0),
		Month:  getIntQueryParam(r, "month", 0),
		BUCode: r.URL.Query().Get("bu_code"),
	}
}

// TeamStats implements AttendanceHandler.
func (h *attendanceHandlerImpl) TeamStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.attendanceService.GetTeamStats(r.Context(), teamStatsQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, stats)
}

// ExportTeamStats implements AttendanceHandler.
func (h *attendanceHandlerImpl) ExportTeamStats(w http.ResponseWriter, r *http.Request) {
	query := teamStatsQuery(r)

	// Buffer the workbook so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := h.attendanceService.ExportTeamStats(r.Context(), query, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	filename := "team-attendance.xlsx"
	if query.Year != 0 && query.Month != 0 {
		filename = fmt.Sprintf("team-attendance-%04d-%02d.xlsx", query.Year, query.Month)
	}
	response.Attachment(w, filename, xlsxContentType)
	_, _ = buf.WriteTo(w)
}

// Overview implements AttendanceHandler.
func (h *attendanceHandlerImpl) Overview(w http.ResponseWriter, r *http.Request) {
	query := attendance.OverviewQuery{
		Date:   r.URL.Query().Get("date"),
		BUCode: r.URL.Query().Get("bu_code"),
	}

	overview, err := h.attendanceService.GetOverview(r.Context(), query)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, overview)
}

// GetWorkStatus implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetWorkStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.attendanceService.GetWorkStatus(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, status)
}

// UpdateWorkStatus implements AttendanceHandler.
func (h *attendanceHandlerImpl) UpdateWorkStatus(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpdateWorkStatusRequest
	if !decodeJSON(w, r, &req, "UpdateWorkStatus") {
		return
	}

	status, err := h.attendanceService.UpdateWorkStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, status)
}
