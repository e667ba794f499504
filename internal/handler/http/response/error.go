package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/notification"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/user"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// User domain errors
	case errors.Is(err, user.ErrUnauthenticated):
		Unauthorized(w, "Authentication required")
	case errors.Is(err, user.ErrProfileNotFound):
		NotFound(w, "User profile not found")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrAdminAccessRequired),
		errors.Is(err, user.ErrManagerAccessRequired),
		errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrWorkRequestNotFound):
		NotFound(w, "Work request not found")
	case errors.Is(err, attendance.ErrForbidden):
		Forbidden(w, err.Error())
	case errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrNotCheckedIn),
		errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, attendance.ErrNotAutoCheckout),
		errors.Is(err, attendance.ErrCheckoutBeforeCheckin),
		errors.Is(err, attendance.ErrTimeRequired),
		errors.Is(err, attendance.ErrUserNotTracked):
		BadRequest(w, err.Error(), nil)

	// Approval workflow errors
	case errors.Is(err, approval.ErrRequestNotFound):
		NotFound(w, "Request not found")
	case errors.Is(err, approval.ErrRequestNotPending):
		Conflict(w, "Request has already been processed")
	case errors.Is(err, approval.ErrNotAllowedToApprove):
		Forbidden(w, err.Error())
	case errors.Is(err, approval.ErrRejectionReasonRequired),
		errors.Is(err, approval.ErrUnknownKind):
		BadRequest(w, err.Error(), nil)

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrCompensatoryRequestNotFound):
		NotFound(w, "Compensatory request not found")
	case errors.Is(err, leave.ErrUnauthorizedAccess):
		Forbidden(w, err.Error())
	case errors.Is(err, leave.ErrInsufficientBalance),
		errors.Is(err, leave.ErrNoWorkingDays),
		errors.Is(err, leave.ErrCannotCancel):
		BadRequest(w, err.Error(), nil)

	// Notification domain errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, err.Error())
	}
}
