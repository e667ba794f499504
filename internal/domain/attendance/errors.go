package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in errors
	ErrAlreadyCheckedIn  = errors.New("you have already checked in")
	ErrNotCheckedIn      = errors.New("you have not checked in yet today")
	ErrAlreadyCheckedOut = errors.New("you have already checked out")

	// Correction errors
	ErrNotAutoCheckout       = errors.New("only auto checkout records can be corrected")
	ErrCheckoutBeforeCheckin = errors.New("check-out time must be after check-in time")
	ErrTimeRequired          = errors.New("check-in or check-out time is required")

	// General errors
	ErrAttendanceNotFound  = errors.New("attendance record not found")
	ErrForbidden           = errors.New("not allowed to access this attendance record")
	ErrWorkRequestNotFound = errors.New("work request not found")
	ErrUserNotTracked      = errors.New("user does not take part in attendance")
)
