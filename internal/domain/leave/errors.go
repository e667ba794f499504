package leave

import "errors"

var (
	ErrLeaveRequestNotFound        = errors.New("leave request not found")
	ErrCompensatoryRequestNotFound = errors.New("compensatory request not found")
	ErrInsufficientBalance         = errors.New("insufficient leave balance")
	ErrNoWorkingDays               = errors.New("requested period contains no working days")
	ErrCannotCancel                = errors.New("only your own pending requests can be cancelled")
	ErrUnauthorizedAccess          = errors.New("not allowed to access leave data of this user")
)
