package approval

import "errors"

var (
	ErrRequestNotFound         = errors.New("request not found")
	ErrRequestNotPending       = errors.New("request has already been processed")
	ErrRejectionReasonRequired = errors.New("rejection reason is required")
	ErrNotAllowedToApprove     = errors.New("not allowed to approve requests of this business unit")
	ErrUnknownKind             = errors.New("unknown request kind")
)
