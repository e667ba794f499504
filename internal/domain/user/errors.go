package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrProfileNotFound         = errors.New("user profile not found")
	ErrUnauthenticated         = errors.New("unauthenticated")
	ErrAdminAccessRequired     = errors.New("admin access required")
	ErrManagerAccessRequired   = errors.New("manager access required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
