package leave

import (
	"context"
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/approval"
)

// BalanceRepository - interface for leave_balances table
type BalanceRepository interface {
	// Get returns nil when the user has no balance row for the type and year.
	Get(ctx context.Context, userID string, leaveType LeaveType, year int) (*Balance, error)
	ListByUser(ctx context.Context, userID string, year int) ([]Balance, error)
	ListByYear(ctx context.Context, year int, userIDs []string) ([]Balance, error)
	// AddTotal adds days to total_days, creating the row when missing.
	AddTotal(ctx context.Context, userID string, leaveType LeaveType, year int, days float64) error
	// AddUsed adds days to used_days, creating the row when missing.
	AddUsed(ctx context.Context, userID string, leaveType LeaveType, year int, days float64) error
}

type GrantQuery struct {
	UserID string
	Year   int
}

// GrantRepository - interface for leave_grants table
type GrantRepository interface {
	Create(ctx context.Context, grant Grant) (Grant, error)
	List(ctx context.Context, query GrantQuery) ([]Grant, error)
	// Exists reports a grant of grantType for userID in year. A non-nil on
	// restricts the match to grants made within the day starting at that instant.
	Exists(ctx context.Context, userID string, grantType GrantType, year int, on *time.Time) (bool, error)
}

type RequestQuery struct {
	RequesterID string
	Status      string
	BUCode      string
}

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	List(ctx context.Context, query RequestQuery) ([]LeaveRequest, error)
	Delete(ctx context.Context, id string) error
	approval.Store
}

// CompensatoryRepository - interface for compensatory_requests table
type CompensatoryRepository interface {
	Create(ctx context.Context, request CompensatoryRequest) (CompensatoryRequest, error)
	GetByID(ctx context.Context, id string) (CompensatoryRequest, error)
	List(ctx context.Context, query RequestQuery) ([]CompensatoryRequest, error)
	approval.Store
}
