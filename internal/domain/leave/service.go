package leave

import (
	"context"
	"time"
)

// LeaveService covers balances and grants.
type LeaveService interface {
	GetBalances(ctx context.Context, query BalanceQuery) (BalancesResponse, error)
	ListGrants(ctx context.Context, query GrantQuery) ([]GrantResponse, error)
	CreateGrant(ctx context.Context, req CreateGrantRequest) (GrantResponse, error)
	GetTeamBalances(ctx context.Context, query TeamBalanceQuery) ([]TeamBalanceEntry, error)

	// AutoGenerateYearly grants annual leave for the year of today to users past their first year.
	AutoGenerateYearly(ctx context.Context, today time.Time) (AutoGrantResult, error)
	// AutoGenerateMonthly grants one annual day to first-year users on their monthly hire anniversary.
	AutoGenerateMonthly(ctx context.Context, today time.Time) (AutoGrantResult, error)
}

// RequestService covers leave and compensatory requests.
type RequestService interface {
	CreateLeaveRequest(ctx context.Context, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)
	ListLeaveRequests(ctx context.Context, filter RequestFilter) ([]LeaveRequestResponse, error)
	GetLeaveRequest(ctx context.Context, id string) (LeaveRequestResponse, error)
	CancelLeaveRequest(ctx context.Context, id string) error
	ApproveLeaveRequest(ctx context.Context, id string) (LeaveRequestResponse, error)
	RejectLeaveRequest(ctx context.Context, id string, reason string) (LeaveRequestResponse, error)

	CreateCompensatory(ctx context.Context, req CreateCompensatoryRequest) (CompensatoryResponse, error)
	ListCompensatory(ctx context.Context, filter RequestFilter) ([]CompensatoryResponse, error)
	ApproveCompensatory(ctx context.Context, id string) (CompensatoryResponse, error)
	RejectCompensatory(ctx context.Context, id string, reason string) (CompensatoryResponse, error)

	ListPending(ctx context.Context) (PendingResponse, error)
}
