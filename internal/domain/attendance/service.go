package attendance

import (
	"context"
	"io"
	"time"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	CheckIn(ctx context.Context) (AttendanceLogResponse, error)
	CheckOut(ctx context.Context) (AttendanceLogResponse, error)
	GetStatus(ctx context.Context) (StatusResponse, error)

	ListLogs(ctx context.Context, filter LogFilter) ([]AttendanceLogResponse, error)
	GetLog(ctx context.Context, id string) (AttendanceLogResponse, error)
	UpdateLog(ctx context.Context, req UpdateLogRequest) (AttendanceLogResponse, error)
	DeleteLog(ctx context.Context, id string) error
	CreateLog(ctx context.Context, req CreateLogRequest) (AttendanceLogResponse, error)

	ListPendingAutoCheckouts(ctx context.Context) ([]AttendanceLogResponse, error)
	ListAutoCheckoutHistory(ctx context.Context) ([]AttendanceLogResponse, error)
	CorrectCheckout(ctx context.Context, req CorrectCheckoutRequest) (AttendanceLogResponse, error)
	// AutoCheckout closes every open session of the work date containing now.
	AutoCheckout(ctx context.Context, now time.Time) (AutoCheckoutResult, error)

	GetStats(ctx context.Context, query StatsQuery) (StatsResponse, error)
	GetTeamStats(ctx context.Context, query TeamStatsQuery) (TeamStatsResponse, error)
	ExportTeamStats(ctx context.Context, query TeamStatsQuery, w io.Writer) error
	GetOverview(ctx context.Context, query OverviewQuery) (OverviewResponse, error)

	GetWorkStatus(ctx context.Context) (WorkStatusResponse, error)
	UpdateWorkStatus(ctx context.Context, req UpdateWorkStatusRequest) (WorkStatusResponse, error)
}

type WorkRequestService interface {
	Create(ctx context.Context, req CreateWorkRequestRequest) (WorkRequestResponse, error)
	List(ctx context.Context, filter WorkRequestFilter) ([]WorkRequestResponse, error)
	Get(ctx context.Context, id string) (WorkRequestResponse, error)
	Approve(ctx context.Context, id string) (WorkRequestResponse, error)
	Reject(ctx context.Context, id string, reason string) (WorkRequestResponse, error)
}
