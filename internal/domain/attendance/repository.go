package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/approval"
)

// LogQuery narrows attendance log listings. Zero values mean "no filter".
type LogQuery struct {
	UserID    string
	UserIDs   []string
	WorkDate  *time.Time
	StartDate *time.Time
	EndDate   *time.Time
}

type AttendanceRepository interface {
	Create(ctx context.Context, log AttendanceLog) (AttendanceLog, error)
	GetByID(ctx context.Context, id string) (AttendanceLog, error)
	Update(ctx context.Context, log AttendanceLog) error
	Delete(ctx context.Context, id string) error

	// LatestForDate returns the most recent log of userID on workDate, or nil.
	LatestForDate(ctx context.Context, userID string, workDate time.Time) (*AttendanceLog, error)

	// List returns logs ordered by work_date desc, check_in_at desc.
	List(ctx context.Context, query LogQuery) ([]AttendanceLog, error)

	// ListOpen returns logs on workDate that were checked in but never checked out.
	ListOpen(ctx context.Context, workDate time.Time) ([]AttendanceLog, error)

	// ListAutoCheckouts returns the newest auto checkout logs of userID.
	ListAutoCheckouts(ctx context.Context, userID string, unconfirmedOnly bool, limit int) ([]AttendanceLog, error)

	// SetDayStatus sets status on every log of userID on workDate, creating an
	// empty log when there is none.
	SetDayStatus(ctx context.Context, userID string, workDate time.Time, status Status, reason string) error
}

type WorkStatusRepository interface {
	Get(ctx context.Context, userID string) (*UserWorkStatus, error)
	Upsert(ctx context.Context, status UserWorkStatus) error
	List(ctx context.Context) ([]UserWorkStatus, error)
}

type WorkRequestQuery struct {
	RequesterID string
	Status      string
	// BUCode restricts to requesters of a business unit.
	BUCode string
	Kind   approval.Kind
}

type WorkRequestRepository interface {
	Create(ctx context.Context, req WorkRequest) (WorkRequest, error)
	GetByID(ctx context.Context, id string) (WorkRequest, error)
	List(ctx context.Context, query WorkRequestQuery) ([]WorkRequest, error)
	approval.Store
}
