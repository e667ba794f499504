package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `
	lr.id, lr.requester_id, lr.leave_type, lr.start_date, lr.end_date, lr.days_used, lr.reason,
	lr.status, lr.approver_id, lr.approved_at, lr.rejection_reason, lr.created_at, lr.updated_at,
	u.name, u.bu_code`

const leaveRequestFrom = `
	FROM leave_requests lr
	LEFT JOIN app_users u ON u.id = lr.requester_id`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID, &lr.RequesterID, &lr.LeaveType, &lr.StartDate, &lr.EndDate, &lr.DaysUsed, &lr.Reason,
		&lr.Status, &lr.ApproverID, &lr.ApprovedAt, &lr.RejectionReason, &lr.CreatedAt, &lr.UpdatedAt,
		&lr.RequesterName, &lr.RequesterBUCode,
	)
	return lr, err
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	if request.Status == "" {
		request.Status = approval.StatusPending
	}

	query := `
		INSERT INTO leave_requests (requester_id, leave_type, start_date, end_date, days_used, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.RequesterID,
		string(request.LeaveType),
		request.StartDate,
		request.EndDate,
		request.DaysUsed,
		request.Reason,
		string(request.Status),
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return request, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	lr, err := scanLeaveRequest(q.QueryRow(ctx, `SELECT `+leaveRequestColumns+leaveRequestFrom+` WHERE lr.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	return lr, nil
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, query leave.RequestQuery) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	where, args := requestConditions("lr", query)
	sql := `SELECT ` + leaveRequestColumns + leaveRequestFrom + where + ` ORDER BY lr.created_at DESC`

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	requests := make([]leave.LeaveRequest, 0)
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}

	return requests, rows.Err()
}

// Delete implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM leave_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete leave request: %w", err)
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrLeaveRequestNotFound
	}

	return nil
}

// LockForDecision implements approval.Store.
func (r *leaveRequestRepositoryImpl) LockForDecision(ctx context.Context, id string) (approval.Request, error) {
	q := GetQuerier(ctx, r.db)

	lr, err := scanLeaveRequest(q.QueryRow(ctx,
		`SELECT `+leaveRequestColumns+leaveRequestFrom+` WHERE lr.id = $1 FOR UPDATE OF lr`, id))
	if err != nil {
		if isNoRows(err) {
			return approval.Request{}, leave.ErrLeaveRequestNotFound
		}
		return approval.Request{}, fmt.Errorf("failed to lock leave request: %w", err)
	}

	return approval.Request{
		ID:          lr.ID,
		Kind:        approval.KindLeave,
		RequesterID: lr.RequesterID,
		RequesterBU: deref(lr.RequesterBUCode),
		State:       lr.State,
		Subject:     &lr,
	}, nil
}

// SaveDecision implements approval.Store.
func (r *leaveRequestRepositoryImpl) SaveDecision(ctx context.Context, id string, state approval.State) error {
	return saveDecision(ctx, GetQuerier(ctx, r.db), "leave_requests", id, state)
}

// requestConditions builds the WHERE clause shared by leave and compensatory listings.
func requestConditions(alias string, query leave.RequestQuery) (string, []any) {
	var conditions []string
	var args []any

	if query.RequesterID != "" {
		args = append(args, query.RequesterID)
		conditions = append(conditions, fmt.Sprintf("%s.requester_id = $%d", alias, len(args)))
	}
	if query.Status != "" {
		args = append(args, query.Status)
		conditions = append(conditions, fmt.Sprintf("%s.status = $%d", alias, len(args)))
	}
	if query.BUCode != "" {
		args = append(args, query.BUCode)
		conditions = append(conditions, fmt.Sprintf("u.bu_code = $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
