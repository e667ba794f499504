package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type workRequestRepository struct {
	db *database.DB
}

func NewWorkRequestRepository(db *database.DB) attendance.WorkRequestRepository {
	return &workRequestRepository{db: db}
}

const workRequestColumns = `
	wr.id, wr.requester_id, wr.request_type, wr.start_date, wr.end_date, wr.start_time, wr.end_time,
	wr.reason, wr.status, wr.approver_id, wr.approved_at, wr.rejection_reason,
	wr.created_at, wr.updated_at, u.name, u.bu_code`

const workRequestFrom = `
	FROM work_requests wr
	LEFT JOIN app_users u ON u.id = wr.requester_id`

func scanWorkRequest(row pgx.Row) (attendance.WorkRequest, error) {
	var wr attendance.WorkRequest
	err := row.Scan(
		&wr.ID, &wr.RequesterID, &wr.RequestType, &wr.StartDate, &wr.EndDate, &wr.StartTime, &wr.EndTime,
		&wr.Reason, &wr.Status, &wr.ApproverID, &wr.ApprovedAt, &wr.RejectionReason,
		&wr.CreatedAt, &wr.UpdatedAt, &wr.RequesterName, &wr.RequesterBUCode,
	)
	return wr, err
}

// Create implements attendance.WorkRequestRepository.
func (r *workRequestRepository) Create(ctx context.Context, req attendance.WorkRequest) (attendance.WorkRequest, error) {
	q := GetQuerier(ctx, r.db)

	if req.Status == "" {
		req.Status = approval.StatusPending
	}

	query := `
		INSERT INTO work_requests (requester_id, request_type, start_date, end_date, start_time, end_time, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		req.RequesterID,
		string(req.RequestType),
		req.StartDate,
		req.EndDate,
		req.StartTime,
		req.EndTime,
		req.Reason,
		string(req.Status),
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return attendance.WorkRequest{}, fmt.Errorf("failed to create work request: %w", err)
	}

	return req, nil
}

// GetByID implements attendance.WorkRequestRepository.
func (r *workRequestRepository) GetByID(ctx context.Context, id string) (attendance.WorkRequest, error) {
	q := GetQuerier(ctx, r.db)

	wr, err := scanWorkRequest(q.QueryRow(ctx, `SELECT `+workRequestColumns+workRequestFrom+` WHERE wr.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return attendance.WorkRequest{}, attendance.ErrWorkRequestNotFound
		}
		return attendance.WorkRequest{}, fmt.Errorf("failed to get work request: %w", err)
	}

	return wr, nil
}

// List implements attendance.WorkRequestRepository.
func (r *workRequestRepository) List(ctx context.Context, query attendance.WorkRequestQuery) ([]attendance.WorkRequest, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if query.RequesterID != "" {
		add("wr.requester_id = $%d", query.RequesterID)
	}
	if query.Status != "" {
		add("wr.status = $%d", query.Status)
	}
	if query.BUCode != "" {
		add("u.bu_code = $%d", query.BUCode)
	}
	switch query.Kind {
	case approval.KindCorrection:
		add("wr.request_type = $%d", string(attendance.WorkRequestCorrection))
	case approval.KindWork:
		add("wr.request_type <> $%d", string(attendance.WorkRequestCorrection))
	}

	sql := `SELECT ` + workRequestColumns + workRequestFrom
	if len(conditions) > 0 {
		sql += " WHERE " + strings.Join(conditions, " AND ")
	}
	sql += " ORDER BY wr.created_at DESC"

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list work requests: %w", err)
	}
	defer rows.Close()

	var requests []attendance.WorkRequest
	for rows.Next() {
		wr, err := scanWorkRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work request: %w", err)
		}
		requests = append(requests, wr)
	}

	return requests, rows.Err()
}

// LockForDecision implements approval.Store.
func (r *workRequestRepository) LockForDecision(ctx context.Context, id string) (approval.Request, error) {
	q := GetQuerier(ctx, r.db)

	wr, err := scanWorkRequest(q.QueryRow(ctx,
		`SELECT `+workRequestColumns+workRequestFrom+` WHERE wr.id = $1 FOR UPDATE OF wr`, id))
	if err != nil {
		if isNoRows(err) {
			return approval.Request{}, attendance.ErrWorkRequestNotFound
		}
		return approval.Request{}, fmt.Errorf("failed to lock work request: %w", err)
	}

	return approval.Request{
		ID:          wr.ID,
		Kind:        wr.RequestType.Kind(),
		RequesterID: wr.RequesterID,
		RequesterBU: deref(wr.RequesterBUCode),
		State:       wr.State,
		Subject:     &wr,
	}, nil
}

// SaveDecision implements approval.Store.
func (r *workRequestRepository) SaveDecision(ctx context.Context, id string, state approval.State) error {
	return saveDecision(ctx, GetQuerier(ctx, r.db), "work_requests", id, state)
}

// saveDecision writes the approval columns shared by every request table.
func saveDecision(ctx context.Context, q database.Querier, table, id string, state approval.State) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2, approver_id = $3, approved_at = $4, rejection_reason = $5, updated_at = NOW()
		WHERE id = $1
	`, table)

	tag, err := q.Exec(ctx, query, id, string(state.Status), state.ApproverID, state.ApprovedAt, state.RejectionReason)
	if err != nil {
		return fmt.Errorf("failed to save decision on %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return approval.ErrRequestNotFound
	}

	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
