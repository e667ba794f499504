package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/approval"
	"github.com/cmlabs-hris/erp-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type compensatoryRepositoryImpl struct {
	db *database.DB
}

func NewCompensatoryRepository(db *database.DB) leave.CompensatoryRepository {
	return &compensatoryRepositoryImpl{db: db}
}

const compensatoryColumns = `
	cr.id, cr.requester_id, cr.work_date, cr.days, cr.reason,
	cr.status, cr.approver_id, cr.approved_at, cr.rejection_reason, cr.created_at, cr.updated_at,
	u.name, u.bu_code`

const compensatoryFrom = `
	FROM compensatory_requests cr
	LEFT JOIN app_users u ON u.id = cr.requester_id`

func scanCompensatory(row pgx.Row) (leave.CompensatoryRequest, error) {
	var cr leave.CompensatoryRequest
	err := row.Scan(
		&cr.ID, &cr.RequesterID, &cr.WorkDate, &cr.Days, &cr.Reason,
		&cr.Status, &cr.ApproverID, &cr.ApprovedAt, &cr.RejectionReason, &cr.CreatedAt, &cr.UpdatedAt,
		&cr.RequesterName, &cr.RequesterBUCode,
	)
	return cr, err
}

// Create implements leave.CompensatoryRepository.
func (r *compensatoryRepositoryImpl) Create(ctx context.Context, request leave.CompensatoryRequest) (leave.CompensatoryRequest, error) {
	q := GetQuerier(ctx, r.db)

	if request.Status == "" {
		request.Status = approval.StatusPending
	}

	query := `
		INSERT INTO compensatory_requests (requester_id, work_date, days, reason, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.RequesterID,
		request.WorkDate,
		request.Days,
		request.Reason,
		string(request.Status),
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return leave.CompensatoryRequest{}, fmt.Errorf("failed to create compensatory request: %w", err)
	}

	return request, nil
}

// GetByID implements leave.CompensatoryRepository.
func (r *compensatoryRepositoryImpl) GetByID(ctx context.Context, id string) (leave.CompensatoryRequest, error) {
	q := GetQuerier(ctx, r.db)

	cr, err := scanCompensatory(q.QueryRow(ctx, `SELECT `+compensatoryColumns+compensatoryFrom+` WHERE cr.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return leave.CompensatoryRequest{}, leave.ErrCompensatoryRequestNotFound
		}
		return leave.CompensatoryRequest{}, fmt.Errorf("failed to get compensatory request: %w", err)
	}

	return cr, nil
}

// List implements leave.CompensatoryRepository.
func (r *compensatoryRepositoryImpl) List(ctx context.Context, query leave.RequestQuery) ([]leave.CompensatoryRequest, error) {
	q := GetQuerier(ctx, r.db)

	where, args := requestConditions("cr", query)
	sql := `SELECT ` + compensatoryColumns + compensatoryFrom + where + ` ORDER BY cr.created_at DESC`

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list compensatory requests: %w", err)
	}
	defer rows.Close()

	requests := make([]leave.CompensatoryRequest, 0)
	for rows.Next() {
		cr, err := scanCompensatory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan compensatory request: %w", err)
		}
		requests = append(requests, cr)
	}

	return requests, rows.Err()
}

// LockForDecision implements approval.Store.
func (r *compensatoryRepositoryImpl) LockForDecision(ctx context.Context, id string) (approval.Request, error) {
	q := GetQuerier(ctx, r.db)

	cr, err := scanCompensatory(q.QueryRow(ctx,
		`SELECT `+compensatoryColumns+compensatoryFrom+` WHERE cr.id = $1 FOR UPDATE OF cr`, id))
	if err != nil {
		if isNoRows(err) {
			return approval.Request{}, leave.ErrCompensatoryRequestNotFound
		}
		return approval.Request{}, fmt.Errorf("failed to lock compensatory request: %w", err)
	}

	return approval.Request{
		ID:          cr.ID,
		Kind:        approval.KindCompensatory,
		RequesterID: cr.RequesterID,
		RequesterBU: deref(cr.RequesterBUCode),
		State:       cr.State,
		Subject:     &cr,
	}, nil
}

// SaveDecision implements approval.Store.
func (r *compensatoryRepositoryImpl) SaveDecision(ctx context.Context, id string, state approval.State) error {
	return saveDecision(ctx, GetQuerier(ctx, r.db), "compensatory_requests", id, state)
}
