package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/database"
)

type leaveGrantRepositoryImpl struct {
	db *database.DB
}

func NewLeaveGrantRepository(db *database.DB) leave.GrantRepository {
	return &leaveGrantRepositoryImpl{db: db}
}

// Create implements leave.GrantRepository.
func (r *leaveGrantRepositoryImpl) Create(ctx context.Context, grant leave.Grant) (leave.Grant, error) {
	q := GetQuerier(ctx, r.db)

	if grant.GrantedAt.IsZero() {
		grant.GrantedAt = time.Now()
	}

	query := `
		INSERT INTO leave_grants (user_id, leave_type, days, grant_type, reason, granted_by, year, granted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := q.QueryRow(ctx, query,
		grant.UserID,
		string(grant.LeaveType),
		grant.Days,
		string(grant.GrantType),
		grant.Reason,
		grant.GrantedBy,
		grant.Year,
		grant.GrantedAt,
	).Scan(&grant.ID)
	if err != nil {
		return leave.Grant{}, fmt.Errorf("failed to create leave grant: %w", err)
	}

	return grant, nil
}

// List implements leave.GrantRepository.
func (r *leaveGrantRepositoryImpl) List(ctx context.Context, query leave.GrantQuery) ([]leave.Grant, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []any
	if query.UserID != "" {
		args = append(args, query.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if query.Year != 0 {
		args = append(args, query.Year)
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)))
	}

	sql := `SELECT id, user_id, leave_type, days, grant_type, reason, granted_by, year, granted_at FROM leave_grants`
	if len(conditions) > 0 {
		sql += " WHERE " + strings.Join(conditions, " AND ")
	}
	sql += " ORDER BY granted_at DESC"

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave grants: %w", err)
	}
	defer rows.Close()

	grants := make([]leave.Grant, 0)
	for rows.Next() {
		var g leave.Grant
		if err := rows.Scan(&g.ID, &g.UserID, &g.LeaveType, &g.Days, &g.GrantType, &g.Reason, &g.GrantedBy, &g.Year, &g.GrantedAt); err != nil {
			return nil, fmt.Errorf("failed to scan leave grant: %w", err)
		}
		grants = append(grants, g)
	}

	return grants, rows.Err()
}

// Exists implements leave.GrantRepository.
func (r *leaveGrantRepositoryImpl) Exists(ctx context.Context, userID string, grantType leave.GrantType, year int, on *time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT EXISTS (SELECT 1 FROM leave_grants WHERE user_id = $1 AND grant_type = $2 AND year = $3`
	args := []any{userID, string(grantType), year}
	if on != nil {
		query += ` AND granted_at >= $4 AND granted_at < $4 + INTERVAL '1 day'`
		args = append(args, *on)
	}
	query += `)`

	var exists bool
	if err := q.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check leave grant: %w", err)
	}

	return exists, nil
}
