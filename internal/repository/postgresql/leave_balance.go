package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

const balanceColumns = `id, user_id, leave_type, year, total_days, used_days, created_at, updated_at`

func collectBalances(rows pgx.Rows) ([]leave.Balance, error) {
	defer rows.Close()

	balances := make([]leave.Balance, 0)
	for rows.Next() {
		var b leave.Balance
		if err := rows.Scan(&b.ID, &b.UserID, &b.LeaveType, &b.Year, &b.TotalDays, &b.UsedDays, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan leave balance: %w", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// Get implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) Get(ctx context.Context, userID string, leaveType leave.LeaveType, year int) (*leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + balanceColumns + ` FROM leave_balances WHERE user_id = $1 AND leave_type = $2 AND year = $3`

	var b leave.Balance
	err := q.QueryRow(ctx, query, userID, string(leaveType), year).
		Scan(&b.ID, &b.UserID, &b.LeaveType, &b.Year, &b.TotalDays, &b.UsedDays, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get leave balance: %w", err)
	}

	return &b, nil
}

// ListByUser implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) ListByUser(ctx context.Context, userID string, year int) ([]leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+balanceColumns+` FROM leave_balances WHERE user_id = $1 AND year = $2 ORDER BY leave_type`, userID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}

	return collectBalances(rows)
}

// ListByYear implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) ListByYear(ctx context.Context, year int, userIDs []string) ([]leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + balanceColumns + ` FROM leave_balances WHERE year = $1`
	args := []any{year}
	if userIDs != nil {
		query += ` AND user_id = ANY($2::uuid[])`
		args = append(args, userIDs)
	}
	query += ` ORDER BY user_id, leave_type`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}

	return collectBalances(rows)
}

// AddTotal implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) AddTotal(ctx context.Context, userID string, leaveType leave.LeaveType, year int, days float64) error {
	return r.add(ctx, "total_days", userID, leaveType, year, days)
}

// AddUsed implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) AddUsed(ctx context.Context, userID string, leaveType leave.LeaveType, year int, days float64) error {
	return r.add(ctx, "used_days", userID, leaveType, year, days)
}

func (r *leaveBalanceRepositoryImpl) add(ctx context.Context, column, userID string, leaveType leave.LeaveType, year int, days float64) error {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		INSERT INTO leave_balances (user_id, leave_type, year, %[1]s, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, leave_type, year)
		DO UPDATE SET %[1]s = leave_balances.%[1]s + EXCLUDED.%[1]s, updated_at = EXCLUDED.updated_at
	`, column)

	if _, err := q.Exec(ctx, query, userID, string(leaveType), year, days, time.Now()); err != nil {
		return fmt.Errorf("failed to update leave balance %s: %w", column, err)
	}

	return nil
}
