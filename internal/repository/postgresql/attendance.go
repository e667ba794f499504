package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	al.id, al.user_id, al.work_date, al.check_in_at, al.check_out_at, al.break_minutes,
	al.is_overtime, al.status, al.is_modified, al.modification_reason,
	al.is_auto_checkout, al.user_confirmed, al.created_at, al.updated_at, u.name`

const attendanceFrom = `
	FROM attendance_logs al
	LEFT JOIN app_users u ON u.id = al.user_id`

func scanAttendanceLog(row pgx.Row) (attendance.AttendanceLog, error) {
	var log attendance.AttendanceLog
	err := row.Scan(
		&log.ID, &log.UserID, &log.WorkDate, &log.CheckInAt, &log.CheckOutAt, &log.BreakMinutes,
		&log.IsOvertime, &log.Status, &log.IsModified, &log.ModificationReason,
		&log.IsAutoCheckout, &log.UserConfirmed, &log.CreatedAt, &log.UpdatedAt, &log.UserName,
	)
	return log, err
}

func collectAttendanceLogs(rows pgx.Rows) ([]attendance.AttendanceLog, error) {
	defer rows.Close()

	var logs []attendance.AttendanceLog
	for rows.Next() {
		log, err := scanAttendanceLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance log: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, log attendance.AttendanceLog) (attendance.AttendanceLog, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_logs (
			user_id, work_date, check_in_at, check_out_at, break_minutes, is_overtime, status,
			is_modified, modification_reason, is_auto_checkout, user_confirmed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		log.UserID,
		log.WorkDate,
		log.CheckInAt,
		log.CheckOutAt,
		log.BreakMinutes,
		log.IsOvertime,
		string(log.Status),
		log.IsModified,
		log.ModificationReason,
		log.IsAutoCheckout,
		log.UserConfirmed,
	).Scan(&log.ID, &log.CreatedAt, &log.UpdatedAt)
	if err != nil {
		return attendance.AttendanceLog{}, fmt.Errorf("failed to create attendance log: %w", err)
	}

	return log, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.AttendanceLog, error) {
	q := GetQuerier(ctx, a.db)

	log, err := scanAttendanceLog(q.QueryRow(ctx, `SELECT `+attendanceColumns+attendanceFrom+` WHERE al.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return attendance.AttendanceLog{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceLog{}, fmt.Errorf("failed to get attendance log: %w", err)
	}

	return log, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, log attendance.AttendanceLog) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_logs
		SET check_in_at = $2, check_out_at = $3, break_minutes = $4, is_overtime = $5, status = $6,
			is_modified = $7, modification_reason = $8, is_auto_checkout = $9, user_confirmed = $10,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		log.ID,
		log.CheckInAt,
		log.CheckOutAt,
		log.BreakMinutes,
		log.IsOvertime,
		string(log.Status),
		log.IsModified,
		log.ModificationReason,
		log.IsAutoCheckout,
		log.UserConfirmed,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// Delete implements attendance.AttendanceRepository.
func (a *attendanceRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_logs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// LatestForDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) LatestForDate(ctx context.Context, userID string, workDate time.Time) (*attendance.AttendanceLog, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + attendanceFrom + `
		WHERE al.user_id = $1 AND al.work_date = $2
		ORDER BY al.check_in_at DESC NULLS LAST, al.created_at DESC
		LIMIT 1
	`

	log, err := scanAttendanceLog(q.QueryRow(ctx, query, userID, workDate))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest attendance log: %w", err)
	}

	return &log, nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, query attendance.LogQuery) ([]attendance.AttendanceLog, error) {
	q := GetQuerier(ctx, a.db)

	var conditions []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if query.UserID != "" {
		add("al.user_id = $%d", query.UserID)
	}
	if len(query.UserIDs) > 0 {
		add("al.user_id = ANY($%d::uuid[])", query.UserIDs)
	}
	if query.WorkDate != nil {
		add("al.work_date = $%d", *query.WorkDate)
	}
	if query.StartDate != nil {
		add("al.work_date >= $%d", *query.StartDate)
	}
	if query.EndDate != nil {
		add("al.work_date <= $%d", *query.EndDate)
	}

	sql := `SELECT ` + attendanceColumns + attendanceFrom
	if len(conditions) > 0 {
		sql += " WHERE " + strings.Join(conditions, " AND ")
	}
	sql += " ORDER BY al.work_date DESC, al.check_in_at DESC NULLS LAST"

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance logs: %w", err)
	}

	return collectAttendanceLogs(rows)
}

// ListOpen implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpen(ctx context.Context, workDate time.Time) ([]attendance.AttendanceLog, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + attendanceFrom + `
		WHERE al.work_date = $1 AND al.check_in_at IS NOT NULL AND al.check_out_at IS NULL
		ORDER BY al.check_in_at ASC
	`

	rows, err := q.Query(ctx, query, workDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list open attendance logs: %w", err)
	}

	return collectAttendanceLogs(rows)
}

// ListAutoCheckouts implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListAutoCheckouts(ctx context.Context, userID string, unconfirmedOnly bool, limit int) ([]attendance.AttendanceLog, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + attendanceFrom + `
		WHERE al.user_id = $1 AND al.is_auto_checkout = true`
	if unconfirmedOnly {
		query += ` AND al.user_confirmed = false`
	}
	query += ` ORDER BY al.work_date DESC LIMIT $2`

	rows, err := q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list auto checkout logs: %w", err)
	}

	return collectAttendanceLogs(rows)
}

// SetDayStatus implements attendance.AttendanceRepository.
func (a *attendanceRepository) SetDayStatus(ctx context.Context, userID string, workDate time.Time, status attendance.Status, reason string) error {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `
		UPDATE attendance_logs
		SET status = $3, is_modified = true, modification_reason = $4, updated_at = NOW()
		WHERE user_id = $1 AND work_date = $2
	`, userID, workDate, string(status), reason)
	if err != nil {
		return fmt.Errorf("failed to set day status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	_, err = q.Exec(ctx, `
		INSERT INTO attendance_logs (user_id, work_date, status, is_modified, modification_reason)
		VALUES ($1, $2, $3, true, $4)
	`, userID, workDate, string(status), reason)
	if err != nil {
		return fmt.Errorf("failed to insert day status: %w", err)
	}

	return nil
}

type workStatusRepository struct {
	db *database.DB
}

func NewWorkStatusRepository(db *database.DB) attendance.WorkStatusRepository {
	return &workStatusRepository{db: db}
}

// Get implements attendance.WorkStatusRepository.
func (r *workStatusRepository) Get(ctx context.Context, userID string) (*attendance.UserWorkStatus, error) {
	q := GetQuerier(ctx, r.db)

	var s attendance.UserWorkStatus
	err := q.QueryRow(ctx, `SELECT user_id, status, updated_at FROM user_work_status WHERE user_id = $1`, userID).
		Scan(&s.UserID, &s.Status, &s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get work status: %w", err)
	}

	return &s, nil
}

// Upsert implements attendance.WorkStatusRepository.
func (r *workStatusRepository) Upsert(ctx context.Context, status attendance.UserWorkStatus) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO user_work_status (user_id, status, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
	`, status.UserID, string(status.Status), status.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert work status: %w", err)
	}

	return nil
}

// List implements attendance.WorkStatusRepository.
func (r *workStatusRepository) List(ctx context.Context) ([]attendance.UserWorkStatus, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT user_id, status, updated_at FROM user_work_status`)
	if err != nil {
		return nil, fmt.Errorf("failed to list work statuses: %w", err)
	}
	defer rows.Close()

	var statuses []attendance.UserWorkStatus
	for rows.Next() {
		var s attendance.UserWorkStatus
		if err := rows.Scan(&s.UserID, &s.Status, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan work status: %w", err)
		}
		statuses = append(statuses, s)
	}

	return statuses, rows.Err()
}
