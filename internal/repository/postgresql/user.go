package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/erp-attendance/internal/domain/user"
	"github.com/cmlabs-hris/erp-attendance/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `id, name, email, role, bu_code, position, hire_date, created_at, updated_at`

func scanUser(row pgx.Row) (user.AppUser, error) {
	var u user.AppUser
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Role,
		&u.BUCode,
		&u.Position,
		&u.HireDate,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.AppUser, error) {
	q := GetQuerier(ctx, r.db)

	u, err := scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM app_users WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return user.AppUser{}, user.ErrProfileNotFound
		}
		return user.AppUser{}, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

// List implements user.UserRepository.
func (r *userRepositoryImpl) List(ctx context.Context, filter user.UserFilter) ([]user.AppUser, error) {
	var conditions []string
	var args []any

	if filter.BUCode != nil {
		args = append(args, *filter.BUCode)
		conditions = append(conditions, fmt.Sprintf("bu_code = $%d", len(args)))
	}
	if filter.ExcludeArtists {
		args = append(args, string(user.RoleArtist))
		conditions = append(conditions, fmt.Sprintf("role <> $%d", len(args)))
	}
	if filter.RequireHireDate {
		conditions = append(conditions, "hire_date IS NOT NULL")
	}

	return r.query(ctx, conditions, args)
}

// ListByRole implements user.UserRepository.
func (r *userRepositoryImpl) ListByRole(ctx context.Context, role user.Role, buCode *string) ([]user.AppUser, error) {
	conditions := []string{"role = $1"}
	args := []any{string(role)}

	if buCode != nil {
		args = append(args, *buCode)
		conditions = append(conditions, fmt.Sprintf("bu_code = $%d", len(args)))
	}

	return r.query(ctx, conditions, args)
}

func (r *userRepositoryImpl) query(ctx context.Context, conditions []string, args []any) ([]user.AppUser, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM app_users`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name ASC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []user.AppUser
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}
