package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/xela07ax/traveldesk/internal/domain"
)

const userColumns = `
	id, first_name, last_name, email, password_hash, employee_code,
	department, role, manager_name, manager_id, created_date, is_active`

// GetUserByEmail ищет активного пользователя для логина.
// Отсутствие — не ошибка: возвращаем nil, решение принимает auth-сервис.
func (r *Repo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND is_active = true`

	u, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: query user by email: %w", err)
	}
	return u, nil
}

func (r *Repo) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("User not found")
		}
		return nil, fmt.Errorf("postgres: query user by id: %w", err)
	}
	return u, nil
}

// CreateUser вставляет пользователя, предварительно проверив уникальность
// email и табельного номера.
func (r *Repo) CreateUser(ctx context.Context, u *domain.User) error {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR employee_code = $2)`,
		u.Email, u.EmployeeCode,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("postgres: check user uniqueness: %w", err)
	}
	if exists {
		return domain.NewValidationError("User with this email or employee ID already exists")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.EmployeeCode,
		u.Department, u.Role, u.ManagerName, u.ManagerID, u.CreatedDate, u.IsActive,
	)
	if err != nil {
		return fmt.Errorf("postgres: create user: %w", err)
	}
	return nil
}

// UpdateUser обновляет редактируемые админом поля.
func (r *Repo) UpdateUser(ctx context.Context, u *domain.User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET first_name = $1, last_name = $2, department = $3,
		    role = $4, manager_name = $5, manager_id = $6
		WHERE id = $7`,
		u.FirstName, u.LastName, u.Department, u.Role, u.ManagerName, u.ManagerID, u.ID,
	)
	if err != nil {
		return fmt.Errorf("postgres: update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("User not found")
	}
	return nil
}

// DeactivateUser — мягкое удаление пользователя.
func (r *Repo) DeactivateUser(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: deactivate user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("User not found")
	}
	return nil
}

// AssignRole меняет роль пользователя.
func (r *Repo) AssignRole(ctx context.Context, id string, role domain.UserRole) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		return fmt.Errorf("postgres: assign role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("User not found")
	}
	return nil
}

// CountUsers — общее число пользователей (для админской сводки).
func (r *Repo) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: count users: %w", err)
	}
	return count, nil
}

// UserGrid — страница активных пользователей + общее количество для пагинатора.
func (r *Repo) UserGrid(ctx context.Context, pageNumber, pageSize int) ([]*domain.User, int, error) {
	offset := (pageNumber - 1) * pageSize

	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE is_active = true
		ORDER BY last_name, first_name
		OFFSET $1 LIMIT $2`, offset, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: query user grid: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0, pageSize)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: rows iteration error: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_active = true`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres: count active users: %w", err)
	}

	return users, total, nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u           domain.User
		managerName sql.NullString
		managerID   sql.NullString
	)
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.EmployeeCode,
		&u.Department, &u.Role, &managerName, &managerID, &u.CreatedDate, &u.IsActive,
	)
	if err != nil {
		return nil, err
	}
	if managerName.Valid {
		u.ManagerName = &managerName.String
	}
	if managerID.Valid {
		u.ManagerID = &managerID.String
	}
	return &u, nil
}
