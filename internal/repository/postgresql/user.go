package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/worknest/intranet-backend-go/internal/domain/user"
	"github.com/worknest/intranet-backend-go/internal/pkg/database"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.Repository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `id, full_name, email, password_hash, role, reporting_manager_id, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.ReportingManagerID,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return scanUser(q.QueryRow(ctx, query, id))
}

func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return scanUser(q.QueryRow(ctx, query, email))
}

func (r *userRepositoryImpl) GetActiveByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)
	query := fmt.Sprintf(`SELECT %s FROM users WHERE role = $1 AND is_active = true ORDER BY full_name`, userColumns)

	rows, err := q.Query(ctx, query, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepositoryImpl) GetManagerOf(ctx context.Context, employeeID string) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE id = (SELECT reporting_manager_id FROM users WHERE id = $1)
	`, userColumns)
	return scanUser(q.QueryRow(ctx, query, employeeID))
}
