package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/skponto/skponto-backend-go/internal/domain/user"
	"github.com/skponto/skponto-backend-go/internal/domain/workclass"
	"github.com/skponto/skponto-backend-go/internal/pkg/database"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `id, name, email, role, work_class_id, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	var role string
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&role,
		&u.WorkClassID,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	u.Role = user.Role(role)
	return u, err
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// ListActive implements user.UserRepository.
func (r *userRepositoryImpl) ListActive(ctx context.Context) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE is_active = TRUE ORDER BY name`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type workClassRepositoryImpl struct {
	db *database.DB
}

func NewWorkClassRepository(db *database.DB) workclass.WorkClassRepository {
	return &workClassRepositoryImpl{db: db}
}

// GetByID implements workclass.WorkClassRepository.
func (r *workClassRepositoryImpl) GetByID(ctx context.Context, id string) (workclass.WorkClass, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, daily_work_hours, lunch_hours, is_active, created_at, updated_at
		FROM work_classes
		WHERE id = $1
	`

	var wc workclass.WorkClass
	err := q.QueryRow(ctx, query, id).Scan(
		&wc.ID,
		&wc.Name,
		&wc.DailyWorkHours,
		&wc.LunchHours,
		&wc.IsActive,
		&wc.CreatedAt,
		&wc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return workclass.WorkClass{}, workclass.ErrWorkClassNotFound
		}
		return workclass.WorkClass{}, fmt.Errorf("failed to get work class: %w", err)
	}
	return wc, nil
}
