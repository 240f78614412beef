package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/skponto/skponto-backend-go/internal/domain/compensation"
	"github.com/skponto/skponto-backend-go/internal/pkg/database"
)

type compensationRepositoryImpl struct {
	db *database.DB
}

func NewCompensationRepository(db *database.DB) compensation.CompensationRepository {
	return &compensationRepositoryImpl{db: db}
}

const compensationColumns = `id, user_id, requested_date, hours_to_compensate, justification, status,
	approved_by, approved_at, applied_at, cancelled_at, rejection_reason, transaction_id, created_at, updated_at`

func scanCompensation(row pgx.Row) (compensation.HourCompensation, error) {
	var c compensation.HourCompensation
	var status string
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.RequestedDate,
		&c.HoursToCompensate,
		&c.Justification,
		&status,
		&c.ApprovedBy,
		&c.ApprovedAt,
		&c.AppliedAt,
		&c.CancelledAt,
		&c.RejectionReason,
		&c.TransactionID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	c.Status = compensation.Status(status)
	return c, err
}

func (r *compensationRepositoryImpl) getOne(ctx context.Context, query string, id string) (compensation.HourCompensation, error) {
	q := GetQuerier(ctx, r.db)
	c, err := scanCompensation(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return compensation.HourCompensation{}, compensation.ErrCompensationNotFound
		}
		return compensation.HourCompensation{}, fmt.Errorf("failed to get compensation: %w", err)
	}
	return c, nil
}

// Create implements compensation.CompensationRepository.
func (r *compensationRepositoryImpl) Create(ctx context.Context, c compensation.HourCompensation) (compensation.HourCompensation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO hour_compensations (user_id, requested_date, hours_to_compensate, justification, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + compensationColumns

	created, err := scanCompensation(q.QueryRow(ctx, query,
		c.UserID,
		c.RequestedDate.Format("2006-01-02"),
		c.HoursToCompensate,
		c.Justification,
		string(c.Status),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return compensation.HourCompensation{}, compensation.ErrDuplicateForDate
		}
		return compensation.HourCompensation{}, fmt.Errorf("failed to create compensation: %w", err)
	}
	return created, nil
}

// GetByID implements compensation.CompensationRepository.
func (r *compensationRepositoryImpl) GetByID(ctx context.Context, id string) (compensation.HourCompensation, error) {
	return r.getOne(ctx, `SELECT `+compensationColumns+` FROM hour_compensations WHERE id = $1`, id)
}

// GetByIDForUpdate implements compensation.CompensationRepository.
func (r *compensationRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (compensation.HourCompensation, error) {
	return r.getOne(ctx, `SELECT `+compensationColumns+` FROM hour_compensations WHERE id = $1 FOR UPDATE`, id)
}

// Update implements compensation.CompensationRepository.
func (r *compensationRepositoryImpl) Update(ctx context.Context, c compensation.HourCompensation) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE hour_compensations
		SET status = $1, approved_by = $2, approved_at = $3, applied_at = $4, cancelled_at = $5,
		    rejection_reason = $6, transaction_id = $7, updated_at = NOW()
		WHERE id = $8
	`
	tag, err := q.Exec(ctx, query,
		string(c.Status),
		c.ApprovedBy,
		c.ApprovedAt,
		c.AppliedAt,
		c.CancelledAt,
		c.RejectionReason,
		c.TransactionID,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update compensation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return compensation.ErrCompensationNotFound
	}
	return nil
}

// ExistsActiveForDate implements compensation.CompensationRepository.
func (r *compensationRepositoryImpl) ExistsActiveForDate(ctx context.Context, userID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM hour_compensations
			WHERE user_id = $1 AND requested_date = $2 AND status IN ('PENDING', 'APPLIED')
		)
	`
	var exists bool
	if err := q.QueryRow(ctx, query, userID, date.Format("2006-01-02")).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check compensation date: %w", err)
	}
	return exists, nil
}

// List implements compensation.CompensationRepository. Newest first.
func (r *compensationRepositoryImpl) List(ctx context.Context, filter compensation.CompensationFilter) ([]compensation.HourCompensation, int64, error) {
	q := GetQuerier(ctx, r.db)

	var where []string
	var args []interface{}
	argIndex := 1

	if filter.UserID != nil {
		where = append(where, fmt.Sprintf("user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}
	whereClause := "TRUE"
	if len(where) > 0 {
		whereClause = strings.Join(where, " AND ")
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM hour_compensations WHERE %s", whereClause)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count compensations: %w", err)
	}

	page, limit := filter.Page, filter.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM hour_compensations
		WHERE %s
		ORDER BY requested_date DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, compensationColumns, whereClause, argIndex, argIndex+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query compensations: %w", err)
	}
	defer rows.Close()

	var items []compensation.HourCompensation
	for rows.Next() {
		c, err := scanCompensation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan compensation: %w", err)
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}
