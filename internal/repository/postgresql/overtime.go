package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/skponto/skponto-backend-go/internal/domain/overtime"
	"github.com/skponto/skponto-backend-go/internal/pkg/database"
	"github.com/skponto/skponto-backend-go/internal/pkg/validator"
)

type overtimeRequestRepositoryImpl struct {
	db *database.DB
}

func NewOvertimeRequestRepository(db *database.DB) overtime.RequestRepository {
	return &overtimeRequestRepositoryImpl{db: db}
}

const overtimeRequestColumns = `id, user_id, date, start_time, end_time, estimated_hours, type, justification,
	status, approved_by, approved_at, rejection_reason, actual_hours, multiplier_applied, cancelled_at,
	created_at, updated_at`

func scanOvertimeRequest(row pgx.Row) (overtime.Request, error) {
	var (
		r              overtime.Request
		start, end     string
		otType, status string
	)
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.Date,
		&start,
		&end,
		&r.EstimatedHours,
		&otType,
		&r.Justification,
		&status,
		&r.ApprovedBy,
		&r.ApprovedAt,
		&r.RejectionReason,
		&r.ActualHours,
		&r.MultiplierApplied,
		&r.CancelledAt,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return overtime.Request{}, err
	}
	r.Type = overtime.Type(otType)
	r.Status = overtime.Status(status)
	if r.StartTime, err = validator.ParseClock(start); err != nil {
		return overtime.Request{}, fmt.Errorf("stored start_time: %w", err)
	}
	if r.EndTime, err = validator.ParseClock(end); err != nil {
		return overtime.Request{}, fmt.Errorf("stored end_time: %w", err)
	}
	return r, nil
}

func (r *overtimeRequestRepositoryImpl) getOne(ctx context.Context, query string, id string) (overtime.Request, error) {
	q := GetQuerier(ctx, r.db)
	req, err := scanOvertimeRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.Request{}, overtime.ErrRequestNotFound
		}
		return overtime.Request{}, fmt.Errorf("failed to get overtime request: %w", err)
	}
	return req, nil
}

// Create implements overtime.RequestRepository.
func (r *overtimeRequestRepositoryImpl) Create(ctx context.Context, req overtime.Request) (overtime.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO overtime_requests (
			user_id, date, start_time, end_time, estimated_hours, type, justification,
			status, approved_by, approved_at, actual_hours, multiplier_applied
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + overtimeRequestColumns

	created, err := scanOvertimeRequest(q.QueryRow(ctx, query,
		req.UserID,
		req.Date.Format("2006-01-02"),
		req.StartTime.String(),
		req.EndTime.String(),
		req.EstimatedHours,
		string(req.Type),
		req.Justification,
		string(req.Status),
		req.ApprovedBy,
		req.ApprovedAt,
		req.ActualHours,
		req.MultiplierApplied,
	))
	if err != nil {
		return overtime.Request{}, fmt.Errorf("failed to create overtime request: %w", err)
	}
	return created, nil
}

// GetByID implements overtime.RequestRepository.
func (r *overtimeRequestRepositoryImpl) GetByID(ctx context.Context, id string) (overtime.Request, error) {
	return r.getOne(ctx, `SELECT `+overtimeRequestColumns+` FROM overtime_requests WHERE id = $1`, id)
}

// GetByIDForUpdate implements overtime.RequestRepository.
func (r *overtimeRequestRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (overtime.Request, error) {
	return r.getOne(ctx, `SELECT `+overtimeRequestColumns+` FROM overtime_requests WHERE id = $1 FOR UPDATE`, id)
}

// Update implements overtime.RequestRepository.
func (r *overtimeRequestRepositoryImpl) Update(ctx context.Context, req overtime.Request) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE overtime_requests
		SET status = $1, approved_by = $2, approved_at = $3, rejection_reason = $4,
		    actual_hours = $5, multiplier_applied = $6, cancelled_at = $7, updated_at = NOW()
		WHERE id = $8
	`
	tag, err := q.Exec(ctx, query,
		string(req.Status),
		req.ApprovedBy,
		req.ApprovedAt,
		req.RejectionReason,
		req.ActualHours,
		req.MultiplierApplied,
		req.CancelledAt,
		req.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update overtime request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return overtime.ErrRequestNotFound
	}
	return nil
}

// ListActiveByUserAndDate implements overtime.RequestRepository.
func (r *overtimeRequestRepositoryImpl) ListActiveByUserAndDate(ctx context.Context, userID string, date time.Time) ([]overtime.Request, error) {
	query := `
		SELECT ` + overtimeRequestColumns + `
		FROM overtime_requests
		WHERE user_id = $1 AND date = $2 AND status IN ('PENDING', 'APPROVED')
		ORDER BY start_time
	`
	return r.list(ctx, query, userID, date.Format("2006-01-02"))
}

// SumActiveHours implements overtime.RequestRepository.
func (r *overtimeRequestRepositoryImpl) SumActiveHours(ctx context.Context, userID string, from, to time.Time) (float64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(estimated_hours), 0)
		FROM overtime_requests
		WHERE user_id = $1 AND date BETWEEN $2 AND $3 AND status IN ('PENDING', 'APPROVED')
	`
	var sum float64
	if err := q.QueryRow(ctx, query, userID, from.Format("2006-01-02"), to.Format("2006-01-02")).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum overtime hours: %w", err)
	}
	return sum, nil
}

// List implements overtime.RequestRepository. Newest first.
func (r *overtimeRequestRepositoryImpl) List(ctx context.Context, filter overtime.RequestFilter) ([]overtime.Request, int64, error) {
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
	if filter.From != nil {
		where = append(where, fmt.Sprintf("date >= $%d", argIndex))
		args = append(args, *filter.From)
		argIndex++
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("date <= $%d", argIndex))
		args = append(args, *filter.To)
		argIndex++
	}
	whereClause := "TRUE"
	if len(where) > 0 {
		whereClause = strings.Join(where, " AND ")
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM overtime_requests WHERE %s", whereClause)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count overtime requests: %w", err)
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
		FROM overtime_requests
		WHERE %s
		ORDER BY date DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, overtimeRequestColumns, whereClause, argIndex, argIndex+1)
	args = append(args, limit, (page-1)*limit)

	requests, err := r.list(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

func (r *overtimeRequestRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]overtime.Request, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query overtime requests: %w", err)
	}
	defer rows.Close()

	var requests []overtime.Request
	for rows.Next() {
		req, err := scanOvertimeRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan overtime request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

type overtimeSettingsRepositoryImpl struct {
	db *database.DB
}

func NewOvertimeSettingsRepository(db *database.DB) overtime.SettingsRepository {
	return &overtimeSettingsRepositoryImpl{db: db}
}

const overtimeSettingsColumns = `id, user_id, max_daily_overtime, max_weekly_overtime, max_monthly_overtime,
	auto_approval_limit, requires_approval, multipliers, created_at, updated_at`

func scanOvertimeSettings(row pgx.Row) (overtime.Settings, error) {
	var s overtime.Settings
	var multipliers []byte
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.MaxDailyOvertime,
		&s.MaxWeeklyOvertime,
		&s.MaxMonthlyOvertime,
		&s.AutoApprovalLimit,
		&s.RequiresApproval,
		&multipliers,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return overtime.Settings{}, err
	}
	s.Multipliers = map[overtime.Type]float64{}
	if len(multipliers) > 0 {
		if err := json.Unmarshal(multipliers, &s.Multipliers); err != nil {
			return overtime.Settings{}, fmt.Errorf("failed to unmarshal multipliers: %w", err)
		}
	}
	return s, nil
}

// GetByUserID implements overtime.SettingsRepository.
func (r *overtimeSettingsRepositoryImpl) GetByUserID(ctx context.Context, userID string) (overtime.Settings, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + overtimeSettingsColumns + ` FROM overtime_settings WHERE user_id = $1`
	s, err := scanOvertimeSettings(q.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.Settings{}, overtime.ErrSettingsNotFound
		}
		return overtime.Settings{}, fmt.Errorf("failed to get overtime settings: %w", err)
	}
	return s, nil
}

// CreateIfNotExists implements overtime.SettingsRepository.
func (r *overtimeSettingsRepositoryImpl) CreateIfNotExists(ctx context.Context, s overtime.Settings) (overtime.Settings, error) {
	q := GetQuerier(ctx, r.db)

	multipliers, err := json.Marshal(s.Multipliers)
	if err != nil {
		return overtime.Settings{}, fmt.Errorf("failed to marshal multipliers: %w", err)
	}

	query := `
		INSERT INTO overtime_settings (
			user_id, max_daily_overtime, max_weekly_overtime, max_monthly_overtime,
			auto_approval_limit, requires_approval, multipliers
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := q.Exec(ctx, query,
		s.UserID,
		s.MaxDailyOvertime,
		s.MaxWeeklyOvertime,
		s.MaxMonthlyOvertime,
		s.AutoApprovalLimit,
		s.RequiresApproval,
		multipliers,
	); err != nil {
		return overtime.Settings{}, fmt.Errorf("failed to create overtime settings: %w", err)
	}
	return r.GetByUserID(ctx, s.UserID)
}

// Update implements overtime.SettingsRepository.
func (r *overtimeSettingsRepositoryImpl) Update(ctx context.Context, s overtime.Settings) error {
	q := GetQuerier(ctx, r.db)

	multipliers, err := json.Marshal(s.Multipliers)
	if err != nil {
		return fmt.Errorf("failed to marshal multipliers: %w", err)
	}

	query := `
		UPDATE overtime_settings
		SET max_daily_overtime = $1, max_weekly_overtime = $2, max_monthly_overtime = $3,
		    auto_approval_limit = $4, requires_approval = $5, multipliers = $6, updated_at = NOW()
		WHERE user_id = $7
	`
	tag, err := q.Exec(ctx, query,
		s.MaxDailyOvertime,
		s.MaxWeeklyOvertime,
		s.MaxMonthlyOvertime,
		s.AutoApprovalLimit,
		s.RequiresApproval,
		multipliers,
		s.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update overtime settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return overtime.ErrSettingsNotFound
	}
	return nil
}

type overtimeLimitsRepositoryImpl struct {
	db *database.DB
}

func NewOvertimeLimitsRepository(db *database.DB) overtime.LimitsRepository {
	return &overtimeLimitsRepositoryImpl{db: db}
}

// ListActiveForScopes implements overtime.LimitsRepository.
func (r *overtimeLimitsRepositoryImpl) ListActiveForScopes(ctx context.Context, role string, workClassID *string) ([]overtime.Limits, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, scope_type, scope_value, max_daily_overtime, max_weekly_overtime,
		       max_monthly_overtime, is_active, created_at, updated_at
		FROM overtime_limits
		WHERE is_active = TRUE
		  AND ((scope_type = 'role' AND scope_value = $1)
		    OR (scope_type = 'work_class' AND scope_value = $2))
	`
	rows, err := q.Query(ctx, query, role, workClassID)
	if err != nil {
		return nil, fmt.Errorf("failed to query overtime limits: %w", err)
	}
	defer rows.Close()

	var limits []overtime.Limits
	for rows.Next() {
		var l overtime.Limits
		var scope string
		if err := rows.Scan(
			&l.ID,
			&scope,
			&l.ScopeValue,
			&l.MaxDailyOvertime,
			&l.MaxWeeklyOvertime,
			&l.MaxMonthlyOvertime,
			&l.IsActive,
			&l.CreatedAt,
			&l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan overtime limit: %w", err)
		}
		l.ScopeType = overtime.LimitScope(scope)
		limits = append(limits, l)
	}
	return limits, rows.Err()
}
