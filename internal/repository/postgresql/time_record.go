package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/skponto/skponto-backend-go/internal/domain/timerecord"
	"github.com/skponto/skponto-backend-go/internal/pkg/database"
)

type timeRecordRepositoryImpl struct {
	db *database.DB
}

func NewTimeRecordRepository(db *database.DB) timerecord.TimeRecordRepository {
	return &timeRecordRepositoryImpl{db: db}
}

const timeRecordColumns = `id, user_id, date, entry, lunch_out, lunch_in, exit, worked_hours, overtime_hours,
	medical_attestation_id, settled_at, created_at, updated_at`

func scanTimeRecord(row pgx.Row) (timerecord.TimeRecord, error) {
	var r timerecord.TimeRecord
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.Date,
		&r.Entry,
		&r.LunchOut,
		&r.LunchIn,
		&r.Exit,
		&r.WorkedHours,
		&r.OvertimeHours,
		&r.MedicalAttestationID,
		&r.SettledAt,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

func (r *timeRecordRepositoryImpl) getOne(ctx context.Context, query string, args ...interface{}) (timerecord.TimeRecord, error) {
	q := GetQuerier(ctx, r.db)
	rec, err := scanTimeRecord(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timerecord.TimeRecord{}, timerecord.ErrTimeRecordNotFound
		}
		return timerecord.TimeRecord{}, fmt.Errorf("failed to get time record: %w", err)
	}
	return rec, nil
}

// GetByID implements timerecord.TimeRecordRepository.
func (r *timeRecordRepositoryImpl) GetByID(ctx context.Context, id string) (timerecord.TimeRecord, error) {
	return r.getOne(ctx, `SELECT `+timeRecordColumns+` FROM time_records WHERE id = $1 FOR UPDATE`, id)
}

// GetByUserAndDate implements timerecord.TimeRecordRepository.
func (r *timeRecordRepositoryImpl) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (timerecord.TimeRecord, error) {
	return r.getOne(ctx,
		`SELECT `+timeRecordColumns+` FROM time_records WHERE user_id = $1 AND date = $2 FOR UPDATE`,
		userID, date.Format("2006-01-02"))
}

// GetOrCreate implements timerecord.TimeRecordRepository.
func (r *timeRecordRepositoryImpl) GetOrCreate(ctx context.Context, userID string, date time.Time) (timerecord.TimeRecord, error) {
	q := GetQuerier(ctx, r.db)

	day := date.Format("2006-01-02")
	insert := `
		INSERT INTO time_records (user_id, date)
		VALUES ($1, $2)
		ON CONFLICT (user_id, date) DO NOTHING
	`
	if _, err := q.Exec(ctx, insert, userID, day); err != nil {
		return timerecord.TimeRecord{}, fmt.Errorf("failed to create time record: %w", err)
	}
	return r.GetByUserAndDate(ctx, userID, date)
}

// Update implements timerecord.TimeRecordRepository.
func (r *timeRecordRepositoryImpl) Update(ctx context.Context, rec timerecord.TimeRecord) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_records
		SET entry = $1, lunch_out = $2, lunch_in = $3, exit = $4,
		    worked_hours = $5, overtime_hours = $6, medical_attestation_id = $7,
		    updated_at = NOW()
		WHERE id = $8
	`
	tag, err := q.Exec(ctx, query,
		rec.Entry,
		rec.LunchOut,
		rec.LunchIn,
		rec.Exit,
		rec.WorkedHours,
		rec.OvertimeHours,
		rec.MedicalAttestationID,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update time record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return timerecord.ErrTimeRecordNotFound
	}
	return nil
}

// MarkSettled implements timerecord.TimeRecordRepository.
func (r *timeRecordRepositoryImpl) MarkSettled(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE time_records SET settled_at = $1, updated_at = NOW() WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark time record settled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return timerecord.ErrTimeRecordNotFound
	}
	return nil
}

// ListByUserID implements timerecord.TimeRecordRepository. Newest first.
func (r *timeRecordRepositoryImpl) ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]timerecord.TimeRecord, error) {
	query := `
		SELECT ` + timeRecordColumns + `
		FROM time_records
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date DESC
	`
	return r.list(ctx, query, userID, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

// ListUnsettled implements timerecord.TimeRecordRepository. Oldest first.
func (r *timeRecordRepositoryImpl) ListUnsettled(ctx context.Context, since time.Time) ([]timerecord.TimeRecord, error) {
	query := `
		SELECT ` + timeRecordColumns + `
		FROM time_records
		WHERE date >= $1
		  AND settled_at IS NULL
		  AND entry IS NOT NULL
		  AND exit IS NOT NULL
		  AND medical_attestation_id IS NULL
		ORDER BY date, user_id
	`
	return r.list(ctx, query, since.Format("2006-01-02"))
}

func (r *timeRecordRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]timerecord.TimeRecord, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query time records: %w", err)
	}
	defer rows.Close()

	var records []timerecord.TimeRecord
	for rows.Next() {
		rec, err := scanTimeRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
