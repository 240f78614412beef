package timerecord

import (
	"context"
	"time"
)

// TimeRecordRepository - interface for time_records table
type TimeRecordRepository interface {
	GetByID(ctx context.Context, id string) (TimeRecord, error)
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (TimeRecord, error)
	// GetOrCreate returns the user's record for date, inserting an empty one first if needed.
	GetOrCreate(ctx context.Context, userID string, date time.Time) (TimeRecord, error)
	Update(ctx context.Context, record TimeRecord) error
	ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]TimeRecord, error)
	// MarkSettled stamps settled_at on the record.
	MarkSettled(ctx context.Context, id string, at time.Time) error
	// ListUnsettled returns closed, working-day records since the given date
	// that were never settled.
	ListUnsettled(ctx context.Context, since time.Time) ([]TimeRecord, error)
}
