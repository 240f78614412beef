package compensation

import (
	"context"
	"time"
)

// CompensationRepository - interface for hour_compensations table
type CompensationRepository interface {
	Create(ctx context.Context, c HourCompensation) (HourCompensation, error)
	GetByID(ctx context.Context, id string) (HourCompensation, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (HourCompensation, error)
	Update(ctx context.Context, c HourCompensation) error
	// ExistsActiveForDate reports a PENDING or APPLIED request of the user on date.
	ExistsActiveForDate(ctx context.Context, userID string, date time.Time) (bool, error)
	List(ctx context.Context, filter CompensationFilter) ([]HourCompensation, int64, error)
}
