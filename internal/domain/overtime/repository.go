package overtime

import (
	"context"
	"time"
)

// RequestRepository - interface for overtime_requests table
type RequestRepository interface {
	Create(ctx context.Context, req Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (Request, error)
	Update(ctx context.Context, req Request) error
	// ListActiveByUserAndDate returns PENDING and APPROVED requests of the user on date.
	ListActiveByUserAndDate(ctx context.Context, userID string, date time.Time) ([]Request, error)
	// SumActiveHours sums estimated hours of PENDING and APPROVED requests dated within [from, to].
	SumActiveHours(ctx context.Context, userID string, from, to time.Time) (float64, error)
	List(ctx context.Context, filter RequestFilter) ([]Request, int64, error)
}

// SettingsRepository - interface for overtime_settings table
type SettingsRepository interface {
	GetByUserID(ctx context.Context, userID string) (Settings, error)
	// CreateIfNotExists inserts s unless the user already has settings and
	// returns the stored row either way.
	CreateIfNotExists(ctx context.Context, s Settings) (Settings, error)
	Update(ctx context.Context, s Settings) error
}

// LimitsRepository - interface for overtime_limits table
type LimitsRepository interface {
	ListActiveForScopes(ctx context.Context, role string, workClassID *string) ([]Limits, error)
}
