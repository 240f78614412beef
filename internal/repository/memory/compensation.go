package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/skponto/skponto-backend-go/internal/domain/compensation"
)

type compensationRepository struct{ s *Store }

func NewCompensationRepository(s *Store) compensation.CompensationRepository {
	return &compensationRepository{s: s}
}

func (r *compensationRepository) Create(ctx context.Context, c compensation.HourCompensation) (compensation.HourCompensation, error) {
	now := time.Now()
	c.ID = uuid.New().String()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.s.locked(func(st *state) { st.compensations[c.ID] = c })
	return c, nil
}

func (r *compensationRepository) GetByID(ctx context.Context, id string) (compensation.HourCompensation, error) {
	var (
		c  compensation.HourCompensation
		ok bool
	)
	r.s.locked(func(st *state) { c, ok = st.compensations[id] })
	if !ok {
		return compensation.HourCompensation{}, compensation.ErrCompensationNotFound
	}
	return c, nil
}

func (r *compensationRepository) GetByIDForUpdate(ctx context.Context, id string) (compensation.HourCompensation, error) {
	return r.GetByID(ctx, id)
}

func (r *compensationRepository) Update(ctx context.Context, c compensation.HourCompensation) error {
	var err error
	r.s.locked(func(st *state) {
		if _, ok := st.compensations[c.ID]; !ok {
			err = compensation.ErrCompensationNotFound
			return
		}
		c.UpdatedAt = time.Now()
		st.compensations[c.ID] = c
	})
	return err
}

func (r *compensationRepository) ExistsActiveForDate(ctx context.Context, userID string, date time.Time) (bool, error) {
	found := false
	r.s.locked(func(st *state) {
		for _, c := range st.compensations {
			if c.UserID == userID && sameDay(c.RequestedDate, date) &&
				(c.Status == compensation.StatusPending || c.Status == compensation.StatusApplied) {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (r *compensationRepository) List(ctx context.Context, filter compensation.CompensationFilter) ([]compensation.HourCompensation, int64, error) {
	var out []compensation.HourCompensation
	r.s.locked(func(st *state) {
		for _, c := range st.compensations {
			if filter.UserID != nil && c.UserID != *filter.UserID {
				continue
			}
			if filter.Status != nil && string(c.Status) != *filter.Status {
				continue
			}
			out = append(out, c)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}
