package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/skponto/skponto-backend-go/internal/domain/overtime"
)

type overtimeRequestRepository struct{ s *Store }

func NewOvertimeRequestRepository(s *Store) overtime.RequestRepository {
	return &overtimeRequestRepository{s: s}
}

func (r *overtimeRequestRepository) Create(ctx context.Context, req overtime.Request) (overtime.Request, error) {
	now := time.Now()
	req.ID = uuid.New().String()
	req.CreatedAt = now
	req.UpdatedAt = now
	r.s.locked(func(st *state) { st.overtimeRequests[req.ID] = req })
	return req, nil
}

func (r *overtimeRequestRepository) GetByID(ctx context.Context, id string) (overtime.Request, error) {
	var (
		req overtime.Request
		ok  bool
	)
	r.s.locked(func(st *state) { req, ok = st.overtimeRequests[id] })
	if !ok {
		return overtime.Request{}, overtime.ErrRequestNotFound
	}
	return req, nil
}

func (r *overtimeRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (overtime.Request, error) {
	return r.GetByID(ctx, id)
}

func (r *overtimeRequestRepository) Update(ctx context.Context, req overtime.Request) error {
	var err error
	r.s.locked(func(st *state) {
		if _, ok := st.overtimeRequests[req.ID]; !ok {
			err = overtime.ErrRequestNotFound
			return
		}
		req.UpdatedAt = time.Now()
		st.overtimeRequests[req.ID] = req
	})
	return err
}

func (r *overtimeRequestRepository) ListActiveByUserAndDate(ctx context.Context, userID string, date time.Time) ([]overtime.Request, error) {
	var out []overtime.Request
	r.s.locked(func(st *state) {
		for _, req := range st.overtimeRequests {
			if req.UserID == userID && req.IsActive() && sameDay(req.Date, date) {
				out = append(out, req)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Minutes() < out[j].StartTime.Minutes() })
	return out, nil
}

func (r *overtimeRequestRepository) SumActiveHours(ctx context.Context, userID string, from, to time.Time) (float64, error) {
	lo, hi := from.Format("2006-01-02"), to.Format("2006-01-02")
	var sum float64
	r.s.locked(func(st *state) {
		for _, req := range st.overtimeRequests {
			day := req.Date.Format("2006-01-02")
			if req.UserID == userID && req.IsActive() && day >= lo && day <= hi {
				sum += req.EstimatedHours
			}
		}
	})
	return sum, nil
}

func (r *overtimeRequestRepository) List(ctx context.Context, filter overtime.RequestFilter) ([]overtime.Request, int64, error) {
	var out []overtime.Request
	r.s.locked(func(st *state) {
		for _, req := range st.overtimeRequests {
			day := req.Date.Format("2006-01-02")
			switch {
			case filter.UserID != nil && req.UserID != *filter.UserID:
			case filter.Status != nil && string(req.Status) != *filter.Status:
			case filter.From != nil && day < *filter.From:
			case filter.To != nil && day > *filter.To:
			default:
				out = append(out, req)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, filter.Page, filter.Limit), int64(len(out)), nil
}

type overtimeSettingsRepository struct{ s *Store }

func NewOvertimeSettingsRepository(s *Store) overtime.SettingsRepository {
	return &overtimeSettingsRepository{s: s}
}

func (r *overtimeSettingsRepository) GetByUserID(ctx context.Context, userID string) (overtime.Settings, error) {
	var (
		set overtime.Settings
		ok  bool
	)
	r.s.locked(func(st *state) { set, ok = st.overtimeSettings[userID] })
	if !ok {
		return overtime.Settings{}, overtime.ErrSettingsNotFound
	}
	return set, nil
}

func (r *overtimeSettingsRepository) CreateIfNotExists(ctx context.Context, set overtime.Settings) (overtime.Settings, error) {
	var out overtime.Settings
	r.s.locked(func(st *state) {
		if existing, ok := st.overtimeSettings[set.UserID]; ok {
			out = existing
			return
		}
		now := time.Now()
		set.ID = uuid.New().String()
		set.CreatedAt = now
		set.UpdatedAt = now
		st.overtimeSettings[set.UserID] = set
		out = set
	})
	return out, nil
}

func (r *overtimeSettingsRepository) Update(ctx context.Context, set overtime.Settings) error {
	var err error
	r.s.locked(func(st *state) {
		if _, ok := st.overtimeSettings[set.UserID]; !ok {
			err = overtime.ErrSettingsNotFound
			return
		}
		set.UpdatedAt = time.Now()
		st.overtimeSettings[set.UserID] = set
	})
	return err
}

type overtimeLimitsRepository struct{ s *Store }

func NewOvertimeLimitsRepository(s *Store) overtime.LimitsRepository {
	return &overtimeLimitsRepository{s: s}
}

func (r *overtimeLimitsRepository) ListActiveForScopes(ctx context.Context, role string, workClassID *string) ([]overtime.Limits, error) {
	var out []overtime.Limits
	r.s.locked(func(st *state) {
		for _, l := range st.overtimeLimits {
			if !l.IsActive {
				continue
			}
			if (l.ScopeType == overtime.LimitScopeRole && l.ScopeValue == role) ||
				(l.ScopeType == overtime.LimitScopeWorkClass && workClassID != nil && l.ScopeValue == *workClassID) {
				out = append(out, l)
			}
		}
	})
	return out, nil
}
