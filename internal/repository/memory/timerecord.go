package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/skponto/skponto-backend-go/internal/domain/timerecord"
)

type timeRecordRepository struct{ s *Store }

func NewTimeRecordRepository(s *Store) timerecord.TimeRecordRepository {
	return &timeRecordRepository{s: s}
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

func (r *timeRecordRepository) GetByID(ctx context.Context, id string) (timerecord.TimeRecord, error) {
	var (
		rec timerecord.TimeRecord
		ok  bool
	)
	r.s.locked(func(st *state) { rec, ok = st.records[id] })
	if !ok {
		return timerecord.TimeRecord{}, timerecord.ErrTimeRecordNotFound
	}
	return rec, nil
}

func (r *timeRecordRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (timerecord.TimeRecord, error) {
	var (
		rec timerecord.TimeRecord
		ok  bool
	)
	r.s.locked(func(st *state) {
		for _, candidate := range st.records {
			if candidate.UserID == userID && sameDay(candidate.Date, date) {
				rec, ok = candidate, true
				return
			}
		}
	})
	if !ok {
		return timerecord.TimeRecord{}, timerecord.ErrTimeRecordNotFound
	}
	return rec, nil
}

func (r *timeRecordRepository) GetOrCreate(ctx context.Context, userID string, date time.Time) (timerecord.TimeRecord, error) {
	rec, err := r.GetByUserAndDate(ctx, userID, date)
	if err == nil {
		return rec, nil
	}
	now := time.Now()
	rec = timerecord.TimeRecord{
		ID:        uuid.New().String(),
		UserID:    userID,
		Date:      time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()),
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.locked(func(st *state) { st.records[rec.ID] = rec })
	return rec, nil
}

func (r *timeRecordRepository) Update(ctx context.Context, record timerecord.TimeRecord) error {
	var err error
	r.s.locked(func(st *state) {
		current, ok := st.records[record.ID]
		if !ok {
			err = timerecord.ErrTimeRecordNotFound
			return
		}
		// settled_at is only written by MarkSettled.
		record.SettledAt = current.SettledAt
		record.UpdatedAt = time.Now()
		st.records[record.ID] = record
	})
	return err
}

func (r *timeRecordRepository) MarkSettled(ctx context.Context, id string, at time.Time) error {
	var err error
	r.s.locked(func(st *state) {
		rec, ok := st.records[id]
		if !ok {
			err = timerecord.ErrTimeRecordNotFound
			return
		}
		rec.SettledAt = &at
		rec.UpdatedAt = time.Now()
		st.records[id] = rec
	})
	return err
}

func (r *timeRecordRepository) ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]timerecord.TimeRecord, error) {
	lo, hi := from.Format("2006-01-02"), to.Format("2006-01-02")
	var out []timerecord.TimeRecord
	r.s.locked(func(st *state) {
		for _, rec := range st.records {
			day := rec.Date.Format("2006-01-02")
			if rec.UserID == userID && day >= lo && day <= hi {
				out = append(out, rec)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *timeRecordRepository) ListUnsettled(ctx context.Context, since time.Time) ([]timerecord.TimeRecord, error) {
	lo := since.Format("2006-01-02")
	var out []timerecord.TimeRecord
	r.s.locked(func(st *state) {
		for _, rec := range st.records {
			if rec.IsClosed() && !rec.IsNonWorking() && !rec.IsSettled() && rec.Date.Format("2006-01-02") >= lo {
				out = append(out, rec)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
