package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/skponto/skponto-backend-go/internal/domain/hourbank"
)

type hourBankRepository struct{ s *Store }

func NewHourBankRepository(s *Store) hourbank.HourBankRepository {
	return &hourBankRepository{s: s}
}

func (r *hourBankRepository) GetByUserID(ctx context.Context, userID string) (hourbank.HourBank, error) {
	var (
		b  hourbank.HourBank
		ok bool
	)
	r.s.locked(func(st *state) { b, ok = st.banks[userID] })
	if !ok {
		return hourbank.HourBank{}, hourbank.ErrHourBankNotFound
	}
	return b, nil
}

// GetByUserIDForUpdate relies on the TxManager serializing transactions.
func (r *hourBankRepository) GetByUserIDForUpdate(ctx context.Context, userID string) (hourbank.HourBank, error) {
	return r.GetByUserID(ctx, userID)
}

func (r *hourBankRepository) CreateIfNotExists(ctx context.Context, userID string) error {
	r.s.locked(func(st *state) {
		if _, ok := st.banks[userID]; ok {
			return
		}
		now := time.Now()
		st.banks[userID] = hourbank.HourBank{
			ID:        uuid.New().String(),
			UserID:    userID,
			CreatedAt: now,
			UpdatedAt: now,
		}
	})
	return nil
}

func (r *hourBankRepository) UpdateBalance(ctx context.Context, bank hourbank.HourBank) error {
	var err error
	r.s.locked(func(st *state) {
		if _, ok := st.banks[bank.UserID]; !ok {
			err = hourbank.ErrHourBankNotFound
			return
		}
		bank.UpdatedAt = time.Now()
		st.banks[bank.UserID] = bank
	})
	return err
}

func (r *hourBankRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	r.s.locked(func(st *state) {
		for id := range st.banks {
			ids = append(ids, id)
		}
	})
	sort.Strings(ids)
	return ids, nil
}

type transactionRepository struct{ s *Store }

func NewTransactionRepository(s *Store) hourbank.TransactionRepository {
	return &transactionRepository{s: s}
}

func (r *transactionRepository) Create(ctx context.Context, tx hourbank.Transaction) (hourbank.Transaction, error) {
	var err error
	r.s.locked(func(st *state) {
		if r.s.FailNextTransactionCreate != nil {
			err = r.s.FailNextTransactionCreate
			r.s.FailNextTransactionCreate = nil
			return
		}
		st.seq++
		tx.ID = uuid.New().String()
		tx.Sequence = st.seq
		tx.CreatedAt = time.Now()
		st.transactions = append(st.transactions, tx)
	})
	if err != nil {
		return hourbank.Transaction{}, err
	}
	return tx, nil
}

func (r *transactionRepository) ListByUserID(ctx context.Context, userID string, filter hourbank.TransactionFilter) ([]hourbank.Transaction, int64, error) {
	var matched []hourbank.Transaction
	r.s.locked(func(st *state) {
		for i := len(st.transactions) - 1; i >= 0; i-- {
			t := st.transactions[i]
			if t.UserID != userID {
				continue
			}
			if filter.Type != nil && string(t.Type) != *filter.Type {
				continue
			}
			day := t.CreatedAt.Format("2006-01-02")
			if filter.From != nil && day < *filter.From {
				continue
			}
			if filter.To != nil && day > *filter.To {
				continue
			}
			matched = append(matched, t)
		}
	})
	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (r *transactionRepository) ListChainByUserID(ctx context.Context, userID string) ([]hourbank.Transaction, error) {
	var out []hourbank.Transaction
	r.s.locked(func(st *state) {
		for _, t := range st.transactions {
			if t.UserID == userID {
				out = append(out, t)
			}
		}
	})
	return out, nil
}

func paginate[T any](items []T, page, limit int) []T {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		return items
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
