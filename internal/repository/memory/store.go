// Package memory provides in-memory repositories backed by a single Store.
// It is a test double: service and handler tests use it in place of
// PostgreSQL, and cmd/api must not wire it. Its TxManager restores the store
// when a transaction function fails and holds one lock for the whole
// transaction instead of row locks.
package memory

import (
	"context"
	"sync"

	"github.com/skponto/skponto-backend-go/internal/domain/compensation"
	"github.com/skponto/skponto-backend-go/internal/domain/hourbank"
	"github.com/skponto/skponto-backend-go/internal/domain/notification"
	"github.com/skponto/skponto-backend-go/internal/domain/overtime"
	"github.com/skponto/skponto-backend-go/internal/domain/timerecord"
	"github.com/skponto/skponto-backend-go/internal/domain/user"
	"github.com/skponto/skponto-backend-go/internal/domain/workclass"
	"github.com/skponto/skponto-backend-go/internal/pkg/database"
)

type state struct {
	users            map[string]user.User
	workClasses      map[string]workclass.WorkClass
	banks            map[string]hourbank.HourBank // keyed by user id
	transactions     []hourbank.Transaction
	records          map[string]timerecord.TimeRecord
	overtimeRequests map[string]overtime.Request
	overtimeSettings map[string]overtime.Settings // keyed by user id
	overtimeLimits   []overtime.Limits
	compensations    map[string]compensation.HourCompensation
	seq              int64
}

func (s state) clone() state {
	c := s
	c.users = cloneMap(s.users)
	c.workClasses = cloneMap(s.workClasses)
	c.banks = cloneMap(s.banks)
	c.transactions = append([]hourbank.Transaction(nil), s.transactions...)
	c.records = cloneMap(s.records)
	c.overtimeRequests = cloneMap(s.overtimeRequests)
	c.overtimeSettings = cloneMap(s.overtimeSettings)
	c.overtimeLimits = append([]overtime.Limits(nil), s.overtimeLimits...)
	c.compensations = cloneMap(s.compensations)
	return c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store holds every table. The zero value is not usable; call NewStore.
type Store struct {
	mu sync.Mutex
	st state

	// txMu serializes transactions, standing in for row locks.
	txMu sync.Mutex

	// FailNextTransactionCreate makes the next transaction insert fail.
	FailNextTransactionCreate error
}

func NewStore() *Store {
	return &Store{st: state{
		users:            map[string]user.User{},
		workClasses:      map[string]workclass.WorkClass{},
		banks:            map[string]hourbank.HourBank{},
		records:          map[string]timerecord.TimeRecord{},
		overtimeRequests: map[string]overtime.Request{},
		overtimeSettings: map[string]overtime.Settings{},
		compensations:    map[string]compensation.HourCompensation{},
	}}
}

func (s *Store) locked(fn func(st *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.st)
}

// AddUser seeds a user.
func (s *Store) AddUser(u user.User) {
	s.locked(func(st *state) { st.users[u.ID] = u })
}

// AddWorkClass seeds a work class.
func (s *Store) AddWorkClass(wc workclass.WorkClass) {
	s.locked(func(st *state) { st.workClasses[wc.ID] = wc })
}

// AddOvertimeLimits seeds an overtime limit.
func (s *Store) AddOvertimeLimits(l overtime.Limits) {
	s.locked(func(st *state) { st.overtimeLimits = append(st.overtimeLimits, l) })
}

// Transactions returns a copy of every ledger transaction in insertion order.
func (s *Store) Transactions() []hourbank.Transaction {
	var out []hourbank.Transaction
	s.locked(func(st *state) { out = append(out, st.transactions...) })
	return out
}

type txKey struct{}

type txManager struct {
	store *Store
}

// NewTxManager returns a database.TxManager that rolls the store back when fn fails.
func NewTxManager(store *Store) database.TxManager {
	return &txManager{store: store}
}

func (m *txManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	var snapshot state
	m.store.locked(func(st *state) { snapshot = st.clone() })

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.store.locked(func(st *state) { *st = snapshot })
		return err
	}
	return nil
}

// Notifier records queued notifications.
type Notifier struct {
	mu   sync.Mutex
	sent []notification.CreateNotificationRequest
	Err  error
}

func (n *Notifier) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.sent = append(n.sent, req)
	return nil
}

// Sent returns the notifications queued so far.
func (n *Notifier) Sent() []notification.CreateNotificationRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.CreateNotificationRequest(nil), n.sent...)
}
