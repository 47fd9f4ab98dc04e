// Package expense holds the authoritative in-memory collection of the user's expenses.
//
// Every mutation goes to the backend and, once it succeeds, the whole collection is
// fetched again and replaced. The store never patches records locally, so what it holds
// is always a server response.
package expense

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/brokemate/internal/common"
	"github.com/Veraticus/brokemate/internal/model"
)

// Backend is the subset of the transport the store needs.
type Backend interface {
	ListExpenses(ctx context.Context, token string) ([]model.Expense, error)
	CreateExpense(ctx context.Context, token string, draft model.Draft) (*model.Expense, error)
	UpdateExpense(ctx context.Context, token string, id model.ExpenseID, draft model.Draft) (*model.Expense, error)
	DeleteExpense(ctx context.Context, token string, id model.ExpenseID) error
	FlagExpense(ctx context.Context, token string, id model.ExpenseID, flag model.Flag) error
}

// Session supplies the credential and takes back rejected ones.
type Session interface {
	Token() (string, error)
	Expire(token string, err error) bool
}

// Snapshot is one wholesale copy of the collection.
type Snapshot struct {
	FetchedAt time.Time
	Expenses  []model.Expense
	Version   uint64
}

// Listener is called after every replacement of the collection.
type Listener func(Snapshot)

// Store is the expense collection of the logged-in user.
type Store struct {
	backend   Backend
	session   Session
	logger    *slog.Logger
	lastErr   error
	fetchedAt time.Time
	expenses  []model.Expense
	listeners []Listener
	version   uint64
	issued    uint64
	applied   uint64
	inflight  int
	mu        sync.RWMutex
}

// NewStore creates an empty store. Call Refresh to load it.
func NewStore(backend Backend, session Session, logger *slog.Logger) *Store {
	return &Store{
		backend: backend,
		session: session,
		logger:  common.OrDefault(logger),
	}
}

// Snapshot returns a copy of the current collection.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Expenses returns a copy of the current records in server order.
func (s *Store) Expenses() []model.Expense {
	return s.Snapshot().Expenses
}

// Find returns the record with id from the current collection.
func (s *Store) Find(id model.ExpenseID) (model.Expense, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.expenses {
		if e.ID == id {
			return e, true
		}
	}
	return model.Expense{}, false
}

// Loading reports whether any operation is waiting on the backend.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// LastError returns the error of the most recent failed operation, cleared by the next
// successful one or by ClearError.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// ClearError dismisses the last error.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = nil
}

// Subscribe registers l for collection replacements.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Reset drops the collection, as after a logout.
func (s *Store) Reset() {
	s.mu.Lock()
	s.expenses = nil
	s.fetchedAt = time.Time{}
	s.lastErr = nil
	s.version++
	s.applied = s.issued
	snap := s.snapshotLocked()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

// Refresh fetches the full collection and replaces the held one.
func (s *Store) Refresh(ctx context.Context) error {
	return s.run(ctx, "refresh", func(context.Context, string) error { return nil })
}

// Create validates and submits draft, then refreshes.
func (s *Store) Create(ctx context.Context, draft model.Draft) error {
	if err := draft.Validate(); err != nil {
		return s.reject(err)
	}
	return s.run(ctx, "create", func(ctx context.Context, token string) error {
		_, err := s.backend.CreateExpense(ctx, token, draft)
		return err
	})
}

// Update validates draft and replaces the fields of record id, then refreshes.
// An unknown id comes back as the backend's APIError.
func (s *Store) Update(ctx context.Context, id model.ExpenseID, draft model.Draft) error {
	if err := draft.Validate(); err != nil {
		return s.reject(err)
	}
	return s.run(ctx, "update", func(ctx context.Context, token string) error {
		_, err := s.backend.UpdateExpense(ctx, token, id, draft)
		return err
	})
}

// Delete removes record id, then refreshes. Confirmation is the caller's job.
func (s *Store) Delete(ctx context.Context, id model.ExpenseID) error {
	return s.run(ctx, "delete", func(ctx context.Context, token string) error {
		return s.backend.DeleteExpense(ctx, token, id)
	})
}

// SetFlag marks record id positive or negative, then refreshes. Setting the flag a
// record already has is not an error.
func (s *Store) SetFlag(ctx context.Context, id model.ExpenseID, flag model.Flag) error {
	if !flag.Settable() {
		return s.reject(common.NewValidationError("flag", "must be positive or negative"))
	}
	return s.run(ctx, "flag", func(ctx context.Context, token string) error {
		return s.backend.FlagExpense(ctx, token, id, flag)
	})
}

// run performs mutate followed by a refresh. Nothing is replaced unless both succeed.
func (s *Store) run(ctx context.Context, op string, mutate func(context.Context, string) error) error {
	token, err := s.session.Token()
	if err != nil {
		return s.reject(err)
	}

	s.begin()
	defer s.end()

	if err := mutate(ctx, token); err != nil {
		return s.fail(op, token, err)
	}

	seq := s.issue()
	expenses, err := s.backend.ListExpenses(ctx, token)
	if err != nil {
		return s.fail(op, token, err)
	}
	s.replace(seq, expenses)
	s.logger.Debug("expenses refreshed", "op", op, "count", len(expenses))
	return nil
}

func (s *Store) fail(op, token string, err error) error {
	if s.session.Expire(token, err) {
		s.logger.Info("session expired", "op", op)
	} else {
		s.logger.Debug("expense operation failed", "op", op, "error", err)
	}
	return s.reject(err)
}

func (s *Store) reject(err error) error {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	return err
}

func (s *Store) begin() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
}

func (s *Store) end() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
}

func (s *Store) issue() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// replace installs expenses unless a fetch issued later has already been applied.
func (s *Store) replace(seq uint64, expenses []model.Expense) {
	s.mu.Lock()
	s.lastErr = nil
	if seq <= s.applied {
		s.mu.Unlock()
		return
	}
	s.applied = seq
	s.expenses = append([]model.Expense(nil), expenses...)
	s.fetchedAt = time.Now()
	s.version++
	snap := s.snapshotLocked()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Expenses:  append([]model.Expense(nil), s.expenses...),
		FetchedAt: s.fetchedAt,
		Version:   s.version,
	}
}
