// Package memory is an in-process store driver backed by plain maps. It is
// used by tests and as a dev fallback when no database file is configured.
// A single mutex guards all state; a transaction holds the lock for its whole
// lifetime and rolls back by restoring a snapshot, which gives the same
// serialised-writer behaviour the sqlite driver has.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/fernlabs/clientdash/internal/dash/domain"
	"github.com/fernlabs/clientdash/internal/dash/store"
)

var errTxDone = errors.New("memory: transaction has already been committed or rolled back")

type state struct {
	clients  map[string]domain.Client
	projects map[string]domain.Project
	payments map[string]domain.Payment
	tokens   map[string]domain.AccessToken
	users    map[string]domain.User
	logs     []domain.LogEntry
	logSeq   int64
}

func newState() *state {
	return &state{
		clients:  make(map[string]domain.Client),
		projects: make(map[string]domain.Project),
		payments: make(map[string]domain.Payment),
		tokens:   make(map[string]domain.AccessToken),
		users:    make(map[string]domain.User),
	}
}

func (st *state) clone() *state {
	cp := &state{
		clients:  make(map[string]domain.Client, len(st.clients)),
		projects: make(map[string]domain.Project, len(st.projects)),
		payments: make(map[string]domain.Payment, len(st.payments)),
		tokens:   make(map[string]domain.AccessToken, len(st.tokens)),
		users:    make(map[string]domain.User, len(st.users)),
		logs:     append([]domain.LogEntry(nil), st.logs...),
		logSeq:   st.logSeq,
	}
	for k, v := range st.clients {
		cp.clients[k] = v
	}
	for k, v := range st.projects {
		cp.projects[k] = v
	}
	for k, v := range st.payments {
		cp.payments[k] = v
	}
	for k, v := range st.tokens {
		cp.tokens[k] = v
	}
	for k, v := range st.users {
		cp.users[k] = v
	}
	return cp
}

// session is how repos reach the shared state. The direct store locks per
// call; a transaction runs repos against already-locked state.
type session interface {
	with(fn func(st *state) error) error
}

type Store struct {
	mu sync.Mutex
	st *state
}

func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) with(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func (s *Store) Clients() store.Clients           { return &clientsRepo{s: s} }
func (s *Store) Projects() store.Projects         { return &projectsRepo{s: s} }
func (s *Store) Payments() store.Payments         { return &paymentsRepo{s: s} }
func (s *Store) AccessTokens() store.AccessTokens { return &accessTokensRepo{s: s} }
func (s *Store) Logs() store.Logs                 { return &logsRepo{s: s} }
func (s *Store) Users() store.Users               { return &usersRepo{s: s} }

// ApplyMigrations is a no-op, there is no schema to create.
func (s *Store) ApplyMigrations() error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	s.mu.Lock()
	return &txStore{s: s, snap: s.st.clone()}, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// txStore holds the store lock until Commit or Rollback. Rollback restores
// the snapshot taken when the transaction began.
type txStore struct {
	s    *Store
	snap *state
	done bool
}

func (t *txStore) with(fn func(st *state) error) error {
	if t.done {
		return errTxDone
	}
	return fn(t.s.st)
}

func (t *txStore) Commit() error {
	if t.done {
		return errTxDone
	}
	t.done = true
	t.s.mu.Unlock()
	return nil
}

func (t *txStore) Rollback() error {
	if t.done {
		return errTxDone
	}
	t.s.st = t.snap
	t.done = true
	t.s.mu.Unlock()
	return nil
}

func (t *txStore) Clients() store.Clients           { return &clientsRepo{s: t} }
func (t *txStore) Projects() store.Projects         { return &projectsRepo{s: t} }
func (t *txStore) Payments() store.Payments         { return &paymentsRepo{s: t} }
func (t *txStore) AccessTokens() store.AccessTokens { return &accessTokensRepo{s: t} }
func (t *txStore) Logs() store.Logs                 { return &logsRepo{s: t} }
func (t *txStore) Users() store.Users               { return &usersRepo{s: t} }

func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, errTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return errTxDone
}
