// Package sqlite is the persistent Store driver. One file per repository,
// plain database/sql with hand-written queries.
package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fernlabs/clientdash/internal/dash/store"
	_ "modernc.org/sqlite"
)

// dbtx is the subset of *sql.DB and *sql.Tx the repositories need, so the
// same repo types serve both direct and transaction-scoped access.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// sqlite allows a single writer. One pooled connection keeps transactions
	// serialised and makes ":memory:" databases behave.
	db.SetMaxOpenConns(1)

	// Enforce FKs so dependent-row checks hold even against races.
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx runs fn inside a transaction, handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Rollback after commit is a no-op, so this is safe on every path.
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Clients() store.Clients           { return &clientsRepo{db: s.db} }
func (s *Store) Projects() store.Projects         { return &projectsRepo{db: s.db} }
func (s *Store) Payments() store.Payments         { return &paymentsRepo{db: s.db} }
func (s *Store) AccessTokens() store.AccessTokens { return &accessTokensRepo{db: s.db} }
func (s *Store) Logs() store.Logs                 { return &logsRepo{db: s.db} }
func (s *Store) Users() store.Users               { return &usersRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
