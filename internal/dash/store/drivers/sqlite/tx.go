package sqlite

import (
	"context"
	"database/sql"

	"github.com/fernlabs/clientdash/internal/dash/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // outer DB stays open

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested transactions are not supported.
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return nil } // applied before any tx starts

func (t *txStore) Clients() store.Clients           { return &clientsRepo{db: t.tx} }
func (t *txStore) Projects() store.Projects         { return &projectsRepo{db: t.tx} }
func (t *txStore) Payments() store.Payments         { return &paymentsRepo{db: t.tx} }
func (t *txStore) AccessTokens() store.AccessTokens { return &accessTokensRepo{db: t.tx} }
func (t *txStore) Logs() store.Logs                 { return &logsRepo{db: t.tx} }
func (t *txStore) Users() store.Users               { return &usersRepo{db: t.tx} }
