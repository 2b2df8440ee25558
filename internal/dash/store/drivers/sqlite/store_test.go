package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fernlabs/clientdash/internal/dash/domain"
	"github.com/fernlabs/clientdash/internal/dash/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedClient(t *testing.T, st *Store, id string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, st.Clients().CreateClient(context.Background(), domain.Client{
		ID: id, Name: "Client " + id, Email: id + "@example.com", CreatedAt: now, UpdatedAt: now,
	}))
}

func TestMigrationsAndRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	seedClient(t, st, "c1")

	got, err := st.Clients().GetClient(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, "Client c1", got.Name)

	clients, err := st.Clients().ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)
}

func TestZeroRowWritesMapToNotFound(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	require.ErrorIs(t, st.Clients().UpdateClient(ctx, "missing", "x", ""), store.ErrNotFound)
	require.ErrorIs(t, st.Clients().DeleteClient(ctx, "missing"), store.ErrNotFound)
	require.ErrorIs(t, st.Projects().DeleteProject(ctx, "missing"), store.ErrNotFound)
	require.ErrorIs(t, st.Payments().DeletePayment(ctx, "missing"), store.ErrNotFound)

	_, err := st.AccessTokens().GetAccessToken(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	boom := store.ErrAlreadyExists
	err := st.WithTx(ctx, func(tx store.Tx) error {
		now := time.Now().UTC()
		if err := tx.Clients().CreateClient(ctx, domain.Client{ID: "c1", Name: "x", CreatedAt: now, UpdatedAt: now}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.Clients().GetClient(ctx, "c1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPaymentsQueries(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	seedClient(t, st, "c1")
	now := time.Now().UTC()
	require.NoError(t, st.Projects().CreateProject(ctx, domain.Project{
		ID: "p1", ClientID: "c1", Name: "P", Status: domain.StatusActive,
		Budget: 100, Balance: 100, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, st.Payments().CreatePayment(ctx, domain.Payment{ID: "m1", ProjectID: "p1", Date: "2026-08-01", Amount: 30, CreatedAt: now}))
	require.NoError(t, st.Payments().CreatePayment(ctx, domain.Payment{ID: "m2", ProjectID: "p1", Date: "2026-08-02", Amount: 20, CreatedAt: now}))

	sum, err := st.Payments().SumPaymentsByProject(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 50.0, sum)

	byClient, err := st.Payments().ListPaymentsByClient(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, byClient, 2)

	n, err := st.Projects().CountPayments(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestLogTrim(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	for i := 0; i < 10; i++ {
		require.NoError(t, st.Logs().AppendLog(ctx, domain.LogEntry{
			Action: domain.ActionAdminLog, Detail: "entry", CreatedAt: time.Now().UTC(),
		}))
	}

	require.NoError(t, st.Logs().TrimLogs(ctx, 4))

	entries, err := st.Logs().ListLogs(ctx, 100, 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)
}
