package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fernlabs/clientdash/internal/dash/domain"
)

func TestIssueToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("issues a prefixed token with a 24h lifetime", func(t *testing.T) {
		ledger, st := newLedger(t)
		client, _ := seedClientProject(t, ledger, 1000)
		tokens := &TokenService{Store: st}

		token, err := tokens.Issue(ctx, client.ID)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(token.Token, "TKN-"))
		require.Len(t, token.Token, len("TKN-")+8)
		require.WithinDuration(t, time.Now().Add(24*time.Hour), token.ExpiresAt, time.Minute)
		require.Contains(t, logActions(t, st), domain.ActionLinkGenerated)
	})

	t.Run("rejects unknown clients", func(t *testing.T) {
		_, st := newLedger(t)
		tokens := &TokenService{Store: st}

		_, err := tokens.Issue(ctx, "missing")
		require.ErrorIs(t, err, ErrClientNotFound)
	})

	t.Run("reissue revokes the previous token", func(t *testing.T) {
		ledger, st := newLedger(t)
		client, _ := seedClientProject(t, ledger, 1000)
		tokens := &TokenService{Store: st}

		first, err := tokens.Issue(ctx, client.ID)
		require.NoError(t, err)
		second, err := tokens.Issue(ctx, client.ID)
		require.NoError(t, err)
		require.NotEqual(t, first.Token, second.Token)

		_, err = tokens.Validate(ctx, first.Token)
		require.ErrorIs(t, err, ErrTokenNotFound)

		_, err = tokens.Validate(ctx, second.Token)
		require.NoError(t, err)
	})
}

func TestValidateToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("returns the client snapshot and audits the access", func(t *testing.T) {
		ledger, st := newLedger(t)
		client, project := seedClientProject(t, ledger, 5000)
		_, _, err := ledger.RecordPayment(ctx, project.ID, 1000, "2026-08-01", "")
		require.NoError(t, err)

		tokens := &TokenService{Store: st}
		token, err := tokens.Issue(ctx, client.ID)
		require.NoError(t, err)

		data, err := tokens.Validate(ctx, token.Token)
		require.NoError(t, err)
		require.Equal(t, client.ID, data.Client.ID)
		require.Len(t, data.Projects, 1)
		require.Len(t, data.Payments, 1)
		require.Equal(t, 4000.0, data.Projects[0].Balance)
		require.Contains(t, logActions(t, st), domain.ActionClientAccess)
	})

	t.Run("unknown token is denied and audited", func(t *testing.T) {
		_, st := newLedger(t)
		tokens := &TokenService{Store: st}

		_, err := tokens.Validate(ctx, "TKN-NOPE1234")
		require.ErrorIs(t, err, ErrTokenNotFound)
		require.Contains(t, logActions(t, st), domain.ActionAccessDenied)
	})

	t.Run("expired token is denied and audited", func(t *testing.T) {
		ledger, st := newLedger(t)
		client, _ := seedClientProject(t, ledger, 1000)
		tokens := &TokenService{Store: st}

		stale := domain.AccessToken{
			Token:     "TKN-STALE001",
			ClientID:  client.ID,
			ExpiresAt: time.Now().Add(-time.Hour),
			CreatedAt: time.Now().Add(-25 * time.Hour),
		}
		require.NoError(t, st.AccessTokens().CreateAccessToken(ctx, stale))

		_, err := tokens.Validate(ctx, stale.Token)
		require.ErrorIs(t, err, ErrTokenExpired)
		require.Contains(t, logActions(t, st), domain.ActionAccessDenied)
	})
}

func TestExpiredTokenHousekeeping(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ledger, st := newLedger(t)
	client, _ := seedClientProject(t, ledger, 1000)

	stale := domain.AccessToken{
		Token:     "TKN-STALE002",
		ClientID:  client.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
		CreatedAt: time.Now().Add(-25 * time.Hour),
	}
	require.NoError(t, st.AccessTokens().CreateAccessToken(ctx, stale))

	require.NoError(t, st.AccessTokens().DeleteExpiredAccessTokens(ctx))

	_, err := st.AccessTokens().GetAccessToken(ctx, stale.Token)
	require.Error(t, err)
}
