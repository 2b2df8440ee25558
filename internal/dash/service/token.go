package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fernlabs/clientdash/internal/dash/domain"
	"github.com/fernlabs/clientdash/internal/dash/store"
	"github.com/fernlabs/clientdash/pkg/cryptox"
	"github.com/fernlabs/clientdash/pkg/slogx"
)

var (
	ErrTokenNotFound = errors.New("access token not found")
	ErrTokenExpired  = errors.New("access token expired")
)

// DefaultTokenTTL is how long a share link stays valid after issuance.
const DefaultTokenTTL = 24 * time.Hour

const (
	tokenPrefix     = "TKN-"
	tokenCodeLength = 8
)

// TokenService issues and validates the opaque share tokens clients use to
// view their own data without an account. Tokens are single-use in the sense
// that issuing a new one revokes the client's previous links.
type TokenService struct {
	Store store.Store

	// TTL is the token lifetime. Zero or negative means DefaultTokenTTL.
	TTL time.Duration
}

// Issue creates a fresh access token for the client, revoking any earlier
// tokens the client held so at most one share link is live at a time.
func (s *TokenService) Issue(ctx context.Context, clientID string) (domain.AccessToken, error) {
	l := slogx.FromContext(ctx)

	code, err := cryptox.GenerateCode(tokenCodeLength)
	if err != nil {
		l.Error("failed to generate token code", "error", err)
		return domain.AccessToken{}, err
	}

	now := time.Now().UTC()
	token := domain.AccessToken{
		Token:     tokenPrefix + code,
		ClientID:  clientID,
		ExpiresAt: now.Add(s.ttl()),
		CreatedAt: now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		client, err := tx.Clients().GetClient(ctx, clientID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrClientNotFound
			}
			return err
		}

		if err := tx.AccessTokens().DeleteClientAccessTokens(ctx, clientID); err != nil {
			return err
		}
		if err := tx.AccessTokens().CreateAccessToken(ctx, token); err != nil {
			return err
		}
		return tx.Logs().AppendLog(ctx, newLogEntry(domain.ActionLinkGenerated,
			fmt.Sprintf("access link generated for client %q (%s)", client.Name, clientID)))
	})
	if err != nil {
		l.Error("failed to issue access token", "error", err, "client_id", clientID)
		return domain.AccessToken{}, err
	}

	l.Info("access token issued", "client_id", clientID, "expires_at", token.ExpiresAt)
	return token, nil
}

// Validate resolves a raw token to the owning client's data snapshot. Both
// the denied and the granted paths leave an audit entry, so the trail shows
// every attempt to use a link.
func (s *TokenService) Validate(ctx context.Context, raw string) (domain.ClientData, error) {
	l := slogx.FromContext(ctx)

	token, err := s.Store.AccessTokens().GetAccessToken(ctx, raw)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.denied(ctx, fmt.Sprintf("unknown access token %q", raw))
			l.Warn("access denied, unknown token")
			return domain.ClientData{}, ErrTokenNotFound
		}
		return domain.ClientData{}, err
	}

	if token.Expired(time.Now().UTC()) {
		s.denied(ctx, fmt.Sprintf("expired access token for client %s", token.ClientID))
		l.Warn("access denied, expired token", "client_id", token.ClientID)
		return domain.ClientData{}, ErrTokenExpired
	}

	var data domain.ClientData
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		client, err := tx.Clients().GetClient(ctx, token.ClientID)
		if err != nil {
			return err
		}
		projects, err := tx.Projects().ListProjectsByClient(ctx, token.ClientID)
		if err != nil {
			return err
		}
		payments, err := tx.Payments().ListPaymentsByClient(ctx, token.ClientID)
		if err != nil {
			return err
		}

		data = domain.ClientData{
			Client:   client,
			Projects: projects,
			Payments: payments,
		}
		return tx.Logs().AppendLog(ctx, newLogEntry(domain.ActionClientAccess,
			fmt.Sprintf("client %q viewed their data (%s)", client.Name, client.ID)))
	})
	if err != nil {
		l.Error("failed to resolve access token", "error", err, "client_id", token.ClientID)
		return domain.ClientData{}, err
	}

	l.Info("access token validated", "client_id", token.ClientID)
	return data, nil
}

func (s *TokenService) denied(ctx context.Context, detail string) {
	if err := s.Store.Logs().AppendLog(ctx, newLogEntry(domain.ActionAccessDenied, detail)); err != nil {
		slogx.FromContext(ctx).Error("failed to record denied access", "error", err)
	}
}

func (s *TokenService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultTokenTTL
	}
	return s.TTL
}
