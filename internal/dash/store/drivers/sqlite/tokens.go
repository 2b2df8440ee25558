package sqlite

import (
	"context"
	"time"

	"github.com/fernlabs/clientdash/internal/dash/domain"
)

type accessTokensRepo struct {
	db dbtx
}

func (r *accessTokensRepo) GetAccessToken(ctx context.Context, token string) (domain.AccessToken, error) {
	var t domain.AccessToken
	err := r.db.QueryRowContext(ctx,
		`SELECT token, client_id, expires_at, created_at FROM access_tokens WHERE token = ?`,
		token,
	).Scan(&t.Token, &t.ClientID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return domain.AccessToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *accessTokensRepo) CreateAccessToken(ctx context.Context, t domain.AccessToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO access_tokens (token, client_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		t.Token, t.ClientID, t.ExpiresAt, t.CreatedAt,
	)
	return err
}

func (r *accessTokensRepo) DeleteClientAccessTokens(ctx context.Context, clientID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM access_tokens WHERE client_id = ?`, clientID)
	return err
}

func (r *accessTokensRepo) DeleteExpiredAccessTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM access_tokens WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
