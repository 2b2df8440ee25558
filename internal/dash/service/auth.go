package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fernlabs/clientdash/internal/dash/domain"
	"github.com/fernlabs/clientdash/internal/dash/store"
	"github.com/fernlabs/clientdash/pkg/cryptox"
	"github.com/fernlabs/clientdash/pkg/httpx"
	"github.com/fernlabs/clientdash/pkg/idx"
	"github.com/fernlabs/clientdash/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSession     = errors.New("invalid session token")
)

// DefaultSessionTTL is how long an operator session token stays valid.
const DefaultSessionTTL = 12 * time.Hour

const jwtIssuer = "clientdash"

// AuthService authenticates operators and mints the signed session tokens
// the admin API requires. It implements httpx.SessionVerifier.
type AuthService struct {
	Store  store.Store
	Secret []byte

	// SessionTTL is the session token lifetime. Zero or negative means
	// DefaultSessionTTL.
	SessionTTL time.Duration
}

type sessionTokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Login verifies the operator's password and returns a signed session token.
// Failed attempts are audited but the reason is not leaked to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.loginDenied(ctx, email)
			l.Warn("login denied, unknown email", "email", email)
			return "", domain.User{}, ErrInvalidCredentials
		}
		return "", domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			s.loginDenied(ctx, email)
			l.Warn("login denied, bad password", "user_id", user.ID)
			return "", domain.User{}, ErrInvalidCredentials
		}
		return "", domain.User{}, err
	}

	token, err := s.mintSession(user)
	if err != nil {
		l.Error("failed to sign session token", "error", err, "user_id", user.ID)
		return "", domain.User{}, err
	}

	l.Info("operator logged in", "user_id", user.ID, "role", user.Role)
	return token, user, nil
}

// VerifySession parses and validates a session token, returning the identity
// claims embedded in it.
func (s *AuthService) VerifySession(raw string) (httpx.SessionClaims, error) {
	var claims sessionTokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) { return s.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(jwtIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return httpx.SessionClaims{}, ErrInvalidSession
	}

	return httpx.SessionClaims{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

// SeedAdmin creates the first operator account when none exists yet. It is a
// no-op on an already provisioned store.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password, name string) error {
	l := slogx.FromContext(ctx)

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}
	if email == "" || password == "" {
		l.Warn("no operator accounts exist and no seed credentials configured")
		return nil
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		return err
	}

	l.Info("seeded initial admin account", "user_id", user.ID, "email", email)
	return nil
}

func (s *AuthService) mintSession(user domain.User) (string, error) {
	now := time.Now().UTC()
	claims := sessionTokenClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL())),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

func (s *AuthService) loginDenied(ctx context.Context, email string) {
	entry := newLogEntry(domain.ActionLoginDenied, fmt.Sprintf("failed login attempt for %s", email))
	if err := s.Store.Logs().AppendLog(ctx, entry); err != nil {
		slogx.FromContext(ctx).Error("failed to record denied login", "error", err)
	}
}

func (s *AuthService) sessionTTL() time.Duration {
	if s.SessionTTL <= 0 {
		return DefaultSessionTTL
	}
	return s.SessionTTL
}
