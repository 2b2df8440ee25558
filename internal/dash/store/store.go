// Package store defines the data access interface the services depend on.
// Two drivers implement it: sqlite (persistent, transactional) and memory
// (tests and dev fallback). Business logic never touches a driver directly.
package store

import (
	"context"
	"errors"

	"github.com/fernlabs/clientdash/internal/dash/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface, exposing one sub-repository per
// table plus transaction control. Sub-repositories are methods rather than
// fields so a Tx can hand out transaction-scoped variants of the same repos.
type Store interface {
	Clients() Clients
	Projects() Projects
	Payments() Payments
	AccessTokens() AccessTokens
	Logs() Logs
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store. The
	// caller MUST Commit or Rollback the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing when fn returns nil and
	// rolling back otherwise. Every balance mutation goes through here so the
	// read-modify-write on the project row cannot interleave with another
	// writer.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store with commit/rollback control.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Clients interface {
	GetClient(ctx context.Context, id string) (domain.Client, error)
	ListClients(ctx context.Context) ([]domain.Client, error)
	CreateClient(ctx context.Context, c domain.Client) error
	UpdateClient(ctx context.Context, id, name, email string) error
	// DeleteClient removes the row. Callers are responsible for the
	// no-dependents check; the schema additionally enforces it via FKs.
	DeleteClient(ctx context.Context, id string) error
	// CountProjects reports how many projects reference the client.
	CountProjects(ctx context.Context, clientID string) (int, error)
}

type Projects interface {
	GetProject(ctx context.Context, id string) (domain.Project, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
	ListProjectsByClient(ctx context.Context, clientID string) ([]domain.Project, error)
	CreateProject(ctx context.Context, p domain.Project) error
	// UpdateProject persists name, budget, balance and status in one write.
	UpdateProject(ctx context.Context, p domain.Project) error
	// SetBalanceStatus writes only the derived fields, used by payment
	// mutations that leave the rest of the row untouched.
	SetBalanceStatus(ctx context.Context, id string, balance float64, status domain.ProjectStatus) error
	DeleteProject(ctx context.Context, id string) error
	// CountPayments reports how many payments reference the project.
	CountPayments(ctx context.Context, projectID string) (int, error)
}

type Payments interface {
	GetPayment(ctx context.Context, id string) (domain.Payment, error)
	ListPaymentsByProject(ctx context.Context, projectID string) ([]domain.Payment, error)
	// ListPaymentsByClient returns payments across all of a client's projects,
	// for the token-gated snapshot.
	ListPaymentsByClient(ctx context.Context, clientID string) ([]domain.Payment, error)
	CreatePayment(ctx context.Context, p domain.Payment) error
	UpdatePayment(ctx context.Context, id string, amount float64, date, ptype string) error
	DeletePayment(ctx context.Context, id string) error
	// SumPaymentsByProject returns the cumulative amount paid into a project.
	SumPaymentsByProject(ctx context.Context, projectID string) (float64, error)
}

type AccessTokens interface {
	GetAccessToken(ctx context.Context, token string) (domain.AccessToken, error)
	CreateAccessToken(ctx context.Context, t domain.AccessToken) error
	// DeleteClientAccessTokens drops every token held by a client; issuance
	// calls this so at most one token per client is live.
	DeleteClientAccessTokens(ctx context.Context, clientID string) error
	// DeleteExpiredAccessTokens is housekeeping.
	DeleteExpiredAccessTokens(ctx context.Context) error
}

type Logs interface {
	AppendLog(ctx context.Context, e domain.LogEntry) error
	// ListLogs returns entries newest first.
	ListLogs(ctx context.Context, limit, offset int) ([]domain.LogEntry, error)
	// TrimLogs deletes the oldest entries so at most keep remain.
	TrimLogs(ctx context.Context, keep int) error
}

type Users interface {
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	CreateUser(ctx context.Context, u domain.User) error
	// IsEmpty reports whether any operator account exists, for first-run
	// admin seeding.
	IsEmpty(ctx context.Context) (bool, error)
}
