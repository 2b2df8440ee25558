package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fernlabs/clientdash/internal/dash/domain"
	"github.com/fernlabs/clientdash/internal/dash/service"
	"github.com/fernlabs/clientdash/internal/dash/store"
	"github.com/fernlabs/clientdash/internal/dash/store/drivers/memory"
)

type testEnv struct {
	router *Router
	store  store.Store
	ledger *service.LedgerService
	tokens *service.TokenService
	admin  string // bearer token for the seeded admin
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	st := memory.NewStore()
	auth := &service.AuthService{Store: st, Secret: []byte("test-secret")}
	require.NoError(t, auth.SeedAdmin(ctx, "admin@example.com", "hunter22", "Admin"))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(auth, "test-api-key", "http://localhost:8080", "test", st, logger)
	router.LedgerService = &service.LedgerService{Store: st}
	router.TokenService = &service.TokenService{Store: st}
	router.AuditService = &service.AuditService{Store: st}
	router.AuthService = auth
	router.ApplyRoutes()

	token, _, err := auth.Login(ctx, "admin@example.com", "hunter22")
	require.NoError(t, err)

	return &testEnv{
		router: router,
		store:  st,
		ledger: router.LedgerService,
		tokens: router.TokenService,
		admin:  token,
	}
}

func (e *testEnv) do(t *testing.T, method, target, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[loginResponse](t, rec)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, domain.RoleAdmin, resp.User.Role)

	rec = env.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGenerateTokenEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	client, err := env.ledger.CreateClient(ctx, "Acme", "billing@acme.example")
	require.NoError(t, err)

	t.Run("requires a session", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/tokens/generate", "", map[string]string{"client_id": client.ID})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("issues a share link", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/tokens/generate", env.admin, map[string]string{"client_id": client.ID})
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[generateTokenResponse](t, rec)
		require.True(t, resp.Success)
		require.Contains(t, resp.Token, "TKN-")
		require.Contains(t, resp.Link, resp.Token)
		require.NotEmpty(t, resp.ExpiresAt)
	})

	t.Run("unknown client", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/tokens/generate", env.admin, map[string]string{"client_id": "missing"})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestClientDataEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	client, err := env.ledger.CreateClient(ctx, "Acme", "billing@acme.example")
	require.NoError(t, err)
	project, err := env.ledger.CreateProject(ctx, client.ID, "Redesign", 5000)
	require.NoError(t, err)
	_, _, err = env.ledger.RecordPayment(ctx, project.ID, 1500, "2026-08-01", "card")
	require.NoError(t, err)

	token, err := env.tokens.Issue(ctx, client.ID)
	require.NoError(t, err)

	t.Run("missing token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/client-data", "", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/client-data?token=TKN-NOPE1234", "", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		stale := domain.AccessToken{
			Token:     "TKN-STALE003",
			ClientID:  client.ID,
			ExpiresAt: time.Now().Add(-time.Hour),
			CreatedAt: time.Now().Add(-25 * time.Hour),
		}
		require.NoError(t, env.store.AccessTokens().CreateAccessToken(ctx, stale))

		rec := env.do(t, http.MethodGet, "/v1/client-data?token=TKN-STALE003", "", nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("valid token returns the snapshot", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/client-data", "", map[string]string{"token": token.Token})
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[clientDataResponse](t, rec)
		require.True(t, resp.Success)
		require.Equal(t, client.ID, resp.Data.Client.ID)
		require.Len(t, resp.Data.Projects, 1)
		require.Len(t, resp.Data.Payments, 1)
		require.Equal(t, 3500.0, resp.Data.Projects[0].Balance)
	})
}

func TestAdminLogEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	t.Run("rejects a missing or wrong key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/admin/log", bytes.NewBufferString(`{"detail":"x"}`))
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		req = httptest.NewRequest(http.MethodPost, "/v1/admin/log", bytes.NewBufferString(`{"detail":"x"}`))
		req.Header.Set("x-admin-api-key", "nope")
		rec = httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("records an entry with the right key", func(t *testing.T) {
		body := bytes.NewBufferString(`{"action":"DEPLOY","detail":"rolled out v2"}`)
		req := httptest.NewRequest(http.MethodPost, "/v1/admin/log", body)
		req.Header.Set("x-admin-api-key", "test-api-key")
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		list := env.do(t, http.MethodGet, "/v1/logs", env.admin, nil)
		require.Equal(t, http.StatusOK, list.Code)

		entries := decodeBody[[]domain.LogEntry](t, list)
		require.NotEmpty(t, entries)
		require.Equal(t, "DEPLOY", entries[0].Action)
	})
}

func TestClientCRUDEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/clients", env.admin, map[string]string{
		"name":  "Acme",
		"email": "billing@acme.example",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	client := decodeBody[domain.Client](t, rec)
	require.NotEmpty(t, client.ID)

	rec = env.do(t, http.MethodPost, "/v1/projects", env.admin, map[string]any{
		"client_id": client.ID,
		"name":      "Redesign",
		"budget":    5000,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	project := decodeBody[domain.Project](t, rec)
	require.Equal(t, 5000.0, project.Balance)

	// Delete is refused while the project exists
	rec = env.do(t, http.MethodDelete, "/v1/clients/"+client.ID, env.admin, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodDelete, "/v1/projects/"+project.ID, env.admin, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, "/v1/clients/"+client.ID, env.admin, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/clients/"+client.ID, env.admin, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPaymentEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	client, err := env.ledger.CreateClient(ctx, "Acme", "")
	require.NoError(t, err)
	project, err := env.ledger.CreateProject(ctx, client.ID, "Redesign", 1000)
	require.NoError(t, err)

	rec := env.do(t, http.MethodPost, "/v1/payments", env.admin, map[string]any{
		"project_id": project.ID,
		"amount":     1200,
		"date":       "2026-08-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeBody[paymentResponse](t, rec)
	require.True(t, resp.Success)
	require.True(t, resp.Overpaid)

	got, err := env.ledger.GetProject(ctx, project.ID)
	require.NoError(t, err)
	require.Equal(t, 0.0, got.Balance)
	require.Equal(t, domain.StatusClosed, got.Status)
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
