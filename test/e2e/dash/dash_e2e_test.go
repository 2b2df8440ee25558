package dash_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fernlabs/clientdash/internal/dash/domain"
	dashhttp "github.com/fernlabs/clientdash/internal/dash/http"
	"github.com/fernlabs/clientdash/internal/dash/service"
	"github.com/fernlabs/clientdash/internal/dash/store/drivers/sqlite"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "correct horse battery staple"
	adminAPIKey   = "e2e-api-key"
)

// setupServer wires the full stack against a real sqlite database and returns
// a running test server.
func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	auth := &service.AuthService{Store: st, Secret: []byte("e2e-secret")}
	require.NoError(t, auth.SeedAdmin(ctx, adminEmail, adminPassword, "Admin"))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := dashhttp.NewRouter(auth, adminAPIKey, "http://dash.example", "e2e", st, logger)
	router.LedgerService = &service.LedgerService{Store: st}
	router.TokenService = &service.TokenService{Store: st}
	router.AuditService = &service.AuditService{Store: st}
	router.AuthService = auth
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, bearer string, body any) *http.Response {
	t.Helper()

	buf, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(buf))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// TestDashboardFlow walks the whole operator journey: login, create a client
// and project, record payments, hand the client a share link, and check the
// audit trail saw all of it.
func TestDashboardFlow(t *testing.T) {
	srv := setupServer(t)

	// Login as the seeded admin
	resp := postJSON(t, srv.URL+"/v1/auth/login", "", map[string]string{
		"email":    adminEmail,
		"password": adminPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[struct {
		Token string `json:"token"`
	}](t, resp)
	require.NotEmpty(t, login.Token)

	// Create a client and a project
	resp = postJSON(t, srv.URL+"/v1/clients", login.Token, map[string]string{
		"name":  "Acme Pty Ltd",
		"email": "billing@acme.example",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	client := decode[domain.Client](t, resp)

	resp = postJSON(t, srv.URL+"/v1/projects", login.Token, map[string]any{
		"client_id": client.ID,
		"name":      "Website Redesign",
		"budget":    5000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	project := decode[domain.Project](t, resp)
	require.Equal(t, 5000.0, project.Balance)

	// Record a partial payment, then overpay
	resp = postJSON(t, srv.URL+"/v1/payments", login.Token, map[string]any{
		"project_id": project.ID,
		"amount":     2000,
		"date":       "2026-08-01",
		"type":       "bank transfer",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	first := decode[struct {
		Overpaid bool `json:"overpaid"`
	}](t, resp)
	require.False(t, first.Overpaid)

	resp = postJSON(t, srv.URL+"/v1/payments", login.Token, map[string]any{
		"project_id": project.ID,
		"amount":     4000,
		"date":       "2026-08-15",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	second := decode[struct {
		Overpaid bool `json:"overpaid"`
	}](t, resp)
	require.True(t, second.Overpaid)

	// Generate a share link and use it anonymously
	resp = postJSON(t, srv.URL+"/v1/tokens/generate", login.Token, map[string]string{
		"client_id": client.ID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	link := decode[struct {
		Token string `json:"token"`
		Link  string `json:"link"`
	}](t, resp)
	require.Contains(t, link.Link, link.Token)

	getResp, err := http.Get(srv.URL + "/v1/client-data?token=" + link.Token)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	data := decode[struct {
		Success bool `json:"success"`
		Data    struct {
			Client   domain.Client    `json:"client"`
			Projects []domain.Project `json:"projects"`
			Payments []domain.Payment `json:"payments"`
		} `json:"data"`
	}](t, getResp)
	require.True(t, data.Success)
	require.Equal(t, client.ID, data.Data.Client.ID)
	require.Len(t, data.Data.Projects, 1)
	require.Len(t, data.Data.Payments, 2)
	require.Equal(t, 0.0, data.Data.Projects[0].Balance)
	require.Equal(t, domain.StatusClosed, data.Data.Projects[0].Status)

	// External system appends to the audit log with the shared key
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/admin/log",
		bytes.NewBufferString(`{"action":"DEPLOY","detail":"dashboard v2 rolled out"}`))
	require.NoError(t, err)
	req.Header.Set("x-admin-api-key", adminAPIKey)
	logResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, logResp.StatusCode)
	logResp.Body.Close()

	// The trail shows the whole journey
	listReq, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/logs?limit=50", nil)
	require.NoError(t, err)
	listReq.Header.Set("Authorization", "Bearer "+login.Token)
	listResp, err := http.DefaultClient.Do(listReq)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	entries := decode[[]domain.LogEntry](t, listResp)

	seen := map[string]bool{}
	for _, e := range entries {
		seen[e.Action] = true
	}
	for _, action := range []string{
		domain.ActionClientCreate,
		domain.ActionProjectCreate,
		domain.ActionPaymentCreate,
		domain.ActionLinkGenerated,
		domain.ActionClientAccess,
		"DEPLOY",
	} {
		require.True(t, seen[action], "expected audit action %s", action)
	}
}
