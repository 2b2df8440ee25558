package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fernlabs/clientdash/internal/dash/domain"
	"github.com/fernlabs/clientdash/internal/dash/service"
	"github.com/fernlabs/clientdash/internal/dash/store"
	"github.com/fernlabs/clientdash/pkg/httpx"
	"github.com/fernlabs/clientdash/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier      httpx.SessionVerifier
	adminAPIKey   string
	publicBaseURL string
	buildVersion  string
	startTime     time.Time
	logger        *slog.Logger

	store         store.Store
	LedgerService *service.LedgerService
	TokenService  *service.TokenService
	AuditService  *service.AuditService
	AuthService   *service.AuthService
}

func NewRouter(
	verifier httpx.SessionVerifier,
	adminAPIKey, publicBaseURL, buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		verifier:      verifier,
		adminAPIKey:   adminAPIKey,
		publicBaseURL: publicBaseURL,
		buildVersion:  buildVersion,
		startTime:     time.Now(),
		store:         st,
		logger:        logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTokens()
	r.registerClientData()
	r.registerClients()
	r.registerProjects()
	r.registerPayments()
	r.registerLogs()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured wraps an admin API handler: valid session required, writes
// additionally require the admin role.
func (r *Router) secured(h http.Handler, adminOnly bool) http.Handler {
	mws := []httpx.Middleware{httpx.AuthnMiddleware(r.verifier)}
	if adminOnly {
		mws = append(mws, httpx.RequireRole(domain.RoleAdmin))
	}
	mws = append(mws, httpx.RateLimitByUser(httpx.ModerateLimit))
	return httpx.Chain(h, mws...)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// POST /auth/login - strict rate limit (authentication attempts)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerTokens() {
	h := &TokensHandler{
		TokenService:  r.TokenService,
		PublicBaseURL: r.publicBaseURL,
	}

	r.Mux.Handle("POST /v1/tokens/generate", r.secured(http.HandlerFunc(h.HandleGenerate), true))
}

func (r *Router) registerClientData() {
	h := &ClientDataHandler{TokenService: r.TokenService}

	// Public token-gated endpoint. Strict IP limit so tokens cannot be
	// guessed by brute force.
	limited := httpx.RateLimitByIP(httpx.StrictLimit)
	r.Mux.Handle("GET /v1/client-data", httpx.Chain(http.HandlerFunc(h.HandleGet), limited))
	r.Mux.Handle("POST /v1/client-data", httpx.Chain(http.HandlerFunc(h.HandlePost), limited))
}

func (r *Router) registerClients() {
	h := &ClientsHandler{LedgerService: r.LedgerService}

	r.Mux.Handle("GET /v1/clients", r.secured(http.HandlerFunc(h.HandleList), false))
	r.Mux.Handle("GET /v1/clients/{id}", r.secured(http.HandlerFunc(h.HandleGet), false))
	r.Mux.Handle("POST /v1/clients", r.secured(http.HandlerFunc(h.HandleCreate), true))
	r.Mux.Handle("PUT /v1/clients/{id}", r.secured(http.HandlerFunc(h.HandleUpdate), true))
	r.Mux.Handle("DELETE /v1/clients/{id}", r.secured(http.HandlerFunc(h.HandleDelete), true))
}

func (r *Router) registerProjects() {
	h := &ProjectsHandler{LedgerService: r.LedgerService}

	r.Mux.Handle("GET /v1/projects", r.secured(http.HandlerFunc(h.HandleList), false))
	r.Mux.Handle("GET /v1/projects/{id}", r.secured(http.HandlerFunc(h.HandleGet), false))
	r.Mux.Handle("GET /v1/clients/{id}/projects", r.secured(http.HandlerFunc(h.HandleListByClient), false))
	r.Mux.Handle("POST /v1/projects", r.secured(http.HandlerFunc(h.HandleCreate), true))
	r.Mux.Handle("PUT /v1/projects/{id}", r.secured(http.HandlerFunc(h.HandleUpdate), true))
	r.Mux.Handle("DELETE /v1/projects/{id}", r.secured(http.HandlerFunc(h.HandleDelete), true))
}

func (r *Router) registerPayments() {
	h := &PaymentsHandler{LedgerService: r.LedgerService}

	r.Mux.Handle("GET /v1/projects/{id}/payments", r.secured(http.HandlerFunc(h.HandleListByProject), false))
	r.Mux.Handle("POST /v1/payments", r.secured(http.HandlerFunc(h.HandleCreate), true))
	r.Mux.Handle("PUT /v1/payments/{id}", r.secured(http.HandlerFunc(h.HandleUpdate), true))
	r.Mux.Handle("DELETE /v1/payments/{id}", r.secured(http.HandlerFunc(h.HandleDelete), true))
}

func (r *Router) registerLogs() {
	h := &LogsHandler{
		AuditService: r.AuditService,
		AdminAPIKey:  r.adminAPIKey,
	}

	r.Mux.Handle("GET /v1/logs", r.secured(http.HandlerFunc(h.HandleList), false))

	// POST /admin/log - external writers authenticate with a shared API key
	// instead of a session. Moderate IP limit.
	r.Mux.Handle("POST /v1/admin/log",
		httpx.Chain(http.HandlerFunc(h.HandleAppend),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
