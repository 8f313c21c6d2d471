package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/slidespace/backend/internal/adapters/http/session"
	"github.com/slidespace/backend/internal/config"
	"github.com/slidespace/backend/internal/core/domain"
	"github.com/slidespace/backend/internal/core/ports"
	"github.com/slidespace/backend/internal/observability/metrics"
)

const serviceName = "slidespace-api"

type Router struct {
	cfg      config.Config
	sessions *session.Manager
	metrics  *metrics.HTTPServerMetrics

	documents ports.DocumentService
	titles    ports.TitleService
	decks     ports.DeckService
	exports   ports.ExportService
	workspace ports.WorkspaceService
	auth      ports.AuthService
	reports   ports.ReportService
}

func NewRouter(
	cfg config.Config,
	sessions *session.Manager,
	serverMetrics *metrics.HTTPServerMetrics,
	documents ports.DocumentService,
	titles ports.TitleService,
	decks ports.DeckService,
	exports ports.ExportService,
	workspace ports.WorkspaceService,
	auth ports.AuthService,
	reports ports.ReportService,
) *Router {
	return &Router{
		cfg:       cfg,
		sessions:  sessions,
		metrics:   serverMetrics,
		documents: documents,
		titles:    titles,
		decks:     decks,
		exports:   exports,
		workspace: workspace,
		auth:      auth,
		reports:   reports,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	mux.HandleFunc("POST /v1/auth/register", rt.register)
	mux.HandleFunc("POST /v1/auth/login", rt.login)
	mux.HandleFunc("POST /v1/auth/logout", rt.authed(rt.logout))
	mux.HandleFunc("GET /v1/auth/me", rt.authed(rt.me))
	mux.HandleFunc("GET /v1/auth/csrf", rt.csrfToken)

	mux.HandleFunc("POST /v1/documents", rt.authed(rt.uploadDocument))
	mux.HandleFunc("GET /v1/documents/{id}", rt.authed(rt.getDocument))
	mux.HandleFunc("POST /v1/documents/{id}/titles/extract", rt.authed(rt.extractTitles))
	mux.HandleFunc("PUT /v1/documents/{id}/titles", rt.authed(rt.saveTitles))
	mux.HandleFunc("GET /v1/documents/{id}/titles", rt.authed(rt.getTitles))
	mux.HandleFunc("POST /v1/documents/{id}/slides/generate", rt.authed(rt.generateSlides))
	mux.HandleFunc("GET /v1/documents/{id}/slides", rt.authed(rt.getSlides))
	mux.HandleFunc("PUT /v1/documents/{id}/slides", rt.authed(rt.saveSlides))
	mux.HandleFunc("POST /v1/documents/{id}/exports", rt.authed(rt.exportPPTX))
	mux.HandleFunc("GET /v1/documents/{id}/exports", rt.authed(rt.listExports))
	mux.HandleFunc("POST /v1/exports/{id}/download", rt.authed(rt.downloadExport))
	mux.HandleFunc("POST /v1/documents/{id}/clear", rt.authed(rt.clearWorkspace))

	mux.HandleFunc("GET /v1/admin/reports/usage.xlsx", rt.authed(rt.adminOnly(rt.usageReport)))

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	if rt.cfg.APIMaxConcurrent > 0 {
		wait := time.Duration(rt.cfg.APIBackpressureWaitMS) * time.Millisecond
		handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, wait)
	}
	if rt.cfg.APIRateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authed verifies the session and, for state-changing methods, the CSRF
// double-submit header. The claims travel in the request context.
func (rt *Router) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := rt.sessions.FromRequest(r)
		if err != nil {
			writeError(w, err)
			return
		}
		if !claims.Authenticated() {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "login required"})
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			if err := rt.sessions.VerifyCSRF(r, claims); err != nil {
				writeError(w, err)
				return
			}
		}
		next(w, r.WithContext(session.NewContext(r.Context(), claims)))
	}
}

func (rt *Router) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := session.FromContext(r.Context())
		if !ok || claims.Role != string(domain.RoleAdmin) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin role required"})
			return
		}
		next(w, r)
	}
}

func callerID(r *http.Request) string {
	claims, ok := session.FromContext(r.Context())
	if !ok {
		return ""
	}
	return claims.UserID
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("write_response_failed", "error", err)
	}
}
