package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/contestkit/arena/internal/api/handlers"
	"github.com/contestkit/arena/internal/api/middleware"
)

// Router wraps the HTTP multiplexer with middleware and handlers
type Router struct {
	mux        *http.ServeMux
	app        *App
	contest    *handlers.ContestHandler
	submission *handlers.SubmissionHandler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(app *App) (http.Handler, error) {
	r := &Router{
		mux: http.NewServeMux(),
		app: app,
	}

	// Initialize handlers
	r.contest = handlers.NewContestHandler(app.Service)
	r.submission = handlers.NewSubmissionHandler(app.Service)

	// Register routes
	r.registerRoutes()

	// Build middleware chain
	handler := r.buildMiddlewareChain(r.mux, app)

	return handler, nil
}

func (r *Router) registerRoutes() {
	// Health check
	r.mux.HandleFunc("GET /health", r.handleHealth)
	r.mux.HandleFunc("GET /ready", r.handleReady)

	// Contests (public read)
	r.mux.HandleFunc("GET /api/v1/contests", r.contest.List)
	r.mux.HandleFunc("GET /api/v1/contests/{id}/catalog", r.contest.Catalog)
	r.mux.HandleFunc("POST /api/v1/contests/{id}/catalog/refresh", r.contest.Refresh)
	r.mux.HandleFunc("GET /api/v1/contests/{id}/milestones/{milestone}/statement", r.contest.Statement)

	// Progression and artifacts (requires auth)
	r.mux.HandleFunc("GET /api/v1/contests/{id}/progression", r.requireAuth(r.contest.Progression))
	r.mux.HandleFunc("GET /api/v1/contests/{id}/milestones/{milestone}/testcases/{testcase}/input",
		r.requireAuth(r.contest.DownloadInput))

	// Statistics and history (requires auth, only when the backend
	// keeps submission history)
	if r.app.Stats != nil {
		stats := handlers.NewStatsHandler(r.app.Stats, r.app.History)
		r.mux.HandleFunc("GET /api/v1/contests/{id}/stats", r.requireAuth(stats.UserStats))
		if r.app.History != nil {
			r.mux.HandleFunc("GET /api/v1/contests/{id}/milestones/{milestone}/testcases/{testcase}/submissions",
				r.requireAuth(stats.History))
		}
	}

	// Submissions (requires auth, stricter rate limit)
	submitLimit := middleware.SubmissionRateLimitMiddleware(middleware.DefaultRateLimitConfig())
	r.mux.Handle("POST /api/v1/contests/{id}/milestones/{milestone}/testcases/{testcase}/submissions",
		submitLimit(r.requireAuth(r.submission.Submit)))
}

func (r *Router) buildMiddlewareChain(handler http.Handler, app *App) http.Handler {
	// Apply middleware in reverse order (last applied = first executed)
	handler = middleware.Recovery(handler)
	handler = middleware.Logger(handler)

	// Apply rate limiting (skip in debug mode for easier development)
	if !app.Config.Debug {
		handler = middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig())(handler)
	}

	handler = middleware.RequestID(handler)
	handler = middleware.CORS(handler)

	return handler
}

// requireAuth wraps a handler with bearer token authentication
func (r *Router) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		token, ok := bearerToken(req)
		if !ok {
			handlers.Unauthorized(w, req, "authentication required")
			return
		}

		identity, err := r.app.Verifier.Verify(req.Context(), token)
		if err != nil {
			slog.Warn("token rejected",
				"error", err,
				"request_id", middleware.GetRequestID(req.Context()),
			)
			handlers.Unauthorized(w, req, "invalid or unknown token")
			return
		}

		ctx := context.WithValue(req.Context(), handlers.ContextKeyIdentity, identity)
		next(w, req.WithContext(ctx))
	}
}

func bearerToken(req *http.Request) (string, bool) {
	header := req.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// Health check handlers
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	r.jsonResponse(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (r *Router) handleReady(w http.ResponseWriter, req *http.Request) {
	checks := map[string]string{"database": "not configured"}

	if r.app.DB != nil {
		if err := r.app.DB.PingContext(req.Context()); err != nil {
			slog.Error("database health check failed",
				"error", err,
				"request_id", middleware.GetRequestID(req.Context()),
			)
			checks["database"] = "unhealthy"
			r.jsonResponse(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not ready",
				"checks": checks,
			})
			return
		}
		checks["database"] = "healthy"
	}

	r.jsonResponse(w, http.StatusOK, map[string]any{
		"status": "ready",
		"checks": checks,
	})
}

// Helper for JSON responses
func (r *Router) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}
