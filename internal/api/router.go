package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appmiddleware "revengine/internal/middleware"
)

// Services groups the service-layer dependencies the router needs to wire
// every resource family's handler.
type Services struct {
	Documents documentService
	Compare   compareService
	Merge     mergeService
	Workflows workflowService
}

// RouterConfig configures router-level middleware.
type RouterConfig struct {
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// NewRouter assembles the full chi.Mux: middleware chain, health check, and
// every resource family's routes.
func NewRouter(svc Services, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(appmiddleware.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Actor-Id", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(appmiddleware.RateLimiter(appmiddleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, Error{Code: http.StatusNotFound, Message: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, Error{Code: http.StatusMethodNotAllowed, Message: "method not allowed"})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	NewDocumentsHandler(svc.Documents).Routes(r)
	NewCompareHandler(svc.Compare).Routes(r)
	NewMergeHandler(svc.Merge).Routes(r)
	NewWorkflowsHandler(svc.Workflows).Routes(r)

	return r
}
