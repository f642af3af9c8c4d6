package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handlers groups everything NewRouter mounts.
type Handlers struct {
	Auth     *controllers.AuthController
	Events   *controllers.EventController
	Verifier domain.TokenVerifier
	Logger   *slog.Logger
	// Health is pinged by /healthz. Nil reports healthy.
	Health Pinger
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(h.Verifier, h.Logger)
	optionalAuth := middleware.OptionalAuth(h.Verifier)

	// Auth
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("GET /api/auth/me", requireAuth(h.Auth.Me))

	// Events
	mux.HandleFunc("GET /api/events", optionalAuth(h.Events.ListEvents))
	mux.HandleFunc("GET /api/events/category/{category}", h.Events.ListEventsByCategory)
	mux.HandleFunc("GET /api/events/{eventID}", h.Events.GetEvent)
	mux.HandleFunc("POST /api/events", requireAuth(h.Events.CreateEvent))
	mux.HandleFunc("PUT /api/events/{eventID}", requireAuth(h.Events.UpdateEvent))
	mux.HandleFunc("DELETE /api/events/{eventID}", requireAuth(h.Events.DeleteEvent))
	mux.HandleFunc("POST /api/events/{eventID}/save", requireAuth(h.Events.ToggleSave))

	// Users
	mux.HandleFunc("GET /api/users/me/saved", requireAuth(h.Events.ListSavedEvents))

	mux.HandleFunc("GET /healthz", healthHandler(h.Health, h.Logger))
	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics)
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

func healthHandler(p Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.PingContext(ctx); err != nil {
				logger.ErrorContext(r.Context(), "health check failed", "err", err)
				helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeInternalError, "database unavailable")
				return
			}
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
