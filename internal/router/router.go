// Package router sets up all HTTP routes and middleware chains for the
// wallpaper studio API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/handlers"
	"github.com/PerfectlyContent/daily-wallpaper-studio/internal/middleware"
)

// Options configure the middleware around the API.
type Options struct {
	// Sessions issues visitor sessions; nil disables them.
	Sessions   middleware.Sessions
	DemoUserID string
	// RateLimiter throttles /api per client IP; nil disables it.
	RateLimiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and routes wired up.
func New(api *handlers.API, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Identify runs before Logger so the access log carries the user.
		r.Use(middleware.Identify(opts.Sessions, opts.DemoUserID))
		r.Use(middleware.Logger)
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Middleware)
		}

		r.Get("/daily-status", api.DailyStatus)
		r.Post("/generate", api.Generate)
		r.Post("/conversation-turn", api.ConversationTurn)
		r.Post("/conversation-reset", api.ConversationReset)
		r.Get("/history", api.History)
		r.Get("/library", api.Library)
		r.Get("/cache-stats", api.CacheStats)

		// Static catalog
		r.Get("/styles", api.Styles)
		r.Get("/presets", api.Presets)
		r.Get("/wish-options", api.WishOptions)
		r.Post("/wish", api.Wish)
		r.Get("/surprise", api.Surprise)
		r.Get("/loading-message", api.LoadingMessage)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
