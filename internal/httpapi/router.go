// Package httpapi is the HTTP surface of the backend gateway.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wtfmahe/PeeP/internal/realtime"
)

type Deps struct {
	Auth    AuthService
	Friends FriendService
	Relay   PushRelay
	// Realtime is served over websockets at /realtime. Optional.
	Realtime    realtime.Feed
	AuthLimiter RateLimiter
	Logger      *slog.Logger
}

func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	auth := authHandler{auth: deps.Auth}
	friends := friendHandler{friends: deps.Friends}
	devices := pushHandler{auth: deps.Auth, relay: deps.Relay}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(contextLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Use(rateLimit(deps.AuthLimiter, "auth"))
		r.Post("/signup", auth.signUp)
		r.Post("/signin", auth.signIn)
		r.Post("/refresh", auth.refresh)
		r.Post("/signout", auth.signOut)
		r.Post("/signout-all", auth.signOutAll)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth(deps.Auth))

		r.Get("/friends", friends.list)
		r.Get("/friends/requests", friends.pending)
		r.Post("/friends/requests", friends.send)
		r.Post("/friends/requests/{id}/accept", friends.accept)
		r.Delete("/friends/requests/{id}", friends.reject)

		r.Put("/me/push-token", devices.register)
		r.Delete("/me/push-token", devices.clear)

		r.Post("/functions/send-peep-notification", devices.sendPeepNotification)

		if deps.Realtime != nil {
			r.Handle("/realtime", realtime.NewBridge(deps.Realtime, realtimeScope(deps.Friends), logger))
		}
	})

	return r
}
