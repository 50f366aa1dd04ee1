package api

import (
	"debug_contest/internal/api/handler"
	"debug_contest/internal/app/projector"
	"debug_contest/internal/app/service"
	"debug_contest/internal/common/security"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	contestService *service.ContestService,
	adminService *service.AdminService,
	leaderboard *projector.Leaderboard,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	// No router-wide timeout: the live leaderboard WebSocket is long-lived.
	// Request timeouts are applied per route group below.

	// JWT Auth Middleware Setup
	// Verifies the team session token from "Authorization: Bearer T" and puts
	// claims in context; enforcement happens in middleware.Authenticator on
	// the contest routes.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Team login (public)
		authHandler := handler.NewAuthHandler(authService)
		v1.Group(func(publicAuth chi.Router) {
			publicAuth.Use(chiMiddleware.Timeout(60 * time.Second))
			authHandler.RegisterRoutes(publicAuth)
		})

		// Contest routes (team session required)
		contestHandler := handler.NewContestHandler(contestService)
		v1.Route("/contest", func(r chi.Router) {
			r.Use(chiMiddleware.Timeout(60 * time.Second))
			contestHandler.RegisterRoutes(r)
		})

		// Leaderboard routes (public, read-only)
		leaderboardHandler := handler.NewLeaderboardHandler(leaderboard)
		v1.Route("/leaderboard", leaderboardHandler.RegisterRoutes)

		// Operator routes (admin key required)
		adminHandler := handler.NewAdminHandler(adminService)
		v1.Route("/admin", func(r chi.Router) {
			r.Use(chiMiddleware.Timeout(60 * time.Second))
			adminHandler.RegisterRoutes(r)
		})
	})

	return r
}
