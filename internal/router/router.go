package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"brigade-backend/internal/handlers"
	"brigade-backend/internal/middleware"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authLimiter *middleware.RateLimiter,
	authHandler *handlers.AuthHandler,
	recordHandler *handlers.SessionRecordHandler,
	reportHandler *handlers.ReportHandler,
	pageHandler *handlers.PageHandler,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// ──── Pages ────
	r.Group(func(r chi.Router) {
		r.Get("/login", pageHandler.LoginForm)
		r.Get("/register", pageHandler.RegisterForm)
		r.Get("/logout", pageHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/login", pageHandler.Login)
			r.Post("/register", pageHandler.Register)
		})

		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.PageMiddleware)
			r.Get("/", pageHandler.Index)
			r.Get("/table", pageHandler.Table)
		})
	})

	r.Route("/api", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})
		r.Post("/logout", authHandler.Logout)

		// ──── Protected Routes ────
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/new-error", recordHandler.Create)
			r.Get("/error-history", recordHandler.History)
			r.Get("/error-list", reportHandler.ErrorList)
			r.Get("/user-list", reportHandler.UserList)
			r.Get("/leaderboard", reportHandler.Leaderboard)
			r.Get("/time-series", reportHandler.TimeSeries)
		})
	})

	return r
}
