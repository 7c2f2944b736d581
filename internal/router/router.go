package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"pathwise-backend/internal/handlers"
	"pathwise-backend/internal/middleware"
	"pathwise-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	modulesHandler *handlers.ModulesHandler,
	progressHandler *handlers.ProgressHandler,
	userHandler *handlers.UserHandler,
	pageHandler *handlers.PageHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── Catalog Routes ────
		// Listing is public; the auth flag in the response tells the client
		// whether it can layer progress on top.
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Optional)
			r.Get("/modules", modulesHandler.GetModules)
			r.Get("/modules/{id}", modulesHandler.GetModule)
			r.Get("/search", modulesHandler.Search)
		})

		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/lessons/{id}", modulesHandler.GetLesson)
		})

		// ──── Progress Routes ────
		r.Route("/progress", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", progressHandler.GetProgress)
			r.Post("/", progressHandler.CompleteLesson)
		})

		// ──── User & Settings Routes ────
		r.Route("/user", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/me", userHandler.GetMe)
			r.Put("/me", userHandler.UpdateMe)
			r.Put("/password", userHandler.ChangePassword)
			r.Delete("/me", userHandler.DeleteMe)
			r.Get("/preferences", userHandler.GetPreferences)
			r.Put("/preferences", userHandler.UpdatePreferences)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	// ──── Static assets for the page shells ────
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// ──── Auth code exchange ────
	// Never gated: the caller is mid sign-in.
	r.Get("/auth/callback", authHandler.Callback)

	// ──── Auth views ────
	r.Group(func(r chi.Router) {
		r.Use(jwtAuth.RedirectIfAuthed("/dashboard"))
		r.Get("/login", pageHandler.Login)
		r.Get("/signup", pageHandler.Signup)
	})

	// ──── App views (session required) ────
	r.Group(func(r chi.Router) {
		r.Use(jwtAuth.RequirePage)
		r.Get("/dashboard", pageHandler.Page("dashboard", "Dashboard"))
		r.Get("/modules", pageHandler.Page("modules", "Modules"))
		r.Get("/lessons", pageHandler.Page("lessons", "Lessons"))
		r.Get("/progress", pageHandler.Page("progress", "Progress"))
		r.Get("/achievements", pageHandler.Page("achievements", "Achievements"))
		r.Get("/schedule", pageHandler.Page("schedule", "Schedule"))
		r.Get("/community", pageHandler.Page("community", "Community"))
		r.Get("/profile", pageHandler.Page("profile", "Profile"))
		r.Get("/settings", pageHandler.Page("settings", "Settings"))
		r.Get("/help", pageHandler.Page("help", "Help Center"))
	})

	// Landing page redirects signed-in users to the dashboard
	r.Group(func(r chi.Router) {
		r.Use(jwtAuth.Optional)
		r.Get("/", pageHandler.Home)
	})

	return r
}
