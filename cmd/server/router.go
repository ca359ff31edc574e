package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ali-aktas/HocaLingo-sub003/internal/api"
	apiMiddleware "github.com/ali-aktas/HocaLingo-sub003/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceID)

	authHandler := api.NewAuthHandler(
		app.userStore,
		app.jwtService,
		app.passwordVerifier,
		app.config.Auth,
		app.logger,
	)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	cardHandler := api.NewCardHandler(app.cardStore, app.studyService, app.logger)
	studyHandler := api.NewStudyHandler(app.studyService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Card browsing and study-set membership
			r.Get("/cards", cardHandler.ListCards)
			r.Post("/cards/select", cardHandler.SelectCards)
			r.Delete("/cards/{id}/select", cardHandler.DeselectCard)

			// Study session endpoints
			r.Get("/study/queue", studyHandler.GetQueue)
			r.Post("/study/cards/{id}/answer", studyHandler.SubmitAnswer)
			r.Get("/study/progress", studyHandler.GetDailyProgress)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
