package main

import (
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

func (app *Application) routes() http.Handler {
	router := chi.NewRouter()
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.Http.NotFound(w, r, "Page not found")
	})
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(app.Recoverer)
	router.Use(app.RateLimiter)
	router.Use(app.Authenticate)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", app.healthcheck)
		r.Route("/search", func(r chi.Router) {
			r.Post("/", app.createSearchSession)
			r.Get("/{sessionID}", app.getSearchState)
			r.Put("/{sessionID}/query", app.setSearchQuery)
			r.Delete("/{sessionID}", app.cancelSearchSession)
		})
		r.Route("/movies", func(r chi.Router) {
			r.Get("/{id}", app.getMovie)
			r.Get("/{id}/reviews", app.listMovieReviews)
		})
		r.Route("/reviews", func(r chi.Router) {
			r.Use(app.requireAuthenticatedUser)
			r.Post("/", app.createReview)
			r.Patch("/{id}", app.updateReview)
			r.Delete("/{id}", app.deleteReview)
		})
		r.With(app.requireAuthenticatedUser).Get("/profile", app.getProfile)
	})
	return router
}
