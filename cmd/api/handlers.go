package main

import (
	"errors"
	"net/http"

	"cinelog/proj/internal/services/movies"
	"cinelog/proj/internal/services/ratings"
	"cinelog/proj/internal/services/reviews"
	"cinelog/proj/internal/services/search"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func (app *Application) healthcheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, struct {
		Status  string `json:"status"`
		Debug   bool   `json:"debug"`
		Version string `json:"version"`
	}{
		Status:  "available",
		Debug:   app.cfg.Debug,
		Version: version,
	})
}

// SEARCH SESSIONS

func (app *Application) createSearchSession(w http.ResponseWriter, r *http.Request) {
	id := app.search.Open()
	app.Http.Created(w, r, envelop{"session_id": id}, "Search session created")
}

func (app *Application) getSearchState(w http.ResponseWriter, r *http.Request) {
	controller, err := app.search.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		app.Http.NotFound(w, r, "Search session not found")
		return
	}
	app.Http.Ok(w, r, envelop{"search": controller.Snapshot()}, "")
}

func (app *Application) setSearchQuery(w http.ResponseWriter, r *http.Request) {
	controller, err := app.search.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		app.Http.NotFound(w, r, "Search session not found")
		return
	}
	var input struct {
		Text string `json:"text"`
	}
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	controller.SetQuery(input.Text)
	app.Http.Ok(w, r, envelop{"search": controller.Snapshot()}, "")
}

func (app *Application) cancelSearchSession(w http.ResponseWriter, r *http.Request) {
	if err := app.search.Close(chi.URLParam(r, "sessionID")); err != nil {
		app.Http.NotFound(w, r, "Search session not found")
		return
	}
	app.Http.Ok(w, r, nil, "Search session closed")
}

// MOVIES

func (app *Application) getMovie(w http.ResponseWriter, r *http.Request) {
	view, err := app.movies.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, movies.ErrMovieNotFound) {
			app.Http.NotFound(w, r, "Movie not found")
			return
		}
		app.handleReviewError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{
		"movie":          view.Movie,
		"reviews":        view.Reviews,
		"average_rating": view.AverageRating,
	}, "")
}

func (app *Application) listMovieReviews(w http.ResponseWriter, r *http.Request) {
	manager := app.reviewManager(reviews.MovieScope(chi.URLParam(r, "id")))
	if err := manager.Load(r.Context()); err != nil {
		app.handleReviewError(w, r, err)
		return
	}
	view := manager.Snapshot()
	app.Http.Ok(w, r, envelop{
		"reviews":        view.Reviews,
		"average_rating": ratings.Average(view.Reviews),
	}, "")
}

// REVIEWS

func (app *Application) createReview(w http.ResponseWriter, r *http.Request) {
	var draft reviews.Draft
	if err := app.readJSON(w, r, &draft); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	manager := app.reviewManager(reviews.MovieScope(draft.MovieID))
	if err := manager.Create(r.Context(), app.currentUser(r), draft); err != nil {
		app.handleReviewError(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"reviews": manager.Snapshot().Reviews}, "Review posted")
}

func (app *Application) updateReview(w http.ResponseWriter, r *http.Request) {
	var input struct {
		MovieID string `json:"movie_id"`
		Text    string `json:"text"`
		Rating  int    `json:"rating"`
	}
	if err := app.readJSON(w, r, &input); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	user := app.currentUser(r)
	manager := app.reviewManager(reviews.MovieScope(input.MovieID))
	if err := manager.Load(r.Context()); err != nil {
		app.handleReviewError(w, r, err)
		return
	}
	if err := manager.BeginEdit(user, chi.URLParam(r, "id")); err != nil {
		app.handleReviewError(w, r, err)
		return
	}
	err := manager.CommitEdit(r.Context(), user, reviews.EditDraft{Text: input.Text, Rating: input.Rating})
	if err != nil {
		manager.CancelEdit()
		app.handleReviewError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"reviews": manager.Snapshot().Reviews}, "Review updated")
}

func (app *Application) deleteReview(w http.ResponseWriter, r *http.Request) {
	var params struct {
		MovieID string `schema:"movie_id"`
		Confirm bool   `schema:"confirm"`
	}
	if err := app.readQuery(r, &params); err != nil {
		app.Http.BadRequest(w, r, err.Error())
		return
	}
	user := app.currentUser(r)
	scope := reviews.UserScope(user.UID)
	if params.MovieID != "" {
		scope = reviews.MovieScope(params.MovieID)
	}
	manager := app.reviewManager(scope)
	if err := manager.Load(r.Context()); err != nil {
		app.handleReviewError(w, r, err)
		return
	}
	if err := manager.Delete(r.Context(), user, chi.URLParam(r, "id"), params.Confirm); err != nil {
		app.handleReviewError(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"reviews": manager.Snapshot().Reviews}, "Review deleted")
}

// PROFILE

func (app *Application) getProfile(w http.ResponseWriter, r *http.Request) {
	user := app.currentUser(r)
	manager := app.reviewManager(reviews.UserScope(user.UID))
	if err := manager.Load(r.Context()); err != nil {
		app.handleReviewError(w, r, err)
		return
	}
	view := manager.Snapshot()
	app.Http.Ok(w, r, envelop{
		"user":           user,
		"reviews":        view.Reviews,
		"average_rating": ratings.Average(view.Reviews),
	}, "")
}

// handleReviewError maps the lifecycle manager's typed failures onto
// HTTP statuses so the presentation layer can show a retry affordance
// where appropriate.
func (app *Application) handleReviewError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, reviews.ErrInvalidDraft):
		app.Http.UnprocessableEntity(w, r, err.Error())
	case errors.Is(err, reviews.ErrReviewNotFound):
		app.Http.NotFound(w, r, "Review not found")
	case errors.Is(err, reviews.ErrNotOwner):
		app.Http.Forbidden(w, r, "Only the review's owner can modify it")
	case errors.Is(err, reviews.ErrConflict):
		app.Http.Conflict(w, r, "Review was deleted concurrently, refresh and try again")
	case errors.Is(err, reviews.ErrNotConfirmed):
		app.Http.BadRequest(w, r, "Deletion requires confirm=true")
	case errors.Is(err, reviews.ErrNoActiveEdit):
		app.Http.Conflict(w, r, "No review is currently being edited")
	case errors.Is(err, reviews.ErrUnavailable):
		app.Http.ServiceUnavailable(w, r, "Review store is temporarily unavailable, try again later")
	case errors.Is(err, search.ErrSessionNotFound):
		app.Http.NotFound(w, r, "Search session not found")
	default:
		app.Http.ServerError(w, r, err, "")
	}
}
