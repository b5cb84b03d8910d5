package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cinelog/proj/internal/domain/models"
	"cinelog/proj/internal/services/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	results map[string][]models.MovieSummary
}

func (s *stubSearcher) Search(_ context.Context, term string) ([]models.MovieSummary, error) {
	return s.results[term], nil
}

type apiResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func doRequest(t *testing.T, handler http.Handler, method, target, body string) (int, apiResponse) {
	t.Helper()
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w.Code, resp
}

func TestHealthcheck(t *testing.T) {
	app := newTestApplication(t)
	app.search = search.NewRegistry(app.log, &stubSearcher{}, nil, time.Millisecond, time.Minute)
	router := app.routes()

	r := httptest.NewRequest(http.MethodGet, "/api/v1/healthcheck", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"available"`)
}

func TestSearchSessionLifecycle(t *testing.T) {
	app := newTestApplication(t)
	searcher := &stubSearcher{results: map[string][]models.MovieSummary{
		"batman": {{ID: "tt0372784", Title: "Batman Begins", Year: "2005"}},
	}}
	app.search = search.NewRegistry(app.log, searcher, nil, time.Millisecond, time.Minute)
	router := app.routes()

	code, resp := doRequest(t, router, http.MethodPost, "/api/v1/search", "")
	require.Equal(t, http.StatusCreated, code)
	sessionID, _ := resp.Data["session_id"].(string)
	require.NotEmpty(t, sessionID)

	code, _ = doRequest(t, router, http.MethodPut, "/api/v1/search/"+sessionID+"/query", `{"text": "batman"}`)
	require.Equal(t, http.StatusOK, code)

	require.Eventually(t, func() bool {
		_, resp := doRequest(t, router, http.MethodGet, "/api/v1/search/"+sessionID, "")
		state, _ := resp.Data["search"].(map[string]any)
		return state["status"] == string(search.StatusResults)
	}, time.Second, 5*time.Millisecond, "debounced lookup must eventually publish results")

	code, _ = doRequest(t, router, http.MethodDelete, "/api/v1/search/"+sessionID, "")
	require.Equal(t, http.StatusOK, code)

	code, _ = doRequest(t, router, http.MethodGet, "/api/v1/search/"+sessionID, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSearchUnknownSession(t *testing.T) {
	app := newTestApplication(t)
	app.search = search.NewRegistry(app.log, &stubSearcher{}, nil, time.Millisecond, time.Minute)
	router := app.routes()

	code, _ := doRequest(t, router, http.MethodGet, "/api/v1/search/no-such-session", "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = doRequest(t, router, http.MethodPut, "/api/v1/search/no-such-session/query", `{"text": "x"}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestReviewRoutesRequireAuthentication(t *testing.T) {
	app := newTestApplication(t)
	app.search = search.NewRegistry(app.log, &stubSearcher{}, nil, time.Millisecond, time.Minute)
	router := app.routes()

	code, _ := doRequest(t, router, http.MethodPost, "/api/v1/reviews", `{"movie_id": "tt1", "text": "x", "rating": 3}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = doRequest(t, router, http.MethodDelete, "/api/v1/reviews/rev-1?confirm=true", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = doRequest(t, router, http.MethodGet, "/api/v1/profile", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}
