package metadata

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := New(log, server.URL, "test-key", time.Second)
	require.NoError(t, err)
	return client
}

func TestNewRequiresConfig(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := New(log, "", "key", time.Second)
	assert.Error(t, err)
	_, err = New(log, "http://example.com", "", time.Second)
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "batman", r.URL.Query().Get("s"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		io.WriteString(w, `{
			"Search": [
				{"imdbID": "tt0372784", "Title": "Batman Begins", "Year": "2005", "Poster": "http://img/poster.jpg"},
				{"imdbID": "tt0096895", "Title": "Batman", "Year": "1989", "Poster": "N/A"}
			],
			"totalResults": "2",
			"Response": "True"
		}`)
	})

	movies, err := client.Search(context.Background(), "batman")
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "tt0372784", movies[0].ID)
	assert.Equal(t, "Batman Begins", movies[0].Title)
	assert.Equal(t, "http://img/poster.jpg", movies[0].PosterURL)
	assert.Empty(t, movies[1].PosterURL, "N/A posters must map to an empty URL")
}

func TestSearchNoMatches(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"Response": "False", "Error": "Movie not found!"}`)
	})

	movies, err := client.Search(context.Background(), "zzzzzz")
	assert.NoError(t, err, "zero matches is not a failure")
	assert.Empty(t, movies)
}

func TestSearchServiceError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Search(context.Background(), "batman")
	assert.ErrorContains(t, err, "status 500")
}

func TestFetchByID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tt0133093", r.URL.Query().Get("i"))
		io.WriteString(w, `{
			"imdbID": "tt0133093",
			"Title": "The Matrix",
			"Year": "1999",
			"Poster": "N/A",
			"Genre": "Action, Sci-Fi",
			"Runtime": "136 min",
			"Plot": "A hacker learns the truth.",
			"Director": "Lana Wachowski, Lilly Wachowski",
			"Actors": "Keanu Reeves",
			"Language": "English",
			"Awards": "Won 4 Oscars",
			"imdbRating": "8.7",
			"Response": "True"
		}`)
	})

	movie, err := client.FetchByID(context.Background(), "tt0133093")
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", movie.Title)
	assert.Equal(t, "136 min", movie.Runtime)
	assert.Equal(t, "8.7", movie.ImdbRating)
	assert.Empty(t, movie.PosterURL)
}

func TestFetchByIDNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"Response": "False", "Error": "Incorrect IMDb ID."}`)
	})

	_, err := client.FetchByID(context.Background(), "tt404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchByIDMalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"Response": `)
	})

	_, err := client.FetchByID(context.Background(), "tt0133093")
	assert.ErrorContains(t, err, "decode")
}
