package models

import (
	"time"
)

// MovieSummary is one entry of a metadata search result.
type MovieSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Year      string `json:"year,omitempty"`
	PosterURL string `json:"poster_url,omitempty"`
}

// MovieDetail is the full metadata snapshot for a single movie.
// It is immutable per fetch and never cached beyond the view it
// was fetched for.
type MovieDetail struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Year       string `json:"year,omitempty"`
	PosterURL  string `json:"poster_url,omitempty"`
	Genre      string `json:"genre,omitempty"`
	Runtime    string `json:"runtime,omitempty"`
	Plot       string `json:"plot,omitempty"`
	Director   string `json:"director,omitempty"`
	Actors     string `json:"actors,omitempty"`
	Language   string `json:"language,omitempty"`
	Awards     string `json:"awards,omitempty"`
	ImdbRating string `json:"imdb_rating,omitempty"`
}

type User struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

var AnonymousUser = &User{}

func (u *User) IsAnonymous() bool {
	return u == AnonymousUser || u.UID == ""
}

type Review struct {
	ID         string     `json:"id"`                   // Opaque id assigned by the store on creation
	MovieID    string     `json:"movie_id"`             // Denormalized reference to the reviewed movie
	MovieTitle string     `json:"movie_title"`
	UserID     string     `json:"user_id"`              // Owning identity, the only one allowed to mutate
	UserName   string     `json:"user_name"`
	Text       string     `json:"text"`
	Rating     int        `json:"rating"`               // Integer in [1,5], never 0 once persisted
	CreatedAt  time.Time  `json:"created_at"`           // Server-assigned, sole ordering key
	UpdatedAt  *time.Time `json:"updated_at,omitempty"` // Server-assigned, set after the first edit
}
