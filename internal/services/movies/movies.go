package movies

import (
	"context"
	"errors"
	"log/slog"

	"cinelog/proj/internal/clients/metadata"
	"cinelog/proj/internal/domain/models"
	"cinelog/proj/internal/services/ratings"
	"cinelog/proj/internal/services/reviews"
)

type MetadataFetcher interface {
	FetchByID(ctx context.Context, id string) (*models.MovieDetail, error)
}

type ReviewLoader interface {
	Load(ctx context.Context) error
	Snapshot() reviews.View
}

// ManagerFactory builds a review lifecycle manager for one scope.
type ManagerFactory func(scope reviews.Scope) ReviewLoader

// DetailView combines one movie's metadata snapshot with its ordered
// review list and the aggregate rating over that list.
type DetailView struct {
	Movie         models.MovieDetail `json:"movie"`
	Reviews       []models.Review    `json:"reviews"`
	AverageRating float64            `json:"average_rating"`
}

// Assembler composes the metadata client with a movie-scoped review
// manager into a single detail view.
type Assembler struct {
	log      *slog.Logger
	metadata MetadataFetcher
	managers ManagerFactory
}

func New(log *slog.Logger, metadata MetadataFetcher, managers ManagerFactory) *Assembler {
	return &Assembler{
		log:      log,
		metadata: metadata,
		managers: managers,
	}
}

// View fetches the movie snapshot and the scope's reviews. An
// unresolvable movie id yields ErrMovieNotFound regardless of whether
// reviews exist for it.
func (a *Assembler) View(ctx context.Context, movieID string) (*DetailView, error) {
	const op = "movies.Assembler.View"
	log := a.log.With("op", op, "movie_id", movieID)
	movie, err := a.metadata.FetchByID(ctx, movieID)
	if err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			log.Info("movie not found")
			return nil, ErrMovieNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	manager := a.managers(reviews.MovieScope(movieID))
	if err := manager.Load(ctx); err != nil {
		log.Error(err.Error())
		return nil, err
	}
	view := manager.Snapshot()
	return &DetailView{
		Movie:         *movie,
		Reviews:       view.Reviews,
		AverageRating: ratings.Average(view.Reviews),
	}, nil
}
