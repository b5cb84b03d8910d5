package models

import (
	"context"
	"errors"

	"cinelog/proj/internal/domain/models"
	"cinelog/proj/internal/storage"
	"cinelog/proj/internal/storage/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewModel is the CRUD boundary over the reviews collection.
// Ids are opaque strings assigned here on insert; created_at and
// updated_at are assigned by the database so ordering stays
// authoritative on the server side. No operation retries.
type ReviewModel struct {
	DB *pgxpool.Pool
}

func (m *ReviewModel) ListByMovie(ctx context.Context, movieID string) ([]models.Review, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT id, movie_id, movie_title, user_id, user_name, text, rating, created_at, updated_at
		FROM reviews WHERE movie_id = $1 ORDER BY created_at DESC`,
		movieID,
	)
	return collectReviews(rows)
}

func (m *ReviewModel) ListByUser(ctx context.Context, userID string) ([]models.Review, error) {
	rows, _ := m.DB.Query(
		ctx,
		`SELECT id, movie_id, movie_title, user_id, user_name, text, rating, created_at, updated_at
		FROM reviews WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	return collectReviews(rows)
}

func (m *ReviewModel) Create(ctx context.Context, movieID, movieTitle, userID, userName, text string, rating int) (string, error) {
	id := uuid.NewString()
	rows, _ := m.DB.Query(
		ctx,
		`INSERT INTO reviews (id, movie_id, movie_title, user_id, user_name, text, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		id,
		movieID,
		movieTitle,
		userID,
		userName,
		text,
		rating,
	)
	createdID, err := pgx.CollectOneRow(rows, pgx.RowTo[string])
	if err != nil {
		var pgxErr *pgconn.PgError
		if errors.As(err, &pgxErr) && pgxErr.Code == postgres.ErrCheckCode {
			return "", storage.ErrConflict
		}
		return "", err
	}
	return createdID, nil
}

func (m *ReviewModel) Update(ctx context.Context, id string, text string, rating int) error {
	status, err := m.DB.Exec(
		ctx,
		"UPDATE reviews SET text = $1, rating = $2, updated_at = now() WHERE id = $3",
		text,
		rating,
		id,
	)
	if err != nil {
		var pgxErr *pgconn.PgError
		if errors.As(err, &pgxErr) && pgxErr.Code == postgres.ErrCheckCode {
			return storage.ErrConflict
		}
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (m *ReviewModel) Remove(ctx context.Context, id string) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM reviews WHERE id = $1", id)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func collectReviews(rows pgx.Rows) ([]models.Review, error) {
	reviews, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Review])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return reviews, nil
}
