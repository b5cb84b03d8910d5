package reviews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"cinelog/proj/internal/domain/models"
	libvalidator "cinelog/proj/internal/lib/validator"
	"cinelog/proj/internal/storage"

	govalidator "github.com/go-playground/validator/v10"
)

type ScopeKind string

const (
	ScopeMovie ScopeKind = "movie"
	ScopeUser  ScopeKind = "user"
)

// Scope is the key a review collection is queried and ordered by:
// one movie's reviews or one user's reviews.
type Scope struct {
	Kind ScopeKind
	ID   string
}

func MovieScope(movieID string) Scope {
	return Scope{Kind: ScopeMovie, ID: movieID}
}

func UserScope(userID string) Scope {
	return Scope{Kind: ScopeUser, ID: userID}
}

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
)

type ReviewStorage interface {
	ListByMovie(ctx context.Context, movieID string) ([]models.Review, error)
	ListByUser(ctx context.Context, userID string) ([]models.Review, error)
	Create(ctx context.Context, movieID, movieTitle, userID, userName, text string, rating int) (string, error)
	Update(ctx context.Context, id string, text string, rating int) error
	Remove(ctx context.Context, id string) error
}

// Draft carries the fields a caller supplies when posting a review.
// Empty text and zero rating are rejected locally, before any store
// round-trip.
type Draft struct {
	MovieID    string `json:"movie_id" validate:"required" errorMsg:"Movie id must not be empty"`
	MovieTitle string `json:"movie_title"`
	Text       string `json:"text" validate:"required" errorMsg:"Review text must not be empty"`
	Rating     int    `json:"rating" validate:"gte=1,lte=5" errorMsg:"Rating must be an integer between 1 and 5"`
}

// EditDraft carries the editable fields of an existing review.
type EditDraft struct {
	Text   string `json:"text" validate:"required" errorMsg:"Review text must not be empty"`
	Rating int    `json:"rating" validate:"gte=1,lte=5" errorMsg:"Rating must be an integer between 1 and 5"`
}

// View is the observable state of one scope's review collection.
type View struct {
	Status    Status          `json:"status"`
	Reviews   []models.Review `json:"reviews"`
	EditingID string          `json:"editing_id,omitempty"`
}

// Manager is the single source of truth for one scope's reviews. It
// performs create/edit/delete against the authoritative store and
// keeps the local view consistent: every successful create or edit
// re-fetches the scope so the server-assigned ordering key stays
// authoritative, while deletes are applied optimistically because
// absence is unambiguous. Only a record's owner may mutate it.
type Manager struct {
	log       *slog.Logger
	storage   ReviewStorage
	validator *govalidator.Validate
	scope     Scope

	mu        sync.Mutex
	status    Status
	reviews   []models.Review
	editingID string
	closed    bool
}

func New(log *slog.Logger, storage ReviewStorage, validator *govalidator.Validate, scope Scope) *Manager {
	return &Manager{
		log:       log,
		storage:   storage,
		validator: validator,
		scope:     scope,
		status:    StatusIdle,
	}
}

// Load fetches the scope's current collection, newest first.
func (m *Manager) Load(ctx context.Context) error {
	const op = "reviews.Manager.Load"
	log := m.log.With("op", op, "scope", m.scope.Kind, "scope_id", m.scope.ID)
	if err := m.load(ctx); err != nil {
		log.Error(err.Error())
		return err
	}
	return nil
}

// Snapshot returns the current observable view.
func (m *Manager) Snapshot() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return View{Status: m.status, Reviews: m.reviews, EditingID: m.editingID}
}

// Close tears the scope down. Store calls resolving afterwards are
// dropped instead of mutating a dead view.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

// Create validates the draft locally and posts it under the given
// identity, then reloads the scope so the new item's server-assigned
// ordering is authoritative rather than guessed client-side.
func (m *Manager) Create(ctx context.Context, user *models.User, draft Draft) error {
	const op = "reviews.Manager.Create"
	log := m.log.With("op", op, "movie_id", draft.MovieID, "user_id", user.UID)
	if err := m.validateDraft(draft); err != nil {
		log.Info("draft rejected", "reason", err.Error())
		return err
	}
	_, err := m.storage.Create(ctx, draft.MovieID, draft.MovieTitle, user.UID, user.DisplayName, draft.Text, draft.Rating)
	if err != nil {
		log.Error(err.Error())
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return m.load(ctx)
}

// BeginEdit switches one owned review into edit mode. Purely local;
// the stored record is untouched until CommitEdit. At most one review
// is in edit mode per scope.
func (m *Manager) BeginEdit(user *models.User, reviewID string) error {
	const op = "reviews.Manager.BeginEdit"
	m.mu.Lock()
	defer m.mu.Unlock()
	review, ok := m.find(reviewID)
	if !ok {
		return ErrReviewNotFound
	}
	if review.UserID != user.UID {
		m.log.Warn("edit attempt by non-owner", "op", op, "review_id", reviewID, "user_id", user.UID)
		return ErrNotOwner
	}
	m.editingID = reviewID
	return nil
}

// CancelEdit leaves edit mode without touching the stored record.
func (m *Manager) CancelEdit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editingID = ""
}

// CommitEdit persists the edit draft for the review in edit mode. If
// the record vanished between load and update (deleted concurrently),
// the stale item is dropped from the local view and ErrConflict is
// returned; there is no retry.
func (m *Manager) CommitEdit(ctx context.Context, user *models.User, draft EditDraft) error {
	const op = "reviews.Manager.CommitEdit"
	m.mu.Lock()
	reviewID := m.editingID
	if reviewID == "" {
		m.mu.Unlock()
		return ErrNoActiveEdit
	}
	review, ok := m.find(reviewID)
	if !ok {
		m.mu.Unlock()
		return ErrReviewNotFound
	}
	if review.UserID != user.UID {
		m.mu.Unlock()
		m.log.Warn("edit attempt by non-owner", "op", op, "review_id", reviewID, "user_id", user.UID)
		return ErrNotOwner
	}
	m.mu.Unlock()

	if err := m.validateDraft(draft); err != nil {
		return err
	}
	log := m.log.With("op", op, "review_id", reviewID, "user_id", user.UID)
	if err := m.storage.Update(ctx, reviewID, draft.Text, draft.Rating); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("edit target deleted concurrently")
			m.drop(reviewID)
			return ErrConflict
		}
		log.Error(err.Error())
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	m.CancelEdit()
	return m.load(ctx)
}

// Delete removes an owned review after an explicit confirmation
// signal from the caller. The item is removed from the local view
// optimistically; an id the store no longer knows counts as success.
func (m *Manager) Delete(ctx context.Context, user *models.User, reviewID string, confirmed bool) error {
	const op = "reviews.Manager.Delete"
	if !confirmed {
		return ErrNotConfirmed
	}
	m.mu.Lock()
	review, ok := m.find(reviewID)
	if !ok {
		m.mu.Unlock()
		return ErrReviewNotFound
	}
	if review.UserID != user.UID {
		m.mu.Unlock()
		m.log.Warn("delete attempt by non-owner", "op", op, "review_id", reviewID, "user_id", user.UID)
		return ErrNotOwner
	}
	m.mu.Unlock()

	log := m.log.With("op", op, "review_id", reviewID, "user_id", user.UID)
	if err := m.storage.Remove(ctx, reviewID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Error(err.Error())
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	m.drop(reviewID)
	return nil
}

func (m *Manager) load(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	prev := m.status
	m.status = StatusLoading
	m.mu.Unlock()

	var reviews []models.Review
	var err error
	switch m.scope.Kind {
	case ScopeUser:
		reviews, err = m.storage.ListByUser(ctx, m.scope.ID)
	default:
		reviews, err = m.storage.ListByMovie(ctx, m.scope.ID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			m.reviews = nil
			m.status = StatusReady
			return nil
		}
		m.status = prev
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	m.reviews = reviews
	m.status = StatusReady
	return nil
}

// find expects m.mu to be held.
func (m *Manager) find(reviewID string) (*models.Review, bool) {
	for i := range m.reviews {
		if m.reviews[i].ID == reviewID {
			return &m.reviews[i], true
		}
	}
	return nil, false
}

func (m *Manager) drop(reviewID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := make([]models.Review, 0, len(m.reviews))
	for _, r := range m.reviews {
		if r.ID != reviewID {
			kept = append(kept, r)
		}
	}
	m.reviews = kept
	if m.editingID == reviewID {
		m.editingID = ""
	}
}

func (m *Manager) validateDraft(draft any) error {
	validationErrs := libvalidator.ValidateStruct(m.validator, draft)
	if len(validationErrs) == 0 {
		return nil
	}
	fields := make([]string, 0, len(validationErrs))
	for field := range validationErrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+validationErrs[field])
	}
	return &errInvalidDraft{msg: strings.Join(parts, "; ")}
}
