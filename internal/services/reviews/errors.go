package reviews

import "errors"

// errInvalidDraft carries the per-failure validation message. Every
// failure gets its own instance; validation runs on concurrent request
// paths, so a shared mutable message would race.
type errInvalidDraft struct {
	msg string
}

func (e *errInvalidDraft) Error() string {
	return e.msg
}

// Is lets errors.Is match any draft validation failure against the
// ErrInvalidDraft sentinel.
func (e *errInvalidDraft) Is(target error) bool {
	_, ok := target.(*errInvalidDraft)
	return ok
}

var (
	ErrInvalidDraft   = &errInvalidDraft{msg: "invalid review draft"}
	ErrReviewNotFound = errors.New("review not found")
	ErrNotOwner       = errors.New("review can only be modified by its owner")
	ErrConflict       = errors.New("review was deleted concurrently")
	ErrUnavailable    = errors.New("review store is unavailable")
	ErrNotConfirmed   = errors.New("deletion requires an explicit confirmation")
	ErrNoActiveEdit   = errors.New("no review is currently being edited")
)
