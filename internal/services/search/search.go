package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"cinelog/proj/internal/domain/models"
)

type Status string

const (
	StatusEmpty    Status = "empty"
	StatusLoading  Status = "loading"
	StatusResults  Status = "results"
	StatusNotFound Status = "notFound"
)

const DefaultDebounceWindow = 500 * time.Millisecond

type MetadataSearcher interface {
	Search(ctx context.Context, term string) ([]models.MovieSummary, error)
}

// TaskExecutor runs a lookup off the debounce timer goroutine.
type TaskExecutor interface {
	Add(task func())
}

// State is the observable snapshot a presentation layer binds to.
type State struct {
	Status Status                `json:"status"`
	Movies []models.MovieSummary `json:"movies"`
	Err    string                `json:"error,omitempty"`
}

// Controller owns the query text, the debounce timing and the
// staleness discipline for one interactive search session. Each
// accepted query claims a sequence number the moment it is armed; a
// lookup fires and its result is applied only while that number is
// still the newest, regardless of timer or arrival order, so neither
// a fast response nor a late-firing timer for an old keystroke can
// ever overwrite a newer query's outcome.
type Controller struct {
	log      *slog.Logger
	client   MetadataSearcher
	executor TaskExecutor
	window   time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	seq    uint64 // sequence number of the latest accepted query
	closed bool
	state  State
}

func New(log *slog.Logger, client MetadataSearcher, executor TaskExecutor, window time.Duration) *Controller {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Controller{
		log:      log,
		client:   client,
		executor: executor,
		window:   window,
		state:    State{Status: StatusEmpty},
	}
}

// SetQuery updates the pending query text. After a quiet period of one
// debounce window with no further calls, exactly one lookup fires for
// the latest text. An empty (trimmed) text transitions to StatusEmpty
// immediately and invalidates any outstanding lookup.
func (c *Controller) SetQuery(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		c.seq++ // supersede anything armed or in flight
		c.state = State{Status: StatusEmpty}
		return
	}
	// The sequence number is claimed now, not when the timer fires, so
	// a fired-but-not-yet-running callback can never outrank a query
	// that was set after it.
	c.seq++
	id := c.seq
	c.timer = time.AfterFunc(c.window, func() {
		c.fire(id, text)
	})
}

// Close stops the pending timer and marks every outstanding sequence
// number permanently stale. Meant for the owning view's teardown.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.closed = true
}

// Snapshot returns the current observable state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) fire(id uint64, text string) {
	c.mu.Lock()
	if c.closed || id != c.seq {
		c.mu.Unlock()
		return
	}
	c.state = State{Status: StatusLoading, Movies: c.state.Movies}
	c.mu.Unlock()

	lookup := func() {
		movies, err := c.client.Search(context.Background(), text)
		c.apply(id, text, movies, err)
	}
	if c.executor != nil {
		c.executor.Add(lookup)
	} else {
		go lookup()
	}
}

func (c *Controller) apply(id uint64, text string, movies []models.MovieSummary, err error) {
	const op = "search.Controller.apply"
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || id != c.seq {
		c.log.Debug("discarding stale lookup result", "op", op, "term", text)
		return
	}
	switch {
	case err != nil:
		// A failed lookup is not fatal to the session; it degrades to
		// an empty result with the error recorded.
		c.log.Error(err.Error(), "op", op, "term", text)
		c.state = State{Status: StatusNotFound, Err: err.Error()}
	case len(movies) == 0:
		c.state = State{Status: StatusNotFound}
	default:
		c.state = State{Status: StatusResults, Movies: movies}
	}
}
