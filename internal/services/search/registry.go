package search

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("search session not found")

const DefaultSessionTTL = 5 * time.Minute

type session struct {
	controller *Controller
	lastSeen   time.Time
}

// Registry tracks one Controller per interactive client. Sessions idle
// past the TTL are closed and dropped by Sweep.
type Registry struct {
	log      *slog.Logger
	client   MetadataSearcher
	executor TaskExecutor
	window   time.Duration
	ttl      time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

func NewRegistry(log *slog.Logger, client MetadataSearcher, executor TaskExecutor, window, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Registry{
		log:      log,
		client:   client,
		executor: executor,
		window:   window,
		ttl:      ttl,
		sessions: make(map[string]*session),
	}
}

// Open creates a new search session and returns its id.
func (r *Registry) Open() string {
	id := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &session{
		controller: New(r.log, r.client, r.executor, r.window),
		lastSeen:   time.Now(),
	}
	return id
}

// Get returns the controller for a session, refreshing its idle timer.
func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastSeen = time.Now()
	return s.controller, nil
}

// Close tears down one session.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.controller.Close()
	delete(r.sessions, id)
	return nil
}

// Sweep closes and removes sessions idle past the TTL.
func (r *Registry) Sweep() {
	const op = "search.Registry.Sweep"
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if time.Since(s.lastSeen) > r.ttl {
			s.controller.Close()
			delete(r.sessions, id)
			r.log.Debug("pruned idle search session", "op", op, "session_id", id)
		}
	}
}
