package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ============================================================
// Session Registry
// ============================================================

type Registry struct {
	mu       sync.Mutex
	deps     Deps
	sessions map[string]*Session // id -> session
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:     deps,
		sessions: make(map[string]*Session),
	}
}

// Open открывает новую сессию редактора карты.
func (r *Registry) Open(ctx context.Context, mapID string, width, height int) (*Session, error) {
	s, err := Open(ctx, uuid.NewString(), mapID, r.deps, width, height)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
	return s, nil
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

func (r *Registry) Close(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(r.sessions, id)
	return nil
}

// CloseMap закрывает все сессии карты (после её удаления).
func (r *Registry) CloseMap(mapID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, s := range r.sessions {
		if s.MapID() == mapID {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Expire закрывает сессии, неактивные дольше ttl.
func (r *Registry) Expire(ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	n := 0
	for id, s := range r.sessions {
		if s.LastActive().Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	if n > 0 {
		log.Infof("expired %d idle sessions", n)
	}
	return n
}

// Sweep вызывает Expire на каждый тик, пока канал не закрыт.
func (r *Registry) Sweep(ticks <-chan time.Time, ttl time.Duration) {
	for range ticks {
		r.Expire(ttl)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
