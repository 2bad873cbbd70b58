// internal/store/memory.go
//
// In-memory implementation of the round Store interface.
// Holds one *game.Round per session id for as long as the round is played.
//
// Characteristics:
//   - Membership is guarded by an RWMutex; each entry carries its own mutex,
//     so guesses against different sessions never wait on each other.
//   - Update is an atomic read-modify-write: fn works on a copy and the copy
//     replaces the stored round only when fn returns nil.
//   - Get hands out copies; callers can never mutate stored state directly.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/spordle/internal/game"
)

// ErrNotFound is returned for unknown session ids.
var ErrNotFound = errors.New("session not found")

// ErrExists is returned when Create is called with an id already in use.
var ErrExists = errors.New("session already exists")

// Store defines the persistence interface for rounds.
// Implementations may be backed by memory (this package), Redis, SQL, etc.
type Store interface {
	// Create stores a new round.
	Create(ctx context.Context, r *game.Round) error

	// Get returns a copy of the round stored under id.
	Get(ctx context.Context, id string) (*game.Round, error)

	// Update applies fn to a copy of the round and commits it if fn returns nil.
	// Concurrent updates of the same id are serialized.
	Update(ctx context.Context, id string, fn func(r *game.Round) error) (*game.Round, error)

	// Delete removes a round. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error

	// Sweep removes rounds not updated since before cutoff and returns how many it removed.
	Sweep(ctx context.Context, cutoff time.Time) (int, error)

	// Len reports the number of stored rounds.
	Len() int
}

type entry struct {
	mu    sync.Mutex
	round *game.Round
	gone  bool // set once removed so late Update callers see ErrNotFound
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu     sync.RWMutex      // guards rounds map
	rounds map[string]*entry // keyed by Round.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{rounds: make(map[string]*entry)}
}

func (m *memory) Create(_ context.Context, r *game.Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rounds[r.ID]; ok {
		return ErrExists
	}
	m.rounds[r.ID] = &entry{round: r.Clone()}
	return nil
}

func (m *memory) lookup(id string) (*entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.rounds[id]
	return e, ok
}

func (m *memory) Get(_ context.Context, id string) (*game.Round, error) {
	e, ok := m.lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return nil, ErrNotFound
	}
	return e.round.Clone(), nil
}

func (m *memory) Update(_ context.Context, id string, fn func(r *game.Round) error) (*game.Round, error) {
	e, ok := m.lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return nil, ErrNotFound
	}
	next := e.round.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	e.round = next
	return next.Clone(), nil
}

func (m *memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.rounds[id]
	delete(m.rounds, id)
	m.mu.Unlock()
	if ok {
		e.mu.Lock()
		e.gone = true
		e.mu.Unlock()
	}
	return nil
}

func (m *memory) Sweep(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.rounds {
		e.mu.Lock()
		if e.round.UpdatedAt.Before(cutoff) {
			e.gone = true
			delete(m.rounds, id)
			n++
		}
		e.mu.Unlock()
	}
	return n, nil
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rounds)
}
