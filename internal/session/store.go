// Package session keeps the accumulated state of generation runs.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/timmy/viralpost/internal/domain"
)

// Store persists sessions keyed by id.
type Store interface {
	// Create inserts s, failing with domain.ErrSessionExists for a known id.
	Create(ctx context.Context, s *domain.Session) error
	// Get returns a copy of the session or *domain.NotFoundError.
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Put inserts or replaces s. A stored final post may not change.
	Put(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore is a process local Store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	now      func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.Session),
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(ctx context.Context, s *domain.Session) error {
	c, err := s.Clone()
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return domain.ErrSessionExists
	}
	m.sessions[s.ID] = c
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, &domain.NotFoundError{Kind: "session", ID: id}
	}
	return s.Clone()
}

func (m *MemoryStore) Put(ctx context.Context, s *domain.Session) error {
	c, err := s.Clone()
	if err != nil {
		return err
	}
	c.UpdatedAt = m.now().UTC()

	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.sessions[s.ID]; ok {
		if err := domain.CheckTransition(prev, c); err != nil {
			return err
		}
	}
	m.sessions[s.ID] = c
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
