package session

import (
	"sync"

	"github.com/timmy/viralpost/internal/domain"
)

// Guard admits at most one in-flight run per session id.
type Guard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewGuard creates a Guard.
func NewGuard() *Guard {
	return &Guard{active: make(map[string]struct{})}
}

// Acquire claims id and returns its release func. A second claim on the same
// id before release fails with domain.ErrSessionExists.
func (g *Guard) Acquire(id string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[id]; busy {
		return nil, domain.ErrSessionExists
	}
	g.active[id] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, id)
			g.mu.Unlock()
		})
	}, nil
}
