package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/timmy/viralpost/internal/domain"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := domain.NewSession("s1", time.Now())

	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Create(ctx, s); !errors.Is(err, domain.ErrSessionExists) {
		t.Fatalf("duplicate Create() error = %v, want ErrSessionExists", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	got.FinalTweet = "mutated copy"
	again, _ := store.Get(ctx, "s1")
	if again.FinalTweet != "" {
		t.Errorf("Get() returned shared state, FinalTweet = %q", again.FinalTweet)
	}

	if _, err := store.Get(ctx, "missing"); !domain.IsNotFound(err) {
		t.Errorf("Get(missing) error = %v, want NotFoundError", err)
	}
}

func TestMemoryStorePutKeepsFinalPost(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := domain.NewSession("s1", time.Now())
	s.FinalTweet = "first"
	if err := store.Put(ctx, s); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	s.ActionImageURL = "memory://blobs/action_images/a.png"
	if err := store.Put(ctx, s); err != nil {
		t.Fatalf("Put() with same post error = %v", err)
	}

	s.FinalTweet = "second"
	if err := store.Put(ctx, s); !errors.Is(err, domain.ErrPostImmutable) {
		t.Fatalf("Put() changed post error = %v, want ErrPostImmutable", err)
	}

	got, _ := store.Get(ctx, "s1")
	if got.FinalTweet != "first" || got.ActionImageURL == "" {
		t.Errorf("stored session = %+v", got)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d after delete", store.Len())
	}
}

func TestGuard(t *testing.T) {
	g := NewGuard()
	release, err := g.Acquire("a")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if _, err := g.Acquire("a"); !errors.Is(err, domain.ErrSessionExists) {
		t.Fatalf("second Acquire() error = %v", err)
	}
	if _, err := g.Acquire("b"); err != nil {
		t.Fatalf("Acquire(b) error = %v", err)
	}
	release()
	release()
	if _, err := g.Acquire("a"); err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
}
