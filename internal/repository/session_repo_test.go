package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/timmy/viralpost/internal/config"
	"github.com/timmy/viralpost/internal/domain"
)

func newTestRepo(t *testing.T) *SessionRepository {
	t.Helper()
	db, err := InitDB(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         filepath.Join(t.TempDir(), "sessions.db"),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		AutoMigrate:  true,
	})
	if err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	return NewSessionRepository(db)
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	s := domain.NewSession("abc", time.Now().UTC())
	s.PipelineType = domain.PipelineMeme
	s.MemeStyle = domain.MemeStyleGlobal
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(ctx, s); !errors.Is(err, domain.ErrSessionExists) {
		t.Fatalf("duplicate Create() error = %v", err)
	}

	s.FinalTweet = "my code finally compiled"
	s.AddBlobURL("memory://blobs/sessions/abc_complete_session.json")
	if err := repo.Put(ctx, s); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := repo.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.FinalTweet != s.FinalTweet || len(got.BlobURLs) != 1 || got.MemeStyle != domain.MemeStyleGlobal {
		t.Errorf("Get() = %+v", got)
	}

	s.FinalTweet = "something else"
	if err := repo.Put(ctx, s); !errors.Is(err, domain.ErrPostImmutable) {
		t.Errorf("Put() changed post error = %v", err)
	}

	recent, err := repo.ListRecent(ctx, 10)
	if err != nil || len(recent) != 1 {
		t.Errorf("ListRecent() = %d records, %v", len(recent), err)
	}

	if err := repo.Delete(ctx, "abc"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get(ctx, "abc"); !domain.IsNotFound(err) {
		t.Errorf("Get() after delete error = %v", err)
	}
}
