package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/timmy/viralpost/internal/config"
	"github.com/timmy/viralpost/internal/session"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Storage:  config.StorageConfig{Type: "memory", PublicURL: "https://cdn.test"},
		Database: config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "sessions.db"), AutoMigrate: true, MaxOpenConns: 1},
		Pipeline: config.PipelineConfig{VariationConcurrency: 2, ScratchDir: t.TempDir()},
		Session:  config.SessionConfig{Store: "memory"},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		store      string
		wantMemory bool
	}{
		{name: "memory sessions", store: "memory", wantMemory: true},
		{name: "database sessions", store: "database", wantMemory: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Session.Store = tt.store

			a, err := New(context.Background(), cfg)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer a.Close()

			if a.Pipeline == nil {
				t.Fatal("pipeline not wired")
			}
			_, isMemory := a.Sessions.(*session.MemoryStore)
			if isMemory != tt.wantMemory {
				t.Errorf("session store = %T", a.Sessions)
			}
			if (a.Repository != nil) == tt.wantMemory {
				t.Errorf("repository = %v", a.Repository)
			}
		})
	}
}
