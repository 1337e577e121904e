package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/timmy/viralpost/internal/domain"
)

type failingStore struct {
	*MemoryStorage
}

func (f failingStore) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return errors.New("bucket unavailable")
}

func TestPublisher_Uploads(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage("https://cdn.test/")
	p := NewPublisher(store, "/viralpost/")

	url, err := p.UploadBytes(ctx, FolderCharacters, []byte("\x89PNG\r\n\x1a\n"), ".png")
	if err != nil {
		t.Fatalf("UploadBytes() error = %v", err)
	}
	if !strings.HasPrefix(url, "https://cdn.test/viralpost/character_images/") || !strings.HasSuffix(url, ".png") {
		t.Errorf("url = %q", url)
	}

	path := filepath.Join(t.TempDir(), "action.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	url, err = p.UploadFile(ctx, FolderActions, path)
	if err != nil || !strings.Contains(url, "/viralpost/action_images/") {
		t.Errorf("UploadFile() = %q, %v", url, err)
	}

	url, err = p.UploadJSON(ctx, "s1_complete_session", map[string]string{"session_id": "s1"})
	if err != nil {
		t.Fatalf("UploadJSON() error = %v", err)
	}
	if url != "https://cdn.test/viralpost/sessions/s1_complete_session.json" {
		t.Errorf("json url = %q", url)
	}
	data, err := p.Read(ctx, url)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal(data, &got); err != nil || got["session_id"] != "s1" {
		t.Errorf("Read() = %s, %v", data, err)
	}

	if len(store.Keys()) != 3 {
		t.Errorf("keys = %v", store.Keys())
	}
}

func TestPublisher_Errors(t *testing.T) {
	ctx := context.Background()

	p := NewPublisher(failingStore{NewMemoryStorage("")}, "")
	_, err := p.UploadBytes(ctx, FolderCharacters, []byte("x"), ".png")
	var upErr *domain.UploadError
	if !errors.As(err, &upErr) {
		t.Errorf("UploadBytes() error = %v, want UploadError", err)
	}
	if _, err := p.UploadFile(ctx, FolderActions, "/does/not/exist.png"); !errors.As(err, &upErr) {
		t.Errorf("UploadFile() error = %v, want UploadError", err)
	}

	ok := NewPublisher(NewMemoryStorage("https://cdn.test"), "")
	for _, url := range []string{"https://elsewhere.test/a.png", "https://cdn.test/"} {
		if _, err := ok.Read(ctx, url); !errors.Is(err, ErrForeignURL) {
			t.Errorf("Read(%q) error = %v, want ErrForeignURL", url, err)
		}
	}
	if _, err := ok.Read(ctx, "https://cdn.test/sessions/missing.json"); !domain.IsNotFound(err) {
		t.Errorf("Read(missing) error = %v, want NotFoundError", err)
	}
}

func TestPublisher_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage("https://cdn.test")
	p := NewPublisher(store, "")

	url, err := p.UploadBytes(ctx, FolderActions, []byte("png"), ".png")
	if err != nil {
		t.Fatalf("UploadBytes() error = %v", err)
	}
	if err := p.Delete(ctx, url); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(store.Keys()) != 0 {
		t.Errorf("keys after delete = %v", store.Keys())
	}
	if err := p.Delete(ctx, "https://elsewhere.test/a.png"); !errors.Is(err, ErrForeignURL) {
		t.Errorf("Delete(foreign) error = %v, want ErrForeignURL", err)
	}
}

func TestPublisher_Owns(t *testing.T) {
	p := NewPublisher(NewMemoryStorage("https://cdn.test"), "viralpost")

	tests := []struct {
		url  string
		want bool
	}{
		{url: "https://cdn.test/viralpost/character_images/a.png", want: true},
		{url: "https://cdn.test/other/character_images/a.png", want: false},
		{url: "https://cdn.test/viralpost/../secrets.json", want: false},
		{url: "https://cdn.test/viralpost/a.png?x=1", want: false},
		{url: "https://cdn.test.evil.example/viralpost/a.png", want: false},
		{url: "http://169.254.169.254/latest/meta-data", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := p.Owns(tt.url); got != tt.want {
				t.Errorf("Owns() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectStorageType(t *testing.T) {
	tests := []struct {
		endpoint string
		want     StorageType
	}{
		{endpoint: "", want: StorageTypeMemory},
		{endpoint: "https://abc.r2.cloudflarestorage.com", want: StorageTypeR2},
		{endpoint: "s3.us-east-1.amazonaws.com", want: StorageTypeS3},
		{endpoint: "localhost:9000", want: StorageTypeS3Compatible},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			if got := detectStorageType(tt.endpoint); got != tt.want {
				t.Errorf("detectStorageType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewStorage(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
		want StorageType
	}{
		{name: "explicit memory", cfg: S3Config{Type: StorageTypeMemory}, want: StorageTypeMemory},
		{name: "no type no endpoint", cfg: S3Config{Bucket: "b"}, want: StorageTypeMemory},
		{name: "r2 endpoint", cfg: S3Config{Endpoint: "https://abc.r2.cloudflarestorage.com", Bucket: "b"}, want: StorageTypeR2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			store, err := NewStorage(&cfg)
			if err != nil {
				t.Fatalf("NewStorage() error = %v", err)
			}
			_, isMemory := store.(*MemoryStorage)
			if isMemory != (tt.want == StorageTypeMemory) || cfg.Type != tt.want {
				t.Errorf("NewStorage() = %T with type %q, want %q", store, cfg.Type, tt.want)
			}
		})
	}
}
