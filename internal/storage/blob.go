package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/timmy/viralpost/internal/domain"
)

// Folders used for generated artifacts.
const (
	FolderCharacters = "character_images"
	FolderActions    = "action_images"
	FolderSessions   = "sessions"
)

// ErrForeignURL is returned by Read for URLs this store did not hand out.
var ErrForeignURL = errors.New("url does not belong to this store")

// Publisher persists pipeline artifacts and returns their public URLs.
// Every failure is returned as *domain.UploadError.
type Publisher struct {
	store  ObjectStorage
	prefix string
}

// NewPublisher wraps store. Keys are written under prefix when non-empty.
func NewPublisher(store ObjectStorage, prefix string) *Publisher {
	return &Publisher{store: store, prefix: strings.Trim(prefix, "/")}
}

// UploadBytes stores data under folder with a generated name keeping ext.
func (p *Publisher) UploadBytes(ctx context.Context, folder string, data []byte, ext string) (string, error) {
	key := p.key(folder, uuid.New().String()+ext)
	contentType := http.DetectContentType(data)
	if err := p.store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", &domain.UploadError{Key: key, Err: err}
	}
	return p.store.GetURL(key), nil
}

// UploadFile stores the file at filePath under folder.
func (p *Publisher) UploadFile(ctx context.Context, folder, filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", &domain.UploadError{Key: filePath, Err: err}
	}
	return p.UploadBytes(ctx, folder, data, filepath.Ext(filePath))
}

// UploadJSON stores v as indented JSON named name.json in the sessions folder.
func (p *Publisher) UploadJSON(ctx context.Context, name string, v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", &domain.UploadError{Key: name, Err: fmt.Errorf("failed to marshal: %w", err)}
	}
	key := p.key(FolderSessions, name+".json")
	if err := p.store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return "", &domain.UploadError{Key: key, Err: err}
	}
	return p.store.GetURL(key), nil
}

// Read loads an object previously published by this store, addressed by its URL.
// A missing object yields *domain.NotFoundError.
func (p *Publisher) Read(ctx context.Context, url string) ([]byte, error) {
	key, err := p.keyOf(url)
	if err != nil {
		return nil, err
	}
	ok, err := p.store.Exists(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.NotFoundError{Kind: "blob", ID: key}
	}
	rc, err := p.store.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Delete removes an object previously published by this store.
func (p *Publisher) Delete(ctx context.Context, url string) error {
	key, err := p.keyOf(url)
	if err != nil {
		return err
	}
	return p.store.Delete(ctx, key)
}

// Owns reports whether url addresses an object under this publisher's prefix.
func (p *Publisher) Owns(url string) bool {
	_, err := p.keyOf(url)
	return err == nil
}

func (p *Publisher) keyOf(url string) (string, error) {
	base := p.store.GetURL("")
	if !strings.HasPrefix(url, base) || len(url) == len(base) {
		return "", ErrForeignURL
	}
	key := strings.TrimPrefix(url, base)
	if strings.Contains(key, "..") || strings.ContainsAny(key, "?#") {
		return "", ErrForeignURL
	}
	if p.prefix != "" && !strings.HasPrefix(key, p.prefix+"/") {
		return "", ErrForeignURL
	}
	return key, nil
}

func (p *Publisher) key(folder, name string) string {
	if p.prefix == "" {
		return path.Join(folder, name)
	}
	return path.Join(p.prefix, folder, name)
}
