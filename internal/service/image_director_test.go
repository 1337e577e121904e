package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/timmy/viralpost/internal/catalog"
	"github.com/timmy/viralpost/internal/domain"
	"github.com/timmy/viralpost/internal/storage"
)

func tinyPNG() []byte {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 60), G: uint8(y * 60), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func newTestDirector(t *testing.T, images ImageClient) (*ImageDirector, *storage.MemoryStorage, string) {
	t.Helper()
	store := storage.NewMemoryStorage("https://cdn.test")
	root := t.TempDir()
	d := NewImageDirector(images, storage.NewPublisher(store, ""), ImageDirectorConfig{ScratchRoot: root})
	return d, store, root
}

func testMatch() *domain.TemplateMatch {
	m := fallbackTemplateMatch()
	return &m
}

func TestImageDirector_GenerateCharacter(t *testing.T) {
	images := &stubImages{}
	d, store, _ := newTestDirector(t, images)

	res := d.GenerateCharacter(context.Background(), "a tired programmer", "Pixar style", domain.ImageQualityAdvanced)

	if !strings.HasPrefix(res.URL, "https://cdn.test/"+storage.FolderCharacters+"/") {
		t.Errorf("url = %q", res.URL)
	}
	if len(store.Keys()) != 1 {
		t.Errorf("stored keys = %v", store.Keys())
	}
	if res.Usage == nil || res.Usage.Type != domain.ImageKindCharacter || res.Usage.Tokens != 4160 {
		t.Errorf("usage = %+v", res.Usage)
	}
	req := images.generations[0]
	if req.Model != "dall-e-3" || req.ResponseFormat != "b64_json" {
		t.Errorf("request = %+v", req)
	}
	if !strings.Contains(req.Prompt, "a tired programmer") || !strings.Contains(req.Prompt, "NO TEXT") {
		t.Errorf("prompt = %q", req.Prompt)
	}
}

func TestImageDirector_GenerateCharacterFailure(t *testing.T) {
	d, store, _ := newTestDirector(t, &stubImages{genErr: errors.New("down")})

	res := d.GenerateCharacter(context.Background(), "x", "y", domain.ImageQualityBasic)
	if res.URL != "" || res.Usage != nil || len(store.Keys()) != 0 {
		t.Errorf("failed generation = %+v", res)
	}
}

func TestImageDirector_GenerateActionImage(t *testing.T) {
	basic, _ := catalog.Tier(domain.ImageQualityBasic)

	tests := []struct {
		name            string
		images          *stubImages
		reference       []byte
		wantURL         bool
		wantEdits       int
		wantGenerations int
		wantUsage       int
	}{
		{
			name:      "edit succeeds",
			images:    &stubImages{},
			reference: tinyPNG(),
			wantURL:   true, wantEdits: 1, wantGenerations: 0, wantUsage: 1,
		},
		{
			name:      "edit fails once then generates",
			images:    &stubImages{editFailures: 1},
			reference: tinyPNG(),
			wantURL:   true, wantEdits: 1, wantGenerations: 1, wantUsage: 1,
		},
		{
			name:      "unreadable reference falls back to generation",
			images:    &stubImages{},
			reference: []byte("not an image"),
			wantURL:   true, wantEdits: 0, wantGenerations: 1, wantUsage: 1,
		},
		{
			name:    "no reference",
			images:  &stubImages{},
			wantURL: true, wantEdits: 0, wantGenerations: 1, wantUsage: 1,
		},
		{
			name:      "everything fails",
			images:    &stubImages{editFailures: 1, genErr: errors.New("down")},
			reference: tinyPNG(),
			wantURL:   false, wantEdits: 1, wantGenerations: 1, wantUsage: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, root := newTestDirector(t, tt.images)

			res := d.GenerateActionImage(context.Background(), ActionImageInput{
				SessionID: "sess-1",
				Post:      "my code finally compiled",
				Character: domain.CharacterData{CharacterPrompt: "a tired programmer"},
				Match:     testMatch(),
				Reference: tt.reference,
				Quality:   domain.ImageQualityBasic,
			})

			if (res.URL != "") != tt.wantURL {
				t.Errorf("url = %q, want url: %v", res.URL, tt.wantURL)
			}
			if tt.wantURL && !strings.HasPrefix(res.URL, "https://cdn.test/"+storage.FolderActions+"/") {
				t.Errorf("url = %q", res.URL)
			}
			if tt.images.edits != tt.wantEdits || len(tt.images.generations) != tt.wantGenerations {
				t.Errorf("edits = %d, generations = %d", tt.images.edits, len(tt.images.generations))
			}
			if len(res.Usage) != tt.wantUsage {
				t.Fatalf("usage = %+v", res.Usage)
			}
			for _, u := range res.Usage {
				if u.Type != domain.ImageKindAction || u.Tokens != basic.Tokens {
					t.Errorf("usage entry = %+v", u)
				}
			}
			for _, g := range tt.images.generations {
				if g.Quality != basic.Quality || g.Model != "gpt-image-1" {
					t.Errorf("generation request = %+v", g)
				}
				if !strings.Contains(g.Prompt, "Drake Hotline Bling") {
					t.Errorf("template missing from prompt: %q", g.Prompt)
				}
			}
			if _, err := os.Stat(filepath.Join(root, "sess-1")); !os.IsNotExist(err) {
				t.Errorf("scratch directory left behind: %v", err)
			}
		})
	}
}

func TestImageDirector_InvalidSessionID(t *testing.T) {
	images := &stubImages{}
	d, _, _ := newTestDirector(t, images)

	res := d.GenerateActionImage(context.Background(), ActionImageInput{SessionID: "../escape", Quality: domain.ImageQualityBasic})
	if res.URL != "" || len(images.generations) != 0 {
		t.Errorf("path-like session id should be refused: %+v", res)
	}
}
