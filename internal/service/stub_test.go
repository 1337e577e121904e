package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/timmy/viralpost/internal/domain"
)

// stubCompleter answers by the first rule whose marker appears in the prompt.
type stubCompleter struct {
	mu    sync.Mutex
	rules []stubRule
	calls []CompletionRequest
}

type stubRule struct {
	marker string
	reply  string
	err    error
}

func newStub() *stubCompleter {
	return &stubCompleter{}
}

func (s *stubCompleter) on(marker, reply string) *stubCompleter {
	s.rules = append(s.rules, stubRule{marker: marker, reply: reply})
	return s
}

func (s *stubCompleter) fail(marker string) *stubCompleter {
	s.rules = append(s.rules, stubRule{
		marker: marker,
		err:    &domain.ProviderError{Op: "chat completion", Err: errors.New("stubbed failure")},
	})
	return s
}

func (s *stubCompleter) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, *req)
	s.mu.Unlock()

	prompt := req.SystemPrompt + "\n" + req.UserPrompt
	for _, r := range s.rules {
		if strings.Contains(prompt, r.marker) {
			return r.reply, r.err
		}
	}
	return "", &domain.ProviderError{Op: "chat completion", Err: fmt.Errorf("no stub for prompt %.60q", req.UserPrompt)}
}

func (s *stubCompleter) callsMatching(marker string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if strings.Contains(c.SystemPrompt+"\n"+c.UserPrompt, marker) {
			n++
		}
	}
	return n
}

// Prompt markers.
const (
	markStyle       = "Analyze these previous posts"
	markSelection   = "Select the best tweet variation"
	markNiche       = "Identify the main niche"
	markPostTimes   = "best times to post"
	markSEO         = "SEO-friendly keywords"
	markFeatures    = "extract key features for meme template matching"
	markArbitration = "Select the BEST meme template"
)

func markApproach(a domain.Approach) string {
	return "APPROACH: " + string(a)
}

type stubHashtags struct {
	tags []string
}

func (s stubHashtags) TopHashtags(ctx context.Context, niche string, count int) []string {
	if len(s.tags) > count {
		return s.tags[:count]
	}
	return s.tags
}

// stubImages fails the first editFailures edits and returns png bytes otherwise.
type stubImages struct {
	mu           sync.Mutex
	editFailures int
	genErr       error
	edits        int
	generations  []ImageRequest
}

func (s *stubImages) Generate(ctx context.Context, req *ImageRequest) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations = append(s.generations, *req)
	if s.genErr != nil {
		return nil, s.genErr
	}
	return tinyPNG(), nil
}

func (s *stubImages) Edit(ctx context.Context, req *ImageEditRequest) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits++
	if s.edits <= s.editFailures {
		return nil, &domain.ProviderError{Op: "image edit", Err: errors.New("stubbed edit failure")}
	}
	return tinyPNG(), nil
}
