package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/timmy/viralpost/internal/domain"
	"github.com/timmy/viralpost/internal/logger"
	"github.com/timmy/viralpost/internal/prompts"
)

// StyleAnalyzer derives a voice profile from a user's previous posts.
type StyleAnalyzer struct {
	llm     TextCompleter
	model   string
	timeout time.Duration
}

// NewStyleAnalyzer creates a StyleAnalyzer.
func NewStyleAnalyzer(llm TextCompleter, model string, timeout time.Duration) *StyleAnalyzer {
	return &StyleAnalyzer{llm: llm, model: model, timeout: timeout}
}

// Analyze returns the default profile for no posts, the model's JSON reply
// verbatim otherwise, and {"error": msg} when the call or parse fails.
func (s *StyleAnalyzer) Analyze(ctx context.Context, previousPosts []string) domain.StyleProfile {
	if len(previousPosts) == 0 {
		return domain.DefaultStyleProfile()
	}

	ctx = logger.SetStage(ctx, "style")
	var b strings.Builder
	for i, post := range previousPosts {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Post %d: %s", i+1, post)
	}

	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.llm.Complete(callCtx, &CompletionRequest{
		Model:        s.model,
		SystemPrompt: prompts.StyleSystemPrompt,
		UserPrompt:   fmt.Sprintf(prompts.StyleUserPrompt, b.String()),
		MaxTokens:    1500,
		Temperature:  0.1,
		JSONMode:     true,
	})
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Style analysis failed, using error profile")
		return domain.ErrorStyleProfile(err)
	}

	parsed, err := ParseJSONReply(reply)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Style analysis reply malformed, using error profile")
		return domain.ErrorStyleProfile(err)
	}

	profile, ok := parsed.Value().(map[string]interface{})
	if !ok {
		return domain.ErrorStyleProfile(fmt.Errorf("style reply is not an object"))
	}
	return domain.StyleProfile(profile)
}

// withTimeout bounds a remote call. A non-positive d leaves ctx unchanged.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
