package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/timmy/viralpost/internal/domain"
	"github.com/timmy/viralpost/internal/logger"
	"github.com/timmy/viralpost/internal/prompts"
)

const (
	defaultNiche    = "lifestyle"
	defaultPlatform = "Twitter"
	defaultTimezone = "Asia/Kolkata"

	maxPostTimes    = 3
	seoKeywordCount = 10
	hashtagCount    = 15
	nicheInputLimit = 2000
)

// postTimeLayout renders "now" for the posting time prompt.
const postTimeLayout = "Monday, January 02, 2006 at 03:04 PM"

var (
	nonLetters   = regexp.MustCompile(`[^a-z\s]`)
	bulletPrefix = regexp.MustCompile(`^[•\-\*\s]+`)
)

// MetadataEnricher derives publishing metadata for a chosen post. Every
// sub-step degrades to a static default; Enrich never fails.
type MetadataEnricher struct {
	llm      TextCompleter
	model    string
	timeout  time.Duration
	hashtags HashtagSource
	platform string
	timezone string
	now      func() time.Time
}

// NewMetadataEnricher creates a MetadataEnricher. Empty platform and timezone
// fall back to Twitter and Asia/Kolkata; a nil now uses time.Now.
func NewMetadataEnricher(
	llm TextCompleter,
	model string,
	timeout time.Duration,
	hashtags HashtagSource,
	platform, timezone string,
	now func() time.Time,
) *MetadataEnricher {
	if platform == "" {
		platform = defaultPlatform
	}
	if timezone == "" {
		timezone = defaultTimezone
	}
	if now == nil {
		now = time.Now
	}
	return &MetadataEnricher{
		llm:      llm,
		model:    model,
		timeout:  timeout,
		hashtags: hashtags,
		platform: platform,
		timezone: timezone,
		now:      now,
	}
}

// Enrich detects the niche first, then derives posting times, SEO keywords and
// hashtags concurrently.
func (m *MetadataEnricher) Enrich(ctx context.Context, post string) domain.PostMetadata {
	ctx = logger.SetStage(ctx, "metadata")
	start := time.Now()

	niche := m.DetectNiche(ctx, post)
	ctx = logger.WithField(ctx, logger.FieldNiche, niche)

	var (
		times    []string
		keywords []string
		tags     []string
	)
	var eg errgroup.Group
	eg.Go(func() error {
		times = m.BestPostTimes(ctx, niche)
		return nil
	})
	eg.Go(func() error {
		keywords = m.SEOKeywords(ctx, post, seoKeywordCount)
		return nil
	})
	eg.Go(func() error {
		tags = m.topHashtags(ctx, niche)
		return nil
	})
	_ = eg.Wait()

	logger.With(logger.Fields{
		logger.FieldCount: len(tags),
	}).Since(start).Info(ctx, "Post metadata derived")

	return domain.PostMetadata{
		Tweet:               post,
		Niche:               niche,
		OptimalPostingTimes: times,
		SEOKeywords:         keywords,
		RecommendedHashtags: tags,
		Platform:            m.platform,
		Timezone:            m.timezone,
		AnalysisDate:        m.now().UTC(),
	}
}

// DetectNiche returns a single lowercase alphabetic token, "lifestyle" on failure.
func (m *MetadataEnricher) DetectNiche(ctx context.Context, post string) string {
	callCtx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()

	input := post
	if r := []rune(input); len(r) > nicheInputLimit {
		input = string(r[:nicheInputLimit])
	}

	reply, err := m.llm.Complete(callCtx, &CompletionRequest{
		Model:        m.model,
		SystemPrompt: prompts.NicheSystemPrompt,
		UserPrompt:   input,
		MaxTokens:    10,
		Temperature:  0.1,
	})
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Niche detection failed")
		return defaultNiche
	}
	return normalizeNiche(reply)
}

func normalizeNiche(reply string) string {
	cleaned := nonLetters.ReplaceAllString(strings.ToLower(strings.TrimSpace(reply)), "")
	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return defaultNiche
	}
	return fields[0]
}

// BestPostTimes returns up to three upcoming posting windows for niche.
func (m *MetadataEnricher) BestPostTimes(ctx context.Context, niche string) []string {
	loc, err := time.LoadLocation(m.timezone)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warnf("Unknown timezone %s, using UTC", m.timezone)
		loc = time.UTC
	}
	now := m.now().In(loc).Format(postTimeLayout)

	callCtx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()

	reply, err := m.llm.Complete(callCtx, &CompletionRequest{
		Model:        m.model,
		SystemPrompt: prompts.PostTimesSystemPrompt,
		UserPrompt:   fmt.Sprintf(prompts.PostTimesUserPrompt, now, m.timezone, m.platform, niche),
		MaxTokens:    100,
		Temperature:  0.3,
	})
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Post time suggestion failed")
		return []string{}
	}

	times := splitLines(reply, false)
	if len(times) > maxPostTimes {
		times = times[:maxPostTimes]
	}
	return times
}

// SEOKeywords returns up to count lowercase keywords extracted from post.
func (m *MetadataEnricher) SEOKeywords(ctx context.Context, post string, count int) []string {
	callCtx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()

	reply, err := m.llm.Complete(callCtx, &CompletionRequest{
		Model:        m.model,
		SystemPrompt: prompts.SEOSystemPrompt,
		UserPrompt:   fmt.Sprintf(prompts.SEOUserPrompt, count, post),
		MaxTokens:    150,
		Temperature:  0.3,
	})
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("SEO keyword extraction failed")
		return []string{}
	}

	keywords := splitLines(reply, true)
	if count > 0 && len(keywords) > count {
		keywords = keywords[:count]
	}
	return keywords
}

func (m *MetadataEnricher) topHashtags(ctx context.Context, niche string) []string {
	if m.hashtags == nil {
		return []string{}
	}
	tags := m.hashtags.TopHashtags(ctx, niche, hashtagCount)
	if tags == nil {
		return []string{}
	}
	return tags
}

// splitLines keeps non-empty reply lines with bullet markers removed.
func splitLines(reply string, lower bool) []string {
	out := []string{}
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		if lower {
			line = strings.ToLower(line)
		}
		out = append(out, line)
	}
	return out
}
