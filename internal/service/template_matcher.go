package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/timmy/viralpost/internal/catalog"
	"github.com/timmy/viralpost/internal/domain"
	"github.com/timmy/viralpost/internal/logger"
	"github.com/timmy/viralpost/internal/prompts"
)

// Scoring weights.
const (
	keywordWeight     = 30.0
	emotionBonus      = 25.0
	contentTypeBonus  = 20.0
	humorTypeBonus    = 15.0
	strengthWeight    = 10.0
	maxTemplateScore  = 100.0
	topCandidateCount = 3
)

// Arbitration backfill values.
const (
	confidenceWhenAbsent  = 75.0
	confidenceWhenZero    = 80.0
	adaptationWhenAbsent  = "Generated fallback"
	whySelectedWhenAbsent = "Generated fallback"
	whySelectedWhenEmpty  = "Best match based on content analysis"
)

// TemplateMatcher picks a meme template for a post in three phases: feature
// extraction, heuristic scoring over the catalog, and model arbitration among
// the top candidates.
type TemplateMatcher struct {
	llm              TextCompleter
	featureModel     string
	arbitrationModel string
	timeout          time.Duration
	templates        []domain.TemplateDefinition
}

// NewTemplateMatcher creates a TemplateMatcher over templates. A nil or empty
// slice uses the built-in catalog.
func NewTemplateMatcher(
	llm TextCompleter,
	featureModel, arbitrationModel string,
	timeout time.Duration,
	templates []domain.TemplateDefinition,
) *TemplateMatcher {
	if len(templates) == 0 {
		templates = catalog.Templates()
	}
	return &TemplateMatcher{
		llm:              llm,
		featureModel:     featureModel,
		arbitrationModel: arbitrationModel,
		timeout:          timeout,
		templates:        templates,
	}
}

// Match never fails; any arbitration problem yields FallbackMatch's best match.
func (m *TemplateMatcher) Match(ctx context.Context, post string) *domain.MemeMatchResult {
	ctx = logger.SetStage(ctx, "template_match")
	start := time.Now()

	features := m.ExtractFeatures(ctx, post)

	scores := make([]domain.TemplateScore, 0, len(m.templates))
	for _, t := range m.templates {
		scores = append(scores, ScoreTemplate(features, t))
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].CompatibilityScore > scores[j].CompatibilityScore
	})
	if len(scores) == 0 {
		return FallbackMatch()
	}

	top := scores
	if len(top) > topCandidateCount {
		top = top[:topCandidateCount]
	}
	top = append([]domain.TemplateScore(nil), top...)

	best, err := m.arbitrate(ctx, post, features, top)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Template arbitration failed, using fallback template")
		best = fallbackTemplateMatch()
	}

	logger.With(logger.Fields{
		logger.FieldTemplate: best.TemplateName,
		logger.FieldCount:    len(scores),
	}).Since(start).Info(ctx, "Meme template matched")

	return &domain.MemeMatchResult{
		BestMatch:     best,
		TweetFeatures: features,
		AllScores:     scores,
		TopCandidates: top,
	}
}

// ExtractFeatures asks the model for the post's semantic traits. Missing or
// mistyped fields take defaults; any failure returns domain.DefaultTweetFeatures.
func (m *TemplateMatcher) ExtractFeatures(ctx context.Context, post string) *domain.TweetFeatures {
	callCtx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()

	reply, err := m.llm.Complete(callCtx, &CompletionRequest{
		Model:        m.featureModel,
		SystemPrompt: prompts.FeatureSystemPrompt,
		UserPrompt:   fmt.Sprintf(prompts.FeatureUserPrompt, post),
		MaxTokens:    800,
		Temperature:  0.1,
		JSONMode:     true,
	})
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Feature extraction failed, using defaults")
		return domain.DefaultTweetFeatures()
	}

	parsed, err := ParseJSONReply(reply)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Feature reply malformed, using defaults")
		return domain.DefaultTweetFeatures()
	}
	return featuresFromReply(parsed)
}

func featuresFromReply(r gjson.Result) *domain.TweetFeatures {
	def := domain.DefaultTweetFeatures()
	return &domain.TweetFeatures{
		PrimaryEmotion:         coerceScalar(r.Get("primary_emotion"), def.PrimaryEmotion),
		ContentType:            coerceScalar(r.Get("content_type"), def.ContentType),
		KeyConcepts:            coerceList(r.Get("key_concepts")),
		ConflictElements:       coerceList(r.Get("conflict_elements")),
		HumorType:              coerceScalar(r.Get("humor_type"), def.HumorType),
		RequiresVisualElements: coerceList(r.Get("requires_visual_elements")),
		MemePotentialKeywords:  coerceList(r.Get("meme_potential_keywords")),
	}
}

// coerceScalar keeps strings as given and stringifies other truthy values.
func coerceScalar(r gjson.Result, def string) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Null, gjson.False:
		return def
	case gjson.Number:
		if r.Float() == 0 {
			return def
		}
	}
	if !r.Exists() {
		return def
	}
	return r.String()
}

func coerceList(r gjson.Result) []string {
	if items := stringList(r); items != nil {
		return items
	}
	return []string{}
}

// ScoreTemplate computes the heuristic compatibility of t with f, capped at 100.
// Empty content and humor types never match.
func ScoreTemplate(f *domain.TweetFeatures, t domain.TemplateDefinition) domain.TemplateScore {
	score := 0.0
	reasons := []string{}

	templateKeywords := make(map[string]struct{}, len(t.Keywords))
	for _, k := range t.Keywords {
		templateKeywords[strings.ToLower(strings.TrimSpace(k))] = struct{}{}
	}
	var overlap []string
	seen := make(map[string]struct{})
	for _, k := range f.MemePotentialKeywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if _, dup := seen[k]; dup || k == "" {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := templateKeywords[k]; ok {
			overlap = append(overlap, k)
		}
	}
	score += float64(len(overlap)) / float64(max(len(t.Keywords), 1)) * keywordWeight
	if len(overlap) > 0 {
		reasons = append(reasons, "Keyword matches: "+strings.Join(overlap, ","))
	}

	emotion := strings.ToLower(strings.TrimSpace(f.PrimaryEmotion))
	if emotion != "" {
		for _, trigger := range t.EmotionalTriggers {
			if strings.ToLower(trigger) == emotion {
				score += emotionBonus
				reasons = append(reasons, "Emotional match: "+emotion)
				break
			}
		}
	}

	useCase := strings.ToLower(t.UseCase)
	contentType := strings.ToLower(strings.TrimSpace(f.ContentType))
	for _, token := range strings.Fields(contentType) {
		if strings.Contains(useCase, token) {
			score += contentTypeBonus
			reasons = append(reasons, "Content type alignment: "+contentType)
			break
		}
	}

	humorType := strings.ToLower(strings.TrimSpace(f.HumorType))
	if humorType != "" && strings.Contains(useCase, humorType) {
		score += humorTypeBonus
		reasons = append(reasons, "Humor type match: "+humorType)
	}

	score += float64(t.MemeStrength) / 100 * strengthWeight

	return domain.TemplateScore{
		TemplateName:       t.Name,
		CompatibilityScore: min(score, maxTemplateScore),
		Reasons:            reasons,
		TemplateData:       t,
	}
}

func (m *TemplateMatcher) arbitrate(
	ctx context.Context,
	post string,
	features *domain.TweetFeatures,
	candidates []domain.TemplateScore,
) (domain.TemplateMatch, error) {
	featuresJSON, err := json.MarshalIndent(features, "", "  ")
	if err != nil {
		return domain.TemplateMatch{}, fmt.Errorf("failed to marshal features: %w", err)
	}
	candidatesJSON, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return domain.TemplateMatch{}, fmt.Errorf("failed to marshal candidates: %w", err)
	}

	callCtx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()

	reply, err := m.llm.Complete(callCtx, &CompletionRequest{
		Model:        m.arbitrationModel,
		SystemPrompt: prompts.ArbitrationSystemPrompt,
		UserPrompt:   fmt.Sprintf(prompts.ArbitrationUserPrompt, post, featuresJSON, candidatesJSON),
		MaxTokens:    1000,
		Temperature:  0.1,
		JSONMode:     true,
	})
	if err != nil {
		return domain.TemplateMatch{}, err
	}

	parsed, err := ParseJSONReply(reply)
	if err != nil {
		return domain.TemplateMatch{}, err
	}
	if _, ok := stringField(parsed.Get("selected_template")); !ok {
		return domain.TemplateMatch{}, &domain.MalformedReplyError{
			Reply: reply,
			Err:   errors.New("selected_template is missing"),
		}
	}
	return matchFromReply(parsed, candidates), nil
}

// matchFromReply resolves the pick to a candidate by exact name, defaulting to
// the top candidate, and backfills the model supplied fields.
func matchFromReply(r gjson.Result, candidates []domain.TemplateScore) domain.TemplateMatch {
	chosen := candidates[0]
	name := r.Get("selected_template").Str
	for _, c := range candidates {
		if c.TemplateName == name {
			chosen = c
			break
		}
	}

	confidence := confidenceWhenAbsent
	if c := r.Get("confidence_score"); c.Type == gjson.Number {
		confidence = c.Float()
		if confidence == 0 {
			confidence = confidenceWhenZero
		}
	}

	adaptation := adaptationWhenAbsent
	if a := r.Get("visual_adaptation"); a.Exists() && a.Type != gjson.Null {
		adaptation = a.String()
	}

	why := whySelectedWhenAbsent
	if w := r.Get("why_selected"); w.Exists() && w.Type != gjson.Null {
		why = w.String()
		if strings.TrimSpace(why) == "" {
			why = whySelectedWhenEmpty
		}
	}

	return domain.TemplateMatch{
		TemplateName:       chosen.TemplateName,
		TemplateData:       chosen.TemplateData,
		CompatibilityScore: chosen.CompatibilityScore,
		ConfidenceScore:    confidence,
		VisualAdaptation:   adaptation,
		WhySelected:        why,
		Reasons:            chosen.Reasons,
	}
}

func fallbackTemplateMatch() domain.TemplateMatch {
	t := catalog.Fallback()
	return domain.TemplateMatch{
		TemplateName:       t.Name,
		TemplateData:       t,
		CompatibilityScore: 70,
		ConfidenceScore:    60,
		VisualAdaptation:   "Use as comparison template",
		WhySelected:        "Fallback - versatile template suitable for most content",
		Reasons:            []string{"Fallback selection"},
	}
}

// FallbackMatch is the static result used when matching cannot proceed at all.
func FallbackMatch() *domain.MemeMatchResult {
	best := fallbackTemplateMatch()
	return &domain.MemeMatchResult{
		BestMatch:     best,
		AllScores:     []domain.TemplateScore{},
		TopCandidates: []domain.TemplateScore{{
			TemplateName:       best.TemplateName,
			CompatibilityScore: best.CompatibilityScore,
			Reasons:            best.Reasons,
			TemplateData:       best.TemplateData,
		}},
	}
}
