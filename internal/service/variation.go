package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/timmy/viralpost/internal/domain"
	"github.com/timmy/viralpost/internal/logger"
	"github.com/timmy/viralpost/internal/prompts"
)

// VariationGenerator drafts one candidate post per approach.
type VariationGenerator struct {
	llm         TextCompleter
	model       string
	timeout     time.Duration
	concurrency int
}

// NewVariationGenerator creates a VariationGenerator. concurrency bounds the
// number of approaches drafted at once; values below 1 mean sequential.
func NewVariationGenerator(llm TextCompleter, model string, timeout time.Duration, concurrency int) *VariationGenerator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &VariationGenerator{
		llm:         llm,
		model:       model,
		timeout:     timeout,
		concurrency: concurrency,
	}
}

// Generate returns exactly len(domain.Approaches) variations in approach order.
// An approach that fails yields a placeholder carrying the error.
func (g *VariationGenerator) Generate(
	ctx context.Context,
	rawThoughts string,
	style domain.StyleProfile,
	pipeline domain.PipelineType,
	memeStyle domain.MemeStyle,
) []domain.Variation {
	ctx = logger.SetStage(ctx, "variations")
	start := time.Now()

	styleJSON, err := json.MarshalIndent(style, "", "  ")
	if err != nil {
		styleJSON = []byte("{}")
	}
	extra := extraRequirements(pipeline, memeStyle)

	results := make([]domain.Variation, len(domain.Approaches))
	var eg errgroup.Group
	eg.SetLimit(g.concurrency)
	for i, approach := range domain.Approaches {
		eg.Go(func() error {
			results[i] = g.generateOne(ctx, approach, rawThoughts, string(styleJSON), pipeline, extra)
			return nil
		})
	}
	_ = eg.Wait()

	sort.SliceStable(results, func(a, b int) bool {
		return domain.ApproachIndex(results[a].Approach) < domain.ApproachIndex(results[b].Approach)
	})

	failed := 0
	for _, v := range results {
		if v.Error != "" {
			failed++
		}
	}
	logger.With(logger.Fields{
		logger.FieldCount:  len(results),
		logger.FieldStatus: fmt.Sprintf("%d failed", failed),
	}).Since(start).Info(ctx, "Variations drafted")

	return results
}

func (g *VariationGenerator) generateOne(
	ctx context.Context,
	approach domain.Approach,
	rawThoughts, styleJSON string,
	pipeline domain.PipelineType,
	extra string,
) domain.Variation {
	ctx = logger.WithField(ctx, logger.FieldApproach, string(approach))

	callCtx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	reply, err := g.llm.Complete(callCtx, &CompletionRequest{
		Model:        g.model,
		SystemPrompt: fmt.Sprintf(prompts.VariationSystemPrompt, pipeline),
		UserPrompt:   fmt.Sprintf(prompts.VariationUserPrompt, pipeline, extra, approach, rawThoughts, styleJSON),
		MaxTokens:    800,
		Temperature:  0.3,
		JSONMode:     true,
	})
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Variation generation failed")
		return domain.FailedVariation(approach, err)
	}

	parsed, err := ParseJSONReply(reply)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Variation reply malformed")
		return domain.FailedVariation(approach, err)
	}
	return variationFromReply(parsed, approach)
}

// variationFromReply backfills missing fields with "Generated <field>", forces
// the requested approach and recomputes the character count.
func variationFromReply(r gjson.Result, approach domain.Approach) domain.Variation {
	content, ok := stringField(r.Get("content"))
	if !ok {
		content = "Generated content"
	}
	v := domain.NewVariation(content, approach)

	v.ViralElements = stringList(r.Get("viral_elements"))
	if len(v.ViralElements) == 0 {
		v.ViralElements = []string{"Generated viral_elements"}
	}
	v.EngagementPrediction = scalarOr(r.Get("engagement_prediction"), "Generated engagement_prediction")
	v.TargetEmotion = scalarOr(r.Get("target_emotion"), "Generated target_emotion")
	return v
}

// scalarOr renders a scalar JSON value as text, or returns def when absent or empty.
func scalarOr(r gjson.Result, def string) string {
	if !r.Exists() || r.Type == gjson.Null || r.IsObject() || r.IsArray() {
		return def
	}
	if s := strings.TrimSpace(r.String()); s != "" {
		return s
	}
	return def
}

// extraRequirements renders the pipeline specific block of the drafting prompt.
func extraRequirements(pipeline domain.PipelineType, style domain.MemeStyle) string {
	switch pipeline {
	case domain.PipelineMeme:
		name := strings.ToLower(string(style))
		return fmt.Sprintf(prompts.MemeRequirements, name, culturalContext(style), name, name)
	case domain.PipelineSimple:
		return prompts.SimpleRequirements
	}
	panic(fmt.Sprintf("unhandled pipeline type %q", pipeline))
}

func culturalContext(style domain.MemeStyle) string {
	switch style {
	case domain.MemeStyleIndian:
		return prompts.IndianCulturalContext
	case domain.MemeStyleGlobal:
		return prompts.GlobalCulturalContext
	}
	panic(fmt.Sprintf("unhandled meme style %q", style))
}
