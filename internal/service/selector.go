package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"github.com/timmy/viralpost/internal/domain"
	"github.com/timmy/viralpost/internal/logger"
	"github.com/timmy/viralpost/internal/prompts"
)

// Selector picks the best variation. It never fails.
type Selector struct {
	llm     TextCompleter
	model   string
	timeout time.Duration
}

// NewSelector creates a Selector.
func NewSelector(llm TextCompleter, model string, timeout time.Duration) *Selector {
	return &Selector{llm: llm, model: model, timeout: timeout}
}

// Select asks the model for the best variation. Missing reply fields are filled
// from the first variation; any failure returns domain.FallbackSelection.
func (s *Selector) Select(
	ctx context.Context,
	rawThoughts string,
	variations []domain.Variation,
	style domain.StyleProfile,
) domain.Selection {
	ctx = logger.SetStage(ctx, "selection")

	sel, err := s.selectWithModel(ctx, rawThoughts, variations, style)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Variation selection failed, first variation wins")
		return domain.FallbackSelection(variations)
	}
	return sel
}

func (s *Selector) selectWithModel(
	ctx context.Context,
	rawThoughts string,
	variations []domain.Variation,
	style domain.StyleProfile,
) (domain.Selection, error) {
	styleJSON, err := json.MarshalIndent(style, "", "  ")
	if err != nil {
		return domain.Selection{}, fmt.Errorf("failed to marshal style: %w", err)
	}
	variationsJSON, err := json.MarshalIndent(variations, "", "  ")
	if err != nil {
		return domain.Selection{}, fmt.Errorf("failed to marshal variations: %w", err)
	}

	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.llm.Complete(callCtx, &CompletionRequest{
		Model:        s.model,
		SystemPrompt: prompts.SelectionSystemPrompt,
		UserPrompt:   fmt.Sprintf(prompts.SelectionUserPrompt, rawThoughts, styleJSON, variationsJSON),
		MaxTokens:    1000,
		Temperature:  0.1,
		JSONMode:     true,
	})
	if err != nil {
		return domain.Selection{}, err
	}

	parsed, err := ParseJSONReply(reply)
	if err != nil {
		return domain.Selection{}, err
	}
	best := parsed.Get("best_variation")
	if !best.IsObject() {
		return domain.Selection{}, &domain.MalformedReplyError{
			Reply: reply,
			Err:   errors.New("best_variation is missing or not an object"),
		}
	}
	return selectionFromReply(best, variations), nil
}

func selectionFromReply(best gjson.Result, variations []domain.Variation) domain.Selection {
	sel := domain.FallbackSelection(variations)

	if idx := best.Get("index"); idx.Type == gjson.Number {
		if i := int(idx.Int()); i >= 0 && i < len(variations) {
			sel.Index = i
		}
	}
	if content, ok := stringField(best.Get("content")); ok {
		sel.Content = content
	}
	if approach, ok := stringField(best.Get("approach")); ok {
		sel.Approach = domain.Approach(approach)
	}
	if score := best.Get("total_score"); score.Type == gjson.Number && score.Float() != 0 {
		sel.TotalScore = score.Float()
	}
	if why, ok := stringField(best.Get("why_selected")); ok {
		sel.WhySelected = why
	}
	return sel
}
