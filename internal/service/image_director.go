package service

import (
	"context"
	"fmt"
	"time"

	"github.com/timmy/viralpost/internal/catalog"
	"github.com/timmy/viralpost/internal/domain"
	"github.com/timmy/viralpost/internal/imaging"
	"github.com/timmy/viralpost/internal/logger"
	"github.com/timmy/viralpost/internal/prompts"
	"github.com/timmy/viralpost/internal/scratch"
	"github.com/timmy/viralpost/internal/storage"
)

// ImageDirectorConfig configures ImageDirector.
type ImageDirectorConfig struct {
	CharacterModel string
	ActionModel    string
	Size           string
	Timeout        time.Duration
	ScratchRoot    string
}

// CharacterResult is the outcome of GenerateCharacter. URL is empty on failure.
type CharacterResult struct {
	ImageBytes []byte
	URL        string
	Usage      *domain.ImageGeneration
}

// ActionImageInput describes one action image.
type ActionImageInput struct {
	SessionID string
	Post      string
	Character domain.CharacterData
	// Match pins the image to a template; nil means no template directive.
	Match *domain.TemplateMatch
	// Reference, when set, is edited instead of generating from scratch.
	Reference []byte
	Quality   domain.ImageQuality
}

// ActionImageResult is the outcome of GenerateActionImage. URL is empty on failure.
type ActionImageResult struct {
	URL   string
	Usage []domain.ImageGeneration
}

// ImageDirector renders character and action images and publishes them.
// Failures never propagate; callers check for an empty URL.
type ImageDirector struct {
	images    ImageClient
	publisher *storage.Publisher
	cfg       ImageDirectorConfig
	now       func() time.Time
}

// NewImageDirector creates an ImageDirector.
func NewImageDirector(images ImageClient, publisher *storage.Publisher, cfg ImageDirectorConfig) *ImageDirector {
	if cfg.CharacterModel == "" {
		cfg.CharacterModel = "dall-e-3"
	}
	if cfg.ActionModel == "" {
		cfg.ActionModel = "gpt-image-1"
	}
	if cfg.Size == "" {
		cfg.Size = "1024x1024"
	}
	return &ImageDirector{
		images:    images,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// GenerateCharacter renders a character from prompt and publishes it to the
// character folder. artStyle is the long style description.
func (d *ImageDirector) GenerateCharacter(
	ctx context.Context,
	prompt, artStyle string,
	quality domain.ImageQuality,
) CharacterResult {
	ctx = logger.SetStage(ctx, "character_image")
	start := time.Now()

	tier, err := catalog.Tier(quality)
	if err != nil {
		tier, _ = catalog.Tier(domain.ImageQualityBasic)
		quality = domain.ImageQualityBasic
	}

	callCtx, cancel := withTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	data, err := d.images.Generate(callCtx, &ImageRequest{
		Model:          d.cfg.CharacterModel,
		Prompt:         fmt.Sprintf(prompts.CharacterPrompt, prompt, artStyle, prompt, artStyle),
		Size:           d.cfg.Size,
		ResponseFormat: "b64_json",
	})
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Character generation failed")
		return CharacterResult{}
	}
	usage := &domain.ImageGeneration{
		Type:      domain.ImageKindCharacter,
		Quality:   quality,
		Tokens:    tier.Tokens,
		Timestamp: d.now().UTC(),
	}

	url, err := d.publisher.UploadBytes(ctx, storage.FolderCharacters, data, ".png")
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Character upload failed")
		return CharacterResult{ImageBytes: data, Usage: usage}
	}

	logger.With(logger.Fields{
		logger.FieldSize:   len(data),
		logger.FieldTokens: tier.Tokens,
	}).Since(start).Info(ctx, "Character image published")

	return CharacterResult{ImageBytes: data, URL: url, Usage: usage}
}

// GenerateActionImage renders the post as a meme featuring the character.
// With a reference image it edits that image; an edit failure is retried
// exactly once through plain generation. Scratch files are removed on return.
func (d *ImageDirector) GenerateActionImage(ctx context.Context, in ActionImageInput) ActionImageResult {
	ctx = logger.SetStage(ctx, "action_image")
	start := time.Now()

	tier, err := catalog.Tier(in.Quality)
	if err != nil {
		logger.CtxWarn(ctx, "Invalid image quality %q, defaulting to basic", in.Quality)
		in.Quality = domain.ImageQualityBasic
		tier, _ = catalog.Tier(in.Quality)
	}

	dir, err := scratch.New(d.cfg.ScratchRoot, in.SessionID)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Scratch directory unavailable")
		return ActionImageResult{}
	}
	defer func() {
		if err := dir.Cleanup(); err != nil {
			logger.FromContext(ctx).WithError(err).Warn("Scratch cleanup failed")
		}
	}()

	templateName, directive := "None", ""
	if in.Match != nil {
		templateName = in.Match.TemplateName
		directive = templateDirective(in.Match)
	}
	ctx = logger.WithField(ctx, logger.FieldTemplate, templateName)
	artStyle := in.Character.ArtStyleDescription
	if artStyle == "" {
		artStyle = prompts.DefaultArtStyle
	}

	var (
		data []byte
		res  ActionImageResult
	)
	if len(in.Reference) > 0 {
		data, err = d.editReference(ctx, dir, in, templateName, directive, artStyle)
		if err != nil {
			logger.FromContext(ctx).WithError(err).Warn("Reference edit failed, retrying without reference")
			data = nil
		} else {
			res.Usage = append(res.Usage, d.actionUsage(in.Quality, tier))
		}
	}
	if data == nil {
		data, err = d.generateAction(ctx, in, tier, templateName, directive, artStyle)
		if err != nil {
			logger.FromContext(ctx).WithError(err).Warn("Action image generation failed")
			return res
		}
		res.Usage = append(res.Usage, d.actionUsage(in.Quality, tier))
	}

	out, err := dir.Write(fmt.Sprintf("action_%d.png", d.now().UnixNano()), data)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Action image could not be staged")
		return res
	}
	defer dir.Remove(out)

	url, err := d.publisher.UploadFile(ctx, storage.FolderActions, out)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Action image upload failed")
		return res
	}
	res.URL = url

	logger.With(logger.Fields{
		logger.FieldSize:   len(data),
		logger.FieldTokens: tier.Tokens,
	}).Since(start).Info(ctx, "Action image published")
	return res
}

func (d *ImageDirector) editReference(
	ctx context.Context,
	dir *scratch.Dir,
	in ActionImageInput,
	templateName, directive, artStyle string,
) ([]byte, error) {
	prepared, err := imaging.NormalizeReference(in.Reference)
	if err != nil {
		return nil, fmt.Errorf("prepare reference: %w", err)
	}
	path, err := dir.Write(fmt.Sprintf("prepared_%d.png", d.now().UnixNano()), prepared)
	if err != nil {
		return nil, err
	}
	defer dir.Remove(path)

	image, err := dir.Read(path)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := withTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	return d.images.Edit(callCtx, &ImageEditRequest{
		Model: d.cfg.ActionModel,
		Prompt: fmt.Sprintf(prompts.ActionEditPrompt,
			templateName, in.Post, directive, templateName, artStyle,
			templateName, in.Post, artStyle, templateName),
		Size:      d.cfg.Size,
		Image:     image,
		ImageName: "prepared.png",
	})
}

func (d *ImageDirector) generateAction(
	ctx context.Context,
	in ActionImageInput,
	tier catalog.QualityTier,
	templateName, directive, artStyle string,
) ([]byte, error) {
	callCtx, cancel := withTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	character := in.Character.CharacterPrompt
	return d.images.Generate(callCtx, &ImageRequest{
		Model: d.cfg.ActionModel,
		Prompt: fmt.Sprintf(prompts.ActionGeneratePrompt,
			templateName, character, in.Post, directive,
			character, artStyle, templateName, templateName),
		Size:    d.cfg.Size,
		Quality: tier.Quality,
	})
}

func (d *ImageDirector) actionUsage(q domain.ImageQuality, tier catalog.QualityTier) domain.ImageGeneration {
	return domain.ImageGeneration{
		Type:      domain.ImageKindAction,
		Quality:   q,
		Tokens:    tier.Tokens,
		Timestamp: d.now().UTC(),
	}
}

func templateDirective(m *domain.TemplateMatch) string {
	t := m.TemplateData
	return fmt.Sprintf(prompts.TemplateDirective,
		m.TemplateName, t.VisualStructure, t.LayoutRequirements, t.TemplateFormat,
		m.VisualAdaptation, m.TemplateName)
}
