package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/timmy/viralpost/internal/catalog"
	"github.com/timmy/viralpost/internal/domain"
	"github.com/timmy/viralpost/internal/logger"
	"github.com/timmy/viralpost/internal/prompts"
	"github.com/timmy/viralpost/internal/session"
	"github.com/timmy/viralpost/internal/storage"
)

// GenerateRequest is the input of Pipeline.Generate.
type GenerateRequest struct {
	SessionID       string    `json:"session_id"`
	RawThoughts     string    `json:"raw_thoughts"`
	PreviousContent []string  `json:"previous_content"`
	PipelineType    string    `json:"pipeline_type"`
	MemeStyle       string    `json:"meme_style"`
	Location        *Location `json:"location,omitempty"`
}

// GenerateResult is the output of a successful text run.
type GenerateResult struct {
	SessionID          string                  `json:"session_id"`
	BestTweet          string                  `json:"best_tweet"`
	Approach           domain.Approach         `json:"approach"`
	Metadata           domain.PostMetadata     `json:"metadata"`
	MemeTemplate       *domain.MemeMatchResult `json:"meme_template,omitempty"`
	Variations         []domain.Variation      `json:"variations"`
	SelectionRationale string                  `json:"selection_rationale"`
	MemeStyle          domain.MemeStyle        `json:"meme_style"`
	PipelineType       domain.PipelineType     `json:"pipeline_type"`
}

// ImageGenerateRequest extends GenerateRequest with a character. Exactly one
// of CharacterPrompt and CharacterImage is required.
type ImageGenerateRequest struct {
	GenerateRequest
	CharacterPrompt string `json:"character_prompt"`
	CharacterImage  []byte `json:"-"`
	ArtStyle        string `json:"art_style"`
	ImageQuality    string `json:"image_quality"`
	// RequireApproval stops after the character image until ApproveCharacter.
	RequireApproval bool `json:"require_approval"`
}

// ImageGenerateResult is the output of GenerateWithImage.
type ImageGenerateResult struct {
	GenerateResult
	CharacterImageURL string              `json:"character_image_url"`
	ActionImageURL    string              `json:"action_image_url"`
	SessionDataURL    string              `json:"session_data_url"`
	BlobURLs          []string            `json:"blob_urls"`
	TokenUsage        domain.TokenUsage   `json:"token_usage"`
	ImageQuality      domain.ImageQuality `json:"image_quality"`
	PendingApproval   bool                `json:"pending_approval"`
}

// ApproveRequest resumes a run parked for character approval.
type ApproveRequest struct {
	SessionID         string `json:"session_id"`
	CharacterImageURL string `json:"character_image_url"`
	ImageQuality      string `json:"image_quality"`
}

// ApproveResult is the output of ApproveCharacter.
type ApproveResult struct {
	SessionID         string              `json:"session_id"`
	BestTweet         string              `json:"best_tweet"`
	CharacterImageURL string              `json:"character_image_url"`
	ActionImageURL    string              `json:"action_image_url"`
	SessionDataURL    string              `json:"session_data_url"`
	BlobURLs          []string            `json:"blob_urls"`
	TokenUsage        domain.TokenUsage   `json:"token_usage"`
	ImageQuality      domain.ImageQuality `json:"image_quality"`
}

// PipelineDeps are the collaborators of a Pipeline.
type PipelineDeps struct {
	Style      *StyleAnalyzer
	Variations *VariationGenerator
	Selector   *Selector
	Metadata   *MetadataEnricher
	Matcher    *TemplateMatcher
	Director   *ImageDirector
	Publisher  *storage.Publisher
	Store      session.Store
	Guard      *session.Guard
}

// Pipeline orchestrates a generation run end to end.
type Pipeline struct {
	style      *StyleAnalyzer
	variations *VariationGenerator
	selector   *Selector
	metadata   *MetadataEnricher
	matcher    *TemplateMatcher
	director   *ImageDirector
	publisher  *storage.Publisher
	store      session.Store
	guard      *session.Guard
	now        func() time.Time
}

// NewPipeline creates a Pipeline. A nil Store or Guard gets an in-memory one.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.Store == nil {
		deps.Store = session.NewMemoryStore()
	}
	if deps.Guard == nil {
		deps.Guard = session.NewGuard()
	}
	return &Pipeline{
		style:      deps.Style,
		variations: deps.Variations,
		selector:   deps.Selector,
		metadata:   deps.Metadata,
		matcher:    deps.Matcher,
		director:   deps.Director,
		publisher:  deps.Publisher,
		store:      deps.Store,
		guard:      deps.Guard,
		now:        time.Now,
	}
}

// Session returns the stored state of a run.
func (p *Pipeline) Session(ctx context.Context, id string) (*domain.Session, error) {
	return p.store.Get(ctx, id)
}

type runInput struct {
	sessionID    string
	rawThoughts  string
	previous     []string
	pipelineType domain.PipelineType
	memeStyle    domain.MemeStyle
}

func (p *Pipeline) validate(req *GenerateRequest) (*runInput, error) {
	raw := strings.TrimSpace(req.RawThoughts)
	if raw == "" {
		return nil, &domain.ValidationError{Field: "raw_thoughts", Message: "raw_thoughts is required"}
	}
	pipelineType, err := domain.ParsePipelineType(req.PipelineType)
	if err != nil {
		return nil, err
	}

	var memeStyle domain.MemeStyle
	if strings.TrimSpace(req.MemeStyle) == "" && req.Location != nil {
		memeStyle = StyleForLocation(req.Location)
	} else if memeStyle, err = domain.ParseMemeStyle(req.MemeStyle); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(req.SessionID)
	if id == "" {
		id = uuid.New().String()
	} else if err := domain.ValidateSessionID(id); err != nil {
		return nil, err
	}

	previous := make([]string, 0, len(req.PreviousContent))
	for _, post := range req.PreviousContent {
		if post = strings.TrimSpace(post); post != "" {
			previous = append(previous, post)
		}
	}

	return &runInput{
		sessionID:    id,
		rawThoughts:  raw,
		previous:     previous,
		pipelineType: pipelineType,
		memeStyle:    memeStyle,
	}, nil
}

// Generate runs the text stages: style, variations, selection, then metadata
// and (for meme runs) template matching. It fails only on invalid input, a
// duplicate session id or when no variation could be produced.
func (p *Pipeline) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	in, err := p.validate(req)
	if err != nil {
		return nil, err
	}

	release, err := p.guard.Acquire(in.sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx = logger.SetSessionID(ctx, in.sessionID)
	res, sess, err := p.runText(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := p.store.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return res, nil
}

// runText creates the session record and fills it with the text stages.
func (p *Pipeline) runText(ctx context.Context, in *runInput) (*GenerateResult, *domain.Session, error) {
	start := time.Now()
	sess := domain.NewSession(in.sessionID, p.now().UTC())
	sess.PipelineType = in.pipelineType
	sess.MemeStyle = in.memeStyle
	if err := p.store.Create(ctx, sess); err != nil {
		return nil, nil, err
	}

	style := p.style.Analyze(ctx, in.previous)
	variations := p.variations.Generate(ctx, in.rawThoughts, style, in.pipelineType, in.memeStyle)
	if len(variations) == 0 {
		_ = p.store.Delete(ctx, in.sessionID)
		return nil, nil, domain.ErrNoVariations
	}

	selection := p.selector.Select(ctx, in.rawThoughts, variations, style)
	best := domain.ClipPost(selection.Content)

	var (
		meta  domain.PostMetadata
		match *domain.MemeMatchResult
	)
	var eg errgroup.Group
	eg.Go(func() error {
		meta = p.metadata.Enrich(ctx, best)
		return nil
	})
	if in.pipelineType == domain.PipelineMeme {
		eg.Go(func() error {
			match = p.matcher.Match(ctx, best)
			return nil
		})
	}
	_ = eg.Wait()

	sess.FinalTweet = best
	sess.TweetMetadata = &meta
	sess.MemeTemplateData = match

	logger.With(logger.Fields{
		logger.FieldCount:    len(variations),
		logger.FieldApproach: string(selection.Approach),
	}).Since(start).Info(ctx, "Text pipeline completed")

	return &GenerateResult{
		SessionID:          in.sessionID,
		BestTweet:          best,
		Approach:           selection.Approach,
		Metadata:           meta,
		MemeTemplate:       match,
		Variations:         variations,
		SelectionRationale: selection.WhySelected,
		MemeStyle:          in.memeStyle,
		PipelineType:       in.pipelineType,
	}, sess, nil
}

// GenerateWithImage runs Generate and then renders a character (or uses the
// supplied one) and an action image. Image failures leave URLs empty; only a
// failed upload of a supplied character image is fatal.
func (p *Pipeline) GenerateWithImage(ctx context.Context, req *ImageGenerateRequest) (*ImageGenerateResult, error) {
	in, err := p.validate(&req.GenerateRequest)
	if err != nil {
		return nil, err
	}
	character, quality, err := validateCharacter(req)
	if err != nil {
		return nil, err
	}

	release, err := p.guard.Acquire(in.sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx = logger.SetSessionID(ctx, in.sessionID)
	text, sess, err := p.runText(ctx, in)
	if err != nil {
		return nil, err
	}

	var reference []byte
	if len(req.CharacterImage) > 0 {
		url, err := p.publisher.UploadBytes(ctx, storage.FolderCharacters, req.CharacterImage, ".png")
		if err != nil {
			_ = p.store.Delete(ctx, in.sessionID)
			return nil, err
		}
		character.CharacterImageURL = url
		reference = req.CharacterImage
	} else {
		generated := p.director.GenerateCharacter(ctx, character.CharacterPrompt, character.ArtStyleDescription, quality)
		if generated.Usage != nil {
			sess.TokenUsage.Track(*generated.Usage)
		}
		if generated.URL == "" {
			logger.CtxWarn(ctx, "Character image unavailable, action image will be generated from the prompt")
		}
		character.CharacterImageURL = generated.URL
		reference = generated.ImageBytes
	}
	sess.CharacterImageURL = character.CharacterImageURL
	sess.AddBlobURL(character.CharacterImageURL)

	result := &ImageGenerateResult{
		GenerateResult:    *text,
		CharacterImageURL: character.CharacterImageURL,
		ImageQuality:      quality,
	}

	if req.RequireApproval && len(req.CharacterImage) == 0 && character.CharacterImageURL != "" {
		sess.PendingCharacter = &character
		result.PendingApproval = true
	} else {
		action := p.director.GenerateActionImage(ctx, ActionImageInput{
			SessionID: in.sessionID,
			Post:      sess.FinalTweet,
			Character: character,
			Match:     bestMatch(sess),
			Reference: reference,
			Quality:   quality,
		})
		for _, u := range action.Usage {
			sess.TokenUsage.Track(u)
		}
		sess.ActionImageURL = action.URL
		sess.AddBlobURL(action.URL)
		result.ActionImageURL = action.URL
	}

	result.SessionDataURL = p.publishSession(ctx, sess)
	if err := p.store.Put(ctx, sess); err != nil {
		p.discardBlobs(ctx, sess.BlobURLs)
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	result.BlobURLs = sess.BlobURLs
	result.TokenUsage = sess.TokenUsage
	return result, nil
}

// ApproveCharacter resumes a parked run: it loads the approved character image
// and renders the action image for the stored post.
func (p *Pipeline) ApproveCharacter(ctx context.Context, req *ApproveRequest) (*ApproveResult, error) {
	id := strings.TrimSpace(req.SessionID)
	if err := domain.ValidateSessionID(id); err != nil {
		return nil, err
	}
	quality, err := domain.ParseImageQuality(req.ImageQuality)
	if err != nil {
		return nil, err
	}

	release, err := p.guard.Acquire(id)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx = logger.SetSessionID(ctx, id)
	sess, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if sess.PendingCharacter == nil {
		return nil, &domain.ValidationError{
			Field:   "session_id",
			Message: "no character image is pending approval for this session",
		}
	}
	character := *sess.PendingCharacter
	if u := strings.TrimSpace(req.CharacterImageURL); u != "" && u != character.CharacterImageURL {
		if !p.publisher.Owns(u) {
			return nil, &domain.ValidationError{
				Field:   "character_image_url",
				Message: "character_image_url must be an image published by this service",
			}
		}
		character.CharacterImageURL = u
	}

	reference, err := p.publisher.Read(ctx, character.CharacterImageURL)
	if err != nil {
		return nil, &domain.ProviderError{Op: "character image read", Err: err}
	}

	action := p.director.GenerateActionImage(ctx, ActionImageInput{
		SessionID: id,
		Post:      sess.FinalTweet,
		Character: character,
		Match:     bestMatch(sess),
		Reference: reference,
		Quality:   quality,
	})
	for _, u := range action.Usage {
		sess.TokenUsage.Track(u)
	}
	if sess.CharacterImageURL != character.CharacterImageURL {
		sess.CharacterImageURL = character.CharacterImageURL
		sess.AddBlobURL(character.CharacterImageURL)
	}
	sess.ActionImageURL = action.URL
	sess.AddBlobURL(action.URL)
	sess.PendingCharacter = nil

	dataURL := p.publishSession(ctx, sess)
	if err := p.store.Put(ctx, sess); err != nil {
		p.discardBlobs(ctx, []string{action.URL})
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return &ApproveResult{
		SessionID:         id,
		BestTweet:         sess.FinalTweet,
		CharacterImageURL: sess.CharacterImageURL,
		ActionImageURL:    action.URL,
		SessionDataURL:    dataURL,
		BlobURLs:          sess.BlobURLs,
		TokenUsage:        sess.TokenUsage,
		ImageQuality:      quality,
	}, nil
}

// publishSession uploads the session snapshot and records its URL. Failures
// are logged and yield an empty URL.
func (p *Pipeline) publishSession(ctx context.Context, sess *domain.Session) string {
	sess.UpdatedAt = p.now().UTC()
	url, err := p.publisher.UploadJSON(ctx, sess.ID+"_complete_session", sess)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Session snapshot upload failed")
		return ""
	}
	sess.AddBlobURL(url)
	return url
}

// discardBlobs removes objects written by a run whose session could not be saved.
func (p *Pipeline) discardBlobs(ctx context.Context, urls []string) {
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := p.publisher.Delete(ctx, u); err != nil && !errors.Is(err, storage.ErrForeignURL) {
			logger.FromContext(ctx).WithError(err).Warnf("Failed to discard blob %s", u)
		}
	}
}

func validateCharacter(req *ImageGenerateRequest) (domain.CharacterData, domain.ImageQuality, error) {
	quality, err := domain.ParseImageQuality(req.ImageQuality)
	if err != nil {
		return domain.CharacterData{}, "", err
	}

	prompt := strings.TrimSpace(req.CharacterPrompt)
	if prompt == "" && len(req.CharacterImage) == 0 {
		return domain.CharacterData{}, "", &domain.ValidationError{
			Field:   "character_prompt",
			Message: "either character_prompt or a character image is required",
		}
	}

	character := domain.CharacterData{
		CharacterPrompt:     prompt,
		ArtStyleDescription: prompts.DefaultArtStyle,
		Source:              "generated",
	}
	if len(req.CharacterImage) > 0 {
		character.Source = "uploaded"
	}
	if strings.TrimSpace(req.ArtStyle) != "" {
		art, err := domain.ParseArtStyle(req.ArtStyle)
		if err != nil {
			return domain.CharacterData{}, "", err
		}
		desc, err := catalog.ArtStyleDescription(art)
		if err != nil {
			return domain.CharacterData{}, "", err
		}
		character.ArtStyle = art
		character.ArtStyleDescription = desc
	}
	return character, quality, nil
}

func bestMatch(sess *domain.Session) *domain.TemplateMatch {
	if sess.MemeTemplateData == nil {
		return nil
	}
	m := sess.MemeTemplateData.BestMatch
	return &m
}
