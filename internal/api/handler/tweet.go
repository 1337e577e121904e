package handler

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/timmy/viralpost/internal/domain"
	"github.com/timmy/viralpost/internal/service"
)

// MaxCharacterUpload bounds an uploaded character image.
const MaxCharacterUpload = 10 << 20

// TweetService is the pipeline surface the handlers need.
type TweetService interface {
	Generate(ctx context.Context, req *service.GenerateRequest) (*service.GenerateResult, error)
	GenerateWithImage(ctx context.Context, req *service.ImageGenerateRequest) (*service.ImageGenerateResult, error)
	ApproveCharacter(ctx context.Context, req *service.ApproveRequest) (*service.ApproveResult, error)
	Session(ctx context.Context, id string) (*domain.Session, error)
}

// TweetHandler exposes generation runs over HTTP.
type TweetHandler struct {
	svc TweetService
}

// NewTweetHandler creates a tweet handler.
func NewTweetHandler(svc TweetService) *TweetHandler {
	return &TweetHandler{svc: svc}
}

// Generate handles POST /api/v1/tweets.
func (h *TweetHandler) Generate(c *gin.Context) {
	var req service.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	result, err := h.svc.Generate(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// GenerateWithCharacter handles POST /api/v1/tweets/character. It accepts
// either JSON with character_prompt or a multipart form with an "image" file.
func (h *TweetHandler) GenerateWithCharacter(c *gin.Context) {
	var (
		req service.ImageGenerateRequest
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		err = bindCharacterForm(c, &req)
	} else {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	result, err := h.svc.GenerateWithImage(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

func bindCharacterForm(c *gin.Context, req *service.ImageGenerateRequest) error {
	req.SessionID = c.PostForm("session_id")
	req.RawThoughts = c.PostForm("raw_thoughts")
	req.PreviousContent = c.PostFormArray("previous_content")
	req.PipelineType = c.PostForm("pipeline_type")
	req.MemeStyle = c.PostForm("meme_style")
	req.CharacterPrompt = c.PostForm("character_prompt")
	req.ArtStyle = c.PostForm("art_style")
	req.ImageQuality = c.PostForm("image_quality")

	if v := c.PostForm("require_approval"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("require_approval: %w", err)
		}
		req.RequireApproval = b
	}

	if lat, lon := c.PostForm("lat"), c.PostForm("lon"); lat != "" && lon != "" {
		la, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			return fmt.Errorf("lat: %w", err)
		}
		lo, err := strconv.ParseFloat(lon, 64)
		if err != nil {
			return fmt.Errorf("lon: %w", err)
		}
		req.Location = &service.Location{Lat: la, Lon: lo}
	}

	header, err := c.FormFile("image")
	if err != nil {
		// No file: the request must carry a character prompt instead.
		return nil
	}
	if header.Size > MaxCharacterUpload {
		return fmt.Errorf("image exceeds %d bytes", MaxCharacterUpload)
	}
	f, err := header.Open()
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxCharacterUpload+1))
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	if len(data) > MaxCharacterUpload {
		return fmt.Errorf("image exceeds %d bytes", MaxCharacterUpload)
	}
	req.CharacterImage = data
	return nil
}

// Approve handles POST /api/v1/characters/approve.
func (h *TweetHandler) Approve(c *gin.Context) {
	var req service.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	result, err := h.svc.ApproveCharacter(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// GetSession handles GET /api/v1/sessions/:id.
func (h *TweetHandler) GetSession(c *gin.Context) {
	sess, err := h.svc.Session(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, sess)
}
