package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"github.com/timmy/viralpost/internal/domain"
)

// CompletionRequest is one prompted completion.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
	// JSONMode asks the provider for a single JSON object reply.
	JSONMode bool
}

// TextCompleter issues prompted completions. Implementations return
// *domain.ProviderError on upstream failure or empty content.
type TextCompleter interface {
	Complete(ctx context.Context, req *CompletionRequest) (string, error)
}

// ChatConfig configures ChatClient.
type ChatConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// ChatClient is a TextCompleter over an OpenAI-compatible /chat/completions endpoint.
type ChatClient struct {
	client   *resty.Client
	endpoint string
}

// NewChatClient creates a chat completion client.
// Parameters:
//   - cfg: API key, base URL and per-request timeout.
//
// Returns:
//   - *ChatClient: ready client.
func NewChatClient(cfg *ChatConfig) *ChatClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(timeout)

	return &ChatClient{
		client:   client,
		endpoint: strings.TrimSuffix(baseURL, "/") + "/chat/completions",
	}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends req and returns the trimmed reply text.
func (c *ChatClient) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	body := chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.JSONMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var resp chatResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&resp).
		SetError(&resp).
		Post(c.endpoint)
	if err != nil {
		return "", &domain.ProviderError{Op: "chat completion", Err: err}
	}

	if httpResp.IsError() {
		msg := string(httpResp.Body())
		if resp.Error != nil {
			msg = resp.Error.Message
		}
		return "", &domain.ProviderError{
			Op:  "chat completion",
			Err: fmt.Errorf("HTTP %d: %s", httpResp.StatusCode(), msg),
		}
	}
	if resp.Error != nil {
		return "", &domain.ProviderError{Op: "chat completion", Err: errors.New(resp.Error.Message)}
	}
	if len(resp.Choices) == 0 {
		return "", &domain.ProviderError{Op: "chat completion", Err: errors.New("no choices in response")}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &domain.ProviderError{Op: "chat completion", Err: errors.New("empty content")}
	}
	return content, nil
}

// ParseJSONReply extracts the JSON object embedded in a model reply. Code fences
// are stripped first; if the remainder is still not a JSON object, the first
// balanced {...} span is tried. Anything else is a *domain.MalformedReplyError.
func ParseJSONReply(text string) (gjson.Result, error) {
	cleaned := stripFences(text)
	if isJSONObject(cleaned) {
		return gjson.Parse(cleaned), nil
	}

	if span, ok := firstObjectSpan(cleaned); ok && isJSONObject(span) {
		return gjson.Parse(span), nil
	}

	return gjson.Result{}, &domain.MalformedReplyError{
		Reply: text,
		Err:   errors.New("reply does not contain a JSON object"),
	}
}

func stripFences(text string) string {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func isJSONObject(s string) bool {
	return strings.HasPrefix(s, "{") && gjson.Valid(s) && gjson.Parse(s).IsObject()
}

// firstObjectSpan returns the first brace-balanced object in s, skipping braces
// inside string literals.
func firstObjectSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start == -1 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// stringField returns r as a string when it is a non-empty string.
func stringField(r gjson.Result) (string, bool) {
	if r.Type != gjson.String || r.Str == "" {
		return "", false
	}
	return r.Str, true
}

// stringList coerces r into a string slice. Arrays keep their string forms,
// scalars become a one-element slice and empty values yield nil.
func stringList(r gjson.Result) []string {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	if r.IsArray() {
		out := make([]string, 0, len(r.Array()))
		for _, item := range r.Array() {
			if s := strings.TrimSpace(item.String()); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := strings.TrimSpace(r.String()); s != "" && r.Type != gjson.False {
		return []string{s}
	}
	return nil
}
