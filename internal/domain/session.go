package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// StringArray stores a string slice as a JSON text column.
type StringArray []string

// Value implements driver.Valuer.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan StringArray")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, a)
}

// ImageGeneration records the nominal token cost of one image call.
type ImageGeneration struct {
	Type      string       `json:"type"`
	Quality   ImageQuality `json:"quality"`
	Tokens    int          `json:"tokens"`
	Timestamp time.Time    `json:"timestamp"`
}

// TokenUsage accumulates image token accounting for a session.
type TokenUsage struct {
	TotalTokens               int               `json:"total_tokens"`
	CharacterGenerationTokens int               `json:"character_generation_tokens"`
	ActionGenerationTokens    int               `json:"action_generation_tokens"`
	ImageGenerations          []ImageGeneration `json:"image_generations"`
}

// Image generation kinds.
const (
	ImageKindCharacter = "character"
	ImageKindAction    = "action"
)

// Track adds g to the usage counters.
func (u *TokenUsage) Track(g ImageGeneration) {
	u.TotalTokens += g.Tokens
	switch g.Type {
	case ImageKindCharacter:
		u.CharacterGenerationTokens += g.Tokens
	case ImageKindAction:
		u.ActionGenerationTokens += g.Tokens
	}
	u.ImageGenerations = append(u.ImageGenerations, g)
}

// CharacterData describes the character an action image is built around.
type CharacterData struct {
	CharacterImageURL string   `json:"character_image_url,omitempty"`
	CharacterPrompt   string   `json:"character_prompt,omitempty"`
	ArtStyle          ArtStyle `json:"art_style_key,omitempty"`
	// ArtStyleDescription is the long form of ArtStyle fed into prompts.
	ArtStyleDescription string `json:"art_style"`
	Source              string `json:"source,omitempty"`
}

// Session is the accumulated state of one generation run.
type Session struct {
	ID                string           `json:"session_id"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	PipelineType      PipelineType     `json:"pipeline_type,omitempty"`
	MemeStyle         MemeStyle        `json:"meme_style,omitempty"`
	FinalTweet        string           `json:"final_tweet,omitempty"`
	TweetMetadata     *PostMetadata    `json:"tweet_metadata,omitempty"`
	MemeTemplateData  *MemeMatchResult `json:"meme_template_data"`
	CharacterImageURL string           `json:"character_image_url,omitempty"`
	ActionImageURL    string           `json:"action_image_url,omitempty"`
	BlobURLs          []string         `json:"blob_urls"`
	TokenUsage        TokenUsage       `json:"token_usage"`
	// PendingCharacter is set while a generated character awaits approval.
	PendingCharacter *CharacterData `json:"pending_character_approval,omitempty"`
}

// MaxSessionIDLength bounds caller supplied session ids.
const MaxSessionIDLength = 128

// ValidateSessionID rejects ids that cannot be used as a single path element.
func ValidateSessionID(id string) error {
	var msg string
	switch {
	case id == "":
		msg = "session_id is required"
	case id == "." || id == "..":
		msg = fmt.Sprintf("session_id %q is not allowed", id)
	case len(id) > MaxSessionIDLength:
		msg = fmt.Sprintf("session_id is longer than %d bytes", MaxSessionIDLength)
	case strings.ContainsAny(id, `/\`):
		msg = "session_id may not contain path separators"
	case strings.IndexFunc(id, unicode.IsControl) >= 0:
		msg = "session_id may not contain control characters"
	default:
		return nil
	}
	return &ValidationError{Field: "session_id", Message: msg}
}

// NewSession returns an empty session stamped with now.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		BlobURLs:  []string{},
		TokenUsage: TokenUsage{
			ImageGenerations: []ImageGeneration{},
		},
	}
}

// AddBlobURL appends a persisted blob URL, ignoring empty values.
func (s *Session) AddBlobURL(url string) {
	if url != "" {
		s.BlobURLs = append(s.BlobURLs, url)
	}
}

// Clone returns a deep copy via JSON round trip.
func (s *Session) Clone() (*Session, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var out Session
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckTransition enforces that a chosen post never changes once stored.
func CheckTransition(prev, next *Session) error {
	if prev.FinalTweet != "" && next.FinalTweet != prev.FinalTweet {
		return ErrPostImmutable
	}
	return nil
}

// SessionRecord is the durable row form of a Session.
type SessionRecord struct {
	ID           string       `gorm:"type:text;primaryKey" json:"id"`
	PipelineType PipelineType `gorm:"type:text;index:idx_sessions_pipeline" json:"pipeline_type"`
	MemeStyle    MemeStyle    `gorm:"type:text" json:"meme_style"`
	FinalTweet   string       `gorm:"type:text" json:"final_tweet"`
	BlobURLs     StringArray  `gorm:"type:text" json:"blob_urls"`
	Payload      string       `gorm:"type:text;not null" json:"payload"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// TableName returns the database table name for SessionRecord.
func (SessionRecord) TableName() string {
	return "sessions"
}
