package domain

import (
	"fmt"
	"unicode/utf8"
)

// MaxPostRunes is the rendered length limit of a post.
const MaxPostRunes = 280

// Variation is one candidate post drafted with a single approach.
type Variation struct {
	Content              string   `json:"content"`
	Approach             Approach `json:"approach"`
	ViralElements        []string `json:"viral_elements"`
	EngagementPrediction string   `json:"engagement_prediction"`
	TargetEmotion        string   `json:"target_emotion"`
	CharacterCount       int      `json:"character_count"`
	Error                string   `json:"error,omitempty"`
}

// NewVariation clips content to MaxPostRunes and derives CharacterCount from it.
func NewVariation(content string, approach Approach) Variation {
	content = ClipPost(content)
	return Variation{
		Content:        content,
		Approach:       approach,
		CharacterCount: utf8.RuneCountInString(content),
	}
}

// FailedVariation is the placeholder emitted when an approach cannot be drafted.
func FailedVariation(approach Approach, err error) Variation {
	v := NewVariation(fmt.Sprintf("Error generating %s variation", approach), approach)
	v.ViralElements = []string{}
	v.EngagementPrediction = "low"
	v.TargetEmotion = "neutral"
	if err != nil {
		v.Error = err.Error()
	}
	return v
}

// ClipPost truncates s to MaxPostRunes runes.
func ClipPost(s string) string {
	if utf8.RuneCountInString(s) <= MaxPostRunes {
		return s
	}
	r := []rune(s)
	return string(r[:MaxPostRunes])
}

// Selection is the winning variation and why it won.
type Selection struct {
	Index       int      `json:"index"`
	Content     string   `json:"content"`
	Approach    Approach `json:"approach"`
	TotalScore  float64  `json:"total_score"`
	WhySelected string   `json:"why_selected"`
}

// FallbackSelection picks the first variation.
func FallbackSelection(variations []Variation) Selection {
	sel := Selection{TotalScore: 75, WhySelected: "Fallback selection"}
	if len(variations) > 0 {
		sel.Content = variations[0].Content
		sel.Approach = variations[0].Approach
	}
	return sel
}
