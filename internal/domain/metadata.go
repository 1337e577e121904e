package domain

import "time"

// PostMetadata is the publishing context derived for a chosen post.
type PostMetadata struct {
	Tweet               string    `json:"tweet"`
	Niche               string    `json:"niche"`
	OptimalPostingTimes []string  `json:"optimal_posting_times"`
	SEOKeywords         []string  `json:"seo_keywords"`
	RecommendedHashtags []string  `json:"recommended_hashtags"`
	Platform            string    `json:"platform"`
	Timezone            string    `json:"timezone"`
	AnalysisDate        time.Time `json:"analysis_date"`
}

// StyleProfile is an opaque voice description passed between stages as JSON.
type StyleProfile map[string]interface{}

// DefaultStyleProfile returns the profile used when no previous posts are supplied.
func DefaultStyleProfile() StyleProfile {
	return StyleProfile{
		"voice_characteristics": map[string]interface{}{
			"tone":                 "engaging and authentic",
			"energy_level":         "medium-high with enthusiasm",
			"personality_traits":   []interface{}{"relatable", "genuine", "conversational"},
			"authenticity_markers": "natural conversational flow",
		},
		"engagement_patterns": map[string]interface{}{
			"hook_techniques":    []interface{}{"strong opening statements", "relatable scenarios"},
			"storytelling_style": "direct and personal",
			"emotional_triggers": []interface{}{"relatability", "curiosity", "inspiration"},
		},
		"writing_structure": map[string]interface{}{
			"sentence_patterns":   "mix of short and medium sentences",
			"emphasis_techniques": "strategic word choice and rhythm",
		},
		"vocabulary_style": map[string]interface{}{
			"formality_level": "casual but professional",
			"unique_phrases":  []interface{}{"conversational connectors", "relatable expressions"},
		},
	}
}

// ErrorStyleProfile is the degraded profile returned when analysis fails.
func ErrorStyleProfile(err error) StyleProfile {
	return StyleProfile{"error": err.Error()}
}
