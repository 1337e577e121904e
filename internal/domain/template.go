package domain

// TemplateDefinition is a read-only meme template catalog entry.
type TemplateDefinition struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	UseCase            string   `json:"use_case"`
	Keywords           []string `json:"keywords"`
	EmotionalTriggers  []string `json:"emotional_triggers"`
	VisualStructure    string   `json:"visual_structure"`
	LayoutRequirements string   `json:"layout_requirements"`
	TemplateFormat     string   `json:"template_format"`
	IdealFor           string   `json:"ideal_for"`
	MemeStrength       int      `json:"meme_strength"`
}

// TweetFeatures are the semantic traits of a post used for template scoring.
type TweetFeatures struct {
	PrimaryEmotion         string   `json:"primary_emotion"`
	ContentType            string   `json:"content_type"`
	KeyConcepts            []string `json:"key_concepts"`
	ConflictElements       []string `json:"conflict_elements"`
	HumorType              string   `json:"humor_type"`
	RequiresVisualElements []string `json:"requires_visual_elements"`
	MemePotentialKeywords  []string `json:"meme_potential_keywords"`
}

// DefaultTweetFeatures returns the neutral feature set used when extraction fails.
func DefaultTweetFeatures() *TweetFeatures {
	return &TweetFeatures{
		PrimaryEmotion:         "neutral",
		ContentType:            "observation",
		KeyConcepts:            []string{},
		ConflictElements:       []string{},
		HumorType:              "observational",
		RequiresVisualElements: []string{},
		MemePotentialKeywords:  []string{},
	}
}

// TemplateScore is the heuristic compatibility of one template with a post.
type TemplateScore struct {
	TemplateName       string             `json:"template_name"`
	CompatibilityScore float64            `json:"compatibility_score"`
	Reasons            []string           `json:"reasons"`
	TemplateData       TemplateDefinition `json:"template_data"`
}

// TemplateMatch is the final template pick for a run.
type TemplateMatch struct {
	TemplateName       string             `json:"template_name"`
	TemplateData       TemplateDefinition `json:"template_data"`
	CompatibilityScore float64            `json:"compatibility_score"`
	ConfidenceScore    float64            `json:"confidence_score"`
	VisualAdaptation   string             `json:"visual_adaptation"`
	WhySelected        string             `json:"why_selected"`
	Reasons            []string           `json:"reasons"`
}

// MemeMatchResult bundles the pick with the scoring that led to it.
type MemeMatchResult struct {
	BestMatch     TemplateMatch   `json:"best_match"`
	TweetFeatures *TweetFeatures  `json:"tweet_features"`
	AllScores     []TemplateScore `json:"all_scores"`
	TopCandidates []TemplateScore `json:"top_candidates"`
}
