// Package catalog holds the read-only meme template catalog, art styles and
// image quality tiers shared by every generation run.
package catalog

import "github.com/timmy/viralpost/internal/domain"

var templates = []domain.TemplateDefinition{
	{
		Name:               "Drake Hotline Bling",
		Description:        "Two-panel vertical layout: top panel rejection, bottom panel approval",
		UseCase:            "comparing options, preferences, choices, before/after",
		Keywords:           []string{"choice", "preference", "compare", "vs", "better", "worse", "reject", "accept", "old", "new"},
		EmotionalTriggers:  []string{"decision", "upgrade", "improvement", "selection"},
		VisualStructure:    "Two vertical panels with same character in different poses",
		LayoutRequirements: "TOP: Drake pointing away with rejecting expression, BOTTOM: Drake pointing toward with approving smile",
		TemplateFormat:     "comparison_vertical",
		IdealFor:           "contrasting options, rejection vs approval, this vs that",
		MemeStrength:       95,
	},
	{
		Name:               "Distracted Boyfriend",
		Description:        "Man turning from girlfriend to check out another woman",
		UseCase:            "distraction, temptation, shifting attention, betrayal, choosing between options",
		Keywords:           []string{"temptation", "distraction", "new", "old", "choice", "betrayal", "switching", "leaving"},
		EmotionalTriggers:  []string{"temptation", "curiosity", "desire", "conflict"},
		VisualStructure:    "Single panel showing three people in triangle formation",
		LayoutRequirements: "Man turning from girlfriend toward other woman, girlfriend looking disapproving",
		TemplateFormat:     "triangle_relationship",
		IdealFor:           "distraction, temptation, shifting attention, betrayal, choosing between options",
		MemeStrength:       98,
	},
	{
		Name:               "Surprised Pikachu",
		Description:        "Pikachu with wide-eyed shocked expression",
		UseCase:            "mock surprise, predictable outcomes, feigned shock, obvious results",
		Keywords:           []string{"surprise", "shock", "obvious", "predictable", "expected", "wow", "really"},
		EmotionalTriggers:  []string{"surprise", "sarcasm", "mockery", "obviousness"},
		VisualStructure:    "Single panel close-up of Pikachu's face",
		LayoutRequirements: "Pikachu with wide eyes and open mouth showing exaggerated surprise",
		TemplateFormat:     "single_reaction",
		IdealFor:           "mock surprise, predictable outcomes, feigned shock, obvious results",
		MemeStrength:       92,
	},
	{
		Name:               "Woman Yelling at Cat",
		Description:        "Split image of yelling woman and confused cat at dinner table",
		UseCase:            "arguments, confusion, misunderstanding, confrontation, talking past each other",
		Keywords:           []string{"argument", "confusion", "misunderstanding", "fight", "confrontation", "different views"},
		EmotionalTriggers:  []string{"anger", "confusion", "frustration", "confrontation"},
		VisualStructure:    "Two panels showing woman and cat in confrontational setup",
		LayoutRequirements: "LEFT: woman pointing and yelling, RIGHT: confused cat at table with food",
		TemplateFormat:     "split_confrontation",
		IdealFor:           "arguments, confusion, misunderstanding, confrontation, talking past each other",
		MemeStrength:       94,
	},
	{
		Name:               "Mocking SpongeBob",
		Description:        "Distorted SpongeBob with alternating caps text for sarcastic repetition",
		UseCase:            "sarcasm, mocking, repetition, making fun, mimicking",
		Keywords:           []string{"sarcasm", "mocking", "mimic", "repeat", "ridiculous", "silly", "making fun"},
		EmotionalTriggers:  []string{"sarcasm", "mockery", "ridicule", "humor"},
		VisualStructure:    "Single panel showing distorted SpongeBob",
		LayoutRequirements: "SpongeBob with distorted, mocking expression, typically with alternating caps text",
		TemplateFormat:     "single_mockery",
		IdealFor:           "sarcasm, mocking, making fun, mimicking someone",
		MemeStrength:       89,
	},
	{
		Name:               "Two Buttons",
		Description:        "Character sweating while looking at two red buttons on table",
		UseCase:            "difficult decisions, impossible choices, moral dilemmas",
		Keywords:           []string{"decision", "choice", "difficult", "dilemma", "impossible", "stuck", "choose"},
		EmotionalTriggers:  []string{"anxiety", "pressure", "indecision", "stress"},
		VisualStructure:    "Single panel with stressed character, table, and two buttons",
		LayoutRequirements: "Character behind table with two red buttons, showing stress/sweat, difficult decision body language",
		TemplateFormat:     "decision_stress",
		IdealFor:           "hard choices, conflicting desires, dilemmas",
		MemeStrength:       91,
	},
	{
		Name:               "Expanding Brain",
		Description:        "Series of panels showing increasing enlightenment from normal to cosmic brain",
		UseCase:            "enlightenment, escalation, increasing absurdity, levels of intelligence",
		Keywords:           []string{"smart", "genius", "evolution", "levels", "upgrade", "enlightenment", "intelligence"},
		EmotionalTriggers:  []string{"intelligence", "superiority", "evolution", "enlightenment"},
		VisualStructure:    "Multiple panels showing progressive brain expansion",
		LayoutRequirements: "Sequential panels with increasingly large/glowing brain, showing escalating enlightenment",
		TemplateFormat:     "progressive_evolution",
		IdealFor:           "enlightenment, escalation, increasing absurdity, levels of understanding",
		MemeStrength:       87,
	},
	{
		Name:               "Hide the Pain Harold",
		Description:        "Older man forcing smile while experiencing discomfort",
		UseCase:            "hidden pain, fake smiles, discomfort, suffering in silence",
		Keywords:           []string{"pain", "fake", "smile", "suffering", "hiding", "discomfort", "pretending"},
		EmotionalTriggers:  []string{"pain", "suffering", "pretense", "discomfort"},
		VisualStructure:    "Single panel showing Harold's forced smile",
		LayoutRequirements: "Harold with forced smile that doesn't hide the pain in his eyes",
		TemplateFormat:     "single_suffering",
		IdealFor:           "hidden pain, fake smiles, discomfort, suffering in silence",
		MemeStrength:       88,
	},
	{
		Name:               "This Is Fine",
		Description:        "Dog sitting in burning room saying everything is fine",
		UseCase:            "denial, ignoring problems, everything falling apart, false optimism",
		Keywords:           []string{"fine", "okay", "disaster", "burning", "denial", "ignoring", "problems"},
		EmotionalTriggers:  []string{"denial", "anxiety", "false comfort", "disaster"},
		VisualStructure:    "Single panel showing dog in burning room",
		LayoutRequirements: "Dog calmly sitting with coffee in chaotic burning environment",
		TemplateFormat:     "single_denial",
		IdealFor:           "denial, ignoring problems, everything falling apart, false optimism",
		MemeStrength:       96,
	},
	{
		Name:               "Always Has Been",
		Description:        "Two astronauts with plot twist revelation, second about to shoot first",
		UseCase:            "plot twists, revelations, always been true, shocking discoveries",
		Keywords:           []string{"always", "truth", "revelation", "discovery", "plot twist", "reality", "shocking"},
		EmotionalTriggers:  []string{"revelation", "shock", "realization", "truth"},
		VisualStructure:    "Two panels showing astronauts in space",
		LayoutRequirements: "Panel 1: astronaut realizing truth, Panel 2: second astronaut with gun saying 'always has been'",
		TemplateFormat:     "revelation_sequence",
		IdealFor:           "plot twists, revelations, always been true, shocking discoveries",
		MemeStrength:       93,
	},
	{
		Name:               "Gru's Plan",
		Description:        "Four-panel sequence from Despicable Me where plan backfires",
		UseCase:            "plans backfiring, ironic failures, unexpected outcomes",
		Keywords:           []string{"plan", "backfire", "failure", "unexpected", "ironic", "went wrong"},
		EmotionalTriggers:  []string{"irony", "failure", "disappointment", "surprise"},
		VisualStructure:    "Four panels showing progression from plan to backfire",
		LayoutRequirements: "Panel 1-3: Gru presenting plan confidently, Panel 4: Gru realizing plan backfired",
		TemplateFormat:     "plan_backfire_sequence",
		IdealFor:           "showing plans backfiring, ironic failures, unexpected outcomes",
		MemeStrength:       90,
	},
	{
		Name:               "Buff Doge vs Cheems",
		Description:        "Muscular confident Doge compared to sad, weak Cheems",
		UseCase:            "comparison, strength vs weakness, competence gaps, then vs now",
		Keywords:           []string{"strong", "weak", "comparison", "then", "now", "competence", "ability"},
		EmotionalTriggers:  []string{"comparison", "nostalgia", "decline", "strength"},
		VisualStructure:    "Two panels or side-by-side comparison of contrasting dogs",
		LayoutRequirements: "LEFT/TOP: muscular, confident Doge, RIGHT/BOTTOM: sad, weak Cheems, showing clear contrast",
		TemplateFormat:     "comparison_contrast",
		IdealFor:           "comparing strength vs weakness, competence gaps, then vs now scenarios",
		MemeStrength:       85,
	},
	{
		Name:               "Roll Safe",
		Description:        "Man tapping temple indicating 'smart' but flawed logic",
		UseCase:            "flawed logic, ironic smartness, bad advice, think about it",
		Keywords:           []string{"smart", "think", "logic", "clever", "brain", "idea", "wisdom"},
		EmotionalTriggers:  []string{"confidence", "smugness", "irony", "cleverness"},
		VisualStructure:    "Single panel showing man tapping temple",
		LayoutRequirements: "Man with knowing smile tapping temple with finger, indicating 'smart' thinking",
		TemplateFormat:     "single_wisdom",
		IdealFor:           "flawed logic, ironic smartness, bad advice, think about it moments",
		MemeStrength:       86,
	},
}

// Templates returns a copy of the catalog in its canonical order.
func Templates() []domain.TemplateDefinition {
	out := make([]domain.TemplateDefinition, len(templates))
	copy(out, templates)
	return out
}

// Fallback returns the first catalog entry, used when matching cannot complete.
func Fallback() domain.TemplateDefinition {
	return templates[0]
}

// Lookup finds a template by exact name.
func Lookup(name string) (domain.TemplateDefinition, error) {
	for _, t := range templates {
		if t.Name == name {
			return t, nil
		}
	}
	return domain.TemplateDefinition{}, &domain.NotFoundError{Kind: "template", ID: name}
}
