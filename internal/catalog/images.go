package catalog

import (
	"fmt"

	"github.com/timmy/viralpost/internal/domain"
)

// QualityTier maps an ImageQuality to the provider quality flag and its nominal token cost.
type QualityTier struct {
	Quality     string `json:"quality"`
	Tokens      int    `json:"tokens"`
	Description string `json:"description"`
}

var qualityTiers = map[domain.ImageQuality]QualityTier{
	domain.ImageQualityBasic: {
		Quality:     "medium",
		Tokens:      1056,
		Description: "Medium quality rendering - balanced quality and cost",
	},
	domain.ImageQualityAdvanced: {
		Quality:     "high",
		Tokens:      4160,
		Description: "High quality rendering - premium quality with higher cost",
	},
}

var artStyles = map[domain.ArtStyle]string{
	domain.ArtStylePhotorealistic: "Photorealistic/3D Realistic - Ultra-realistic, highly detailed, photographic quality",
	domain.ArtStyleAnime:          "Studio Ghibli/Anime Style - Japanese animation style with soft colors and expressive characters",
	domain.ArtStylePixar:          "Pixar/3D Animation Style - Colorful 3D animated style with vibrant colors and cartoon features",
	domain.ArtStyleOilPainting:    "Oil Painting/Classical Art - Traditional painting style with rich textures and brush strokes",
	domain.ArtStyleComic:          "Comic Book/Pop Art Style - Bold colors, strong outlines, and dynamic comic aesthetics",
}

// Tier returns the quality tier for q. Every parsed ImageQuality has a tier.
func Tier(q domain.ImageQuality) (QualityTier, error) {
	t, ok := qualityTiers[q]
	if !ok {
		return QualityTier{}, &domain.ValidationError{
			Field:   "image_quality",
			Message: fmt.Sprintf("no quality tier for %q", q),
		}
	}
	return t, nil
}

// QualityTiers returns every tier keyed by its quality name.
func QualityTiers() map[domain.ImageQuality]QualityTier {
	out := make(map[domain.ImageQuality]QualityTier, len(qualityTiers))
	for k, v := range qualityTiers {
		out[k] = v
	}
	return out
}

// ArtStyleDescription returns the prompt text for an art style.
func ArtStyleDescription(a domain.ArtStyle) (string, error) {
	d, ok := artStyles[a]
	if !ok {
		return "", &domain.ValidationError{
			Field:   "art_style",
			Message: fmt.Sprintf("no description for art style %q", a),
		}
	}
	return d, nil
}

// ArtStyleDescriptions returns every art style description keyed by style.
func ArtStyleDescriptions() map[domain.ArtStyle]string {
	out := make(map[domain.ArtStyle]string, len(artStyles))
	for k, v := range artStyles {
		out[k] = v
	}
	return out
}
