package domain

import (
	"fmt"
	"strings"
)

// PipelineType selects the content register of a generation run.
type PipelineType string

const (
	PipelineSimple PipelineType = "simple"
	PipelineMeme   PipelineType = "meme"
)

// ParsePipelineType validates a caller supplied pipeline type (case-insensitive).
func ParsePipelineType(s string) (PipelineType, error) {
	switch PipelineType(strings.ToLower(strings.TrimSpace(s))) {
	case PipelineSimple:
		return PipelineSimple, nil
	case PipelineMeme:
		return PipelineMeme, nil
	}
	return "", &ValidationError{
		Field:   "pipeline_type",
		Message: fmt.Sprintf("invalid pipeline_type %q, allowed values are: simple, meme", s),
	}
}

// MemeStyle is the cultural register applied to meme humor.
type MemeStyle string

const (
	MemeStyleIndian MemeStyle = "Indian"
	MemeStyleGlobal MemeStyle = "Global"
)

// ParseMemeStyle validates a meme style. An empty string yields MemeStyleGlobal.
func ParseMemeStyle(s string) (MemeStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return MemeStyleGlobal, nil
	case "indian":
		return MemeStyleIndian, nil
	case "global":
		return MemeStyleGlobal, nil
	}
	return "", &ValidationError{
		Field:   "meme_style",
		Message: fmt.Sprintf("invalid meme_style %q, allowed values are: Indian, Global", s),
	}
}

// Approach is one of the fixed rhetorical strategies used to draft a variation.
type Approach string

const (
	ApproachHook        Approach = "Hook-driven"
	ApproachStory       Approach = "Storytelling"
	ApproachContrarian  Approach = "Controversial/Contrarian"
	ApproachEducational Approach = "Educational/Value-packed"
	ApproachEmotional   Approach = "Emotional/Relatable"
)

// Approaches lists every approach in result order.
var Approaches = []Approach{
	ApproachHook,
	ApproachStory,
	ApproachContrarian,
	ApproachEducational,
	ApproachEmotional,
}

var approachIndex = func() map[Approach]int {
	m := make(map[Approach]int, len(Approaches))
	for i, a := range Approaches {
		m[a] = i
	}
	return m
}()

// ApproachIndex returns the position of a in Approaches, or len(Approaches) if unknown.
func ApproachIndex(a Approach) int {
	if i, ok := approachIndex[a]; ok {
		return i
	}
	return len(Approaches)
}

// ArtStyle is a closed set of rendering styles for character images.
type ArtStyle string

const (
	ArtStylePhotorealistic ArtStyle = "photorealistic"
	ArtStyleAnime          ArtStyle = "anime"
	ArtStylePixar          ArtStyle = "pixar"
	ArtStyleOilPainting    ArtStyle = "oil_painting"
	ArtStyleComic          ArtStyle = "comic"
)

// ArtStyles lists the accepted art style keys.
var ArtStyles = []ArtStyle{
	ArtStylePhotorealistic,
	ArtStyleAnime,
	ArtStylePixar,
	ArtStyleOilPainting,
	ArtStyleComic,
}

// ParseArtStyle validates an art style key (case-insensitive).
func ParseArtStyle(s string) (ArtStyle, error) {
	v := ArtStyle(strings.ToLower(strings.TrimSpace(s)))
	for _, a := range ArtStyles {
		if a == v {
			return v, nil
		}
	}
	return "", &ValidationError{
		Field:   "art_style",
		Message: fmt.Sprintf("invalid art_style %q, allowed values are: photorealistic, anime, pixar, oil_painting, comic", s),
	}
}

// ImageQuality is the rendering tier for generated images.
type ImageQuality string

const (
	ImageQualityBasic    ImageQuality = "basic"
	ImageQualityAdvanced ImageQuality = "advanced"
)

// ParseImageQuality validates an image quality tier. An empty string yields ImageQualityBasic.
func ParseImageQuality(s string) (ImageQuality, error) {
	switch ImageQuality(strings.ToLower(strings.TrimSpace(s))) {
	case "", ImageQualityBasic:
		return ImageQualityBasic, nil
	case ImageQualityAdvanced:
		return ImageQualityAdvanced, nil
	}
	return "", &ValidationError{
		Field:   "image_quality",
		Message: fmt.Sprintf("invalid image_quality %q, allowed values are: basic, advanced", s),
	}
}
