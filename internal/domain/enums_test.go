package domain

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestParseEnums(t *testing.T) {
	tests := []struct {
		name    string
		parse   func(string) (string, error)
		input   string
		want    string
		wantErr bool
	}{
		{name: "pipeline meme", parse: wrap(ParsePipelineType), input: " MEME ", want: "meme"},
		{name: "pipeline simple", parse: wrap(ParsePipelineType), input: "simple", want: "simple"},
		{name: "pipeline empty", parse: wrap(ParsePipelineType), input: "", wantErr: true},
		{name: "pipeline unknown", parse: wrap(ParsePipelineType), input: "video", wantErr: true},
		{name: "style default", parse: wrap(ParseMemeStyle), input: "", want: "Global"},
		{name: "style indian", parse: wrap(ParseMemeStyle), input: "indian", want: "Indian"},
		{name: "style unknown", parse: wrap(ParseMemeStyle), input: "Martian", wantErr: true},
		{name: "art style", parse: wrap(ParseArtStyle), input: "Oil_Painting", want: "oil_painting"},
		{name: "art style unknown", parse: wrap(ParseArtStyle), input: "cubism", wantErr: true},
		{name: "quality default", parse: wrap(ParseImageQuality), input: "", want: "basic"},
		{name: "quality advanced", parse: wrap(ParseImageQuality), input: "Advanced", want: "advanced"},
		{name: "quality unknown", parse: wrap(ParseImageQuality), input: "ultra", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.parse(tt.input)
			if tt.wantErr {
				if !IsValidation(err) {
					t.Errorf("error = %v, want validation error", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("got %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}

func wrap[T ~string](f func(string) (T, error)) func(string) (string, error) {
	return func(s string) (string, error) {
		v, err := f(s)
		return string(v), err
	}
}

func TestApproachIndex(t *testing.T) {
	for i, a := range Approaches {
		if ApproachIndex(a) != i {
			t.Errorf("ApproachIndex(%q) = %d, want %d", a, ApproachIndex(a), i)
		}
	}
	if ApproachIndex("Interpretive dance") != len(Approaches) {
		t.Error("unknown approach should sort last")
	}
}

func TestClipPost(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "short", input: "hello", want: 5},
		{name: "exact", input: strings.Repeat("a", MaxPostRunes), want: MaxPostRunes},
		{name: "multibyte", input: strings.Repeat("नम", 200), want: MaxPostRunes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClipPost(tt.input)
			if n := utf8.RuneCountInString(got); n != tt.want {
				t.Errorf("runes = %d, want %d", n, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Error("clip split a rune")
			}
		})
	}
}

func TestFailedVariation(t *testing.T) {
	v := FailedVariation(ApproachStory, errors.New("timeout"))
	if v.Content != "Error generating Storytelling variation" || v.Error != "timeout" {
		t.Errorf("FailedVariation() = %+v", v)
	}
	if v.CharacterCount != utf8.RuneCountInString(v.Content) || v.ViralElements == nil {
		t.Errorf("FailedVariation() shape = %+v", v)
	}
}

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name    string
		prev    string
		next    string
		wantErr error
	}{
		{name: "first post", prev: "", next: "hello"},
		{name: "unchanged", prev: "hello", next: "hello"},
		{name: "changed", prev: "hello", next: "bye", wantErr: ErrPostImmutable},
		{name: "cleared", prev: "hello", next: "", wantErr: ErrPostImmutable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransition(&Session{FinalTweet: tt.prev}, &Session{FinalTweet: tt.next})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckTransition() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTokenUsageTrack(t *testing.T) {
	var u TokenUsage
	u.Track(ImageGeneration{Type: ImageKindCharacter, Tokens: 1056})
	u.Track(ImageGeneration{Type: ImageKindAction, Tokens: 4160})
	u.Track(ImageGeneration{Type: ImageKindAction, Tokens: 1056})

	if u.TotalTokens != 6272 || u.CharacterGenerationTokens != 1056 || u.ActionGenerationTokens != 5216 {
		t.Errorf("usage = %+v", u)
	}
	if len(u.ImageGenerations) != 3 {
		t.Errorf("generations = %d", len(u.ImageGenerations))
	}
}

func TestErrorTaxonomy(t *testing.T) {
	nf := &NotFoundError{Kind: "session", ID: "x"}
	wrapped := &ProviderError{Op: "read", Err: nf}
	if !IsNotFound(wrapped) || IsValidation(wrapped) {
		t.Error("ProviderError should unwrap to NotFoundError")
	}
	if got := (&ValidationError{Field: "raw_thoughts"}).Error(); got != "missing required field: raw_thoughts" {
		t.Errorf("ValidationError.Error() = %q", got)
	}
	up := &UploadError{Key: "k", Err: ErrSessionExists}
	if !errors.Is(up, ErrSessionExists) {
		t.Error("UploadError should unwrap")
	}
}

func TestValidateSessionID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{id: "3f0c2a7e-1b7d-4c1e-9a55-3e0f7b8d2c11", want: true},
		{id: "approve-1", want: true},
		{id: "", want: false},
		{id: ".", want: false},
		{id: "..", want: false},
		{id: "../configs", want: false},
		{id: `..\configs`, want: false},
		{id: "nul\x00byte", want: false},
		{id: "line\nbreak", want: false},
		{id: strings.Repeat("a", MaxSessionIDLength), want: true},
		{id: strings.Repeat("a", MaxSessionIDLength+1), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := ValidateSessionID(tt.id)
			if tt.want && err != nil {
				t.Errorf("ValidateSessionID() error = %v", err)
			}
			if !tt.want && !IsValidation(err) {
				t.Errorf("ValidateSessionID() = %v, want validation error", err)
			}
		})
	}
}
