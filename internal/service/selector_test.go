package service

import (
	"context"
	"reflect"
	"testing"

	"github.com/timmy/viralpost/internal/domain"
)

func sampleVariations() []domain.Variation {
	return []domain.Variation{
		domain.NewVariation("first", domain.ApproachHook),
		domain.NewVariation("second", domain.ApproachStory),
	}
}

func TestSelector_Fallback(t *testing.T) {
	want := domain.Selection{
		Index:       0,
		Content:     "first",
		Approach:    domain.ApproachHook,
		TotalScore:  75,
		WhySelected: "Fallback selection",
	}

	tests := []struct {
		name string
		stub *stubCompleter
	}{
		{name: "provider error", stub: newStub().fail(markSelection)},
		{name: "malformed reply", stub: newStub().on(markSelection, "nope")},
		{name: "missing best_variation", stub: newStub().on(markSelection, `{"winner":1}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSelector(tt.stub, "m", 0).Select(context.Background(), "raw", sampleVariations(), domain.StyleProfile{})
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Select() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestSelector_Select(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  domain.Selection
	}{
		{
			name:  "full reply",
			reply: `{"best_variation":{"index":1,"content":"second","approach":"Storytelling","total_score":91.5,"why_selected":"best arc"}}`,
			want:  domain.Selection{Index: 1, Content: "second", Approach: domain.ApproachStory, TotalScore: 91.5, WhySelected: "best arc"},
		},
		{
			name:  "partial reply keeps first variation defaults",
			reply: `{"best_variation":{"why_selected":"tight"}}`,
			want:  domain.Selection{Index: 0, Content: "first", Approach: domain.ApproachHook, TotalScore: 75, WhySelected: "tight"},
		},
		{
			name:  "out of range index ignored",
			reply: `{"best_variation":{"index":9,"content":"second"}}`,
			want:  domain.Selection{Index: 0, Content: "second", Approach: domain.ApproachHook, TotalScore: 75, WhySelected: "Fallback selection"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStub().on(markSelection, tt.reply)
			got := NewSelector(stub, "m", 0).Select(context.Background(), "raw", sampleVariations(), domain.StyleProfile{})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Select() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
