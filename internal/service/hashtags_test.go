package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"time"
	"testing"
)

const hashtagPage = `<html><body>
<div id="popular">
  <table class="table">
    <thead><tr><th>#</th><th>Tag</th><th>Posts</th></tr></thead>
    <tbody>
      <tr><td>1</td><td> #tech </td><td>10M</td></tr>
      <tr><td>2</td><td>#coding</td></tr>
      <tr><td>3</td><td>#developer</td><td>4M</td></tr>
      <tr><td>4</td><td>#programming</td><td>3M</td></tr>
    </tbody>
  </table>
</div>
</body></html>`

func TestParseHashtagTable(t *testing.T) {
	tests := []struct {
		name  string
		page  string
		count int
		want  []string
	}{
		{name: "skips short rows", page: hashtagPage, count: 15, want: []string{"#tech", "#developer", "#programming"}},
		{name: "count bounds rows read", page: hashtagPage, count: 2, want: []string{"#tech"}},
		{name: "no popular section", page: `<html><table class="table"><tbody><tr><td>1</td><td>#x</td><td>1</td></tr></tbody></table></html>`, count: 5, want: []string{}},
		{name: "popular without table", page: `<div id="popular"><p>soon</p></div>`, count: 5, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHashtagTable([]byte(tt.page), tt.count)
			if err != nil {
				t.Fatalf("ParseHashtagTable() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseHashtagTable() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHashtagScraper_TopHashtags(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/technology/":
			w.Write([]byte(hashtagPage))
		case "/empty/":
			w.Write([]byte(`<html></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	scraper := NewHashtagScraper(&HashtagConfig{BaseURL: srv.URL})
	ctx := context.Background()

	want := []string{"#tech", "#developer", "#programming"}
	got := scraper.TopHashtags(ctx, "Technology", 2)
	if !reflect.DeepEqual(got, want[:2]) {
		t.Fatalf("TopHashtags() = %q, want %q", got, want[:2])
	}
	got[0] = "#mutated"

	cached := scraper.TopHashtags(ctx, "technology", 15)
	if !reflect.DeepEqual(cached, want) {
		t.Errorf("cached TopHashtags() = %q, want the full ranking %q", cached, want)
	}
	cached[1] = "#mutated"
	if again := scraper.TopHashtags(ctx, "technology", 15); !reflect.DeepEqual(again, want) {
		t.Errorf("cache was modified through a returned slice: %q", again)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("expected one fetch for a cached niche, got %d", n)
	}

	for _, niche := range []string{"empty", "missing", ""} {
		if got := scraper.TopHashtags(ctx, niche, 15); got == nil || len(got) != 0 {
			t.Errorf("TopHashtags(%q) = %#v, want empty slice", niche, got)
		}
	}
}

func TestHashtagCache_Eviction(t *testing.T) {
	c := newHashtagCache(2, time.Hour)
	c.Set("a", []string{"#a"})
	c.Set("b", []string{"#b"})
	c.Set("a", []string{"#a2"})
	c.Set("c", []string{"#c"})

	if _, ok := c.Get("b"); ok {
		t.Error("least recently stored niche should be evicted")
	}
	if got, ok := c.Get("a"); !ok || got[0] != "#a2" {
		t.Errorf("Get(a) = %v, %v", got, ok)
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("newest niche missing")
	}
}
