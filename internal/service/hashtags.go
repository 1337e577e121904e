package service

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/timmy/viralpost/internal/logger"
)

// HashtagSource returns up to count ranked hashtags for a niche.
type HashtagSource interface {
	TopHashtags(ctx context.Context, niche string, count int) []string
}

// HashtagConfig configures HashtagScraper.
type HashtagConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	CacheSize int
	CacheTTL  time.Duration
}

// HashtagScraper reads the "#popular" ranking table of a public hashtag site.
type HashtagScraper struct {
	client  *resty.Client
	baseURL string
	cache   *hashtagCache
}

// NewHashtagScraper creates a HashtagScraper.
func NewHashtagScraper(cfg *HashtagConfig) *HashtagScraper {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "Mozilla/5.0 (compatible; HashtagScraper/1.0)"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://best-hashtags.com/hashtag"
	}
	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = 100
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 6 * time.Hour
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", ua)

	return &HashtagScraper{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		cache:   newHashtagCache(cacheSize, cacheTTL),
	}
}

// maxHashtagRows is how much of a ranking table is parsed and cached per niche.
const maxHashtagRows = 100

// TopHashtags returns [] on any network or markup problem. The callers get
// their own copy of the cached ranking.
func (s *HashtagScraper) TopHashtags(ctx context.Context, niche string, count int) []string {
	niche = strings.ToLower(strings.TrimSpace(niche))
	if niche == "" || count <= 0 {
		return []string{}
	}
	if cached, ok := s.cache.Get(niche); ok {
		return truncate(cached, count)
	}

	pageURL := fmt.Sprintf("%s/%s/", s.baseURL, url.PathEscape(niche))
	resp, err := s.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Hashtag page fetch failed")
		return []string{}
	}
	if resp.IsError() {
		logger.CtxWarn(ctx, "Hashtag page returned HTTP %d for niche %s", resp.StatusCode(), niche)
		return []string{}
	}

	tags, err := ParseHashtagTable(resp.Body(), maxHashtagRows)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Hashtag page parse failed")
		return []string{}
	}
	if len(tags) > 0 {
		s.cache.Set(niche, tags)
	}
	return truncate(tags, count)
}

// ParseHashtagTable reads the second column of the first count rows of the
// table inside #popular. Rows with fewer than three cells are skipped. Missing
// markup yields an empty slice.
func ParseHashtagTable(page []byte, count int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse hashtag page: %w", err)
	}

	tags := []string{}
	popular := doc.Find("#popular").First()
	if popular.Length() == 0 {
		return tags, nil
	}
	table := popular.Find("table.table").First()
	if table.Length() == 0 {
		return tags, nil
	}

	rows := table.Find("tbody tr")
	if rows.Length() > count {
		rows = rows.Slice(0, count)
	}
	rows.Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() < 3 {
			return
		}
		if tag := strings.TrimSpace(cols.Eq(1).Text()); tag != "" {
			tags = append(tags, tag)
		}
	})
	return tags, nil
}

func truncate(items []string, n int) []string {
	if len(items) <= n {
		out := make([]string, len(items))
		copy(out, items)
		return out
	}
	out := make([]string, n)
	copy(out, items[:n])
	return out
}

// hashtagCache is an LRU keyed by niche with a fixed TTL.
type hashtagCache struct {
	mu      sync.Mutex
	entries map[string]cachedHashtags
	order   []string // oldest first
	ttl     time.Duration
	maxSize int
}

type cachedHashtags struct {
	tags     []string
	storedAt time.Time
}

func newHashtagCache(maxSize int, ttl time.Duration) *hashtagCache {
	return &hashtagCache{
		entries: make(map[string]cachedHashtags),
		order:   make([]string, 0, maxSize),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

func (c *hashtagCache) Get(niche string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[niche]
	if !ok {
		return nil, false
	}
	c.removeFromOrder(niche)
	if time.Since(entry.storedAt) > c.ttl {
		delete(c.entries, niche)
		return nil, false
	}
	c.order = append(c.order, niche)
	return entry.tags, true
}

func (c *hashtagCache) Set(niche string, tags []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeFromOrder(niche)
	delete(c.entries, niche)
	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	c.entries[niche] = cachedHashtags{tags: tags, storedAt: time.Now()}
	c.order = append(c.order, niche)
}

func (c *hashtagCache) removeFromOrder(niche string) {
	for i, k := range c.order {
		if k == niche {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
