package extract

import (
	"net/url"
	"sort"
	"strings"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

// Selectors are the sub-selectors applied inside a matched container.
type Selectors struct {
	Title       []string `mapstructure:"title"`
	Image       []string `mapstructure:"image"`
	Description []string `mapstructure:"description"`
}

// DefaultSelectors returns the built-in element sub-selectors.
func DefaultSelectors() Selectors {
	return Selectors{
		Title: []string{
			"h1", "h2", "h3", ".title", ".post-title", ".entry-title",
			".article-title", ".news-title", "a[title]", ".headline",
		},
		Image: []string{
			"img", ".featured-image img", ".post-thumbnail img", ".wp-post-image",
			".article-image img", ".news-image img",
		},
		Description: []string{
			".excerpt", ".summary", ".post-excerpt", ".entry-summary",
			".article-summary", ".news-summary", "p", ".description",
		},
	}
}

// StrategyRegistry maps portal domains to ordered container selectors.
// Keys match when the portal host contains them.
type StrategyRegistry struct {
	byDomain map[string][]string
	order    []string
	fallback []string
}

// NewStrategyRegistry builds a registry. fallback applies to unknown domains.
func NewStrategyRegistry(byDomain map[string][]string, fallback []string) *StrategyRegistry {
	r := &StrategyRegistry{
		byDomain: make(map[string][]string, len(byDomain)),
		fallback: append([]string(nil), fallback...),
	}
	for k, v := range byDomain {
		key := strings.ToLower(strings.TrimSpace(k))
		r.byDomain[key] = append([]string(nil), v...)
		r.order = append(r.order, key)
	}
	// Longest key first so "pv-magazine-latam" wins over "pv-magazine".
	sort.Slice(r.order, func(i, j int) bool {
		if len(r.order[i]) != len(r.order[j]) {
			return len(r.order[i]) > len(r.order[j])
		}
		return r.order[i] < r.order[j]
	})
	return r
}

// For returns the strategies for portal. Portal-level selectors take precedence.
func (r *StrategyRegistry) For(portal pipeline.SourcePortal) []string {
	if len(portal.Selectors) > 0 {
		return append([]string(nil), portal.Selectors...)
	}
	host := ""
	if u, err := url.Parse(portal.BaseURL); err == nil {
		host = strings.ToLower(u.Hostname())
	}
	for _, key := range r.order {
		if host != "" && strings.Contains(host, key) {
			return append([]string(nil), r.byDomain[key]...)
		}
	}
	return append([]string(nil), r.fallback...)
}

// DefaultStrategies returns the built-in domain table and the generic fallback.
func DefaultStrategies() (map[string][]string, []string) {
	byDomain := map[string][]string{
		"energiasrenovables": {
			"article", ".post", ".entry", ".hentry", ".post-item",
			`[class*="post"]`, `[class*="article"]`, ".news-item", ".content-item",
		},
		"energiaonline": {
			"article", ".post-item", ".news-item", ".entry", ".article-item",
			`[class*="article"]`, `[class*="post"]`, ".content-item", ".news-content",
		},
		"energiaestrategica": {
			"article", ".post", ".news-post", ".article-item", `[class*="post"]`,
			`[class*="article"]`, ".content-item", ".news-item", ".entry",
		},
		"pv-magazine-latam": {
			"article", ".teaser", ".article-teaser", ".post", `[class*="teaser"]`,
			`[class*="article"]`, ".content-item", ".news-item", ".entry",
		},
	}
	fallback := []string{
		"article", ".post", ".entry", ".news-item", ".article-item",
		`[class*="post"]`, `[class*="article"]`, ".content-item", ".news-content",
	}
	return byDomain, fallback
}
