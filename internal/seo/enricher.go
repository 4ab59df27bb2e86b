// Package seo derives search metadata and quality scores for processed articles.
package seo

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

const (
	metaTitleLimit  = 60
	metaTitleCut    = 57
	metaDescTitle   = 80
	maxFoundKeyword = 8
)

// Config holds the brand and keyword tables.
type Config struct {
	Brand          string   `mapstructure:"brand"`
	BaseKeywords   []string `mapstructure:"base_keywords"`
	SectorKeywords []string `mapstructure:"sector_keywords"`
	RelevanceTerms []string `mapstructure:"relevance_terms"`
}

// DefaultConfig returns the INGLAT tables.
func DefaultConfig() Config {
	return Config{
		Brand: "INGLAT",
		BaseKeywords: []string{
			"energía solar", "autoconsumo", "argentina", "renovables",
			"fotovoltaica", "instalación", "empresarial",
		},
		SectorKeywords: []string{
			"energía solar", "solar", "fotovoltaica", "autoconsumo", "paneles solares",
			"renovable", "energía limpia", "sostenible", "eficiencia energética",
			"generación distribuida", "argentina", "empresarial", "instalación",
			"ahorro energético",
		},
		RelevanceTerms: []string{"argentina", "renovar", "empresas", "autoconsumo", "inglat"},
	}
}

// Enricher builds SEO blocks. It is safe for concurrent use.
type Enricher struct {
	cfg Config
}

// New builds an Enricher; an empty brand falls back to the default.
func New(cfg Config) *Enricher {
	if strings.TrimSpace(cfg.Brand) == "" {
		cfg.Brand = DefaultConfig().Brand
	}
	return &Enricher{cfg: cfg}
}

// Brand returns the configured brand tag.
func (e *Enricher) Brand() string { return e.cfg.Brand }

// Enrich returns the meta title, description and keywords for an article.
func (e *Enricher) Enrich(title, body string) pipeline.SEO {
	title = pipeline.CollapseSpaces(title)
	return pipeline.SEO{
		MetaTitle:       e.metaTitle(title),
		MetaDescription: e.metaDescription(title),
		MetaKeywords:    e.metaKeywords(title, body),
	}
}

// ShortDescription returns the card text shown in listings.
func (e *Enricher) ShortDescription(title string) string {
	desc := fmt.Sprintf(
		"Análisis especializado sobre %s. Perspectiva argentina del mercado de autoconsumo empresarial y energías renovables.",
		strings.ToLower(pipeline.CollapseSpaces(title)),
	)
	return pipeline.Truncate(desc, pipeline.MaxShortDescriptionLen)
}

func (e *Enricher) metaTitle(title string) string {
	if utf8.RuneCountInString(title) > metaTitleLimit {
		title = strings.TrimRight(pipeline.Prefix(title, metaTitleCut), " ") + "..."
	}
	return title + " | " + e.cfg.Brand
}

func (e *Enricher) metaDescription(title string) string {
	desc := fmt.Sprintf("Análisis de %s... desde %s Argentina.", pipeline.Prefix(title, metaDescTitle), e.cfg.Brand)
	return pipeline.Truncate(desc, pipeline.MaxMetaDescriptionLen)
}

// metaKeywords merges the base list with sector terms found in the title, then the body.
func (e *Enricher) metaKeywords(title, body string) string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(e.cfg.BaseKeywords)+maxFoundKeyword)
	add := func(kw string) {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			return
		}
		if _, ok := seen[kw]; ok {
			return
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	for _, kw := range e.cfg.BaseKeywords {
		add(kw)
	}
	found := 0
	for _, text := range []string{strings.ToLower(title), strings.ToLower(body)} {
		for _, kw := range e.cfg.SectorKeywords {
			if found >= maxFoundKeyword {
				break
			}
			lkw := strings.ToLower(kw)
			if _, dup := seen[lkw]; dup || !strings.Contains(text, lkw) {
				continue
			}
			add(lkw)
			found++
		}
	}
	return pipeline.TruncateList(strings.Join(out, ", "), pipeline.MaxMetaKeywordsLen)
}
