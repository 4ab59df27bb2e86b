// Package classify assigns one of the newsroom categories by keyword counting.
package classify

import (
	"strings"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

// DefaultFallback is the category used for ties and unmatched text.
const DefaultFallback = "Noticias Sector"

// CategoryRule is a category and the keywords that score for it.
type CategoryRule struct {
	Name        string   `mapstructure:"name"`
	Description string   `mapstructure:"description"`
	Color       string   `mapstructure:"color"`
	Keywords    []string `mapstructure:"keywords"`
}

// Classifier scores text against an ordered rule table.
type Classifier struct {
	rules    []CategoryRule
	fallback string
}

// New builds a classifier. An empty fallback selects DefaultFallback.
func New(rules []CategoryRule, fallback string) *Classifier {
	if fallback == "" {
		fallback = DefaultFallback
	}
	copied := make([]CategoryRule, len(rules))
	for i, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				kws = append(kws, kw)
			}
		}
		r.Keywords = kws
		copied[i] = r
	}
	return &Classifier{rules: copied, fallback: fallback}
}

// Fallback returns the default category name.
func (c *Classifier) Fallback() string { return c.fallback }

// Scores counts keyword occurrences per category in rule order.
func (c *Classifier) Scores(title, body string) []int {
	text := strings.ToLower(title + " " + body)
	scores := make([]int, len(c.rules))
	for i, r := range c.rules {
		for _, kw := range r.Keywords {
			scores[i] += strings.Count(text, kw)
		}
	}
	return scores
}

// Classify returns the category with the strictly highest count, or the fallback.
func (c *Classifier) Classify(title, body string) string {
	best, bestScore, tied := -1, 0, false
	for i, s := range c.Scores(title, body) {
		switch {
		case s > bestScore:
			best, bestScore, tied = i, s, false
		case s == bestScore && s > 0:
			tied = true
		}
	}
	if best < 0 || tied {
		return c.fallback
	}
	return c.rules[best].Name
}

// Categories returns the store categories described by the rule table.
func (c *Classifier) Categories() []pipeline.Category {
	out := make([]pipeline.Category, 0, len(c.rules))
	for _, r := range c.rules {
		out = append(out, pipeline.Category{
			Name:        r.Name,
			Description: r.Description,
			Color:       r.Color,
			Active:      true,
		})
	}
	return out
}

// DefaultRules returns the five newsroom categories.
func DefaultRules() []CategoryRule {
	return []CategoryRule{
		{
			Name:        "Energía Solar",
			Description: "Noticias sobre energía solar y fotovoltaica",
			Color:       "#FFA500",
			Keywords:    []string{"solar", "fotovoltaica", "paneles", "autoconsumo"},
		},
		{
			Name:        "Tecnología",
			Description: "Innovaciones tecnológicas en energías renovables",
			Color:       "#0066CC",
			Keywords:    []string{"innovación", "desarrollo", "avance", "tecnología"},
		},
		{
			Name:        "Noticias Sector",
			Description: "Noticias generales del sector energético",
			Color:       "#006466",
			Keywords:    []string{"sector", "mercado", "industria", "regulación"},
		},
		{
			Name:        "Sostenibilidad",
			Description: "Sostenibilidad y medio ambiente",
			Color:       "#228B22",
			Keywords:    []string{"sostenible", "verde", "ambiente", "limpia"},
		},
		{
			Name:        "Instalaciones",
			Description: "Proyectos e instalaciones de energía renovable",
			Color:       "#8B4513",
			Keywords:    []string{"proyecto", "instalación", "construcción", "planta"},
		},
	}
}
