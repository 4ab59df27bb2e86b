// Package relevance decides whether a candidate headline belongs to the renewables beat.
package relevance

import (
	"strings"
	"unicode/utf8"
)

// ShortTitleRunes is the length under which an unmatched title is still accepted.
const ShortTitleRunes = 30

// Keywords are the term tables the filter works on. Matching is substring based
// on the lowercased title.
type Keywords struct {
	Primary   []string `mapstructure:"primary"`
	Regional  []string `mapstructure:"regional"`
	Market    []string `mapstructure:"market"`
	Exclusion []string `mapstructure:"exclusion"`
}

// Rule names the branch that decided a verdict.
type Rule string

// Rules in evaluation order.
const (
	RuleExcluded       Rule = "excluded"
	RulePrimary        Rule = "primary"
	RuleRegionalMarket Rule = "regional_market"
	RuleShortTitle     Rule = "short_title"
	RuleNoMatch        Rule = "no_match"
)

// Verdict is the filter decision plus the rule that produced it.
type Verdict struct {
	Relevant bool
	Rule     Rule
	Keyword  string
}

// Filter is a pure keyword classifier. The zero value rejects long titles and accepts short ones.
type Filter struct {
	kw Keywords
}

// New lowercases the tables once.
func New(kw Keywords) *Filter {
	return &Filter{kw: Keywords{
		Primary:   lower(kw.Primary),
		Regional:  lower(kw.Regional),
		Market:    lower(kw.Market),
		Exclusion: lower(kw.Exclusion),
	}}
}

// IsRelevant reports whether title passes the filter.
func (f *Filter) IsRelevant(title string) bool {
	return f.Evaluate(title).Relevant
}

// Evaluate applies the rules in precedence order: exclusion, primary,
// regional plus market, short title, reject.
func (f *Filter) Evaluate(title string) Verdict {
	t := strings.ToLower(title)
	if kw, ok := firstIn(t, f.kw.Exclusion); ok {
		return Verdict{Rule: RuleExcluded, Keyword: kw}
	}
	if kw, ok := firstIn(t, f.kw.Primary); ok {
		return Verdict{Relevant: true, Rule: RulePrimary, Keyword: kw}
	}
	regional, hasRegional := firstIn(t, f.kw.Regional)
	if _, hasMarket := firstIn(t, f.kw.Market); hasRegional && hasMarket {
		return Verdict{Relevant: true, Rule: RuleRegionalMarket, Keyword: regional}
	}
	if utf8.RuneCountInString(strings.TrimSpace(title)) < ShortTitleRunes {
		return Verdict{Relevant: true, Rule: RuleShortTitle}
	}
	return Verdict{Rule: RuleNoMatch}
}

func firstIn(text string, terms []string) (string, bool) {
	for _, term := range terms {
		if term != "" && strings.Contains(text, term) {
			return term, true
		}
	}
	return "", false
}

func lower(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// DefaultKeywords returns the built-in tables.
func DefaultKeywords() Keywords {
	return Keywords{
		Primary: []string{
			"energía solar", "solar", "fotovoltaica", "autoconsumo", "paneles",
			"renovable", "energía limpia", "sostenible", "eficiencia energética",
			"generación distribuida", "energía verde", "energía eólica", "eólica",
			"biomasa", "hidroeléctrica",
		},
		Regional: []string{
			"argentina", "brasil", "méxico", "chile", "colombia",
			"latinoamérica", "latam", "sudamérica", "américa latina",
		},
		Market: []string{
			"mercado", "industria", "sector", "inversión", "proyecto",
			"instalación", "tecnología", "innovación", "desarrollo",
		},
		Exclusion: []string{
			"petróleo", "gas natural", "carbón", "nuclear", "fracking",
			"combustibles fósiles", "shale", "esquisto",
		},
	}
}
