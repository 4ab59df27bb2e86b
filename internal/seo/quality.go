package seo

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

// Quality is the breakdown behind an article's metrics.
type Quality struct {
	LengthScore      float64
	SEOScore         float64
	RelevanceScore   float64
	OriginalityScore float64
	Words            int
}

// General is the mean of the four scores.
func (q Quality) General() float64 {
	return round1((q.LengthScore + q.SEOScore + q.RelevanceScore + q.OriginalityScore) / 4)
}

// Score evaluates an article. sourceText is the portal description the body was
// synthesized from; verbatim reuse of it lowers originality.
func (e *Enricher) Score(a pipeline.ProcessedArticle, sourceText string) Quality {
	text := PlainText(a.BodyHTML)
	lower := strings.ToLower(text)
	q := Quality{Words: len(strings.Fields(text))}

	switch {
	case q.Words >= 500 && q.Words <= 1500:
		q.LengthScore = 10
	case q.Words >= 300 && q.Words <= 2000:
		q.LengthScore = 8
	default:
		q.LengthScore = 5
	}

	q.SEOScore = 5
	if n := utf8.RuneCountInString(a.Title); n >= 30 && n <= 200 {
		q.SEOScore += 2
	}
	if n := utf8.RuneCountInString(a.ShortDescription); n >= 100 && n <= 300 {
		q.SEOScore += 2
	}
	if strings.TrimSpace(a.SEO.MetaKeywords) != "" {
		q.SEOScore++
	}

	for _, term := range e.cfg.RelevanceTerms {
		if term != "" && strings.Contains(lower, strings.ToLower(term)) {
			q.RelevanceScore += 2
		}
	}
	q.RelevanceScore = math.Min(q.RelevanceScore, 10)

	q.OriginalityScore = originality(text, sourceText)
	return q
}

// Apply copies the scores into the article metrics.
func (q Quality) Apply(a *pipeline.ProcessedArticle) {
	a.Metrics.OriginalityScore = q.OriginalityScore
	a.Metrics.SEOScore = q.SEOScore
	a.Metrics.RelevanceScore = q.RelevanceScore
}

// SessionQuality averages originality and SEO over a batch, rounded to one decimal.
func SessionQuality(articles []pipeline.ProcessedArticle) float64 {
	if len(articles) == 0 {
		return 0
	}
	var sum float64
	for _, a := range articles {
		sum += a.Metrics.OriginalityScore + a.Metrics.SEOScore
	}
	return round1(sum / float64(len(articles)*2))
}

// PlainText strips markup from an HTML fragment and collapses whitespace.
func PlainText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return pipeline.CollapseSpaces(fragment)
	}
	return pipeline.CollapseSpaces(doc.Text())
}

// originality is 10 scaled down by the share of the body copied from the source.
func originality(body, source string) float64 {
	body = pipeline.CollapseSpaces(body)
	source = pipeline.CollapseSpaces(source)
	bodyLen := utf8.RuneCountInString(body)
	if bodyLen == 0 {
		return 0
	}
	if source == "" {
		return 10
	}
	copied := 0
	// The excerpt may have been cut, so probe shrinking prefixes.
	for n := utf8.RuneCountInString(source); n >= 20; n -= 10 {
		if strings.Contains(body, pipeline.Prefix(source, n)) {
			copied = n
			break
		}
	}
	ratio := float64(copied) / float64(bodyLen)
	return round1(math.Max(0, 10*(1-ratio)))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
