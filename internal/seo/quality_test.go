package seo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

func article(t *testing.T, body string) pipeline.ProcessedArticle {
	t.Helper()
	a, err := pipeline.NewProcessedArticle(pipeline.ArticleInput{
		ID:               "noticia-1",
		Title:            "Empresas argentinas apuestan por el autoconsumo solar",
		ShortDescription: strings.Repeat("d", 120),
		BodyHTML:         body,
		SEO:              pipeline.SEO{MetaKeywords: "solar"},
	})
	require.NoError(t, err)
	return a
}

func TestScore(t *testing.T) {
	t.Parallel()

	body := "<p>" + strings.Repeat("argentina empresas autoconsumo ", 200) + "</p>"
	q := New(DefaultConfig()).Score(article(t, body), "")

	require.Equal(t, 600, q.Words)
	require.Equal(t, 10.0, q.LengthScore)
	require.Equal(t, 10.0, q.SEOScore)
	require.Equal(t, 6.0, q.RelevanceScore)
	require.Equal(t, 10.0, q.OriginalityScore)
}

func TestScoreShortBody(t *testing.T) {
	t.Parallel()

	q := New(DefaultConfig()).Score(article(t, "<p>breve</p>"), "")
	require.Equal(t, 5.0, q.LengthScore)
	require.Equal(t, 0.0, q.RelevanceScore)
}

func TestOriginalityPenalizesCopies(t *testing.T) {
	t.Parallel()

	source := strings.Repeat("texto original del portal ", 8)
	copied := New(DefaultConfig()).Score(article(t, "<p>"+source+"</p>"), source)
	require.Less(t, copied.OriginalityScore, 1.0)

	rewritten := New(DefaultConfig()).Score(article(t, "<p>"+strings.Repeat("análisis propio ", 100)+"</p>"), source)
	require.Equal(t, 10.0, rewritten.OriginalityScore)
}

func TestApplyAndSessionQuality(t *testing.T) {
	t.Parallel()

	a := article(t, "<p>x</p>")
	Quality{OriginalityScore: 9, SEOScore: 8, RelevanceScore: 4}.Apply(&a)
	b := article(t, "<p>y</p>")
	Quality{OriginalityScore: 10, SEOScore: 7}.Apply(&b)

	require.Equal(t, 4.0, a.Metrics.RelevanceScore)
	require.Equal(t, 8.5, SessionQuality([]pipeline.ProcessedArticle{a, b}))
	require.Equal(t, 0.0, SessionQuality(nil))
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	got := PlainText("<p>Hola <strong>mundo</strong></p>\n<ul><li>uno</li></ul>")
	require.Equal(t, "Hola mundo uno", got)
}
