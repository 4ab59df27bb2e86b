package seo

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

func TestMetaTitle(t *testing.T) {
	t.Parallel()

	e := New(DefaultConfig())

	short := e.Enrich("Argentina suma parques solares", "")
	require.Equal(t, "Argentina suma parques solares | INGLAT", short.MetaTitle)

	long := strings.Repeat("a", 61)
	got := e.Enrich(long, "").MetaTitle
	require.Equal(t, strings.Repeat("a", 57)+"... | INGLAT", got)
}

func TestMetaDescriptionCapped(t *testing.T) {
	t.Parallel()

	e := New(Config{Brand: "UNA-MARCA-MUY-LARGA-PARA-FORZAR-EL-RECORTE-DE-LA-DESCRIPCION"})
	got := e.Enrich(strings.Repeat("energía ", 40), "").MetaDescription
	require.LessOrEqual(t, utf8.RuneCountInString(got), pipeline.MaxMetaDescriptionLen)
	require.True(t, strings.HasSuffix(got, "..."))

	plain := New(DefaultConfig()).Enrich("Paneles en Córdoba", "").MetaDescription
	require.Equal(t, "Análisis de Paneles en Córdoba... desde INGLAT Argentina.", plain)
}

func TestMetaKeywordsMergeAndCap(t *testing.T) {
	t.Parallel()

	e := New(DefaultConfig())
	got := e.Enrich("Eficiencia energética y generación distribuida en Argentina", "ahorro energético para pymes").MetaKeywords

	require.True(t, strings.HasPrefix(got, "energía solar, autoconsumo, argentina"))
	require.Contains(t, got, "eficiencia energética")
	require.Contains(t, got, "generación distribuida")
	require.Contains(t, got, "ahorro energético")
	require.Equal(t, 1, strings.Count(got, "argentina"))
	require.LessOrEqual(t, utf8.RuneCountInString(got), pipeline.MaxMetaKeywordsLen)
}

func TestMetaKeywordsNeverExceedLimit(t *testing.T) {
	t.Parallel()

	base := make([]string, 0, 40)
	for range 40 {
		base = append(base, "palabra clave extensa")
	}
	cfg := DefaultConfig()
	cfg.BaseKeywords = append(cfg.BaseKeywords, strings.Repeat("x", 50), strings.Repeat("y", 50), strings.Repeat("z", 50))
	cfg.BaseKeywords = append(cfg.BaseKeywords, base...)
	got := New(cfg).Enrich("Solar", "").MetaKeywords
	require.LessOrEqual(t, utf8.RuneCountInString(got), pipeline.MaxMetaKeywordsLen)
}

func TestShortDescription(t *testing.T) {
	t.Parallel()

	e := New(DefaultConfig())
	got := e.ShortDescription("Parque Solar en Jujuy")
	require.True(t, strings.HasPrefix(got, "Análisis especializado sobre parque solar en jujuy."))

	long := e.ShortDescription(strings.Repeat("título ", 80))
	require.LessOrEqual(t, utf8.RuneCountInString(long), pipeline.MaxShortDescriptionLen)
}

func TestEmptyBrandDefaults(t *testing.T) {
	t.Parallel()

	require.Equal(t, "INGLAT", New(Config{}).Brand())
}
