// Package slug turns Spanish headlines into ASCII URL and file-name fragments.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLen caps generated slugs.
const MaxLen = 100

var (
	invalidRun = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphenRun  = regexp.MustCompile(`-+`)
)

// Generate lowercases s, strips accents (ñ becomes n) and joins words with hyphens.
func Generate(s string) string {
	if s == "" {
		return ""
	}
	s = transliterate(strings.ToLower(s))
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '_' || r == '/' {
			return '-'
		}
		return r
	}, s)
	s = invalidRun.ReplaceAllString(s, "")
	s = strings.Trim(hyphenRun.ReplaceAllString(s, "-"), "-")
	if len(s) > MaxLen {
		s = strings.TrimRight(s[:MaxLen], "-")
	}
	return s
}

// Limit shortens a slug to n bytes without leaving a trailing hyphen.
func Limit(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n], "-")
}

// WithFallback returns Generate(s), or Generate(fallback) when s yields nothing.
func WithFallback(s, fallback string) string {
	if out := Generate(s); out != "" {
		return out
	}
	return Generate(fallback)
}

func transliterate(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
