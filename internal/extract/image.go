package extract

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var lazyAttrs = []string{"data-src", "data-lazy-src", "data-original", "src"}

var imageExts = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".webp": {}, ".gif": {}, ".avif": {},
}

var imageHints = []string{"image", "img", "photo", "foto", "media", "uploads", "thumb", "wp-content"}

// ValidImageURL reports whether raw looks like an http(s) image URL.
func ValidImageURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	p := strings.ToLower(u.Path)
	if _, ok := imageExts[path.Ext(p)]; ok {
		return true
	}
	for _, hint := range imageHints {
		if strings.Contains(p, hint) {
			return true
		}
	}
	return false
}

// elementImage walks the image sub-selectors and returns the first valid URL.
func elementImage(sel *goquery.Selection, selectors []string, base *url.URL) string {
	for _, css := range selectors {
		var found string
		sel.Find(css).EachWithBreak(func(_ int, img *goquery.Selection) bool {
			for _, attr := range lazyAttrs {
				v, ok := img.Attr(attr)
				v = strings.TrimSpace(v)
				if !ok || v == "" || strings.HasPrefix(v, "data:") {
					continue
				}
				if abs := resolve(base, v); ValidImageURL(abs) {
					found = abs
					return false
				}
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// pageImage returns the Open Graph (or Twitter card) image for a page.
func pageImage(doc *goquery.Document, base *url.URL) string {
	for _, css := range []string{`meta[property="og:image"]`, `meta[name="og:image"]`, `meta[name="twitter:image"]`} {
		if v, ok := doc.Find(css).First().Attr("content"); ok {
			if abs := resolve(base, strings.TrimSpace(v)); ValidImageURL(abs) {
				return abs
			}
		}
	}
	return ""
}

func resolve(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base == nil {
		return u.String()
	}
	return base.ResolveReference(u).String()
}
