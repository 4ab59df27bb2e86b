// Package detector decides when a portal page that yielded no headlines
// should be fetched again through the headless renderer.
package detector

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

// DefaultBodyThreshold is the body size below which script-heavy pages are promoted.
const DefaultBodyThreshold = 2048

// shellSelectors match the mount points client-rendered news sites ship empty.
const shellSelectors = `#__next, #__nuxt, #root, #app, [data-reactroot], [ng-version]`

// Heuristic promotes pages that look like an unrendered JavaScript shell.
type Heuristic struct {
	BodyLengthThreshold int
}

// NewHeuristic creates a new detector. Zero selects DefaultBodyThreshold.
func NewHeuristic(threshold int) *Heuristic {
	if threshold <= 0 {
		threshold = DefaultBodyThreshold
	}
	return &Heuristic{BodyLengthThreshold: threshold}
}

// ShouldPromote reports whether resp looks like a shell that only a browser
// would fill in.
func (h *Heuristic) ShouldPromote(resp pipeline.FetchResponse) bool {
	if resp.StatusCode != http.StatusOK {
		return false
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return true
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return false
	}

	if doc.Find(shellSelectors).Length() > 0 {
		return true
	}
	var script int
	nuxt := false
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		script += len(text)
		if strings.Contains(strings.ToLower(text), "window.__nuxt__") {
			nuxt = true
		}
	})
	if nuxt {
		return true
	}
	if len(resp.Body) >= h.BodyLengthThreshold || script == 0 {
		return false
	}
	doc.Find("script, style, noscript").Remove()
	visible := len(strings.TrimSpace(doc.Find("body").Text()))
	return script > visible
}
