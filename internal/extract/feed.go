package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

// parseFeed turns an RSS or Atom payload into raw items under the same bounds as pages.
func (e *Extractor) parseFeed(body []byte, portal pipeline.SourcePortal, maxItems int) ([]pipeline.RawItem, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	base, _ := url.Parse(portal.BaseURL)
	now := e.clock.Now()
	out := make([]pipeline.RawItem, 0, maxItems)
	for i, it := range feed.Items {
		if i >= maxItems*2 || len(out) >= maxItems {
			break
		}
		title := pipeline.CollapseSpaces(stripHTML(it.Title))
		if n := utf8.RuneCountInString(title); n < MinTitleRunes || n > MaxTitleRunes {
			continue
		}
		if e.relevant != nil && !e.relevant(title) {
			continue
		}
		desc := pipeline.CollapseSpaces(stripHTML(it.Description))
		if utf8.RuneCountInString(desc) > MinDescriptionRunes {
			desc = pipeline.Prefix(desc, MaxDescriptionRunes)
		} else {
			desc = FallbackDescription(title)
		}
		link := resolve(base, strings.TrimSpace(it.Link))
		if link == "" {
			link = portal.BaseURL
		}
		out = append(out, pipeline.RawItem{
			Title:            title,
			ShortDescription: desc,
			SourceURL:        link,
			ImageURL:         feedImage(it, base),
			PortalName:       portal.Name,
			ExtractedAt:      now,
		})
	}
	return out, nil
}

func feedImage(it *gofeed.Item, base *url.URL) string {
	if it.Image != nil {
		if abs := resolve(base, it.Image.URL); ValidImageURL(abs) {
			return abs
		}
	}
	for _, enc := range it.Enclosures {
		if enc == nil || !strings.HasPrefix(enc.Type, "image/") {
			continue
		}
		if abs := resolve(base, enc.URL); ValidImageURL(abs) {
			return abs
		}
	}
	// WordPress feeds often carry the thumbnail inside the description markup.
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(it.Description)); err == nil {
		if src, ok := doc.Find("img").First().Attr("src"); ok {
			if abs := resolve(base, src); ValidImageURL(abs) {
				return abs
			}
		}
	}
	return ""
}

func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}
