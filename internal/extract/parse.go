package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

// Element bounds.
const (
	MinTitleRunes       = 10
	MaxTitleRunes       = 200
	MaxDescriptionRunes = 250
	MinDescriptionRunes = 20
)

type pageResult struct {
	items     []pipeline.RawItem
	strategy  string
	inspected int
	rejected  int
}

// parsePage applies strategies in order; the first one matching any element wins.
func (e *Extractor) parsePage(body []byte, portal pipeline.SourcePortal, pageURL string, maxItems int) (pageResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageResult{}, fmt.Errorf("parse html: %w", err)
	}
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		base, _ = url.Parse(portal.BaseURL)
	}
	ogImage := pageImage(doc, base)
	now := e.clock.Now()

	var res pageResult
	for _, css := range e.strategies.For(portal) {
		matched := doc.Find(css)
		if matched.Length() == 0 {
			continue
		}
		res.strategy = css
		limit := maxItems * 2
		seen := map[string]struct{}{}
		matched.EachWithBreak(func(i int, el *goquery.Selection) bool {
			if i >= limit || len(res.items) >= maxItems {
				return false
			}
			res.inspected++
			item, ok := e.parseElement(el, portal, base, ogImage, now)
			if !ok {
				res.rejected++
				return true
			}
			key := strings.ToLower(item.Title)
			if _, dup := seen[key]; dup {
				return true
			}
			seen[key] = struct{}{}
			res.items = append(res.items, item)
			return true
		})
		break
	}
	return res, nil
}

func (e *Extractor) parseElement(el *goquery.Selection, portal pipeline.SourcePortal, base *url.URL, ogImage string, now time.Time) (pipeline.RawItem, bool) {
	title, titleSel := firstText(el, e.selectors.Title)
	n := utf8.RuneCountInString(title)
	if n < MinTitleRunes || n > MaxTitleRunes {
		return pipeline.RawItem{}, false
	}
	if e.relevant != nil && !e.relevant(title) {
		return pipeline.RawItem{}, false
	}

	link := ""
	if href, ok := el.Find("a[href]").First().Attr("href"); ok {
		link = href
	} else if href, ok := el.Attr("href"); ok && goquery.NodeName(el) == "a" {
		link = href
	} else if titleSel != nil {
		if href, ok := titleSel.Closest("a[href]").Attr("href"); ok {
			link = href
		}
	}
	link = resolve(base, strings.TrimSpace(link))
	if link == "" {
		link = portal.BaseURL
	}

	image := elementImage(el, e.selectors.Image, base)
	if image == "" {
		image = ogImage
	}

	return pipeline.RawItem{
		Title:            title,
		ShortDescription: e.description(el, title),
		SourceURL:        link,
		ImageURL:         image,
		PortalName:       portal.Name,
		ExtractedAt:      now,
	}, true
}

func (e *Extractor) description(el *goquery.Selection, title string) string {
	for _, css := range e.selectors.Description {
		text := pipeline.CollapseSpaces(el.Find(css).First().Text())
		if text == title {
			continue
		}
		if utf8.RuneCountInString(text) > MinDescriptionRunes {
			return pipeline.Prefix(text, MaxDescriptionRunes)
		}
	}
	return FallbackDescription(title)
}

// FallbackDescription is used when an element carries no usable summary.
func FallbackDescription(title string) string {
	return "Análisis sobre " + pipeline.Prefix(title, 100) + "..."
}

func firstText(el *goquery.Selection, selectors []string) (string, *goquery.Selection) {
	for _, css := range selectors {
		sel := el.Find(css).First()
		if sel.Length() == 0 {
			continue
		}
		text := pipeline.CollapseSpaces(sel.Text())
		if text == "" {
			if t, ok := sel.Attr("title"); ok {
				text = pipeline.CollapseSpaces(t)
			}
		}
		if text != "" {
			return text, sel
		}
	}
	return "", nil
}
