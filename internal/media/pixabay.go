package media

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

// PixabayEndpoint is the image search API.
const PixabayEndpoint = "https://pixabay.com/api/"

// Pixabay resolves images through the Pixabay API. The key travels in the query string.
type Pixabay struct {
	searchClient
}

type pixabayResponse struct {
	Hits []struct {
		LargeImageURL string `json:"largeImageURL"`
		WebformatURL  string `json:"webformatURL"`
		ImageWidth    int    `json:"imageWidth"`
		ImageHeight   int    `json:"imageHeight"`
		User          string `json:"user"`
	} `json:"hits"`
}

// NewPixabay builds a Pixabay resolver.
func NewPixabay(cfg ResolverConfig) *Pixabay {
	return &Pixabay{searchClient: newSearchClient("pixabay", cfg.withDefaults(PixabayEndpoint))}
}

// Name implements pipeline.MediaResolver.
func (p *Pixabay) Name() string { return p.name }

// Resolve returns the first horizontal photo hit.
func (p *Pixabay) Resolve(ctx context.Context, keywords []string) (pipeline.ImageCandidate, error) {
	if p.cfg.APIKey == "" {
		return pipeline.ImageCandidate{}, fmt.Errorf("pixabay: %w", ErrNotConfigured)
	}
	query := Query(keywords)
	if c, ok := p.cached(query); ok {
		return c, nil
	}

	params := url.Values{}
	params.Set("key", p.cfg.APIKey)
	params.Set("q", query)
	params.Set("image_type", "photo")
	params.Set("orientation", "horizontal")
	params.Set("min_width", strconv.Itoa(p.cfg.MinWidth))
	params.Set("min_height", strconv.Itoa(p.cfg.MinHeight))
	params.Set("per_page", strconv.Itoa(p.cfg.PerPage))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return pipeline.ImageCandidate{}, p.redact(fmt.Errorf("pixabay request: %w", err))
	}

	var body pixabayResponse
	if err := p.getJSON(ctx, req, &body); err != nil {
		return pipeline.ImageCandidate{}, err
	}
	for _, hit := range body.Hits {
		src := hit.LargeImageURL
		if src == "" {
			src = hit.WebformatURL
		}
		if src == "" {
			continue
		}
		c := pipeline.ImageCandidate{
			URL:          src,
			Width:        hit.ImageWidth,
			Height:       hit.ImageHeight,
			Photographer: hit.User,
			Source:       p.name,
			Alt:          altText(query),
		}
		p.remember(query, c)
		return c, nil
	}
	return pipeline.ImageCandidate{}, fmt.Errorf("pixabay %q: %w", query, pipeline.ErrNoResult)
}
