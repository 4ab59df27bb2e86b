package media

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

// PexelsEndpoint is the photo search API.
const PexelsEndpoint = "https://api.pexels.com/v1/search"

// Pexels resolves images through the Pexels search API.
type Pexels struct {
	searchClient
}

type pexelsResponse struct {
	Photos []struct {
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		Photographer string `json:"photographer"`
		Src          struct {
			Large    string `json:"large"`
			Original string `json:"original"`
		} `json:"src"`
	} `json:"photos"`
}

// NewPexels builds a Pexels resolver.
func NewPexels(cfg ResolverConfig) *Pexels {
	return &Pexels{searchClient: newSearchClient("pexels", cfg.withDefaults(PexelsEndpoint))}
}

// Name implements pipeline.MediaResolver.
func (p *Pexels) Name() string { return p.name }

// Resolve returns the first landscape photo at least MinWidth pixels wide.
func (p *Pexels) Resolve(ctx context.Context, keywords []string) (pipeline.ImageCandidate, error) {
	if p.cfg.APIKey == "" {
		return pipeline.ImageCandidate{}, fmt.Errorf("pexels: %w", ErrNotConfigured)
	}
	query := Query(keywords)
	if c, ok := p.cached(query); ok {
		return c, nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(p.cfg.PerPage))
	params.Set("orientation", "landscape")
	params.Set("size", "large")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return pipeline.ImageCandidate{}, fmt.Errorf("pexels request: %w", err)
	}
	req.Header.Set("Authorization", p.cfg.APIKey)

	var body pexelsResponse
	if err := p.getJSON(ctx, req, &body); err != nil {
		return pipeline.ImageCandidate{}, err
	}
	for _, photo := range body.Photos {
		src := photo.Src.Large
		if src == "" {
			src = photo.Src.Original
		}
		if src == "" || photo.Width < p.cfg.MinWidth {
			continue
		}
		c := pipeline.ImageCandidate{
			URL:          src,
			Width:        photo.Width,
			Height:       photo.Height,
			Photographer: photo.Photographer,
			Source:       p.name,
			Alt:          altText(query),
		}
		p.remember(query, c)
		return c, nil
	}
	return pipeline.ImageCandidate{}, fmt.Errorf("pexels %q: %w", query, pipeline.ErrNoResult)
}
