// Package portal holds the catalogue of news portals and the filters applied to it.
package portal

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

// Filter names accepted by Registry.Filter.
const (
	FilterAll       = "all"
	FilterArgentina = "argentina"
	FilterRegional  = "regional"
)

var filterAliases = map[string]string{
	"":               FilterAll,
	"todos":          FilterAll,
	"argentina_only": FilterArgentina,
}

// ErrUnknownFilter is returned for a filter name the registry does not know.
var ErrUnknownFilter = errors.New("unknown portal filter")

// Registry is an immutable, priority-ordered portal catalogue.
type Registry struct {
	portals []pipeline.SourcePortal
}

// NewRegistry copies and orders portals. BaseURL and Name are required.
func NewRegistry(portals []pipeline.SourcePortal) (*Registry, error) {
	out := make([]pipeline.SourcePortal, 0, len(portals))
	seen := make(map[string]struct{}, len(portals))
	for i, p := range portals {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("portal %d: %w", i, &pipeline.ValidationError{Field: "name", Err: pipeline.ErrEmpty})
		}
		if !strings.HasPrefix(p.BaseURL, "http://") && !strings.HasPrefix(p.BaseURL, "https://") {
			return nil, fmt.Errorf("portal %q: %w", p.Name, &pipeline.ValidationError{Field: "url", Value: p.BaseURL, Err: pipeline.ErrBadURL})
		}
		if _, dup := seen[p.Name]; dup {
			return nil, fmt.Errorf("portal %q declared twice", p.Name)
		}
		seen[p.Name] = struct{}{}
		p.Selectors = append([]string(nil), p.Selectors...)
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return &Registry{portals: out}, nil
}

// All returns every portal in priority order.
func (r *Registry) All() []pipeline.SourcePortal {
	return append([]pipeline.SourcePortal(nil), r.portals...)
}

// Len reports the catalogue size.
func (r *Registry) Len() int { return len(r.portals) }

// Filter returns the portals selected by name.
func (r *Registry) Filter(name string) ([]pipeline.SourcePortal, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := filterAliases[key]; ok {
		key = alias
	}
	var keep func(pipeline.SourcePortal) bool
	switch key {
	case FilterAll:
		return r.All(), nil
	case FilterArgentina:
		keep = func(p pipeline.SourcePortal) bool { return strings.EqualFold(p.Region, "argentina") }
	case FilterRegional:
		keep = func(p pipeline.SourcePortal) bool {
			return strings.EqualFold(p.Region, "regional") || strings.EqualFold(p.Region, "latinoamerica")
		}
	default:
		return nil, &pipeline.InputError{What: fmt.Sprintf("portal filter %q", name), Err: ErrUnknownFilter}
	}
	var out []pipeline.SourcePortal
	for _, p := range r.portals {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

type catalogueFile struct {
	Portals []pipeline.SourcePortal `yaml:"portals"`
}

// LoadFile reads a YAML catalogue with a top-level "portals" list.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read portal file: %w", err)
	}
	var file catalogueFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse portal file: %w", err)
	}
	if len(file.Portals) == 0 {
		return nil, fmt.Errorf("portal file %s: %w", path, pipeline.ErrEmpty)
	}
	return NewRegistry(file.Portals)
}

// Defaults returns the built-in catalogue.
func Defaults() []pipeline.SourcePortal {
	return []pipeline.SourcePortal{
		{
			Name:      "Energías Renovables Argentina",
			BaseURL:   "https://energiasrenovables.com.ar/",
			Priority:  1,
			Region:    "argentina",
			Specialty: "mercado_local",
		},
		{
			Name:      "Energía Online Argentina",
			BaseURL:   "https://energiaonline.com.ar/",
			Priority:  1,
			Region:    "argentina",
			Specialty: "sector_energetico",
		},
		{
			Name:      "Energía Estratégica",
			BaseURL:   "https://www.energiaestrategica.com/",
			Priority:  2,
			Region:    "regional",
			Specialty: "analisis_estrategico",
		},
		{
			Name:      "PV Magazine LATAM",
			BaseURL:   "https://www.pv-magazine-latam.com/",
			Priority:  1,
			Region:    "latinoamerica",
			Specialty: "tecnologia_solar",
			FeedURL:   "https://www.pv-magazine-latam.com/feed/",
		},
	}
}
