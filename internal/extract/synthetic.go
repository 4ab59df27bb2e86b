package extract

import (
	"strings"
	"time"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

// Seed is a fallback headline.
type Seed struct {
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
}

// Bank holds fallback headlines keyed by portal region.
type Bank struct {
	byRegion map[string][]Seed
	fallback []Seed
}

// NewBank builds a bank. fallback is used for regions with no entry.
func NewBank(byRegion map[string][]Seed, fallback []Seed) *Bank {
	b := &Bank{byRegion: make(map[string][]Seed, len(byRegion)), fallback: fallback}
	for region, seeds := range byRegion {
		b.byRegion[strings.ToLower(region)] = seeds
	}
	return b
}

// Items returns up to maxItems synthetic raw items for portal.
func (b *Bank) Items(portal pipeline.SourcePortal, maxItems int, now time.Time) []pipeline.RawItem {
	seeds, ok := b.byRegion[strings.ToLower(portal.Region)]
	if !ok || len(seeds) == 0 {
		seeds = b.fallback
	}
	if maxItems < len(seeds) {
		seeds = seeds[:maxItems]
	}
	out := make([]pipeline.RawItem, 0, len(seeds))
	for _, s := range seeds {
		out = append(out, pipeline.RawItem{
			Title:            s.Title,
			ShortDescription: s.Description,
			SourceURL:        portal.BaseURL,
			PortalName:       portal.Name,
			ExtractedAt:      now,
			IsSynthetic:      true,
		})
	}
	return out
}

// DefaultBank returns the built-in fallback headlines.
func DefaultBank() *Bank {
	argentina := []Seed{
		{
			Title:       "Argentina acelera instalación de sistemas solares empresariales",
			Description: "El sector empresarial argentino incrementa su adopción de sistemas de autoconsumo solar fotovoltaico",
		},
		{
			Title:       "Nuevo marco regulatorio impulsa energías renovables en LATAM",
			Description: "Las políticas energéticas regionales favorecen la inversión en tecnologías solares",
		},
		{
			Title:       "Tecnología fotovoltaica de alta eficiencia llega al mercado argentino",
			Description: "Innovaciones en paneles solares prometen mayor rendimiento y menor costo",
		},
		{
			Title:       "Empresas argentinas reducen 40% costos energéticos con autoconsumo solar",
			Description: "Casos de éxito demuestran ROI positivo en instalaciones comerciales e industriales",
		},
	}
	latam := []Seed{
		{
			Title:       "Latinoamérica acelera la instalación de sistemas solares empresariales",
			Description: "El sector empresarial de la región incrementa su adopción de sistemas de autoconsumo solar fotovoltaico",
		},
		{
			Title:       "Nuevo marco regulatorio impulsa energías renovables en LATAM",
			Description: "Las políticas energéticas regionales favorecen la inversión en tecnologías solares",
		},
		{
			Title:       "Tecnología fotovoltaica de alta eficiencia gana mercado en la región",
			Description: "Innovaciones en paneles solares prometen mayor rendimiento y menor costo en Latinoamérica",
		},
		{
			Title:       "Empresas latinoamericanas reducen 40% costos energéticos con autoconsumo solar",
			Description: "Casos de éxito demuestran ROI positivo en instalaciones comerciales e industriales de la región",
		},
	}
	return NewBank(map[string][]Seed{
		"argentina":     argentina,
		"regional":      latam,
		"latinoamerica": latam,
	}, argentina)
}
