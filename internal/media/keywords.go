// Package media finds, downloads, optimizes and stores article images.
package media

import "strings"

// MaxKeywords bounds the search query.
const MaxKeywords = 3

type sectorTerms struct {
	sector string
	terms  []string
}

// Sector banks are checked in order; the last entry is the fallback.
var sectorBanks = []sectorTerms{
	{"solar", []string{"solar panels", "photovoltaic", "renewable energy", "solar farm"}},
	{"eólica", []string{"wind turbine", "wind energy", "wind farm", "renewable energy"}},
	{"hidroeléctrica", []string{"hydroelectric", "dam", "water power", "renewable energy"}},
	{"renovable", []string{"renewable energy", "green energy", "sustainable power", "clean energy"}},
}

var (
	geoMarkers      = []string{"argentina", "latam", "latinoamerica", "sudamerica"}
	businessMarkers = []string{"empresa", "comercial", "industrial", "autoconsumo"}
)

const (
	geoTerm      = "latin america energy"
	businessTerm = "commercial solar installation"
)

// Keywords builds up to MaxKeywords English search terms for a Spanish headline.
func Keywords(title string) []string {
	lower := strings.ToLower(title)

	var out []string
	fallback := sectorBanks[len(sectorBanks)-1].terms
	for _, bank := range sectorBanks {
		if strings.Contains(lower, bank.sector) {
			out = append(out, bank.terms...)
			break
		}
	}
	if out == nil {
		out = append(out, fallback...)
	}
	if containsAny(lower, geoMarkers) {
		out = append(out, geoTerm)
	}
	if containsAny(lower, businessMarkers) {
		out = append(out, businessTerm)
	}
	if len(out) > MaxKeywords {
		out = out[:MaxKeywords]
	}
	return out
}

// Query joins keywords the way the search APIs expect.
func Query(keywords []string) string {
	return strings.Join(keywords, " ")
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
