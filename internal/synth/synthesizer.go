// Package synth writes original HTML article bodies from extracted headlines.
//
// Each template is a pure function of the headline, its short description and
// the portal name. The source description only ever appears as a short quoted
// excerpt; everything else is newsroom prose.
package synth

import (
	"html"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

// ExcerptRunes caps the verbatim source excerpt quoted in a body.
const ExcerptRunes = 200

// Input is the data a template may use. Fields are already HTML-escaped.
type Input struct {
	Title      string
	TitleLower string
	Excerpt    string
	Portal     string
}

// Template renders one body layout.
type Template struct {
	Name   string
	Render func(Input) string
}

// Selector picks a template index in [0, n).
type Selector interface {
	Pick(n int) int
}

// RandomSelector draws indices from a seeded PCG source.
type RandomSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSelector seeds a selector. Equal seeds give equal sequences.
func NewRandomSelector(seed uint64) *RandomSelector {
	return &RandomSelector{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Pick returns a uniform index.
func (s *RandomSelector) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// FixedSelector always picks the same index, modulo n.
type FixedSelector int

// Pick returns the fixed index.
func (f FixedSelector) Pick(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(f) % n
	if i < 0 {
		i += n
	}
	return i
}

// Synthesizer renders bodies with an injected template picker.
type Synthesizer struct {
	templates []Template
	selector  Selector
}

// New builds a Synthesizer over the built-in templates.
func New(selector Selector) *Synthesizer {
	if selector == nil {
		selector = NewRandomSelector(1)
	}
	return &Synthesizer{templates: Templates(), selector: selector}
}

// Synthesize renders a body for item with the selector's template.
func (s *Synthesizer) Synthesize(item pipeline.RawItem) string {
	t := s.templates[s.selector.Pick(len(s.templates))]
	return t.Render(NewInput(item))
}

// NewInput escapes and trims the fields of item for rendering.
func NewInput(item pipeline.RawItem) Input {
	title := pipeline.CollapseSpaces(item.Title)
	return Input{
		Title:      html.EscapeString(title),
		TitleLower: html.EscapeString(strings.ToLower(title)),
		Excerpt:    html.EscapeString(Excerpt(item.ShortDescription)),
		Portal:     html.EscapeString(pipeline.CollapseSpaces(item.PortalName)),
	}
}

// Excerpt cuts a source description to ExcerptRunes plus an ellipsis.
func Excerpt(desc string) string {
	desc = pipeline.CollapseSpaces(desc)
	if cut := pipeline.Prefix(desc, ExcerptRunes); cut != desc {
		return strings.TrimRight(cut, " ") + "..."
	}
	return desc
}
