// Package enrich inserts analysis sections into processed articles.
package enrich

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

// Errors returned by Apply.
var (
	ErrUnknownStrategy = errors.New("unknown analysis strategy")
	ErrAlreadyApplied  = errors.New("analysis already applied")
)

const perspectiveMarker = "<p><strong>Perspectiva"

// Enricher applies named strategies to articles.
type Enricher struct {
	strategies map[string]Strategy
	now        func() time.Time
}

// New builds an Enricher over strategies; none means DefaultStrategies.
func New(clock pipeline.Clock, strategies ...Strategy) *Enricher {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	e := &Enricher{strategies: make(map[string]Strategy, len(strategies)), now: time.Now}
	if clock != nil {
		e.now = clock.Now
	}
	for _, s := range strategies {
		e.strategies[s.Name()] = s
	}
	return e
}

// Names lists the registered strategies in order.
func (e *Enricher) Names() []string {
	out := make([]string, 0, len(e.strategies))
	for name := range e.strategies {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Validate returns an InputError when name is not registered.
func (e *Enricher) Validate(name string) error {
	if _, ok := e.strategies[name]; !ok {
		return &pipeline.InputError{
			What: fmt.Sprintf("strategy %q (want one of %s)", name, strings.Join(e.Names(), ", ")),
			Err:  ErrUnknownStrategy,
		}
	}
	return nil
}

// Apply returns a copy of a with the strategy's section inserted. The input is
// not modified.
func (e *Enricher) Apply(a pipeline.ProcessedArticle, strategy string) (pipeline.ProcessedArticle, error) {
	s, ok := e.strategies[strategy]
	if !ok {
		return a, e.Validate(strategy)
	}
	if a.Enrichment != nil && a.Enrichment.Strategy == strategy {
		return a, ErrAlreadyApplied
	}
	section := s.Section(a.Title, a.BodyHTML)
	if section == "" {
		return a, fmt.Errorf("%s produced no section: %w", strategy, pipeline.ErrEmpty)
	}
	out := a
	out.SetBody(Integrate(a.BodyHTML, section))
	out.Metrics.Enriched = true
	out.Enrichment = &pipeline.Enrichment{Strategy: strategy, AppliedAt: e.now().UTC()}
	return out, nil
}

// Integrate places section before the first "Perspectiva" paragraph, else
// before the last paragraph when there are at least three, else at the end.
func Integrate(body, section string) string {
	if i := strings.Index(body, perspectiveMarker); i >= 0 {
		return body[:i] + section + "\n\n" + body[i:]
	}
	if strings.Count(body, "<p>") >= 3 {
		i := strings.LastIndex(body, "<p>")
		return body[:i] + section + "\n\n" + body[i:]
	}
	if body == "" {
		return section
	}
	return body + "\n\n" + section
}
