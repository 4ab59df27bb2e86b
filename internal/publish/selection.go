package publish

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

// maxRange bounds a single "a-b" span so a typo cannot allocate millions of entries.
const maxRange = 10000

// ParseList parses "1,3,5", "1-3" or a mix of both into positive integers.
// Entries keep their input order and duplicates are dropped.
func ParseList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, &pipeline.InputError{What: "index list", Err: pipeline.ErrEmpty}
	}
	seen := make(map[int]struct{})
	var out []int
	add := func(n int) {
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := positive(lo)
		if err != nil {
			return nil, listError(part, err)
		}
		if !isRange {
			add(start)
			continue
		}
		end, err := positive(hi)
		if err != nil {
			return nil, listError(part, err)
		}
		if end < start {
			return nil, listError(part, errors.New("range end before start"))
		}
		if end-start >= maxRange {
			return nil, listError(part, errors.New("range too wide"))
		}
		for n := start; n <= end; n++ {
			add(n)
		}
	}
	if len(out) == 0 {
		return nil, &pipeline.InputError{What: "index list", Err: pipeline.ErrEmpty}
	}
	return out, nil
}

func positive(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("%d is not positive", n)
	}
	return n, nil
}

func listError(part string, err error) error {
	return &pipeline.InputError{What: fmt.Sprintf("index list entry %q", part), Err: err}
}

// Selection narrows a batch. Zero fields do not filter; set fields combine with AND.
type Selection struct {
	Indices       []int
	TitleContains string
	Category      string
}

// Empty reports whether the selection keeps every article.
func (s Selection) Empty() bool {
	return len(s.Indices) == 0 && strings.TrimSpace(s.TitleContains) == "" && strings.TrimSpace(s.Category) == ""
}

// Selected is an article with its 1-based position in the batch.
type Selected struct {
	Index   int
	Article pipeline.ProcessedArticle
}

// Select returns the articles matching sel, in batch order.
func Select(articles []pipeline.ProcessedArticle, sel Selection) []Selected {
	want := make(map[int]bool, len(sel.Indices))
	for _, i := range sel.Indices {
		want[i] = true
	}
	title := fold(sel.TitleContains)
	category := fold(sel.Category)

	var out []Selected
	for i, a := range articles {
		pos := i + 1
		if len(want) > 0 && !want[pos] {
			continue
		}
		if title != "" && !strings.Contains(fold(a.Title), title) {
			continue
		}
		if category != "" && !strings.Contains(fold(a.CategoryName), category) {
			continue
		}
		out = append(out, Selected{Index: pos, Article: a})
	}
	return out
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
