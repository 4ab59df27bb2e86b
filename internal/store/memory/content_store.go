// Package memory implements pipeline.ContentStore in process memory, with an
// optional JSON snapshot so separate CLI runs can share state.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
	"github.com/JakeFAU/renewables-newsroom/internal/slug"
)

// Article is a stored row.
type Article struct {
	ID        string                 `json:"id"`
	Slug      string                 `json:"slug"`
	Fields    pipeline.ArticleFields `json:"fields"`
	Media     *pipeline.Media        `json:"media,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type snapshot struct {
	NextArticle  int                 `json:"next_article"`
	NextCategory int                 `json:"next_category"`
	Categories   []pipeline.Category `json:"categories"`
	Articles     []Article           `json:"articles"`
}

// ContentStore keeps categories and articles in insertion order.
type ContentStore struct {
	mu   sync.RWMutex
	path string
	now  func() time.Time
	data snapshot
}

// New returns an empty store. A non-empty path loads an existing snapshot and
// persists every write back to it.
func New(path string) (*ContentStore, error) {
	s := &ContentStore{path: path, now: time.Now}
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path) // #nosec G304 -- operator-supplied snapshot path.
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read store snapshot: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("decode store snapshot %s: %w", path, err)
	}
	return s, nil
}

// ExistsByTitlePrefix reports whether any stored title contains prefix, ignoring case.
func (s *ContentStore) ExistsByTitlePrefix(_ context.Context, prefix string) (bool, error) {
	needle := fold(prefix)
	if needle == "" {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.data.Articles {
		if strings.Contains(fold(a.Fields.Title), needle) {
			return true, nil
		}
	}
	return false, nil
}

// CreateArticle stores the article and assigns its ID and a unique slug.
func (s *ContentStore) CreateArticle(_ context.Context, fields pipeline.ArticleFields, media *pipeline.Media) (pipeline.ArticleRef, error) {
	if strings.TrimSpace(fields.Title) == "" {
		return pipeline.ArticleRef{}, &pipeline.ValidationError{Field: "title", Err: pipeline.ErrEmpty}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if fields.CategoryID != "" && s.categoryIndex(fields.CategoryID) < 0 {
		return pipeline.ArticleRef{}, fmt.Errorf("category %s does not exist", fields.CategoryID)
	}
	s.data.NextArticle++
	a := Article{
		ID:        strconv.Itoa(s.data.NextArticle),
		Slug:      s.uniqueSlug(slug.WithFallback(fields.Title, "noticia")),
		Fields:    fields,
		CreatedAt: s.now().UTC(),
	}
	if media != nil {
		m := *media
		a.Media = &m
	}
	s.data.Articles = append(s.data.Articles, a)
	if err := s.persist(); err != nil {
		s.data.Articles = s.data.Articles[:len(s.data.Articles)-1]
		s.data.NextArticle--
		return pipeline.ArticleRef{}, err
	}
	return pipeline.ArticleRef{ID: a.ID, Slug: a.Slug}, nil
}

// ListActiveCategories returns active categories in creation order.
func (s *ContentStore) ListActiveCategories(context.Context) ([]pipeline.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []pipeline.Category
	for _, c := range s.data.Categories {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

// EnsureCategory returns the category with the same name (ignoring case),
// creating it when missing.
func (s *ContentStore) EnsureCategory(_ context.Context, category pipeline.Category) (pipeline.Category, error) {
	name := strings.TrimSpace(category.Name)
	if name == "" {
		return pipeline.Category{}, &pipeline.ValidationError{Field: "category", Err: pipeline.ErrEmpty}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.data.Categories {
		if fold(c.Name) == fold(name) {
			return c, nil
		}
	}
	s.data.NextCategory++
	category.ID = strconv.Itoa(s.data.NextCategory)
	category.Name = name
	s.data.Categories = append(s.data.Categories, category)
	if err := s.persist(); err != nil {
		s.data.Categories = s.data.Categories[:len(s.data.Categories)-1]
		s.data.NextCategory--
		return pipeline.Category{}, err
	}
	return category, nil
}

// ListArticles returns rows matching every non-zero filter field.
func (s *ContentStore) ListArticles(_ context.Context, f pipeline.ArticleFilter) ([]pipeline.StoredArticle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []pipeline.StoredArticle
	for _, a := range s.data.Articles {
		if !matches(a, f) {
			continue
		}
		out = append(out, pipeline.StoredArticle{
			ID:          a.ID,
			Title:       a.Fields.Title,
			Author:      a.Fields.Author,
			Active:      a.Fields.Active,
			PublishedAt: a.Fields.PublishedAt,
		})
	}
	return out, nil
}

// DeleteArticles removes the given IDs and returns how many existed.
func (s *ContentStore) DeleteArticles(_ context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.data.Articles
	kept := make([]Article, 0, len(before))
	for _, a := range before {
		if !slices.Contains(ids, a.ID) {
			kept = append(kept, a)
		}
	}
	s.data.Articles = kept
	if err := s.persist(); err != nil {
		s.data.Articles = before
		return 0, err
	}
	return len(before) - len(kept), nil
}

// Article returns a stored article by ID.
func (s *ContentStore) Article(id string) (Article, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.data.Articles {
		if a.ID == id {
			return a, true
		}
	}
	return Article{}, false
}

// Len returns the number of stored articles.
func (s *ContentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.Articles)
}

func matches(a Article, f pipeline.ArticleFilter) bool {
	if f.Author != "" && a.Fields.Author != f.Author {
		return false
	}
	if f.InactiveOnly && a.Fields.Active {
		return false
	}
	if !f.OlderThan.IsZero() && !a.Fields.PublishedAt.Before(f.OlderThan) {
		return false
	}
	if len(f.IDs) > 0 && !slices.Contains(f.IDs, a.ID) {
		return false
	}
	return true
}

func (s *ContentStore) categoryIndex(id string) int {
	return slices.IndexFunc(s.data.Categories, func(c pipeline.Category) bool { return c.ID == id })
}

func (s *ContentStore) uniqueSlug(base string) string {
	taken := func(candidate string) bool {
		return slices.ContainsFunc(s.data.Articles, func(a Article) bool { return a.Slug == candidate })
	}
	candidate := base
	for n := 2; taken(candidate); n++ {
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return candidate
}

// persist writes the snapshot atomically. Callers hold the write lock.
func (s *ContentStore) persist() error {
	if s.path == "" {
		return nil
	}
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store snapshot: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".store-*")
	if err != nil {
		return fmt.Errorf("create snapshot temp: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		return errors.Join(fmt.Errorf("write snapshot: %w", err), tmp.Close(), os.Remove(tmp.Name()))
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(fmt.Errorf("close snapshot: %w", err), os.Remove(tmp.Name()))
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Join(fmt.Errorf("rename snapshot: %w", err), os.Remove(tmp.Name()))
	}
	return nil
}

func fold(s string) string {
	return cases.Fold().String(pipeline.CollapseSpaces(s))
}
