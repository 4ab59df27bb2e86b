package memory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

func TestContentStoreCreateAndExists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := New("")
	require.NoError(t, err)

	ref, err := s.CreateArticle(ctx, pipeline.ArticleFields{Title: "Récord de Energía Solar en San Juan"}, &pipeline.Media{URL: "memory://a.jpg"})
	require.NoError(t, err)
	require.Equal(t, "1", ref.ID)
	require.Equal(t, "record-de-energia-solar-en-san-juan", ref.Slug)

	ok, err := s.ExistsByTitlePrefix(ctx, "récord de energía solar")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.ExistsByTitlePrefix(ctx, "eólica")
	require.NoError(t, err)
	require.False(t, ok)

	ref2, err := s.CreateArticle(ctx, pipeline.ArticleFields{Title: "Récord de energía solar en San Juan"}, nil)
	require.NoError(t, err)
	require.Equal(t, "record-de-energia-solar-en-san-juan-2", ref2.Slug)

	stored, ok := s.Article(ref.ID)
	require.True(t, ok)
	require.Equal(t, "memory://a.jpg", stored.Media.URL)
}

func TestContentStoreRejectsUnknownCategory(t *testing.T) {
	t.Parallel()

	s, _ := New("")
	_, err := s.CreateArticle(context.Background(), pipeline.ArticleFields{Title: "x", CategoryID: "99"}, nil)
	require.Error(t, err)
	require.Equal(t, 0, s.Len())
}

func TestContentStoreCategories(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := New("")
	solar, err := s.EnsureCategory(ctx, pipeline.Category{Name: "Energía Solar", Color: "#F59E0B", Active: true})
	require.NoError(t, err)
	again, err := s.EnsureCategory(ctx, pipeline.Category{Name: "energía solar", Color: "#000000", Active: true})
	require.NoError(t, err)
	require.Equal(t, solar, again)

	_, err = s.EnsureCategory(ctx, pipeline.Category{Name: "Archivada", Active: false})
	require.NoError(t, err)
	_, err = s.EnsureCategory(ctx, pipeline.Category{Name: "Eólica", Active: true})
	require.NoError(t, err)

	active, err := s.ListActiveCategories(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, "Energía Solar", active[0].Name)
	require.Equal(t, "Eólica", active[1].Name)

	_, err = s.EnsureCategory(ctx, pipeline.Category{Name: "  "})
	require.ErrorIs(t, err, pipeline.ErrEmpty)
}

func TestContentStoreListAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := New("")
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, f := range []pipeline.ArticleFields{
		{Title: "Uno", Author: "Estefani", Active: true, PublishedAt: old},
		{Title: "Dos", Author: "Estefani", Active: false, PublishedAt: recent},
		{Title: "Tres", Author: "Otra", Active: false, PublishedAt: old},
	} {
		_, err := s.CreateArticle(ctx, f, nil)
		require.NoError(t, err)
	}

	inactive, err := s.ListArticles(ctx, pipeline.ArticleFilter{Author: "Estefani", InactiveOnly: true})
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	require.Equal(t, "Dos", inactive[0].Title)

	older, err := s.ListArticles(ctx, pipeline.ArticleFilter{Author: "Estefani", OlderThan: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.Len(t, older, 1)
	require.Equal(t, "Uno", older[0].Title)

	byID, err := s.ListArticles(ctx, pipeline.ArticleFilter{IDs: []string{"2", "3"}})
	require.NoError(t, err)
	require.Len(t, byID, 2)

	n, err := s.DeleteArticles(ctx, []string{"1", "3", "42"})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, 1, s.Len())
}

func TestContentStoreSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "store.json")
	s, err := New(path)
	require.NoError(t, err)
	cat, err := s.EnsureCategory(ctx, pipeline.Category{Name: "Mercado Energético", Active: true})
	require.NoError(t, err)
	_, err = s.CreateArticle(ctx, pipeline.ArticleFields{Title: "Subasta renovable", CategoryID: cat.ID}, nil)
	require.NoError(t, err)

	reopened, err := New(path)
	require.NoError(t, err)
	require.Equal(t, 1, reopened.Len())
	ok, err := reopened.ExistsByTitlePrefix(ctx, "subasta")
	require.NoError(t, err)
	require.True(t, ok)

	ref, err := reopened.CreateArticle(ctx, pipeline.ArticleFields{Title: "Otra nota"}, nil)
	require.NoError(t, err)
	require.Equal(t, "2", ref.ID)
}
