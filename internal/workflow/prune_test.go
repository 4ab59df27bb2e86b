package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/renewables-newsroom/internal/classify"
	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
	"github.com/JakeFAU/renewables-newsroom/internal/publish"
)

func seedArticles(t *testing.T, store *countingStore) {
	t.Helper()
	for _, f := range []pipeline.ArticleFields{
		{Title: "Activa reciente", Author: publish.DefaultAuthor, Active: true, PublishedAt: now.AddDate(0, 0, -1)},
		{Title: "Inactiva reciente", Author: publish.DefaultAuthor, Active: false, PublishedAt: now.AddDate(0, 0, -2)},
		{Title: "Activa vieja", Author: publish.DefaultAuthor, Active: true, PublishedAt: now.AddDate(0, 0, -40)},
		{Title: "De otra autora", Author: "Redacción", Active: false, PublishedAt: now.AddDate(0, 0, -90)},
	} {
		_, err := store.ContentStore.CreateArticle(context.Background(), f, nil)
		require.NoError(t, err)
	}
}

func TestPruneCriteria(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		opts        PruneOptions
		wantMatched []string
		wantLeft    int
	}{
		{name: "inactive", opts: PruneOptions{Inactive: true}, wantMatched: []string{"Inactiva reciente"}, wantLeft: 2},
		{name: "older than", opts: PruneOptions{OlderThanDays: 30}, wantMatched: []string{"Activa vieja"}, wantLeft: 2},
		{name: "ids", opts: PruneOptions{IDs: "1-2,4"}, wantMatched: []string{"Activa reciente", "Inactiva reciente"}, wantLeft: 1},
		{name: "all", opts: PruneOptions{All: true}, wantMatched: []string{"Activa reciente", "Inactiva reciente", "Activa vieja"}, wantLeft: 0},
		{name: "list only", opts: PruneOptions{All: true, ListOnly: true}, wantMatched: []string{"Activa reciente", "Inactiva reciente", "Activa vieja"}, wantLeft: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := newStore(t)
			seedArticles(t, store)
			o := newOrchestrator(t, store, classify.DefaultRules())

			res, err := o.Prune(context.Background(), tt.opts)
			require.NoError(t, err)
			titles := make([]string, 0, len(res.Matched))
			for _, a := range res.Matched {
				titles = append(titles, a.Title)
			}
			require.Equal(t, tt.wantMatched, titles)
			require.Equal(t, tt.wantLeft, res.Remaining)
			if tt.opts.ListOnly {
				require.Zero(t, res.Deleted)
				require.Equal(t, 4, store.Len())
			} else {
				require.Equal(t, len(tt.wantMatched), res.Deleted)
			}
		})
	}
}

func TestPruneRejectsBadCriteria(t *testing.T) {
	t.Parallel()

	o := newOrchestrator(t, newStore(t), classify.DefaultRules())
	for _, opts := range []PruneOptions{
		{},
		{ListOnly: true},
		{Inactive: true, All: true},
		{OlderThanDays: -3},
		{IDs: "x-y"},
	} {
		_, err := o.Prune(context.Background(), opts)
		var inputErr *pipeline.InputError
		require.ErrorAs(t, err, &inputErr, "%+v", opts)
	}

	_, err := o.Prune(context.Background(), PruneOptions{})
	require.ErrorIs(t, err, ErrNoCriterion)
}
