package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
)

func newMockStore(t *testing.T) (*ContentStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	store, err := NewWithPool(mock, "", "")
	require.NoError(t, err)
	return store, mock
}

func TestNewWithPoolValidatesTables(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewWithPool(nil, "", "")
	require.Error(t, err)
	_, err = NewWithPool(mock, "articles; DROP TABLE x", "")
	require.Error(t, err)
}

func TestExistsByTitlePrefix(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS ( SELECT 1 FROM articles WHERE title ILIKE $1 LIMIT 1 )")).
		WithArgs(`%parque 100\% solar%`).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := store.ExistsByTitlePrefix(context.Background(), "parque 100% solar")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())

	ok, err = store.ExistsByTitlePrefix(context.Background(), "  ")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCreateArticlePicksFreeSlug(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	published := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT slug FROM articles WHERE (slug = $1 OR slug LIKE $2)")).
		WithArgs("parque-solar", `parque-solar-%`).
		WillReturnRows(pgxmock.NewRows([]string{"slug"}).AddRow("parque-solar").AddRow("parque-solar-2"))
	mock.ExpectQuery("INSERT INTO articles").
		WithArgs(
			"Parque solar", "parque-solar-3", "desc", "<p>x</p>", "Estefani", int64(4),
			"meta", "solar, energía", "https://origen.example.com", true, published,
			"memory://img.jpg", "pexels", "https://img.example.com/a.jpg", "Ana", "alt",
			1200, 800,
		).
		WillReturnRows(pgxmock.NewRows([]string{"id", "slug"}).AddRow(int64(17), "parque-solar-3"))

	ref, err := store.CreateArticle(context.Background(), pipeline.ArticleFields{
		Title:            "Parque solar",
		ShortDescription: "desc",
		BodyHTML:         "<p>x</p>",
		Author:           "Estefani",
		CategoryID:       "4",
		MetaDescription:  "meta",
		MetaKeywords:     "solar, energía",
		SourceURL:        "https://origen.example.com",
		Active:           true,
		PublishedAt:      published,
	}, &pipeline.Media{
		URL:         "memory://img.jpg",
		Source:      "pexels",
		OriginalURL: "https://img.example.com/a.jpg",
		Author:      "Ana",
		Alt:         "alt",
		Width:       1200,
		Height:      800,
	})
	require.NoError(t, err)
	require.Equal(t, pipeline.ArticleRef{ID: "17", Slug: "parque-solar-3"}, ref)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateArticleInsertError(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT slug FROM articles").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"slug"}))
	mock.ExpectQuery("INSERT INTO articles").WillReturnError(errors.New("constraint"))

	_, err := store.CreateArticle(context.Background(), pipeline.ArticleFields{Title: "Nota"}, nil)
	require.ErrorContains(t, err, "insert article")
	require.NoError(t, mock.ExpectationsWereMet())

	_, err = store.CreateArticle(context.Background(), pipeline.ArticleFields{Title: "Nota", CategoryID: "abc"}, nil)
	require.Error(t, err)
}

func TestListActiveCategories(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, description, color, active FROM categories WHERE active = $1 ORDER BY id")).
		WithArgs(true).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description", "color", "active"}).
			AddRow(int64(1), "Energía Solar", "Paneles", "#F59E0B", true).
			AddRow(int64(2), "Energía Eólica", "Viento", "#10B981", true))

	cats, err := store.ListActiveCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	require.Equal(t, pipeline.Category{ID: "1", Name: "Energía Solar", Description: "Paneles", Color: "#F59E0B", Active: true}, cats[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureCategoryUpserts(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectQuery("INSERT INTO categories .* ON CONFLICT \\(name\\) DO UPDATE").
		WithArgs("Noticias Sector", "General", "#6B7280", true).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description", "color", "active"}).
			AddRow(int64(5), "Noticias Sector", "General", "#6B7280", true))

	got, err := store.EnsureCategory(context.Background(), pipeline.Category{Name: " Noticias Sector ", Description: "General", Color: "#6B7280", Active: true})
	require.NoError(t, err)
	require.Equal(t, "5", got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListArticlesFilters(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, title, author, active, published_at FROM articles WHERE author = $1 AND active = $2 AND published_at < $3 ORDER BY id")).
		WithArgs("Estefani", false, cutoff).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "author", "active", "published_at"}).
			AddRow(int64(9), "Vieja", "Estefani", false, cutoff.AddDate(0, -1, 0)))

	rows, err := store.ListArticles(context.Background(), pipeline.ArticleFilter{Author: "Estefani", InactiveOnly: true, OlderThan: cutoff})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "9", rows[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())

	_, err = store.ListArticles(context.Background(), pipeline.ArticleFilter{IDs: []string{"x"}})
	var inputErr *pipeline.InputError
	require.ErrorAs(t, err, &inputErr)
}

func TestDeleteArticles(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM articles WHERE id IN ($1,$2)")).
		WithArgs(int64(15), int64(16)).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	n, err := store.DeleteArticles(context.Background(), []string{"15", "16"})
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())

	n, err = store.DeleteArticles(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestMigrate(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS categories").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS articles").WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
