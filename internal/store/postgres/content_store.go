// Package postgres implements pipeline.ContentStore on Postgres with pgx and squirrel.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
	"github.com/JakeFAU/renewables-newsroom/internal/slug"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the connection pool and table names.
type Config struct {
	DSN             string        `mapstructure:"dsn"`
	ArticlesTable   string        `mapstructure:"articles_table"`
	CategoriesTable string        `mapstructure:"categories_table"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

type pool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Close()
}

// ContentStore persists articles and categories in Postgres.
type ContentStore struct {
	pool       pool
	articles   string
	categories string
	sb         sq.StatementBuilderType
}

// New connects to Postgres using cfg.
func New(ctx context.Context, cfg Config) (*ContentStore, error) {
	if cfg.DSN == "" {
		return nil, errors.New("store.postgres.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s, err := NewWithPool(p, cfg.ArticlesTable, cfg.CategoriesTable)
	if err != nil {
		p.Close()
		return nil, err
	}
	return s, nil
}

// NewWithPool builds a store on an existing pool (primarily for testing).
func NewWithPool(p pool, articles, categories string) (*ContentStore, error) {
	if p == nil {
		return nil, errors.New("pool is required")
	}
	if articles == "" {
		articles = "articles"
	}
	if categories == "" {
		categories = "categories"
	}
	for _, table := range []string{articles, categories} {
		if !validTableName.MatchString(table) {
			return nil, fmt.Errorf("invalid table name %q", table)
		}
	}
	return &ContentStore{
		pool:       p,
		articles:   articles,
		categories: categories,
		sb:         sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

// Close releases the pool.
func (s *ContentStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Migrate creates the tables when they do not exist.
func (s *ContentStore) Migrate(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	active BOOLEAN NOT NULL DEFAULT TRUE
)`, s.categories),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	title VARCHAR(200) NOT NULL,
	slug VARCHAR(220) NOT NULL UNIQUE,
	short_description VARCHAR(300) NOT NULL DEFAULT '',
	body_html TEXT NOT NULL,
	author VARCHAR(100) NOT NULL DEFAULT '',
	category_id BIGINT REFERENCES %s(id),
	meta_description VARCHAR(160) NOT NULL DEFAULT '',
	meta_keywords VARCHAR(200) NOT NULL DEFAULT '',
	source_url TEXT NOT NULL DEFAULT '',
	active BOOLEAN NOT NULL DEFAULT TRUE,
	published_at TIMESTAMPTZ NOT NULL,
	image_url TEXT NOT NULL DEFAULT '',
	image_source TEXT NOT NULL DEFAULT '',
	image_original_url TEXT NOT NULL DEFAULT '',
	image_author TEXT NOT NULL DEFAULT '',
	image_alt TEXT NOT NULL DEFAULT '',
	image_width INTEGER NOT NULL DEFAULT 0,
	image_height INTEGER NOT NULL DEFAULT 0
)`, s.articles, s.categories),
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// ExistsByTitlePrefix reports whether a title contains prefix, ignoring case.
func (s *ContentStore) ExistsByTitlePrefix(ctx context.Context, prefix string) (bool, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return false, nil
	}
	query, args, err := s.sb.Select("1").
		From(s.articles).
		Where(sq.ILike{"title": "%" + escapeLike(prefix) + "%"}).
		Limit(1).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}
	var exists bool
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("query title prefix: %w", err)
	}
	return exists, nil
}

// CreateArticle inserts the article with its media and returns the store-assigned ID and slug.
func (s *ContentStore) CreateArticle(ctx context.Context, f pipeline.ArticleFields, media *pipeline.Media) (pipeline.ArticleRef, error) {
	if strings.TrimSpace(f.Title) == "" {
		return pipeline.ArticleRef{}, &pipeline.ValidationError{Field: "title", Err: pipeline.ErrEmpty}
	}
	var categoryID any
	if f.CategoryID != "" {
		id, err := strconv.ParseInt(f.CategoryID, 10, 64)
		if err != nil {
			return pipeline.ArticleRef{}, fmt.Errorf("category id %q: %w", f.CategoryID, err)
		}
		categoryID = id
	}
	articleSlug, err := s.uniqueSlug(ctx, slug.WithFallback(f.Title, "noticia"))
	if err != nil {
		return pipeline.ArticleRef{}, err
	}
	var m pipeline.Media
	if media != nil {
		m = *media
	}

	query, args, err := s.sb.Insert(s.articles).
		Columns(
			"title", "slug", "short_description", "body_html", "author", "category_id",
			"meta_description", "meta_keywords", "source_url", "active", "published_at",
			"image_url", "image_source", "image_original_url", "image_author", "image_alt",
			"image_width", "image_height",
		).
		Values(
			f.Title, articleSlug, f.ShortDescription, f.BodyHTML, f.Author, categoryID,
			f.MetaDescription, f.MetaKeywords, f.SourceURL, f.Active, f.PublishedAt,
			m.URL, m.Source, m.OriginalURL, m.Author, m.Alt,
			m.Width, m.Height,
		).
		Suffix("RETURNING id, slug").
		ToSql()
	if err != nil {
		return pipeline.ArticleRef{}, fmt.Errorf("build insert: %w", err)
	}
	var (
		id  int64
		ref pipeline.ArticleRef
	)
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&id, &ref.Slug); err != nil {
		return pipeline.ArticleRef{}, fmt.Errorf("insert article: %w", err)
	}
	ref.ID = strconv.FormatInt(id, 10)
	return ref, nil
}

// ListActiveCategories returns active categories ordered by ID.
func (s *ContentStore) ListActiveCategories(ctx context.Context) ([]pipeline.Category, error) {
	query, args, err := s.sb.Select("id", "name", "description", "color", "active").
		From(s.categories).
		Where(sq.Eq{"active": true}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build category query: %w", err)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []pipeline.Category
	for rows.Next() {
		var (
			id int64
			c  pipeline.Category
		)
		if err := rows.Scan(&id, &c.Name, &c.Description, &c.Color, &c.Active); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.ID = strconv.FormatInt(id, 10)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

// EnsureCategory inserts the category unless one with the same name exists,
// and returns the stored row either way.
func (s *ContentStore) EnsureCategory(ctx context.Context, c pipeline.Category) (pipeline.Category, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return pipeline.Category{}, &pipeline.ValidationError{Field: "category", Err: pipeline.ErrEmpty}
	}
	query, args, err := s.sb.Insert(s.categories).
		Columns("name", "description", "color", "active").
		Values(name, c.Description, c.Color, c.Active).
		Suffix("ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id, name, description, color, active").
		ToSql()
	if err != nil {
		return pipeline.Category{}, fmt.Errorf("build category upsert: %w", err)
	}
	var (
		id  int64
		out pipeline.Category
	)
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&id, &out.Name, &out.Description, &out.Color, &out.Active); err != nil {
		return pipeline.Category{}, fmt.Errorf("upsert category: %w", err)
	}
	out.ID = strconv.FormatInt(id, 10)
	return out, nil
}

// ListArticles returns rows matching every non-zero filter field, ordered by ID.
func (s *ContentStore) ListArticles(ctx context.Context, f pipeline.ArticleFilter) ([]pipeline.StoredArticle, error) {
	b := s.sb.Select("id", "title", "author", "active", "published_at").From(s.articles).OrderBy("id")
	if f.Author != "" {
		b = b.Where(sq.Eq{"author": f.Author})
	}
	if f.InactiveOnly {
		b = b.Where(sq.Eq{"active": false})
	}
	if !f.OlderThan.IsZero() {
		b = b.Where(sq.Lt{"published_at": f.OlderThan})
	}
	if len(f.IDs) > 0 {
		ids, err := parseIDs(f.IDs)
		if err != nil {
			return nil, err
		}
		b = b.Where(sq.Eq{"id": ids})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build article query: %w", err)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var out []pipeline.StoredArticle
	for rows.Next() {
		var (
			id int64
			a  pipeline.StoredArticle
		)
		if err := rows.Scan(&id, &a.Title, &a.Author, &a.Active, &a.PublishedAt); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		a.ID = strconv.FormatInt(id, 10)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return out, nil
}

// DeleteArticles removes the given IDs and returns the affected row count.
func (s *ContentStore) DeleteArticles(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	parsed, err := parseIDs(ids)
	if err != nil {
		return 0, err
	}
	query, args, err := s.sb.Delete(s.articles).Where(sq.Eq{"id": parsed}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete articles: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *ContentStore) uniqueSlug(ctx context.Context, base string) (string, error) {
	query, args, err := s.sb.Select("slug").
		From(s.articles).
		Where(sq.Or{sq.Eq{"slug": base}, sq.Like{"slug": escapeLike(base) + "-%"}}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build slug query: %w", err)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return "", fmt.Errorf("query slugs: %w", err)
	}
	defer rows.Close()

	taken := map[string]struct{}{}
	for rows.Next() {
		var existing string
		if err := rows.Scan(&existing); err != nil {
			return "", fmt.Errorf("scan slug: %w", err)
		}
		taken[existing] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate slugs: %w", err)
	}
	candidate := base
	for n := 2; ; n++ {
		if _, ok := taken[candidate]; !ok {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

func parseIDs(ids []string) ([]int64, error) {
	out := make([]int64, 0, len(ids))
	for _, raw := range ids {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, &pipeline.InputError{What: "article id " + strconv.Quote(raw), Err: err}
		}
		out = append(out, id)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
