package pipeline

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits shared by ProcessedArticle construction and the content store.
const (
	MaxTitleLen            = 200
	MaxShortDescriptionLen = 300
	MaxMetaDescriptionLen  = 160
	MaxMetaKeywordsLen     = 200
	MaxAuthorLen           = 100
)

// SourcePortal describes an external news portal.
type SourcePortal struct {
	Name      string   `mapstructure:"name" yaml:"name" json:"name"`
	BaseURL   string   `mapstructure:"url" yaml:"url" json:"url"`
	Priority  int      `mapstructure:"priority" yaml:"priority" json:"priority"`
	Region    string   `mapstructure:"region" yaml:"region" json:"region"`
	Specialty string   `mapstructure:"specialty" yaml:"specialty" json:"specialty"`
	Selectors []string `mapstructure:"selectors" yaml:"selectors,omitempty" json:"selectors,omitempty"`
	FeedURL   string   `mapstructure:"feed_url" yaml:"feed_url,omitempty" json:"feed_url,omitempty"`
	Render    bool     `mapstructure:"render" yaml:"render,omitempty" json:"render,omitempty"`
}

// RawItem is a candidate extracted from a portal page, a feed, or the synthetic bank.
type RawItem struct {
	Title            string
	ShortDescription string
	SourceURL        string
	ImageURL         string
	PortalName       string
	ExtractedAt      time.Time
	IsSynthetic      bool
}

// Media describes the image attached to an article.
type Media struct {
	Type        string `json:"tipo"`
	URL         string `json:"imagen_url"`
	Source      string `json:"imagen_source,omitempty"`
	OriginalURL string `json:"imagen_original_url,omitempty"`
	Author      string `json:"imagen_author,omitempty"`
	Alt         string `json:"imagen_alt"`
	Width       int    `json:"imagen_width,omitempty"`
	Height      int    `json:"imagen_height,omitempty"`
	// Stored is true once URL points at the media blob store instead of the web.
	Stored bool `json:"imagen_almacenada,omitempty"`
}

// HasImage reports whether an image URL is present.
func (m Media) HasImage() bool {
	return strings.TrimSpace(m.URL) != ""
}

// SEO holds search metadata.
type SEO struct {
	MetaTitle       string `json:"meta_titulo"`
	MetaDescription string `json:"meta_descripcion"`
	MetaKeywords    string `json:"meta_keywords"`
}

// Source records where an article came from.
type Source struct {
	PortalName   string    `json:"portal"`
	OriginalURL  string    `json:"url_original"`
	OriginalTime time.Time `json:"fecha_original"`
	Synthetic    bool      `json:"sintetico,omitempty"`
}

// Metrics are quality scores on a 0-10 scale plus body length.
type Metrics struct {
	Length           int     `json:"longitud"`
	OriginalityScore float64 `json:"originalidad_score"`
	SEOScore         float64 `json:"seo_score"`
	RelevanceScore   float64 `json:"relevancia_score"`
	Enriched         bool    `json:"analisis_ia,omitempty"`
}

// Enrichment records the analysis section appended by the enrich stage.
type Enrichment struct {
	Strategy  string    `json:"tipo"`
	AppliedAt time.Time `json:"fecha"`
}

// ProcessedArticle is an original article ready for publication.
type ProcessedArticle struct {
	ID               string      `json:"id"`
	Title            string      `json:"titulo"`
	ShortDescription string      `json:"descripcion_corta"`
	BodyHTML         string      `json:"contenido"`
	Author           string      `json:"autor"`
	CategoryName     string      `json:"categoria_asignada"`
	Media            Media       `json:"multimedia"`
	SEO              SEO         `json:"seo"`
	Source           Source      `json:"fuente"`
	Metrics          Metrics     `json:"metricas"`
	Enrichment       *Enrichment `json:"analisis_agregado,omitempty"`
}

// ArticleInput carries the fields needed to build a ProcessedArticle.
type ArticleInput struct {
	ID               string
	Title            string
	ShortDescription string
	BodyHTML         string
	Author           string
	CategoryName     string
	Media            Media
	SEO              SEO
	Source           Source
}

// NewProcessedArticle builds an article and enforces the field length limits.
func NewProcessedArticle(in ArticleInput) (ProcessedArticle, error) {
	title := CollapseSpaces(in.Title)
	if title == "" {
		return ProcessedArticle{}, &ValidationError{Field: "title", Err: ErrEmpty}
	}
	if in.ID == "" {
		return ProcessedArticle{}, &ValidationError{Field: "id", Err: ErrEmpty}
	}
	a := ProcessedArticle{
		ID:           in.ID,
		BodyHTML:     in.BodyHTML,
		CategoryName: in.CategoryName,
		Media:        in.Media,
		Source:       in.Source,
	}
	if a.Media.Type == "" {
		a.Media.Type = "imagen"
	}
	a.SetTitle(title)
	a.SetShortDescription(in.ShortDescription)
	a.SetSEO(in.SEO)
	a.Author = Truncate(in.Author, MaxAuthorLen)
	a.Metrics.Length = utf8.RuneCountInString(a.BodyHTML)
	return a, nil
}

// SetTitle replaces the title, capped at MaxTitleLen.
func (a *ProcessedArticle) SetTitle(title string) {
	a.Title = Truncate(CollapseSpaces(title), MaxTitleLen)
}

// SetShortDescription replaces the card text, capped at MaxShortDescriptionLen.
func (a *ProcessedArticle) SetShortDescription(desc string) {
	a.ShortDescription = Truncate(desc, MaxShortDescriptionLen)
}

// SetSEO replaces the SEO block, capping description and keywords.
func (a *ProcessedArticle) SetSEO(seo SEO) {
	a.SEO = SEO{
		MetaTitle:       seo.MetaTitle,
		MetaDescription: Truncate(seo.MetaDescription, MaxMetaDescriptionLen),
		MetaKeywords:    TruncateList(seo.MetaKeywords, MaxMetaKeywordsLen),
	}
}

// SetBody replaces the HTML body and refreshes the length metric.
func (a *ProcessedArticle) SetBody(body string) {
	a.BodyHTML = body
	a.Metrics.Length = utf8.RuneCountInString(body)
}

// PublishStatus is the terminal state of a publish attempt.
type PublishStatus string

// Publish statuses.
const (
	StatusPublished        PublishStatus = "published"
	StatusDraft            PublishStatus = "draft"
	StatusSimulated        PublishStatus = "simulated"
	StatusSkippedDuplicate PublishStatus = "skipped_duplicate"
	StatusFailed           PublishStatus = "failed"
)

// PublishResult is emitted once per article by the publish stage.
type PublishResult struct {
	ArticleID    string        `json:"article_id,omitempty"`
	Title        string        `json:"titulo"`
	Status       PublishStatus `json:"status"`
	CategoryName string        `json:"categoria,omitempty"`
	StoreRef     string        `json:"store_ref,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// Category is a content store category.
type Category struct {
	ID          string
	Name        string
	Description string
	Color       string
	Active      bool
}

// ArticleFields is the content store create contract.
type ArticleFields struct {
	Title            string
	ShortDescription string
	BodyHTML         string
	Author           string
	CategoryID       string
	MetaDescription  string
	MetaKeywords     string
	SourceURL        string
	Active           bool
	PublishedAt      time.Time
}

// ArticleRef identifies a stored article. Only the store assigns these values.
type ArticleRef struct {
	ID   string
	Slug string
}

// StoredArticle is a row returned by ArticleFilter queries.
type StoredArticle struct {
	ID          string
	Title       string
	Author      string
	Active      bool
	PublishedAt time.Time
}

// ArticleFilter narrows ListArticles. Zero values do not filter.
type ArticleFilter struct {
	Author       string
	InactiveOnly bool
	OlderThan    time.Time
	IDs          []string
}

// FetchRequest describes a single HTTP GET.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse holds the body and metadata of a fetch.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// ImageCandidate is a search hit returned by a MediaResolver.
type ImageCandidate struct {
	URL          string
	Width        int
	Height       int
	Photographer string
	Source       string
	Alt          string
}

// DownloadedImage is a validated image payload.
type DownloadedImage struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}
