// Package announce defines the events emitted after articles reach the content store.
package announce

import "time"

// TopicArticlePublished is the default topic for ArticlePublished events.
const TopicArticlePublished = "articles.published"

// ArticlePublished is emitted once per stored article.
type ArticlePublished struct {
	ArticleID   string    `json:"article_id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Category    string    `json:"category,omitempty"`
	Status      string    `json:"status"`
	ImageURL    string    `json:"image_url,omitempty"`
	SourceURL   string    `json:"source_url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}
