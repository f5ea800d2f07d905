package models

import "time"

// Article is the normalized representation of a single feed item. The URL
// is the record's identity: deduplication and bookmark keying both go
// through it. Every other field may legitimately be empty because the
// upstream API returns nulls freely.
type Article struct {
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
	URL         string `db:"url" json:"url"`
	ImageURL    string `db:"image_url" json:"imageUrl"`
	PublishedAt string `db:"published_at" json:"publishedAt"`
	Source      string `db:"source" json:"source"`
}

// Bookmark represents a row in the 'bookmarks' table: a persisted Article
// plus the time it was saved.
type Bookmark struct {
	Article
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewBookmark creates a Bookmark for the given article with default values.
func NewBookmark(a Article) *Bookmark {
	return &Bookmark{
		Article:   a,
		CreatedAt: time.Now().UTC(),
	}
}
