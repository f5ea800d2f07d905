// Package bookmarks persists user-saved articles in a single sqlite
// table keyed by URL. All operations are idempotent and safe under
// concurrent use.
package bookmarks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"newsdeck/reader/internal/database"
	"newsdeck/reader/internal/models"
)

// Store owns the durable bookmark table. The underlying handle is opened
// lazily on first use; sync.Once guarantees exactly one open and one
// schema setup no matter how many callers race on first use, and every
// caller observes the same ready handle.
type Store struct {
	cfg *database.Config

	once    sync.Once
	db      *database.DB
	openErr error
}

// NewStore creates a store for the given database configuration. No I/O
// happens until the first operation.
func NewStore(cfg *database.Config) *Store {
	return &Store{cfg: cfg}
}

// handle returns the shared database handle, opening it on first use.
func (s *Store) handle() (*database.DB, error) {
	s.once.Do(func() {
		db, err := database.Open(s.cfg)
		if err != nil {
			s.openErr = err
			return
		}
		log.Debug().Str("path", s.cfg.DBPath).Msg("Bookmark store initialized")
		s.db = db
	})
	if s.openErr != nil {
		return nil, &StoreError{Kind: ErrInit, Err: s.openErr}
	}
	return s.db, nil
}

// Add inserts or replaces the bookmark keyed by the article's URL.
// Re-adding an already bookmarked URL overwrites the stored fields; the
// original created_at is kept so enumeration order stays stable.
func (s *Store) Add(ctx context.Context, article models.Article) error {
	if article.URL == "" {
		return &StoreError{Kind: ErrIO, Err: errors.New("article url must not be empty")}
	}

	db, err := s.handle()
	if err != nil {
		return err
	}

	_, err = db.NamedExecContext(ctx, `
		INSERT INTO bookmarks (url, title, description, image_url, published_at, source, created_at)
		VALUES (:url, :title, :description, :image_url, :published_at, :source, :created_at)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			image_url = excluded.image_url,
			published_at = excluded.published_at,
			source = excluded.source
	`, models.NewBookmark(article))
	if err != nil {
		return &StoreError{Kind: ErrIO, Err: fmt.Errorf("failed to insert bookmark %s: %w", article.URL, err)}
	}

	return nil
}

// Remove deletes the bookmark with the given URL. Removing an absent URL
// is a no-op success.
func (s *Store) Remove(ctx context.Context, url string) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM bookmarks WHERE url = ?", url); err != nil {
		return &StoreError{Kind: ErrIO, Err: fmt.Errorf("failed to delete bookmark %s: %w", url, err)}
	}

	return nil
}

// IsBookmarked reports whether a bookmark exists for the given URL.
func (s *Store) IsBookmarked(ctx context.Context, url string) (bool, error) {
	db, err := s.handle()
	if err != nil {
		return false, err
	}

	var exists bool
	err = db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM bookmarks WHERE url = ?)", url)
	if err != nil {
		return false, &StoreError{Kind: ErrIO, Err: fmt.Errorf("failed to check bookmark %s: %w", url, err)}
	}

	return exists, nil
}

// List enumerates all bookmarked articles, newest first. Ties on
// created_at break by URL so the order is stable for a given dataset.
func (s *Store) List(ctx context.Context) ([]models.Article, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	var rows []models.Bookmark
	err = db.SelectContext(ctx, &rows, `
		SELECT url, title, description, image_url, published_at, source, created_at
		FROM bookmarks
		ORDER BY created_at DESC, url ASC
	`)
	if err != nil {
		return nil, &StoreError{Kind: ErrIO, Err: fmt.Errorf("failed to list bookmarks: %w", err)}
	}

	return lo.Map(rows, func(b models.Bookmark, _ int) models.Article {
		return b.Article
	}), nil
}

// Close releases the database handle if it was ever opened.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
