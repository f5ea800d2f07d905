package bookmarks

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdeck/reader/internal/database"
	"newsdeck/reader/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(database.NewConfig(filepath.Join(t.TempDir(), "bookmarks.db")))
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleArticle(url string) models.Article {
	return models.Article{
		Title:       "Sample title",
		Description: "Sample description",
		URL:         url,
		ImageURL:    "https://example.com/image.jpg",
		PublishedAt: "2025-05-01T10:00:00Z",
		Source:      "Example News",
	}
}

func TestAddAndListRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	article := sampleArticle("https://example.com/a")
	require.NoError(t, store.Add(ctx, article))

	listed, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, article, listed[0])
}

func TestAddIsIdempotentAndOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	article := sampleArticle("https://example.com/a")
	require.NoError(t, store.Add(ctx, article))

	article.Title = "Updated title"
	article.Description = "Updated description"
	require.NoError(t, store.Add(ctx, article))

	listed, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1, "re-adding the same URL must not create a second row")
	assert.Equal(t, "Updated title", listed[0].Title)
	assert.Equal(t, "Updated description", listed[0].Description)
}

func TestAddRejectsEmptyURL(t *testing.T) {
	store := newTestStore(t)

	err := store.Add(context.Background(), models.Article{Title: "no identity"})
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
}

func TestRemoveAbsentURLIsNoOp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Remove(ctx, "https://example.com/never-added"))

	listed, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestIsBookmarkedLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	url := "https://example.com/a"

	bookmarked, err := store.IsBookmarked(ctx, url)
	require.NoError(t, err)
	assert.False(t, bookmarked)

	require.NoError(t, store.Add(ctx, sampleArticle(url)))

	bookmarked, err = store.IsBookmarked(ctx, url)
	require.NoError(t, err)
	assert.True(t, bookmarked)

	require.NoError(t, store.Remove(ctx, url))

	bookmarked, err = store.IsBookmarked(ctx, url)
	require.NoError(t, err)
	assert.False(t, bookmarked)
}

func TestListOrderIsStable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Add(ctx, sampleArticle(fmt.Sprintf("https://example.com/%d", i))))
	}

	first, err := store.List(ctx)
	require.NoError(t, err)
	second, err := store.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second, "enumeration order must be stable for a given dataset")
}

func TestConcurrentFirstUse(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const callers = 16
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				errs[n] = store.Add(ctx, sampleArticle(fmt.Sprintf("https://example.com/%d", n)))
			} else {
				_, errs[n] = store.IsBookmarked(ctx, fmt.Sprintf("https://example.com/%d", n))
			}
		}(i)
	}
	wg.Wait()

	for n, err := range errs {
		require.NoError(t, err, "caller %d", n)
	}

	listed, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, callers/2)
}

func TestInitFailureIsClassified(t *testing.T) {
	// A directory that cannot be created forces the lazy init to fail.
	badPath := filepath.Join(string([]byte{0}), "nope", "bookmarks.db")
	store := NewStore(database.NewConfig(badPath))

	err := store.Add(context.Background(), sampleArticle("https://example.com/a"))
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, ErrInit, storeErr.Kind)

	// Every later call observes the same init failure.
	_, err = store.List(context.Background())
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, ErrInit, storeErr.Kind)
}
