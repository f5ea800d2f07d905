package importbookmarks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdeck/reader/internal/bookmarks"
	"newsdeck/reader/internal/database"
)

func newTestStore(t *testing.T) *bookmarks.Store {
	t.Helper()
	store := bookmarks.NewStore(database.NewConfig(filepath.Join(t.TempDir(), "bookmarks.db")))
	t.Cleanup(func() { store.Close() })
	return store
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookmarks.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportBookmarks(t *testing.T) {
	store := newTestStore(t)
	importer := NewImporter(store)

	path := writeCSV(t, `url,title,description,image_url,published_at,source
https://example.com/a,Title A,Desc A,https://example.com/a.jpg,2025-05-01T10:00:00Z,Example News
https://example.com/b,Title B,,,,
,No URL here,,,,
`)

	require.NoError(t, importer.ImportBookmarks(context.Background(), path))

	listed, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 2, "rows with empty URL are skipped")

	bookmarked, err := store.IsBookmarked(context.Background(), "https://example.com/a")
	require.NoError(t, err)
	assert.True(t, bookmarked)
}

func TestImportOverwritesExisting(t *testing.T) {
	store := newTestStore(t)
	importer := NewImporter(store)

	first := writeCSV(t, `url,title,description,image_url,published_at,source
https://example.com/a,Old title,,,,
`)
	require.NoError(t, importer.ImportBookmarks(context.Background(), first))

	second := filepath.Join(t.TempDir(), "updated.csv")
	require.NoError(t, os.WriteFile(second, []byte(`url,title,description,image_url,published_at,source
https://example.com/a,New title,,,,
`), 0644))
	require.NoError(t, importer.ImportBookmarks(context.Background(), second))

	listed, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "New title", listed[0].Title)
}

func TestImportMissingURLColumnFails(t *testing.T) {
	store := newTestStore(t)
	importer := NewImporter(store)

	path := writeCSV(t, `title,description
Only a title,whatever
`)

	err := importer.ImportBookmarks(context.Background(), path)
	require.Error(t, err)
}

func TestImportMissingFileFails(t *testing.T) {
	importer := NewImporter(newTestStore(t))
	err := importer.ImportBookmarks(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
}
