// Package importbookmarks loads previously exported bookmarks from a CSV
// file back into the store. The expected columns match the export
// endpoint: url, title, description, image_url, published_at, source.
package importbookmarks

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"newsdeck/reader/internal/bookmarks"
	"newsdeck/reader/internal/models"
)

// Importer handles the bookmark import process
type Importer struct {
	store *bookmarks.Store
}

// NewImporter creates a new bookmark importer
func NewImporter(store *bookmarks.Store) *Importer {
	return &Importer{store: store}
}

// ImportBookmarks imports bookmarks from a CSV file. Rows with an empty
// URL are skipped; existing bookmarks with the same URL are overwritten.
func (i *Importer) ImportBookmarks(ctx context.Context, csvPath string) error {
	log.Info().Str("csv", csvPath).Msg("Starting bookmark import")

	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	if err := i.parseAndImport(ctx, f); err != nil {
		return fmt.Errorf("failed to import bookmarks: %w", err)
	}

	log.Info().Msg("Import completed successfully")
	return nil
}

func (i *Importer) parseAndImport(ctx context.Context, csvData io.Reader) error {
	reader := csv.NewReader(csvData)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	urlIdx := findColumnIndex(header, "url")
	if urlIdx < 0 {
		return fmt.Errorf("required column 'url' not found in CSV header")
	}
	titleIdx := findColumnIndex(header, "title")
	descriptionIdx := findColumnIndex(header, "description")
	imageURLIdx := findColumnIndex(header, "image_url")
	publishedAtIdx := findColumnIndex(header, "published_at")
	sourceIdx := findColumnIndex(header, "source")

	lineCount := 1 // Header was already read
	successCount := 0
	var importErrors []string

	for {
		lineCount++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn().Err(err).Int("line", lineCount).Msg("Error reading CSV line")
			importErrors = append(importErrors, fmt.Sprintf("line %d: %v", lineCount, err))
			continue
		}

		article := models.Article{
			URL:         safeGetValue(record, urlIdx),
			Title:       safeGetValue(record, titleIdx),
			Description: safeGetValue(record, descriptionIdx),
			ImageURL:    safeGetValue(record, imageURLIdx),
			PublishedAt: safeGetValue(record, publishedAtIdx),
			Source:      safeGetValue(record, sourceIdx),
		}

		if article.URL == "" {
			log.Warn().Int("line", lineCount).Msg("Skipping row with empty URL")
			importErrors = append(importErrors, fmt.Sprintf("line %d: empty URL", lineCount))
			continue
		}

		if err := i.store.Add(ctx, article); err != nil {
			log.Error().Err(err).Int("line", lineCount).Str("url", article.URL).Msg("Failed to save bookmark")
			importErrors = append(importErrors, fmt.Sprintf("line %d: %v", lineCount, err))
			continue
		}

		successCount++
	}

	log.Info().
		Int("total", lineCount-2).
		Int("success", successCount).
		Int("errors", len(importErrors)).
		Msg("Import summary")

	fmt.Printf("Imported %d bookmarks successfully\n", successCount)
	if len(importErrors) > 0 {
		fmt.Printf("Encountered %d errors:\n", len(importErrors))
		for _, e := range importErrors {
			fmt.Printf("  - %s\n", e)
		}
	}

	return nil
}

func findColumnIndex(header []string, columnName string) int {
	for i, col := range header {
		if strings.EqualFold(col, columnName) {
			return i
		}
	}
	return -1
}

// safeGetValue returns the record value at the given index, or an empty
// string when the column is missing from the row.
func safeGetValue(record []string, index int) string {
	if index >= 0 && index < len(record) {
		return record[index]
	}
	return ""
}
