package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"newsdeck/reader/internal/bookmarks"
	"newsdeck/reader/internal/feed"
	"newsdeck/reader/internal/models"
)

// FeedHandler exposes the feed state machine over HTTP.
type FeedHandler struct {
	machine *feed.Machine
}

// NewFeedHandler creates a new handler instance.
func NewFeedHandler(machine *feed.Machine) *FeedHandler {
	return &FeedHandler{machine: machine}
}

// feedResponse is the wire shape of a feed snapshot.
type feedResponse struct {
	Status   string           `json:"status"`
	Articles []models.Article `json:"articles,omitempty"`
	Message  string           `json:"message,omitempty"`
}

func snapshotResponse(s feed.Snapshot) feedResponse {
	return feedResponse{
		Status:   s.Status.String(),
		Articles: s.Articles,
		Message:  s.Message,
	}
}

// GetFeed returns the current feed snapshot.
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, snapshotResponse(h.machine.Current()))
}

// RequestHeadlines triggers a headlines fetch. The category query
// parameter is optional.
func (h *FeedHandler) RequestHeadlines(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	hlog.FromRequest(r).Debug().Str("category", category).Msg("Headlines request accepted")

	// The fetch outlives this HTTP request, so it must not inherit the
	// request context.
	h.machine.RequestHeadlines(context.Background(), category)
	writeJSON(w, r, http.StatusAccepted, snapshotResponse(h.machine.Current()))
}

// RequestSearch triggers a search fetch. The q query parameter is
// required.
func (h *FeedHandler) RequestSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "Missing required parameter: 'q'", http.StatusBadRequest)
		return
	}
	hlog.FromRequest(r).Debug().Str("query", query).Msg("Search request accepted")

	h.machine.RequestSearch(context.Background(), query)
	writeJSON(w, r, http.StatusAccepted, snapshotResponse(h.machine.Current()))
}

// BookmarksHandler exposes the bookmark store over HTTP.
type BookmarksHandler struct {
	store *bookmarks.Store
}

// NewBookmarksHandler creates a new handler instance.
func NewBookmarksHandler(store *bookmarks.Store) *BookmarksHandler {
	return &BookmarksHandler{store: store}
}

// List returns all bookmarked articles.
func (h *BookmarksHandler) List(w http.ResponseWriter, r *http.Request) {
	articles, err := h.store.List(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "Failed to list bookmarks")
		return
	}
	if articles == nil {
		articles = []models.Article{}
	}
	writeJSON(w, r, http.StatusOK, articles)
}

// Put saves the article in the request body as a bookmark. Re-bookmarking
// an existing URL overwrites the stored fields.
func (h *BookmarksHandler) Put(w http.ResponseWriter, r *http.Request) {
	var article models.Article
	if err := json.NewDecoder(r.Body).Decode(&article); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Invalid bookmark body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if article.URL == "" {
		http.Error(w, "Article 'url' must not be empty", http.StatusBadRequest)
		return
	}

	if err := h.store.Add(r.Context(), article); err != nil {
		writeStoreError(w, r, err, "Failed to save bookmark")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes the bookmark named by the url query parameter. Removing
// an absent bookmark succeeds.
func (h *BookmarksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		http.Error(w, "Missing required parameter: 'url'", http.StatusBadRequest)
		return
	}

	if err := h.store.Remove(r.Context(), url); err != nil {
		writeStoreError(w, r, err, "Failed to remove bookmark")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Status reports whether the url query parameter is bookmarked.
func (h *BookmarksHandler) Status(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		http.Error(w, "Missing required parameter: 'url'", http.StatusBadRequest)
		return
	}

	bookmarked, err := h.store.IsBookmarked(r.Context(), url)
	if err != nil {
		writeStoreError(w, r, err, "Failed to check bookmark")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"url":        url,
		"bookmarked": bookmarked,
	})
}

// Export streams all bookmarks as a CSV file.
func (h *BookmarksHandler) Export(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)

	articles, err := h.store.List(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "Failed to export bookmarks")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=bookmarks.csv")

	csvWriter := csv.NewWriter(w)

	header := []string{"url", "title", "description", "image_url", "published_at", "source"}
	if err := csvWriter.Write(header); err != nil {
		log.Error().Err(err).Msg("Failed to write CSV header")
		http.Error(w, "Error generating CSV", http.StatusInternalServerError)
		return
	}

	for _, a := range articles {
		record := []string{a.URL, a.Title, a.Description, a.ImageURL, a.PublishedAt, a.Source}
		if err := csvWriter.Write(record); err != nil {
			log.Error().Err(err).Msg("Failed to write CSV record")
			http.Error(w, "Error generating CSV", http.StatusInternalServerError)
			return
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		log.Error().Err(err).Msg("Error flushing CSV data")
		return
	}

	log.Info().Int("bookmark_count", len(articles)).Msg("Exported bookmarks as CSV")
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	log := hlog.FromRequest(r)

	jsonBytes, err := json.Marshal(body)
	if err != nil {
		log.Error().Err(err).Msg("Error marshaling JSON response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(jsonBytes); err != nil {
		log.Error().Err(err).Msg("Error writing JSON response body to client")
	}
}

func writeStoreError(w http.ResponseWriter, r *http.Request, err error, message string) {
	logEvent := hlog.FromRequest(r).Error().Err(err)
	var storeErr *bookmarks.StoreError
	if errors.As(err, &storeErr) {
		logEvent = logEvent.Stringer("kind", storeErr.Kind)
	}
	logEvent.Msg(message)

	http.Error(w, message, http.StatusInternalServerError)
}
