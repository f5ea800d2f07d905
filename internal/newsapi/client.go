// Package newsapi implements the client for the upstream headlines API.
// It is the only place that understands the upstream JSON shape; every
// item is normalized into a models.Article with null-tolerant defaults.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"newsdeck/reader/internal/models"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultReceiveTimeout = 10 * time.Second
)

// Config holds settings for the upstream client.
type Config struct {
	BaseURL string
	APIKey  string
	Country string

	// Optional timeouts (will use 10s defaults if not set)
	ConnectTimeout time.Duration
	ReceiveTimeout time.Duration
}

// Client executes requests against the upstream API. It is stateless
// across calls and safe for concurrent use; construct one per process and
// reuse it.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a new upstream client from the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.ReceiveTimeout <= 0 {
		cfg.ReceiveTimeout = defaultReceiveTimeout
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: cfg.ConnectTimeout,
		}).DialContext,
		ResponseHeaderTimeout: cfg.ReceiveTimeout,
	}

	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.ReceiveTimeout,
		},
	}
}

// TopHeadlines fetches the current headlines for the configured country.
// An empty category requests all categories.
func (c *Client) TopHeadlines(ctx context.Context, category string) ([]models.Article, error) {
	params := url.Values{}
	params.Set("country", c.cfg.Country)
	if category != "" {
		params.Set("category", category)
	}
	return c.get(ctx, "/top-headlines", params)
}

// Search fetches articles matching the given query across all sources.
func (c *Client) Search(ctx context.Context, query string) ([]models.Article, error) {
	params := url.Values{}
	params.Set("q", query)
	return c.get(ctx, "/everything", params)
}

// Upstream payload shapes. Pointers keep null and missing fields apart
// from the zero value so mapping can substitute "" without ever failing.
type sourcePayload struct {
	Name *string `json:"name"`
}

type articlePayload struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	URL         *string        `json:"url"`
	URLToImage  *string        `json:"urlToImage"`
	PublishedAt *string        `json:"publishedAt"`
	Source      *sourcePayload `json:"source"`
}

type responsePayload struct {
	Articles []articlePayload `json:"articles"`
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]models.Article, error) {
	params.Set("apiKey", c.cfg.APIKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.cfg.BaseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: ErrNetwork, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Kind: ErrUpstream, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(err)
	}

	var payload responsePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &FetchError{Kind: ErrDecode, Err: err}
	}

	articles := lo.FilterMap(payload.Articles, func(item articlePayload, _ int) (models.Article, bool) {
		article := models.Article{
			Title:       lo.FromPtr(item.Title),
			Description: lo.FromPtr(item.Description),
			URL:         lo.FromPtr(item.URL),
			ImageURL:    lo.FromPtr(item.URLToImage),
			PublishedAt: lo.FromPtr(item.PublishedAt),
		}
		if item.Source != nil {
			article.Source = lo.FromPtr(item.Source.Name)
		}
		// URL is the record identity, items without one are unusable
		if article.URL == "" {
			return models.Article{}, false
		}
		return article, true
	})

	log.Debug().
		Str("endpoint", endpoint).
		Int("received", len(payload.Articles)).
		Int("kept", len(articles)).
		Msg("Upstream response mapped")

	return articles, nil
}
