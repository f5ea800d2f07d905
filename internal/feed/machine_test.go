package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdeck/reader/internal/models"
	"newsdeck/reader/internal/newsapi"
)

// stubClient implements Client with swappable behavior per test.
type stubClient struct {
	headlines func(ctx context.Context, category string) ([]models.Article, error)
	search    func(ctx context.Context, query string) ([]models.Article, error)
}

func (s *stubClient) TopHeadlines(ctx context.Context, category string) ([]models.Article, error) {
	return s.headlines(ctx, category)
}

func (s *stubClient) Search(ctx context.Context, query string) ([]models.Article, error) {
	return s.search(ctx, query)
}

func sampleArticles(urls ...string) []models.Article {
	articles := make([]models.Article, 0, len(urls))
	for _, u := range urls {
		articles = append(articles, models.Article{Title: "title " + u, URL: u})
	}
	return articles
}

// awaitStatus drains the subscription channel until the wanted status
// shows up.
func awaitStatus(t *testing.T, sub <-chan Snapshot, want Status) Snapshot {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case s := <-sub:
			if s.Status == want {
				return s
			}
		case <-deadline:
			t.Fatalf("timed out waiting for status %s", want)
		}
	}
}

func TestMachineStartsIdle(t *testing.T) {
	m := NewMachine(&stubClient{})
	assert.Equal(t, StatusIdle, m.Current().Status)
}

func TestHeadlinesSuccessTransitions(t *testing.T) {
	want := sampleArticles("https://example.com/1", "https://example.com/2", "https://example.com/3")
	client := &stubClient{
		headlines: func(ctx context.Context, category string) ([]models.Article, error) {
			assert.Equal(t, "business", category)
			return want, nil
		},
	}

	m := NewMachine(client)
	sub := m.Subscribe()

	m.RequestHeadlines(context.Background(), "business")

	awaitStatus(t, sub, StatusLoading)
	loaded := awaitStatus(t, sub, StatusLoaded)

	// Client order is preserved, no re-sorting
	assert.Equal(t, want, loaded.Articles)
	assert.Equal(t, want, m.Current().Articles)
}

func TestSearchFailureProducesErrorState(t *testing.T) {
	client := &stubClient{
		search: func(ctx context.Context, query string) ([]models.Article, error) {
			return nil, &newsapi.FetchError{Kind: newsapi.ErrNetwork, Err: errors.New("connection refused")}
		},
	}

	m := NewMachine(client)
	sub := m.Subscribe()

	m.RequestSearch(context.Background(), "markets")

	failed := awaitStatus(t, sub, StatusError)
	assert.Equal(t, "Failed to search news", failed.Message)
	assert.Empty(t, failed.Articles)
}

func TestHeadlinesFailureMessage(t *testing.T) {
	client := &stubClient{
		headlines: func(ctx context.Context, category string) ([]models.Article, error) {
			return nil, &newsapi.FetchError{Kind: newsapi.ErrTimeout, Err: errors.New("deadline exceeded")}
		},
	}

	m := NewMachine(client)
	m.RequestHeadlines(context.Background(), "")
	m.Wait()

	current := m.Current()
	assert.Equal(t, StatusError, current.Status)
	assert.Equal(t, "Failed to load news", current.Message)
}

func TestHeadlinesThenFailedSearchScenario(t *testing.T) {
	client := &stubClient{
		headlines: func(ctx context.Context, category string) ([]models.Article, error) {
			return sampleArticles("https://example.com/1", "https://example.com/2", "https://example.com/3"), nil
		},
		search: func(ctx context.Context, query string) ([]models.Article, error) {
			return nil, &newsapi.FetchError{Kind: newsapi.ErrNetwork, Err: errors.New("no route to host")}
		},
	}

	m := NewMachine(client)

	m.RequestHeadlines(context.Background(), "business")
	m.Wait()
	require.Equal(t, StatusLoaded, m.Current().Status)
	require.Len(t, m.Current().Articles, 3)

	m.RequestSearch(context.Background(), "markets")
	m.Wait()
	assert.Equal(t, StatusError, m.Current().Status)
	assert.Equal(t, "Failed to search news", m.Current().Message)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	releaseSlow := make(chan struct{})
	slowArticles := sampleArticles("https://example.com/stale")
	fastArticles := sampleArticles("https://example.com/fresh")

	client := &stubClient{
		headlines: func(ctx context.Context, category string) ([]models.Article, error) {
			<-releaseSlow
			return slowArticles, nil
		},
		search: func(ctx context.Context, query string) ([]models.Article, error) {
			return fastArticles, nil
		},
	}

	m := NewMachine(client)

	// Request A stalls inside the client; request B is issued afterwards
	// and completes first.
	m.RequestHeadlines(context.Background(), "")
	m.RequestSearch(context.Background(), "fresh")

	// Let B settle, then let A's stale completion arrive late.
	sub := m.Subscribe()
	if m.Current().Status != StatusLoaded {
		awaitStatus(t, sub, StatusLoaded)
	}
	close(releaseSlow)
	m.Wait()

	current := m.Current()
	require.Equal(t, StatusLoaded, current.Status)
	assert.Equal(t, fastArticles, current.Articles, "stale completion must not clobber the newer result")
}

func TestLatestOfManyConcurrentRequestsWins(t *testing.T) {
	release := make(chan struct{})
	client := &stubClient{
		search: func(ctx context.Context, query string) ([]models.Article, error) {
			if query != "last" {
				<-release
			}
			return sampleArticles("https://example.com/" + query), nil
		},
	}

	m := NewMachine(client)

	m.RequestSearch(context.Background(), "first")
	m.RequestSearch(context.Background(), "second")
	m.RequestSearch(context.Background(), "last")

	sub := m.Subscribe()
	if m.Current().Status != StatusLoaded {
		awaitStatus(t, sub, StatusLoaded)
	}
	close(release)
	m.Wait()

	current := m.Current()
	require.Equal(t, StatusLoaded, current.Status)
	require.Len(t, current.Articles, 1)
	assert.Equal(t, "https://example.com/last", current.Articles[0].URL)
}

func TestSlowSubscriberDoesNotBlockTransitions(t *testing.T) {
	client := &stubClient{
		headlines: func(ctx context.Context, category string) ([]models.Article, error) {
			return sampleArticles("https://example.com/1"), nil
		},
	}

	m := NewMachine(client)
	m.Subscribe() // Never read from; publishing must not stall on it

	for i := 0; i < subscriberBuffer*3; i++ {
		m.RequestHeadlines(context.Background(), "")
		m.Wait()
	}

	assert.Equal(t, StatusLoaded, m.Current().Status)
}
