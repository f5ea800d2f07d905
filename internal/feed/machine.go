// Package feed sequences loading requests against the upstream client
// and holds the single current feed state. The machine is the only writer
// of that state; presentation reads it via Current or Subscribe.
package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"newsdeck/reader/internal/models"
	"newsdeck/reader/internal/newsapi"
)

// Status enumerates the machine's states.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is one observable feed state. Articles is set only for
// StatusLoaded, Message only for StatusError.
type Snapshot struct {
	Status   Status
	Articles []models.Article
	Message  string
}

// User-presentable messages for failed requests. The underlying error
// kind is kept in the logs, not in the snapshot.
const (
	headlinesFailedMessage = "Failed to load news"
	searchFailedMessage    = "Failed to search news"
)

// Client is the upstream surface the machine drives.
type Client interface {
	TopHeadlines(ctx context.Context, category string) ([]models.Article, error)
	Search(ctx context.Context, query string) ([]models.Article, error)
}

const subscriberBuffer = 8

// Machine orchestrates feed requests. Each request immediately moves the
// state to loading and runs the client call in its own goroutine; the
// completion that belongs to the most recently issued request wins, older
// completions are discarded. In-flight calls are never cancelled, their
// results are simply dropped.
type Machine struct {
	client Client

	mu      sync.Mutex
	latest  uint64
	current Snapshot
	subs    []chan Snapshot

	inflight sync.WaitGroup
}

// NewMachine creates a machine in the idle state.
func NewMachine(client Client) *Machine {
	return &Machine{
		client:  client,
		current: Snapshot{Status: StatusIdle},
	}
}

// Current returns the machine's current snapshot.
func (m *Machine) Current() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Subscribe returns a channel receiving every state transition from now
// on. Publishing never blocks: a subscriber that falls behind misses
// intermediate snapshots and can resync via Current. Subscriptions last
// for the machine's lifetime.
func (m *Machine) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, subscriberBuffer)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

// RequestHeadlines transitions to loading and fetches headlines for the
// given category (empty means all categories).
func (m *Machine) RequestHeadlines(ctx context.Context, category string) {
	id := m.begin()
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		articles, err := m.client.TopHeadlines(ctx, category)
		m.complete(id, articles, err, headlinesFailedMessage)
	}()
}

// RequestSearch transitions to loading and fetches articles matching the
// given query.
func (m *Machine) RequestSearch(ctx context.Context, query string) {
	id := m.begin()
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		articles, err := m.client.Search(ctx, query)
		m.complete(id, articles, err, searchFailedMessage)
	}()
}

// Wait blocks until every in-flight request has completed. Used during
// shutdown and by tests that need a settled state.
func (m *Machine) Wait() {
	m.inflight.Wait()
}

// begin assigns the next request id and publishes the loading state.
// Issuing the id and publishing happen under one lock so a completion of
// an earlier request can never interleave between them.
func (m *Machine) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest++
	m.setLocked(Snapshot{Status: StatusLoading})
	return m.latest
}

// complete applies a request's outcome unless a newer request has been
// issued since, in which case the result is stale and dropped.
func (m *Machine) complete(id uint64, articles []models.Article, err error, failMessage string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != m.latest {
		log.Debug().
			Uint64("request_id", id).
			Uint64("latest_id", m.latest).
			Msg("Discarding stale feed response")
		return
	}

	if err != nil {
		logEvent := log.Warn().Err(err).Uint64("request_id", id)
		var fetchErr *newsapi.FetchError
		if errors.As(err, &fetchErr) {
			logEvent = logEvent.Stringer("kind", fetchErr.Kind)
		}
		logEvent.Msg("Feed request failed")

		m.setLocked(Snapshot{Status: StatusError, Message: failMessage})
		return
	}

	// Articles keep the order the client returned, no re-sorting
	m.setLocked(Snapshot{Status: StatusLoaded, Articles: articles})
}

// setLocked replaces the current snapshot and notifies subscribers.
// Callers must hold m.mu.
func (m *Machine) setLocked(s Snapshot) {
	m.current = s
	for _, ch := range m.subs {
		select {
		case ch <- s:
		default:
			// Subscriber is behind, it can resync via Current
		}
	}
}
