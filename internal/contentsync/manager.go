// Package contentsync keeps the admin panel's view of every content
// collection and settings document in sync with the document store.
//
// A refresh fans out one fetch per collection plus one per settings key,
// all concurrent and fault-isolated: a failing fetch reports an error and
// leaves that slice's previous value in place, while its siblings update
// normally. The public site's fallback defaults are the initial values,
// so the view is never blank.
package contentsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stageworks/backstage/internal/docstore"
	"github.com/stageworks/backstage/pkg/content"
)

// maxErrorLog bounds the user-visible error log.
const maxErrorLog = 50

// State is the view state the admin UI and public endpoints render from.
// Lists are always sorted newest first.
type State struct {
	Images   []content.Item `json:"images"`
	Carousel []content.Item `json:"carousel"`
	Music    []content.Item `json:"music"`
	Events   []content.Item `json:"events"`
	Videos   []content.Item `json:"videos"`
	Ads      []content.Item `json:"ads"`

	EventsInfo content.EventsInfo `json:"eventsInfo"`
	BioInfo    content.BioInfo    `json:"bioInfo"`

	// Errors is the shared, user-visible error log. Entries accumulate
	// across refreshes, newest last, capped at maxErrorLog.
	Errors []string `json:"errors,omitempty"`

	LastRefresh time.Time `json:"lastRefresh"`
}

// List returns the slice for a collection name.
func (s *State) List(collection string) ([]content.Item, error) {
	switch collection {
	case content.CollectionImages:
		return s.Images, nil
	case content.CollectionCarousel:
		return s.Carousel, nil
	case content.CollectionMusic:
		return s.Music, nil
	case content.CollectionEvents:
		return s.Events, nil
	case content.CollectionVideos:
		return s.Videos, nil
	case content.CollectionAds:
		return s.Ads, nil
	}
	return nil, content.ErrInvalidCollection
}

func (s *State) setList(collection string, items []content.Item) {
	// An empty fetch comes back nil; keep the slice an array either way.
	if items == nil {
		items = []content.Item{}
	}
	switch collection {
	case content.CollectionImages:
		s.Images = items
	case content.CollectionCarousel:
		s.Carousel = items
	case content.CollectionMusic:
		s.Music = items
	case content.CollectionEvents:
		s.Events = items
	case content.CollectionVideos:
		s.Videos = items
	case content.CollectionAds:
		s.Ads = items
	}
}

// Manager owns the view state and the refresh machinery.
type Manager struct {
	docs   docstore.Store
	logger zerolog.Logger

	mu      sync.Mutex
	busy    bool
	pending bool
	state   State
}

// NewManager starts from the shared fallback defaults so the first render
// has content even before any store call succeeds. Lists start empty, not
// nil, so the snapshot always serializes them as arrays.
func NewManager(docs docstore.Store, logger zerolog.Logger) *Manager {
	return &Manager{
		docs:   docs,
		logger: logger.With().Str("component", "contentsync").Logger(),
		state: State{
			Images:     []content.Item{},
			Carousel:   []content.Item{},
			Music:      []content.Item{},
			Events:     []content.Item{},
			Videos:     []content.Item{},
			Ads:        []content.Item{},
			EventsInfo: content.DefaultEventsInfo(),
			BioInfo:    content.DefaultBioInfo(),
		},
	}
}

// Busy reports whether a refresh is in flight.
func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy
}

// Snapshot returns a copy of the current view state. Slices are copied so
// callers can hold the snapshot across later refreshes.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyState(m.state)
}

// RefreshAll re-fetches every collection and settings document. A call
// arriving while a refresh is in flight returns false and coalesces into
// one follow-up pass that the in-flight call runs before finishing, so a
// mutation's refresh is never lost to a racing manual refresh.
func (m *Manager) RefreshAll(ctx context.Context) bool {
	m.mu.Lock()
	if m.busy {
		m.pending = true
		m.mu.Unlock()
		return false
	}
	m.busy = true
	m.mu.Unlock()

	for {
		m.refreshOnce(ctx)

		m.mu.Lock()
		if !m.pending {
			m.busy = false
			m.mu.Unlock()
			return true
		}
		m.pending = false
		m.mu.Unlock()
	}
}

// refreshOnce runs a single fan-out pass. The caller holds the busy flag.
func (m *Manager) refreshOnce(ctx context.Context) {
	type listResult struct {
		collection string
		items      []content.Item
		err        error
	}
	results := make(chan listResult, len(content.Collections()))

	var wg sync.WaitGroup
	for _, collection := range content.Collections() {
		wg.Add(1)
		go func(collection string) {
			defer wg.Done()
			items, err := m.docs.ListAll(ctx, collection)
			if err == nil {
				content.SortByCreatedAt(items)
			}
			results <- listResult{collection: collection, items: items, err: err}
		}(collection)
	}

	type settingsResult struct {
		key  string
		blob json.RawMessage
		err  error
	}
	settingsResults := make(chan settingsResult, 2)
	for _, key := range []string{content.KeyEventsInfo, content.KeyBioInfo} {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			blob, err := m.docs.GetSingleton(ctx, content.SettingsNamespace, key)
			settingsResults <- settingsResult{key: key, blob: blob, err: err}
		}(key)
	}

	wg.Wait()
	close(results)
	close(settingsResults)

	m.mu.Lock()
	defer m.mu.Unlock()

	for r := range results {
		if r.err != nil {
			m.logger.Error().Err(r.err).Str("collection", r.collection).Msg("collection fetch failed")
			m.appendErrorLocked(fmt.Sprintf("error al cargar %s: %v", r.collection, r.err))
			continue
		}
		m.state.setList(r.collection, r.items)
	}

	for r := range settingsResults {
		switch {
		case r.err == nil:
			if err := m.applySettingsLocked(r.key, r.blob); err != nil {
				m.appendErrorLocked(fmt.Sprintf("error al cargar %s: %v", r.key, err))
			}
		case errors.Is(r.err, content.ErrSingletonNotFound):
			// No document yet: fall back to the shared default.
			m.applyDefaultLocked(r.key)
		default:
			m.logger.Error().Err(r.err).Str("key", r.key).Msg("settings fetch failed")
			m.appendErrorLocked(fmt.Sprintf("error al cargar %s: %v", r.key, r.err))
		}
	}

	m.state.LastRefresh = time.Now()
}

func (m *Manager) applySettingsLocked(key string, blob json.RawMessage) error {
	switch key {
	case content.KeyEventsInfo:
		var info content.EventsInfo
		if err := json.Unmarshal(blob, &info); err != nil {
			return err
		}
		m.state.EventsInfo = info
	case content.KeyBioInfo:
		var info content.BioInfo
		if err := json.Unmarshal(blob, &info); err != nil {
			return err
		}
		m.state.BioInfo = info
	}
	return nil
}

func (m *Manager) applyDefaultLocked(key string) {
	switch key {
	case content.KeyEventsInfo:
		m.state.EventsInfo = content.DefaultEventsInfo()
	case content.KeyBioInfo:
		m.state.BioInfo = content.DefaultBioInfo()
	}
}

func (m *Manager) appendErrorLocked(msg string) {
	m.state.Errors = append(m.state.Errors, msg)
	if len(m.state.Errors) > maxErrorLog {
		m.state.Errors = m.state.Errors[len(m.state.Errors)-maxErrorLog:]
	}
}

// ClearErrors empties the user-visible error log.
func (m *Manager) ClearErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Errors = nil
}

func copyState(s State) State {
	out := s
	out.Images = copyItems(s.Images)
	out.Carousel = copyItems(s.Carousel)
	out.Music = copyItems(s.Music)
	out.Events = copyItems(s.Events)
	out.Videos = copyItems(s.Videos)
	out.Ads = copyItems(s.Ads)
	out.Errors = append([]string(nil), s.Errors...)
	out.BioInfo.Paragraphs = append([]string(nil), s.BioInfo.Paragraphs...)
	out.BioInfo.Highlights = append([]content.Highlight(nil), s.BioInfo.Highlights...)
	return out
}

// copyItems returns an independent, never-nil copy of a list slice.
func copyItems(items []content.Item) []content.Item {
	out := make([]content.Item, len(items))
	copy(out, items)
	return out
}
