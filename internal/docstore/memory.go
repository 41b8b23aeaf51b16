package docstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/stageworks/backstage/pkg/content"
)

// Compile-time interface check.
var _ Store = (*Memory)(nil)

// Memory is an in-process Store used by tests and by components that need
// a store before any backend is configured. Each call can be made to fail
// through the Fail map, which is how refresh fault-isolation is exercised.
type Memory struct {
	mu         sync.Mutex
	items      map[string]map[string]content.Item // collection -> id -> item
	singletons map[string]json.RawMessage         // namespace/key -> blob

	// Fail maps a collection (or namespace/key) to an error returned by
	// every operation touching it. Nil entries behave normally.
	Fail map[string]error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		items:      make(map[string]map[string]content.Item),
		singletons: make(map[string]json.RawMessage),
		Fail:       make(map[string]error),
	}
}

func (m *Memory) Create(ctx context.Context, collection string, item content.Item) (string, error) {
	if !content.ValidCollection(collection) {
		return "", content.ErrInvalidCollection
	}
	if err := item.Validate(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Fail[collection]; err != nil {
		return "", err
	}

	id := uuid.NewString()
	item.ID = id
	if m.items[collection] == nil {
		m.items[collection] = make(map[string]content.Item)
	}
	m.items[collection][id] = item
	return id, nil
}

func (m *Memory) ListAll(ctx context.Context, collection string) ([]content.Item, error) {
	if !content.ValidCollection(collection) {
		return nil, content.ErrInvalidCollection
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Fail[collection]; err != nil {
		return nil, err
	}

	var items []content.Item
	for _, it := range m.items[collection] {
		items = append(items, it)
	}
	return items, nil
}

func (m *Memory) DeleteByID(ctx context.Context, collection, id string) error {
	if !content.ValidCollection(collection) {
		return content.ErrInvalidCollection
	}
	if id == "" {
		return content.ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Fail[collection]; err != nil {
		return err
	}

	if _, ok := m.items[collection][id]; !ok {
		return content.ErrNotFound
	}
	delete(m.items[collection], id)
	return nil
}

func (m *Memory) PutSingleton(ctx context.Context, namespace, key string, blob json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Fail[namespace+"/"+key]; err != nil {
		return err
	}

	stored := make(json.RawMessage, len(blob))
	copy(stored, blob)
	m.singletons[namespace+"/"+key] = stored
	return nil
}

func (m *Memory) GetSingleton(ctx context.Context, namespace, key string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Fail[namespace+"/"+key]; err != nil {
		return nil, err
	}

	blob, ok := m.singletons[namespace+"/"+key]
	if !ok {
		return nil, content.ErrSingletonNotFound
	}
	return blob, nil
}

func (m *Memory) Close() error { return nil }
