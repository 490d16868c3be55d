package items

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-webedit/pkg/interfaces"
)

type memoryKey struct {
	id       uuid.UUID
	language string
	version  int
}

// MemoryStore keeps items in process. Intended for tests and single node demos.
type MemoryStore struct {
	mu              sync.RWMutex
	items           map[memoryKey]*interfaces.ContentItem
	defaultLanguage string
}

// NewMemoryStore constructs an empty store. defaultLanguage selects the
// language preferred by GetLatestItem.
func NewMemoryStore(defaultLanguage string) *MemoryStore {
	return &MemoryStore{
		items:           make(map[memoryKey]*interfaces.ContentItem),
		defaultLanguage: strings.TrimSpace(defaultLanguage),
	}
}

// Put stores a copy of item, replacing any existing language/version.
func (m *MemoryStore) Put(item *interfaces.ContentItem) {
	if item == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[memoryKey{item.ID, item.Language, item.Version}] = cloneItem(item)
}

func (m *MemoryStore) GetItem(_ context.Context, id uuid.UUID, language string, version int) (*interfaces.ContentItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.items[memoryKey{id, language, version}]
	if !ok {
		return nil, &NotFoundError{Resource: "item", Key: itemKey(id, language, version)}
	}
	return cloneItem(record), nil
}

func (m *MemoryStore) GetLatestItem(_ context.Context, id uuid.UUID) (*interfaces.ContentItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	candidates := make([]*interfaces.ContentItem, 0)
	for key, record := range m.items {
		if key.id == id {
			candidates = append(candidates, record)
		}
	}
	latest := pickLatest(candidates, m.defaultLanguage)
	if latest == nil {
		return nil, &NotFoundError{Resource: "item", Key: id.String()}
	}
	return cloneItem(latest), nil
}

func (m *MemoryStore) WriteFields(_ context.Context, write Write) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey{write.ItemID, write.Language, write.Version}
	record, ok := m.items[key]
	if !ok {
		return &NotFoundError{Resource: "item", Key: itemKey(write.ItemID, write.Language, write.Version)}
	}
	updated := cloneItem(record)
	for fieldID, value := range write.Values {
		field, ok := updated.Fields[fieldID]
		if !ok {
			return &NotFoundError{Resource: "field", Key: fieldID.String()}
		}
		field.Value = value
		field.ContainsStandardValue = false
	}
	if write.Revision != "" {
		updated.Revision = write.Revision
	}
	m.items[key] = updated
	return nil
}

// pickLatest returns the highest version, preferring the default language.
func pickLatest(candidates []*interfaces.ContentItem, defaultLanguage string) *interfaces.ContentItem {
	var best *interfaces.ContentItem
	for _, candidate := range candidates {
		if best == nil || better(candidate, best, defaultLanguage) {
			best = candidate
		}
	}
	return best
}

func better(a, b *interfaces.ContentItem, defaultLanguage string) bool {
	aDefault := defaultLanguage != "" && strings.EqualFold(a.Language, defaultLanguage)
	bDefault := defaultLanguage != "" && strings.EqualFold(b.Language, defaultLanguage)
	if aDefault != bDefault {
		return aDefault
	}
	if a.Version != b.Version {
		return a.Version > b.Version
	}
	return a.Language < b.Language
}
