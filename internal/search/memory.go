package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Index for local runs and tests. Search is a
// case-insensitive substring match; prefix hits rank first.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]map[string]Document
}

func NewMemory() *Memory {
	return &Memory{docs: map[string]map[string]Document{}}
}

func (m *Memory) Upsert(_ context.Context, collection, id string, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.docs[collection]
	if !ok {
		c = map[string]Document{}
		m.docs[collection] = c
	}
	cp := make(Document, len(doc))
	for k, v := range doc {
		cp[k] = v
	}
	c[id] = cp
	return nil
}

func (m *Memory) DeleteByMatch(_ context.Context, collection, field string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, doc := range m.docs[collection] {
		if same(doc[field], value) {
			delete(m.docs[collection], id)
		}
	}
	return nil
}

func (m *Memory) UpdateByMatch(_ context.Context, collection, field string, value any, set Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, doc := range m.docs[collection] {
		if same(doc[field], value) {
			for k, v := range set {
				doc[k] = v
			}
		}
	}
	return nil
}

func (m *Memory) Search(_ context.Context, collection, field, query string, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	type hit struct {
		id     string
		prefix bool
	}
	var hits []hit
	for id, doc := range m.docs[collection] {
		v := strings.ToLower(fmt.Sprint(doc[field]))
		if q == "" || !strings.Contains(v, q) {
			continue
		}
		hits = append(hits, hit{id: id, prefix: strings.HasPrefix(v, q)})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].prefix != hits[j].prefix {
			return hits[i].prefix
		}
		return hits[i].id < hits[j].id
	})

	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		if limit > 0 && len(ids) == limit {
			break
		}
		ids = append(ids, h.id)
	}
	return ids, nil
}

func (m *Memory) EnsureCollections(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name := range collectionSettings {
		if _, ok := m.docs[name]; !ok {
			m.docs[name] = map[string]Document{}
		}
	}
	return nil
}

// Get returns a copy of a stored document.
func (m *Memory) Get(collection, id string) (Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[collection][id]
	if !ok {
		return nil, false
	}
	cp := make(Document, len(doc))
	for k, v := range doc {
		cp[k] = v
	}
	return cp, true
}

// Len counts the documents in collection.
func (m *Memory) Len(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs[collection])
}

func same(a, b any) bool { return fmt.Sprint(a) == fmt.Sprint(b) }
