// Package repository holds the process-local knowledge store. Each store is
// an explicit instance owned by its caller; there is no package-level
// singleton, so independent stores can coexist in one process.
package repository

import (
	"sort"
	"sync"

	"github.com/groundline-ai/groundline/internal/domain"
)

// KnowledgeRepository is an in-memory id -> KnowledgeItem store. Mutations
// are atomic per id; there are no multi-key transactions, so a Clear racing
// an Add resolves last-writer-wins.
type KnowledgeRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.KnowledgeItem
}

// NewKnowledgeRepository creates an empty KnowledgeRepository.
func NewKnowledgeRepository() *KnowledgeRepository {
	return &KnowledgeRepository{
		items: make(map[string]*domain.KnowledgeItem),
	}
}

// Add inserts an item, overwriting any existing item with the same id, and
// returns the id.
func (r *KnowledgeRepository) Add(item *domain.KnowledgeItem) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
	return item.ID
}

// Get returns the item with the given id.
func (r *KnowledgeRepository) Get(id string) (*domain.KnowledgeItem, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	return item, ok
}

// List returns all items ordered most-recent first, ties broken by id for
// deterministic output.
func (r *KnowledgeRepository) List() []*domain.KnowledgeItem {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*domain.KnowledgeItem, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Timestamp != items[j].Timestamp {
			return items[i].Timestamp > items[j].Timestamp
		}
		return items[i].ID < items[j].ID
	})
	return items
}

// Delete removes the item with the given id, reporting whether it existed.
// Deleting an unknown id is a no-op.
func (r *KnowledgeRepository) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return false
	}
	delete(r.items, id)
	return true
}

// Clear removes every item and returns how many were removed.
func (r *KnowledgeRepository) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := len(r.items)
	r.items = make(map[string]*domain.KnowledgeItem)
	return removed
}

// Len returns the number of stored items.
func (r *KnowledgeRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// ListMissingEmbeddings returns items that carry no embedding, oldest first,
// for the backfill worker.
func (r *KnowledgeRepository) ListMissingEmbeddings() []*domain.KnowledgeItem {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []*domain.KnowledgeItem
	for _, item := range r.items {
		if len(item.Embedding) == 0 {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Timestamp != items[j].Timestamp {
			return items[i].Timestamp < items[j].Timestamp
		}
		return items[i].ID < items[j].ID
	})
	return items
}

// UpdateEmbedding attaches an embedding to the item with the given id,
// reporting whether the item still exists.
func (r *KnowledgeRepository) UpdateEmbedding(id string, embedding []float32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return false
	}
	item.Embedding = embedding
	return true
}
