package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"sharebin/internal/domain"
)

// MemoryRepository is an in-memory Repository. It backs tests and throwaway
// runs; durable installs use the badger implementation.
type MemoryRepository struct {
	mu       sync.RWMutex
	items    map[string]domain.Item
	watchers map[int]chan struct{}
	nextID   int
}

// NewMemoryRepository creates an empty in-memory store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items:    make(map[string]domain.Item),
		watchers: make(map[int]chan struct{}),
	}
}

func (r *MemoryRepository) notifyLocked() {
	for _, ch := range r.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (r *MemoryRepository) Upsert(ctx context.Context, item domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
	r.notifyLocked()
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if it, ok := r.items[id]; ok {
		return &it, nil
	}
	return nil, nil
}

func (r *MemoryRepository) GetAllOnce(ctx context.Context) ([]domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Item, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) Search(ctx context.Context, query string) ([]domain.Item, error) {
	items, err := r.GetAllOnce(ctx)
	if err != nil {
		return nil, err
	}
	return filterByQuery(items, query), nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	r.notifyLocked()
	return nil
}

func (r *MemoryRepository) DeleteBulk(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.items, id)
	}
	r.notifyLocked()
	return nil
}

func (r *MemoryRepository) mutate(id string, fn func(*domain.Item)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return
	}
	fn(&it)
	r.items[id] = it
	r.notifyLocked()
}

func (r *MemoryRepository) SetPinned(ctx context.Context, id string, pinned bool) error {
	r.mutate(id, func(it *domain.Item) { it.Pinned = pinned })
	return nil
}

func (r *MemoryRepository) SetPinnedBulk(ctx context.Context, ids []string, pinned bool) error {
	for _, id := range ids {
		r.mutate(id, func(it *domain.Item) { it.Pinned = pinned })
	}
	return nil
}

func (r *MemoryRepository) SetReminder(ctx context.Context, id string, at *time.Time) error {
	r.mutate(id, func(it *domain.Item) { it.ReminderAt = at })
	return nil
}

func (r *MemoryRepository) UpdateLabel(ctx context.Context, id string, label string) error {
	r.mutate(id, func(it *domain.Item) { it.Label = label })
	return nil
}

func (r *MemoryRepository) Watch(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)

	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.watchers[id] = ch
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		delete(r.watchers, id)
		r.mu.Unlock()
		close(ch)
	}()
	return ch
}

func (r *MemoryRepository) Close() error { return nil }

// filterByQuery applies the store-level search contract: case-insensitive
// substring match against text, cleaned text or label; blank matches all.
func filterByQuery(items []domain.Item, query string) []domain.Item {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}
	matched := items[:0]
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Text), q) ||
			strings.Contains(strings.ToLower(it.CleanedText), q) ||
			strings.Contains(strings.ToLower(it.Label), q) {
			matched = append(matched, it)
		}
	}
	return matched
}
