package storage

import (
	"context"
	"time"

	"sharebin/internal/domain"
)

// Repository defines the interface for item persistence. It is the single
// source of truth for item state; components never cache items across calls.
// Every individual operation is atomic, so callers need no external locking.
type Repository interface {
	// Upsert stores a new item or replaces an existing one with the same ID.
	Upsert(ctx context.Context, item domain.Item) error

	// GetByID returns the item, or (nil, nil) when no item has that ID.
	GetByID(ctx context.Context, id string) (*domain.Item, error)

	// GetAllOnce returns a snapshot of every stored item, newest first.
	// Used for restart reconciliation and as the feed's base query.
	GetAllOnce(ctx context.Context) ([]domain.Item, error)

	// Search returns items whose text, cleaned text or label contains the
	// query, case-insensitively. A blank query matches everything.
	Search(ctx context.Context, query string) ([]domain.Item, error)

	// Delete removes an item. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error
	DeleteBulk(ctx context.Context, ids []string) error

	// SetPinned updates the pinned flag. Missing IDs are silent no-ops.
	SetPinned(ctx context.Context, id string, pinned bool) error
	SetPinnedBulk(ctx context.Context, ids []string, pinned bool) error

	// SetReminder sets or clears (nil) the item's reminder time.
	SetReminder(ctx context.Context, id string, at *time.Time) error

	// UpdateLabel sets or clears the item's label. No-op when the item is gone.
	UpdateLabel(ctx context.Context, id string, label string) error

	// Watch returns a channel that receives a signal whenever any item is
	// written or deleted, until ctx is cancelled. Signals may be coalesced;
	// observers re-query the store to get the fresh snapshot.
	Watch(ctx context.Context) <-chan struct{}

	// Close gracefully shuts down the repository.
	Close() error
}
