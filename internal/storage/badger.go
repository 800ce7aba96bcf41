package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/pb"
	"github.com/sirupsen/logrus"

	"sharebin/internal/domain"
)

// itemPrefix namespaces item records inside the key space.
// Format: item:{itemID}
const itemPrefix = "item:"

// BadgerRepository implements the Repository interface using BadgerDB.
type BadgerRepository struct {
	db  *badger.DB
	log logrus.FieldLogger
}

// NewBadgerRepository opens the database at the given path and returns a
// ready-to-use repository.
func NewBadgerRepository(dbPath string, logger logrus.FieldLogger) (*BadgerRepository, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = &badgerLogger{logger.WithField("component", "badgerdb")}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db at %s: %w", dbPath, err)
	}

	return &BadgerRepository{
		db:  db,
		log: logger.WithField("component", "repository"),
	}, nil
}

// Close closes the underlying BadgerDB database.
func (r *BadgerRepository) Close() error {
	r.log.Info("Closing item store")
	if err := r.db.Close(); err != nil {
		r.log.WithError(err).Error("Error closing item store")
		return err
	}
	return nil
}

func itemKey(id string) []byte {
	return []byte(itemPrefix + id)
}

// Upsert stores or replaces an item.
func (r *BadgerRepository) Upsert(ctx context.Context, item domain.Item) error {
	if item.ID == "" {
		return errors.New("item has no id")
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(itemKey(item.ID), raw))
	})
	if err != nil {
		r.log.WithError(err).WithField("item_id", item.ID).Error("Failed to save item")
		return fmt.Errorf("failed to save item %s: %w", item.ID, err)
	}
	r.log.WithFields(logrus.Fields{"item_id": item.ID, "type": item.Type}).Debug("Item saved")
	return nil
}

// GetByID returns the item with the given id, or (nil, nil) when absent.
func (r *BadgerRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	var found *domain.Item
	err := r.db.View(func(txn *badger.Txn) error {
		entry, err := txn.Get(itemKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return entry.Value(func(val []byte) error {
			var it domain.Item
			if err := json.Unmarshal(val, &it); err != nil {
				return fmt.Errorf("failed to unmarshal item %s: %w", id, err)
			}
			found = &it
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", id, err)
	}
	return found, nil
}

// GetAllOnce returns a snapshot of every stored item, newest first.
func (r *BadgerRepository) GetAllOnce(ctx context.Context) ([]domain.Item, error) {
	var items []domain.Item
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(itemPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var item domain.Item
				if err := json.Unmarshal(val, &item); err != nil {
					return fmt.Errorf("failed to unmarshal item data for key %s: %w", string(it.Item().Key()), err)
				}
				items = append(items, item)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan items: %w", err)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// Search returns items matching the query case-insensitively against text,
// cleaned text or label. A blank query matches everything.
func (r *BadgerRepository) Search(ctx context.Context, query string) ([]domain.Item, error) {
	items, err := r.GetAllOnce(ctx)
	if err != nil {
		return nil, err
	}
	return filterByQuery(items, query), nil
}

// Delete removes an item. Deleting a missing id is a no-op.
func (r *BadgerRepository) Delete(ctx context.Context, id string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(itemKey(id))
	})
	if err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	r.log.WithField("item_id", id).Debug("Item deleted")
	return nil
}

// DeleteBulk removes all given items in one transaction.
func (r *BadgerRepository) DeleteBulk(ctx context.Context, ids []string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := txn.Delete(itemKey(id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete %d items: %w", len(ids), err)
	}
	return nil
}

// mutate applies fn to the stored item inside a single update transaction.
// A missing id is a silent no-op, matching the not-found contract.
func (r *BadgerRepository) mutate(id string, fn func(*domain.Item)) error {
	return r.db.Update(func(txn *badger.Txn) error {
		entry, err := txn.Get(itemKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		var item domain.Item
		err = entry.Value(func(val []byte) error {
			return json.Unmarshal(val, &item)
		})
		if err != nil {
			return fmt.Errorf("failed to unmarshal item %s: %w", id, err)
		}

		fn(&item)

		raw, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal item %s: %w", id, err)
		}
		return txn.SetEntry(badger.NewEntry(itemKey(id), raw))
	})
}

// SetPinned updates the pinned flag of a single item.
func (r *BadgerRepository) SetPinned(ctx context.Context, id string, pinned bool) error {
	if err := r.mutate(id, func(it *domain.Item) { it.Pinned = pinned }); err != nil {
		return fmt.Errorf("failed to set pinned on %s: %w", id, err)
	}
	return nil
}

// SetPinnedBulk updates the pinned flag for each of the given items.
func (r *BadgerRepository) SetPinnedBulk(ctx context.Context, ids []string, pinned bool) error {
	for _, id := range ids {
		if err := r.SetPinned(ctx, id, pinned); err != nil {
			return err
		}
	}
	return nil
}

// SetReminder sets or clears the reminder time of an item.
func (r *BadgerRepository) SetReminder(ctx context.Context, id string, at *time.Time) error {
	if err := r.mutate(id, func(it *domain.Item) { it.ReminderAt = at }); err != nil {
		return fmt.Errorf("failed to set reminder on %s: %w", id, err)
	}
	return nil
}

// UpdateLabel sets or clears the label of an item.
func (r *BadgerRepository) UpdateLabel(ctx context.Context, id string, label string) error {
	if err := r.mutate(id, func(it *domain.Item) { it.Label = label }); err != nil {
		return fmt.Errorf("failed to update label on %s: %w", id, err)
	}
	return nil
}

// Watch emits a signal on every write under the item prefix until ctx is
// cancelled. Badger's Subscribe delivers committed updates, which gives the
// push-based invalidation the live feed needs without polling.
func (r *BadgerRepository) Watch(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		err := r.db.Subscribe(ctx, func(kv *badger.KVList) error {
			select {
			case ch <- struct{}{}:
			default: // a signal is already pending; coalesce
			}
			return nil
		}, []pb.Match{{Prefix: []byte(itemPrefix)}})
		if err != nil && !errors.Is(err, context.Canceled) {
			r.log.WithError(err).Warn("Store subscription ended")
		}
	}()
	return ch
}

// --- BadgerDB Internal Logger ---

// badgerLogger adapts logrus.FieldLogger to Badger's logger interface.
type badgerLogger struct {
	logger logrus.FieldLogger
}

func (l *badgerLogger) Errorf(f string, v ...interface{}) {
	l.logger.Errorf(f, v...)
}
func (l *badgerLogger) Warningf(f string, v ...interface{}) {
	l.logger.Warningf(f, v...)
}
func (l *badgerLogger) Infof(f string, v ...interface{}) {
	l.logger.Infof(f, v...)
}
func (l *badgerLogger) Debugf(f string, v ...interface{}) {
	l.logger.Debugf(f, v...)
}
