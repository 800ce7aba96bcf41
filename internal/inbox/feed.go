package inbox

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"sharebin/internal/domain"
	"sharebin/internal/storage"
)

// DefaultDebounce is how long free-text query changes settle before a new
// store search is issued.
const DefaultDebounce = 200 * time.Millisecond

// Selection is the feed's current view choice.
type Selection struct {
	Query  string
	Filter domain.Filter
	Sort   domain.Sort
}

// Feed is a live inbox subscription. It re-derives its snapshot whenever the
// store contents change (push invalidation) or the selection changes, and
// delivers the newest snapshot on Updates. Consumers that stop listening may
// miss intermediate deliveries; only the latest snapshot is retained.
//
// Query changes are debounced, and a newly issued search supersedes any
// stale in-flight one (last query wins). Filter and sort changes re-derive
// synchronously from the latest raw snapshot. Pinned items are partitioned
// ahead of unpinned ones, with the chosen sort applied within each partition.
type Feed struct {
	repo     storage.Repository
	log      logrus.FieldLogger
	debounce time.Duration

	mu         sync.Mutex
	sel        Selection
	queryDirty bool

	changed chan struct{}
	updates chan []domain.Item
}

// NewFeed creates a feed with the given query debounce (<= 0 uses the
// default). Call Run to start it.
func NewFeed(repo storage.Repository, debounce time.Duration, logger logrus.FieldLogger) *Feed {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Feed{
		repo:     repo,
		log:      logger.WithField("component", "feed"),
		debounce: debounce,
		sel:      Selection{Filter: domain.FilterAll, Sort: domain.SortDate},
		changed:  make(chan struct{}, 1),
		updates:  make(chan []domain.Item, 1),
	}
}

// Updates delivers inbox snapshots, newest state only.
func (f *Feed) Updates() <-chan []domain.Item {
	return f.updates
}

// SetQuery replaces the free-text query. The resulting search is debounced.
func (f *Feed) SetQuery(query string) {
	f.mu.Lock()
	if f.sel.Query != query {
		f.sel.Query = query
		f.queryDirty = true
	}
	f.mu.Unlock()
	f.notify()
}

// SetFilter replaces the type filter; applied without debounce.
func (f *Feed) SetFilter(filter domain.Filter) {
	f.mu.Lock()
	f.sel.Filter = filter
	f.mu.Unlock()
	f.notify()
}

// SetSort replaces the sort key; applied without debounce.
func (f *Feed) SetSort(by domain.Sort) {
	f.mu.Lock()
	f.sel.Sort = by
	f.mu.Unlock()
	f.notify()
}

func (f *Feed) notify() {
	select {
	case f.changed <- struct{}{}:
	default:
	}
}

type queryResult struct {
	gen   uint64
	items []domain.Item
	err   error
}

// Run drives the feed until ctx is cancelled.
func (f *Feed) Run(ctx context.Context) {
	invalidate := f.repo.Watch(ctx)
	results := make(chan queryResult, 1)

	var gen uint64
	runQuery := func(query string) {
		gen++
		g := gen
		go func() {
			items, err := f.repo.Search(ctx, query)
			select {
			case results <- queryResult{gen: g, items: items, err: err}:
			case <-ctx.Done():
			}
		}()
	}

	f.mu.Lock()
	cur := f.sel
	f.queryDirty = false
	f.mu.Unlock()

	effQuery := strings.TrimSpace(cur.Query)
	runQuery(effQuery)

	debounceTimer := time.NewTimer(f.debounce)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	debouncePending := false

	var lastRaw []domain.Item

	for {
		select {
		case <-ctx.Done():
			return

		case <-invalidate:
			// Store contents changed; re-run the current search.
			runQuery(effQuery)

		case <-f.changed:
			f.mu.Lock()
			cur = f.sel
			dirty := f.queryDirty
			f.queryDirty = false
			f.mu.Unlock()

			// Filter/sort apply immediately against the latest snapshot.
			f.publish(derive(lastRaw, cur))

			if dirty {
				if debouncePending && !debounceTimer.Stop() {
					<-debounceTimer.C
				}
				debounceTimer.Reset(f.debounce)
				debouncePending = true
			}

		case <-debounceTimer.C:
			debouncePending = false
			f.mu.Lock()
			effQuery = strings.TrimSpace(f.sel.Query)
			f.mu.Unlock()
			runQuery(effQuery)

		case res := <-results:
			if res.gen != gen {
				// A newer search was issued after this one; drop it.
				continue
			}
			if res.err != nil {
				f.log.WithError(res.err).Warn("Inbox search failed")
				continue
			}
			lastRaw = res.items
			f.publish(derive(lastRaw, cur))
		}
	}
}

// derive turns the raw store snapshot into the displayed ordering.
func derive(raw []domain.Item, sel Selection) []domain.Item {
	return domain.PartitionPinned(domain.SortAndFilter(raw, sel.Filter, sel.Sort))
}

// publish replaces any undelivered snapshot with the new one.
func (f *Feed) publish(snapshot []domain.Item) {
	for {
		select {
		case f.updates <- snapshot:
			return
		default:
		}
		select {
		case <-f.updates:
		default:
		}
	}
}
