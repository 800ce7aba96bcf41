package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"sharebin/internal/domain"
	"sharebin/internal/storage"
)

// DefaultSnooze is how far a snoozed reminder moves into the future.
const DefaultSnooze = 10 * time.Minute

// DefaultPreviewEdge bounds the long edge of notification preview images.
const DefaultPreviewEdge = 512

// Clipboard is the slice of the clipboard surface the copy action needs.
type Clipboard interface {
	WriteText(text string) error
}

// Options tunes the manager; zero values fall back to defaults.
type Options struct {
	Snooze         time.Duration
	PreviewEdge    int
	PreviewTimeout time.Duration
}

// FireEvent is one wake-up delivery handed to the manager. Complete releases
// the host's wake hold and must be signalled exactly once per event; the
// manager guarantees that on every path through the handler.
type FireEvent struct {
	Payload FirePayload

	once     sync.Once
	complete func()
}

// NewFireEvent wraps a payload with the host's completion signal. A nil
// complete is allowed (the in-process scheduler has nothing to release).
func NewFireEvent(payload FirePayload, complete func()) *FireEvent {
	return &FireEvent{Payload: payload, complete: complete}
}

// Complete signals the host that handling finished. Safe to call repeatedly;
// only the first call has effect.
func (e *FireEvent) Complete() {
	e.once.Do(func() {
		if e.complete != nil {
			e.complete()
		}
	})
}

// Manager drives a reminder through its states: none, scheduled, fired, then
// snoozed (back to scheduled) or done. Persisted reminder times in the store
// are the durable source of truth; Restore rebuilds wake-ups from them after
// a restart.
type Manager struct {
	repo  storage.Repository
	sched Scheduler
	notif Notifier
	clip  Clipboard
	log   logrus.FieldLogger
	now   func() time.Time

	snooze         time.Duration
	previewEdge    int
	previewTimeout time.Duration
}

// NewManager wires the reminder state machine. clip may be nil when the host
// offers no copy action.
func NewManager(repo storage.Repository, sched Scheduler, notif Notifier, clip Clipboard, opts Options, logger logrus.FieldLogger) *Manager {
	if opts.Snooze <= 0 {
		opts.Snooze = DefaultSnooze
	}
	if opts.PreviewEdge <= 0 {
		opts.PreviewEdge = DefaultPreviewEdge
	}
	if opts.PreviewTimeout <= 0 {
		opts.PreviewTimeout = previewTimeoutDefault
	}
	return &Manager{
		repo:           repo,
		sched:          sched,
		notif:          notif,
		clip:           clip,
		log:            logger.WithField("component", "reminder"),
		now:            time.Now,
		snooze:         opts.Snooze,
		previewEdge:    opts.PreviewEdge,
		previewTimeout: opts.PreviewTimeout,
	}
}

// Schedule persists the reminder time on the item and registers the wake-up.
// Re-scheduling an item replaces its pending wake-up, so at most one is ever
// registered per item. A failed wake-up registration is logged and not
// retried; the persisted time still makes the reminder eligible for Restore.
func (m *Manager) Schedule(ctx context.Context, itemID, title string, at time.Time, deleteAfter bool, label string) error {
	if err := m.repo.SetReminder(ctx, itemID, &at); err != nil {
		return fmt.Errorf("failed to persist reminder: %w", err)
	}

	payload := FirePayload{ItemID: itemID, Title: title, DeleteAfter: deleteAfter, Label: label}
	if err := m.sched.ScheduleOnce(itemID, at, payload); err != nil {
		m.log.WithError(err).WithField("item_id", itemID).Warn("Wake-up registration failed")
		return nil
	}
	m.log.WithFields(logrus.Fields{"item_id": itemID, "at": at}).Info("Reminder scheduled")
	return nil
}

// ScheduleIn schedules a reminder a duration from now, deriving the
// notification title from the item's current text.
func (m *Manager) ScheduleIn(ctx context.Context, itemID string, in time.Duration, deleteAfter bool) (time.Time, error) {
	item, err := m.repo.GetByID(ctx, itemID)
	if err != nil {
		return time.Time{}, err
	}
	if item == nil {
		return time.Time{}, fmt.Errorf("no item with id %s", itemID)
	}

	at := m.now().Add(in)
	if err := m.Schedule(ctx, itemID, titleFor(*item), at, deleteAfter, item.Label); err != nil {
		return time.Time{}, err
	}
	return at, nil
}

// Cancel clears the item's reminder and unregisters its wake-up. Idempotent.
func (m *Manager) Cancel(ctx context.Context, itemID string) error {
	m.sched.Cancel(itemID)
	if err := m.repo.SetReminder(ctx, itemID, nil); err != nil {
		return fmt.Errorf("failed to clear reminder: %w", err)
	}
	return nil
}

// HandleFire services one wake-up delivery. The event's completion signal is
// always sent, whichever branch the handler takes. An item deleted between
// scheduling and firing aborts silently. Firing is not terminal: the item
// stays (and delete-after stays pending) until the user resolves or snoozes.
func (m *Manager) HandleFire(ctx context.Context, ev *FireEvent) {
	defer ev.Complete()

	item, err := m.repo.GetByID(ctx, ev.Payload.ItemID)
	if err != nil {
		m.log.WithError(err).WithField("item_id", ev.Payload.ItemID).Warn("Fire lookup failed")
		return
	}
	if item == nil {
		m.log.WithField("item_id", ev.Payload.ItemID).Debug("Item gone before fire, dropping reminder")
		return
	}

	title := ev.Payload.Title
	if title == "" {
		title = titleFor(*item)
	}

	n := Notification{
		ID:      item.ID,
		Title:   "Reminder",
		Body:    title,
		Actions: []Action{ActionOpen, ActionSnooze, ActionDone, ActionCopy},
		Preview: m.loadPreview(ctx, *item),
	}
	if err := m.notif.Show(n); err != nil {
		m.log.WithError(err).WithField("item_id", item.ID).Warn("Failed to show reminder notification")
	}
}

// Snooze pushes a fired reminder into the future by the snooze duration,
// persisting the new time so the inbox shows it, and replaces the shown
// notification. Returns the new fire time.
func (m *Manager) Snooze(ctx context.Context, payload FirePayload) (time.Time, error) {
	newAt := m.now().Add(m.snooze)
	if err := m.repo.SetReminder(ctx, payload.ItemID, &newAt); err != nil {
		return time.Time{}, fmt.Errorf("failed to persist snooze: %w", err)
	}
	if err := m.sched.ScheduleOnce(payload.ItemID, newAt, payload); err != nil {
		m.log.WithError(err).WithField("item_id", payload.ItemID).Warn("Snooze wake-up registration failed")
	}
	m.notif.Cancel(payload.ItemID)
	m.log.WithFields(logrus.Fields{"item_id": payload.ItemID, "at": newAt}).Info("Reminder snoozed")
	return newAt, nil
}

// Resolve completes a reminder: with delete-after set the item is removed,
// otherwise only its reminder time is cleared. Any pending wake-up and the
// shown notification are cancelled either way.
func (m *Manager) Resolve(ctx context.Context, payload FirePayload) error {
	m.sched.Cancel(payload.ItemID)
	m.notif.Cancel(payload.ItemID)

	if payload.DeleteAfter {
		if err := m.repo.Delete(ctx, payload.ItemID); err != nil {
			return fmt.Errorf("failed to delete resolved item: %w", err)
		}
		m.log.WithField("item_id", payload.ItemID).Info("Reminder resolved, item deleted")
		return nil
	}
	if err := m.repo.SetReminder(ctx, payload.ItemID, nil); err != nil {
		return fmt.Errorf("failed to clear resolved reminder: %w", err)
	}
	m.log.WithField("item_id", payload.ItemID).Info("Reminder resolved")
	return nil
}

// CopyItem services the notification's copy action: it puts the item's
// cleaned text (or raw text) on the clipboard.
func (m *Manager) CopyItem(ctx context.Context, itemID string) error {
	if m.clip == nil {
		return nil
	}
	item, err := m.repo.GetByID(ctx, itemID)
	if err != nil || item == nil {
		return err
	}
	if text := item.ShareText(); text != "" {
		return m.clip.WriteText(text)
	}
	return nil
}

// Restore re-registers wake-ups for every item whose persisted reminder time
// is still in the future. Registered wake-ups do not survive a process
// restart, so this runs once at startup. Past or absent reminder times
// schedule nothing. Returns how many reminders were rebuilt.
func (m *Manager) Restore(ctx context.Context) (int, error) {
	items, err := m.repo.GetAllOnce(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to scan items for restore: %w", err)
	}

	now := m.now()
	restored := 0
	for _, item := range items {
		if !item.HasActiveReminder(now) {
			continue
		}
		payload := FirePayload{ItemID: item.ID, Title: titleFor(item), Label: item.Label}
		if err := m.sched.ScheduleOnce(item.ID, *item.ReminderAt, payload); err != nil {
			m.log.WithError(err).WithField("item_id", item.ID).Warn("Failed to restore wake-up")
			continue
		}
		restored++
	}
	m.log.WithField("restored", restored).Info("Reminders restored from store")
	return restored, nil
}

// titleFor derives a notification title from the item: cleaned text first,
// then raw text, truncated to 80 runes.
func titleFor(item domain.Item) string {
	title := item.CleanedText
	if title == "" {
		title = item.Text
	}
	if title == "" {
		return "Reminder"
	}
	runes := []rune(title)
	if len(runes) > 80 {
		return string(runes[:80])
	}
	return title
}
