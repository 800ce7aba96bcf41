// Package reminder implements the per-item reminder state machine: scheduling
// a one-shot wake-up, showing the notification when it fires, snoozing,
// resolving, and rebuilding schedules after a restart.
package reminder

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// FirePayload travels with a registered wake-up. It carries enough to build
// the notification without a store read, though the fire handler re-reads the
// item anyway to pick up the freshest state.
type FirePayload struct {
	ItemID      string `json:"item_id"`
	Title       string `json:"title"`
	DeleteAfter bool   `json:"delete_after"`
	Label       string `json:"label,omitempty"`
}

// Scheduler registers one-shot wake-ups. At most one wake-up is pending per
// item id: scheduling again replaces the previous registration.
type Scheduler interface {
	ScheduleOnce(id string, at time.Time, payload FirePayload) error
	// Cancel unregisters any pending wake-up for the id; no-op when none.
	Cancel(id string)
}

// FireHandler receives the payload when a wake-up elapses.
type FireHandler func(payload FirePayload)

// TimerScheduler is an in-process Scheduler backed by time.AfterFunc. It is
// what the CLI daemon runs; platforms with a real alarm service supply their
// own Scheduler instead.
type TimerScheduler struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	handler FireHandler
	log     logrus.FieldLogger
}

// NewTimerScheduler creates an idle scheduler. Bind a handler before
// scheduling anything.
func NewTimerScheduler(logger logrus.FieldLogger) *TimerScheduler {
	return &TimerScheduler{
		timers: make(map[string]*time.Timer),
		log:    logger.WithField("component", "scheduler"),
	}
}

// Bind sets the handler invoked when a wake-up fires.
func (s *TimerScheduler) Bind(handler FireHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

// ScheduleOnce registers a wake-up at the given time, replacing any pending
// one for the same id. A time in the past fires immediately.
func (s *TimerScheduler) ScheduleOnce(id string, at time.Time, payload FirePayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.timers[id]; ok {
		prev.Stop()
	}

	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}
	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		handler := s.handler
		s.mu.Unlock()

		if handler != nil {
			handler(payload)
		}
	})

	s.log.WithFields(logrus.Fields{"item_id": id, "at": at}).Debug("Wake-up registered")
	return nil
}

// Cancel stops and forgets the pending wake-up for the id, if any.
func (s *TimerScheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// PendingCount reports how many wake-ups are currently registered.
func (s *TimerScheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
