package reminder

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sharebin/internal/domain"
	"sharebin/internal/storage"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.ErrorLevel)
	return l
}

// fakeScheduler records registrations instead of arming timers.
type fakeScheduler struct {
	scheduled []scheduledCall
	cancelled []string
	err       error
}

type scheduledCall struct {
	id      string
	at      time.Time
	payload FirePayload
}

func (s *fakeScheduler) ScheduleOnce(id string, at time.Time, payload FirePayload) error {
	if s.err != nil {
		return s.err
	}
	s.scheduled = append(s.scheduled, scheduledCall{id: id, at: at, payload: payload})
	return nil
}

func (s *fakeScheduler) Cancel(id string) {
	s.cancelled = append(s.cancelled, id)
}

// fakeNotifier records shown and cancelled notifications.
type fakeNotifier struct {
	shown     []Notification
	cancelled []string
}

func (n *fakeNotifier) Show(notif Notification) error {
	n.shown = append(n.shown, notif)
	return nil
}

func (n *fakeNotifier) Cancel(id string) {
	n.cancelled = append(n.cancelled, id)
}

type fakeClipboard struct {
	texts []string
}

func (c *fakeClipboard) WriteText(text string) error {
	c.texts = append(c.texts, text)
	return nil
}

type managerEnv struct {
	repo  *storage.MemoryRepository
	sched *fakeScheduler
	notif *fakeNotifier
	clip  *fakeClipboard
	mgr   *Manager
	now   time.Time
}

func newManagerEnv(t *testing.T) *managerEnv {
	t.Helper()
	env := &managerEnv{
		repo:  storage.NewMemoryRepository(),
		sched: &fakeScheduler{},
		notif: &fakeNotifier{},
		clip:  &fakeClipboard{},
		now:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	env.mgr = NewManager(env.repo, env.sched, env.notif, env.clip, Options{}, testLogger())
	env.mgr.now = func() time.Time { return env.now }
	return env
}

func (env *managerEnv) seed(t *testing.T, item domain.Item) {
	t.Helper()
	require.NoError(t, env.repo.Upsert(context.Background(), item))
}

func TestManager_SchedulePersistsAndRegisters(t *testing.T) {
	env := newManagerEnv(t)
	env.seed(t, domain.Item{ID: "a", Type: domain.TypeText, Text: "pay rent", CreatedAt: env.now})

	at := env.now.Add(time.Hour)
	require.NoError(t, env.mgr.Schedule(context.Background(), "a", "pay rent", at, false, ""))

	got, err := env.repo.GetByID(context.Background(), "a")
	require.NoError(t, err)
	require.NotNil(t, got.ReminderAt)
	assert.True(t, got.ReminderAt.Equal(at))

	require.Len(t, env.sched.scheduled, 1)
	assert.Equal(t, "a", env.sched.scheduled[0].id)
	assert.Equal(t, "pay rent", env.sched.scheduled[0].payload.Title)
}

func TestManager_ScheduleSurvivesRegistrationFailure(t *testing.T) {
	env := newManagerEnv(t)
	env.seed(t, domain.Item{ID: "a", Type: domain.TypeText, CreatedAt: env.now})
	env.sched.err = errors.New("alarm service unavailable")

	at := env.now.Add(time.Hour)
	require.NoError(t, env.mgr.Schedule(context.Background(), "a", "t", at, false, ""),
		"a failed wake-up registration is not an error; the persisted time keeps the reminder restorable")

	got, _ := env.repo.GetByID(context.Background(), "a")
	require.NotNil(t, got.ReminderAt)
}

func TestManager_ScheduleIn(t *testing.T) {
	env := newManagerEnv(t)
	env.seed(t, domain.Item{
		ID:          "a",
		Type:        domain.TypeLink,
		Text:        "https://example.com?utm_source=x",
		CleanedText: "https://example.com",
		Label:       "Dev",
		CreatedAt:   env.now,
	})

	at, err := env.mgr.ScheduleIn(context.Background(), "a", 30*time.Minute, true)
	require.NoError(t, err)
	assert.True(t, at.Equal(env.now.Add(30*time.Minute)))

	require.Len(t, env.sched.scheduled, 1)
	p := env.sched.scheduled[0].payload
	assert.Equal(t, "https://example.com", p.Title, "the title comes from the cleaned text")
	assert.True(t, p.DeleteAfter)
	assert.Equal(t, "Dev", p.Label)
}

func TestManager_ScheduleInMissingItem(t *testing.T) {
	env := newManagerEnv(t)
	_, err := env.mgr.ScheduleIn(context.Background(), "gone", time.Minute, false)
	assert.Error(t, err)
	assert.Empty(t, env.sched.scheduled)
}

func TestManager_CancelClearsStateAndWakeUp(t *testing.T) {
	env := newManagerEnv(t)
	at := env.now.Add(time.Hour)
	env.seed(t, domain.Item{ID: "a", Type: domain.TypeText, CreatedAt: env.now, ReminderAt: &at})

	require.NoError(t, env.mgr.Cancel(context.Background(), "a"))
	assert.Equal(t, []string{"a"}, env.sched.cancelled)

	got, _ := env.repo.GetByID(context.Background(), "a")
	assert.Nil(t, got.ReminderAt)

	// Cancelling again changes nothing.
	require.NoError(t, env.mgr.Cancel(context.Background(), "a"))
}

func TestManager_HandleFireShowsNotification(t *testing.T) {
	env := newManagerEnv(t)
	env.seed(t, domain.Item{ID: "a", Type: domain.TypeText, Text: "call the plumber", CreatedAt: env.now})

	var completions int32
	ev := NewFireEvent(FirePayload{ItemID: "a", Title: "call the plumber"}, func() {
		atomic.AddInt32(&completions, 1)
	})
	env.mgr.HandleFire(context.Background(), ev)

	require.Len(t, env.notif.shown, 1)
	n := env.notif.shown[0]
	assert.Equal(t, "a", n.ID)
	assert.Equal(t, "call the plumber", n.Body)
	assert.Equal(t, []Action{ActionOpen, ActionSnooze, ActionDone, ActionCopy}, n.Actions)
	assert.EqualValues(t, 1, atomic.LoadInt32(&completions))
}

func TestManager_HandleFireItemGone(t *testing.T) {
	env := newManagerEnv(t)

	var completions int32
	ev := NewFireEvent(FirePayload{ItemID: "gone"}, func() {
		atomic.AddInt32(&completions, 1)
	})
	env.mgr.HandleFire(context.Background(), ev)

	assert.Empty(t, env.notif.shown, "a deleted item fires no notification")
	assert.EqualValues(t, 1, atomic.LoadInt32(&completions), "the completion signal is sent on every path")
}

func TestFireEvent_CompleteIsOnce(t *testing.T) {
	var completions int32
	ev := NewFireEvent(FirePayload{}, func() { atomic.AddInt32(&completions, 1) })
	ev.Complete()
	ev.Complete()
	ev.Complete()
	assert.EqualValues(t, 1, atomic.LoadInt32(&completions))

	// A nil completion signal is fine.
	NewFireEvent(FirePayload{}, nil).Complete()
}

func TestManager_Snooze(t *testing.T) {
	env := newManagerEnv(t)
	env.seed(t, domain.Item{ID: "a", Type: domain.TypeText, CreatedAt: env.now})

	payload := FirePayload{ItemID: "a", Title: "t", DeleteAfter: true}
	newAt, err := env.mgr.Snooze(context.Background(), payload)
	require.NoError(t, err)
	assert.True(t, newAt.Equal(env.now.Add(DefaultSnooze)))

	got, _ := env.repo.GetByID(context.Background(), "a")
	require.NotNil(t, got.ReminderAt, "the snoozed time is persisted so the inbox shows it")
	assert.True(t, got.ReminderAt.Equal(newAt))

	require.Len(t, env.sched.scheduled, 1)
	assert.True(t, env.sched.scheduled[0].payload.DeleteAfter, "snooze keeps the original payload")
	assert.Equal(t, []string{"a"}, env.notif.cancelled)
}

func TestManager_ResolveKeepsItem(t *testing.T) {
	env := newManagerEnv(t)
	at := env.now.Add(time.Hour)
	env.seed(t, domain.Item{ID: "a", Type: domain.TypeText, CreatedAt: env.now, ReminderAt: &at})

	require.NoError(t, env.mgr.Resolve(context.Background(), FirePayload{ItemID: "a"}))

	got, _ := env.repo.GetByID(context.Background(), "a")
	require.NotNil(t, got)
	assert.Nil(t, got.ReminderAt)
	assert.Equal(t, []string{"a"}, env.sched.cancelled)
	assert.Equal(t, []string{"a"}, env.notif.cancelled)
}

func TestManager_ResolveDeleteAfter(t *testing.T) {
	env := newManagerEnv(t)
	env.seed(t, domain.Item{ID: "a", Type: domain.TypeText, CreatedAt: env.now})

	require.NoError(t, env.mgr.Resolve(context.Background(), FirePayload{ItemID: "a", DeleteAfter: true}))

	got, _ := env.repo.GetByID(context.Background(), "a")
	assert.Nil(t, got, "delete-after removes the item on resolution")
}

func TestManager_CopyItem(t *testing.T) {
	env := newManagerEnv(t)
	env.seed(t, domain.Item{ID: "a", Type: domain.TypeLink, Text: "https://x?utm_source=1", CleanedText: "https://x", CreatedAt: env.now})

	require.NoError(t, env.mgr.CopyItem(context.Background(), "a"))
	assert.Equal(t, []string{"https://x"}, env.clip.texts)

	// A missing item copies nothing and is not an error.
	require.NoError(t, env.mgr.CopyItem(context.Background(), "gone"))
	assert.Len(t, env.clip.texts, 1)
}

func TestManager_RestoreFutureOnly(t *testing.T) {
	env := newManagerEnv(t)
	ctx := context.Background()

	future := env.now.Add(time.Hour)
	past := env.now.Add(-time.Hour)
	env.seed(t, domain.Item{ID: "future", Type: domain.TypeText, Text: "still due", CreatedAt: env.now, ReminderAt: &future})
	env.seed(t, domain.Item{ID: "past", Type: domain.TypeText, CreatedAt: env.now, ReminderAt: &past})
	env.seed(t, domain.Item{ID: "none", Type: domain.TypeText, CreatedAt: env.now})

	restored, err := env.mgr.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, restored)

	require.Len(t, env.sched.scheduled, 1)
	call := env.sched.scheduled[0]
	assert.Equal(t, "future", call.id)
	assert.True(t, call.at.Equal(future))
	assert.Equal(t, "still due", call.payload.Title)
	assert.False(t, call.payload.DeleteAfter)
}

func TestTitleFor(t *testing.T) {
	assert.Equal(t, "clean", titleFor(domain.Item{Text: "raw", CleanedText: "clean"}))
	assert.Equal(t, "raw", titleFor(domain.Item{Text: "raw"}))
	assert.Equal(t, "Reminder", titleFor(domain.Item{}))

	long := strings.Repeat("ä", 120)
	got := titleFor(domain.Item{Text: long})
	assert.Equal(t, 80, len([]rune(got)), "titles are capped at 80 runes, not bytes")
}
