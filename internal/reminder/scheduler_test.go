package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerScheduler_RescheduleReplaces(t *testing.T) {
	s := NewTimerScheduler(testLogger())

	fired := make(chan FirePayload, 4)
	s.Bind(func(p FirePayload) { fired <- p })

	now := time.Now()
	require.NoError(t, s.ScheduleOnce("a", now.Add(30*time.Millisecond), FirePayload{ItemID: "a", Title: "first"}))
	require.NoError(t, s.ScheduleOnce("a", now.Add(60*time.Millisecond), FirePayload{ItemID: "a", Title: "second"}))
	assert.Equal(t, 1, s.PendingCount(), "rescheduling the same id keeps a single pending wake-up")

	select {
	case p := <-fired:
		assert.Equal(t, "second", p.Title, "only the replacement registration fires")
	case <-time.After(2 * time.Second):
		t.Fatal("wake-up never fired")
	}

	select {
	case p := <-fired:
		t.Fatalf("unexpected second fire: %+v", p)
	case <-time.After(150 * time.Millisecond):
	}
	assert.Equal(t, 0, s.PendingCount())
}

func TestTimerScheduler_PastTimeFiresImmediately(t *testing.T) {
	s := NewTimerScheduler(testLogger())

	fired := make(chan FirePayload, 1)
	s.Bind(func(p FirePayload) { fired <- p })

	require.NoError(t, s.ScheduleOnce("a", time.Now().Add(-time.Minute), FirePayload{ItemID: "a"}))

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("a past wake-up time must fire right away")
	}
}

func TestTimerScheduler_CancelIsIdempotent(t *testing.T) {
	s := NewTimerScheduler(testLogger())

	fired := make(chan FirePayload, 1)
	s.Bind(func(p FirePayload) { fired <- p })

	require.NoError(t, s.ScheduleOnce("a", time.Now().Add(50*time.Millisecond), FirePayload{ItemID: "a"}))
	s.Cancel("a")
	s.Cancel("a")
	s.Cancel("never-scheduled")
	assert.Equal(t, 0, s.PendingCount())

	select {
	case p := <-fired:
		t.Fatalf("cancelled wake-up fired: %+v", p)
	case <-time.After(150 * time.Millisecond):
	}
}
