package alarm

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"aubade/internal/adapters/clock"
	"aubade/internal/catalog"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clk     *fakeClock
	at      time.Time
	fn      func()
	stopped bool
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clk: c, at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clk.mu.Lock()
	defer t.clk.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

// advance moves the clock forward and fires due timers synchronously.
func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	remaining := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped && !t.at.After(c.now) {
			t.stopped = true
			due = append(due, t)
			continue
		}
		remaining = append(remaining, t)
	}
	c.timers = remaining
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

type fakeStarter struct {
	mu       sync.Mutex
	playlist []string
}

func (s *fakeStarter) StartFromAlarm(playlistID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playlist = append(s.playlist, playlistID)
}

func (s *fakeStarter) started() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.playlist...)
}

func armedCatalog(t *testing.T, timeStr string) (*catalog.Catalog, string) {
	t.Helper()
	cat, err := catalog.Open(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	entry := catalog.NewMediaEntry("song", "audio/mpeg", catalog.KindAudio, 1)
	cat.AddMedia(entry)
	pl := cat.CreatePlaylist("wakeup")
	if err := cat.AddTracks(pl.ID, []string{entry.ID}); err != nil {
		t.Fatalf("add tracks: %v", err)
	}
	if _, err := cat.SetAlarm(timeStr, pl.ID, ""); err != nil {
		t.Fatalf("set alarm: %v", err)
	}
	if err := cat.SetAlarmEnabled(true); err != nil {
		t.Fatalf("enable alarm: %v", err)
	}
	return cat, pl.ID
}

func TestNextTriggerLaterToday(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	next, err := NextTrigger("07:30", now)
	if err != nil {
		t.Fatalf("next trigger: %v", err)
	}
	want := time.Date(2025, 3, 10, 7, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("expected %v, got %v", want, next)
	}
}

func TestNextTriggerRollsToTomorrow(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	next, err := NextTrigger("07:30", now)
	if err != nil {
		t.Fatalf("next trigger: %v", err)
	}
	want := time.Date(2025, 3, 11, 7, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("expected %v, got %v", want, next)
	}
}

func TestNextTriggerStrictlyFuture(t *testing.T) {
	// At exactly the alarm instant the trigger must land tomorrow.
	now := time.Date(2025, 3, 10, 7, 30, 0, 0, time.UTC)
	next, err := NextTrigger("07:30", now)
	if err != nil {
		t.Fatalf("next trigger: %v", err)
	}
	want := time.Date(2025, 3, 11, 7, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("expected %v, got %v", want, next)
	}
}

func TestNextTriggerInvalid(t *testing.T) {
	now := time.Now()
	for _, bad := range []string{"", "7:30", "07:3", "25:00", "07:60", "ab:cd", "07:30:00"} {
		if _, err := NextTrigger(bad, now); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestSchedulerFiresAndRearms(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	clk := newFakeClock(now)
	cat, plID := armedCatalog(t, "07:00")
	starter := &fakeStarter{}
	s := New(cat, starter, clk, zap.NewNop())

	s.Sync()
	if got := cat.Alarm().NextTrigger; got != time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC).Unix() {
		t.Fatalf("expected trigger persisted, got %d", got)
	}

	clk.advance(1 * time.Hour)
	if got := starter.started(); len(got) != 1 || got[0] != plID {
		t.Fatalf("expected one alarm start, got %v", got)
	}

	// Firing re-arms for the next day without another Sync.
	if got := cat.Alarm().NextTrigger; got != time.Date(2025, 3, 11, 7, 0, 0, 0, time.UTC).Unix() {
		t.Fatalf("expected next-day trigger, got %d", got)
	}
	clk.advance(24 * time.Hour)
	if got := starter.started(); len(got) != 2 {
		t.Fatalf("expected second alarm start, got %v", got)
	}
}

func TestSchedulerReusesFutureTrigger(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	clk := newFakeClock(now)
	cat, _ := armedCatalog(t, "07:00")

	// Simulate a daemon restart with a still-future persisted trigger.
	persisted := time.Date(2025, 3, 10, 6, 30, 0, 0, time.UTC)
	cat.SetNextTrigger(persisted.Unix())

	starter := &fakeStarter{}
	s := New(cat, starter, clk, zap.NewNop())
	s.Sync()

	if got := cat.Alarm().NextTrigger; got != persisted.Unix() {
		t.Fatalf("expected persisted trigger reused, got %d", got)
	}
	clk.advance(30 * time.Minute)
	if got := starter.started(); len(got) != 1 {
		t.Fatalf("expected alarm start at persisted trigger, got %v", got)
	}
}

func TestSchedulerRecomputesStaleTrigger(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	clk := newFakeClock(now)
	cat, _ := armedCatalog(t, "07:00")

	// A trigger in the past must not fire immediately; the scheduler
	// computes the next future instant instead.
	cat.SetNextTrigger(time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC).Unix())

	starter := &fakeStarter{}
	s := New(cat, starter, clk, zap.NewNop())
	s.Sync()

	if got := cat.Alarm().NextTrigger; got != time.Date(2025, 3, 11, 7, 0, 0, 0, time.UTC).Unix() {
		t.Fatalf("expected recomputed trigger, got %d", got)
	}
	if got := starter.started(); len(got) != 0 {
		t.Fatalf("expected no immediate start, got %v", got)
	}
}

func TestSchedulerSyncCancelsPendingTimer(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	clk := newFakeClock(now)
	cat, _ := armedCatalog(t, "07:00")
	starter := &fakeStarter{}
	s := New(cat, starter, clk, zap.NewNop())

	s.Sync()
	if _, err := cat.SetAlarm("09:00", cat.Alarm().PlaylistID, ""); err != nil {
		t.Fatalf("set alarm: %v", err)
	}
	s.Sync()

	if clk.pending() != 1 {
		t.Fatalf("expected exactly one pending timer, got %d", clk.pending())
	}
	clk.advance(1 * time.Hour)
	if got := starter.started(); len(got) != 0 {
		t.Fatalf("expected no start at the old time, got %v", got)
	}
	clk.advance(2 * time.Hour)
	if got := starter.started(); len(got) != 1 {
		t.Fatalf("expected start at the new time, got %v", got)
	}
}

func TestSchedulerDisarm(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	clk := newFakeClock(now)
	cat, _ := armedCatalog(t, "07:00")
	starter := &fakeStarter{}
	s := New(cat, starter, clk, zap.NewNop())

	s.Sync()
	if err := s.Disarm(); err != nil {
		t.Fatalf("disarm: %v", err)
	}
	if alarm := cat.Alarm(); alarm.IsOn || alarm.NextTrigger != 0 {
		t.Fatalf("expected alarm off, got %+v", alarm)
	}
	clk.advance(2 * time.Hour)
	if got := starter.started(); len(got) != 0 {
		t.Fatalf("expected no start after disarm, got %v", got)
	}
}

func TestSchedulerSyncWhileOffClearsTrigger(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	clk := newFakeClock(now)
	cat, _ := armedCatalog(t, "07:00")
	if err := cat.SetAlarmEnabled(false); err != nil {
		t.Fatalf("disable alarm: %v", err)
	}
	cat.SetNextTrigger(12345)

	s := New(cat, &fakeStarter{}, clk, zap.NewNop())
	s.Sync()

	if got := cat.Alarm().NextTrigger; got != 0 {
		t.Fatalf("expected trigger cleared, got %d", got)
	}
	if clk.pending() != 0 {
		t.Fatalf("expected no pending timer")
	}
}
