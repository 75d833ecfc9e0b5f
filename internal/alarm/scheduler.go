package alarm

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"aubade/internal/adapters/clock"
	"aubade/internal/catalog"
)

// ErrInvalidTime rejects alarm times that are not "HH:MM".
var ErrInvalidTime = errors.New("invalid alarm time, want HH:MM")

var timePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

// NextTrigger computes the next strictly-future instant for a daily
// "HH:MM" alarm: today at HH:MM:00 if that is still ahead of now,
// otherwise the same time tomorrow.
func NextTrigger(timeStr string, now time.Time) (time.Time, error) {
	if !timePattern.MatchString(timeStr) {
		return time.Time{}, ErrInvalidTime
	}
	parts := strings.SplitN(timeStr, ":", 2)
	sched, err := cron.ParseStandard(fmt.Sprintf("%s %s * * *", parts[1], parts[0]))
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	return sched.Next(now), nil
}

// Starter begins alarm-initiated playback.
type Starter interface {
	StartFromAlarm(playlistID string)
}

// Scheduler owns the single deferred alarm callback. At most one
// timer is outstanding; every change to the setting goes through
// Sync, which cancels before rescheduling.
type Scheduler struct {
	catalog *catalog.Catalog
	starter Starter
	clock   clock.Clock
	log     *zap.Logger

	mu    sync.Mutex
	timer clock.Timer
	gen   uint64
}

// New creates a scheduler. Call Sync to align it with the persisted
// setting.
func New(cat *catalog.Catalog, starter Starter, clk clock.Clock, log *zap.Logger) *Scheduler {
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{catalog: cat, starter: starter, clock: clk, log: log}
}

// Sync cancels any pending timer and re-arms from the current
// setting. A still-future persisted trigger is reused; otherwise a
// fresh one is computed and persisted before scheduling.
func (s *Scheduler) Sync() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()

	setting := s.catalog.Alarm()
	if !setting.IsOn || setting.PlaylistID == "" || setting.Time == "" {
		if setting.NextTrigger != 0 {
			s.catalog.SetNextTrigger(0)
		}
		return
	}

	now := s.clock.Now()
	next := time.Unix(setting.NextTrigger, 0)
	if setting.NextTrigger == 0 || !next.After(now) {
		computed, err := NextTrigger(setting.Time, now)
		if err != nil {
			s.log.Warn("cannot arm alarm", zap.String("time", setting.Time), zap.Error(err))
			s.catalog.SetNextTrigger(0)
			return
		}
		next = computed
		s.catalog.SetNextTrigger(next.Unix())
	}

	s.scheduleLocked(next.Sub(now))
	s.log.Info("alarm armed",
		zap.String("time", setting.Time),
		zap.String("playlist_id", setting.PlaylistID),
		zap.Time("next_trigger", next))
}

// Disarm turns the alarm off and cancels the pending timer.
func (s *Scheduler) Disarm() error {
	s.mu.Lock()
	s.cancelLocked()
	s.mu.Unlock()

	return s.catalog.SetAlarmEnabled(false)
}

// Stop cancels the pending timer without touching the setting; used
// on daemon shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
}

func (s *Scheduler) cancelLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) scheduleLocked(d time.Duration) {
	if d < 0 {
		d = 0
	}
	gen := s.gen
	s.timer = s.clock.AfterFunc(d, func() { s.fire(gen) })
}

// fire runs when the delay elapses. It starts playback and then
// immediately re-arms for the following day, so the alarm stays on
// without a manual re-toggle. Editing the time mid-playback does not
// affect the cycle that already fired.
func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	setting := s.catalog.Alarm()
	s.mu.Unlock()

	if !setting.IsOn || setting.PlaylistID == "" {
		return
	}

	s.log.Info("alarm fired",
		zap.String("playlist_id", setting.PlaylistID),
		zap.String("memo", setting.Memo))
	s.starter.StartFromAlarm(setting.PlaylistID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	now := s.clock.Now()
	next, err := NextTrigger(setting.Time, now)
	if err != nil {
		s.log.Warn("cannot re-arm alarm", zap.String("time", setting.Time), zap.Error(err))
		return
	}
	s.catalog.SetNextTrigger(next.Unix())
	s.scheduleLocked(next.Sub(now))
}
