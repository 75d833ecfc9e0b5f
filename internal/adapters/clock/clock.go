package clock

import "time"

// Timer is a cancellable deferred callback.
type Timer interface {
	// Stop cancels the timer; reports whether it was still pending.
	Stop() bool
}

// Clock provides time access and deferred scheduling. The alarm
// scheduler and the null playback driver take a Clock so tests can
// substitute a deterministic one.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// System is the wall-clock implementation.
type System struct{}

// Now returns the current time.
func (System) Now() time.Time {
	return time.Now()
}

// NowUnix returns the current unix time in seconds.
func (System) NowUnix() int64 {
	return time.Now().Unix()
}

// AfterFunc schedules f after d on the runtime timer heap.
func (System) AfterFunc(d time.Duration, f func()) Timer {
	return systemTimer{t: time.AfterFunc(d, f)}
}

type systemTimer struct {
	t *time.Timer
}

func (s systemTimer) Stop() bool {
	return s.t.Stop()
}
