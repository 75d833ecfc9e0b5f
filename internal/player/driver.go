package player

import (
	"sync"
	"time"

	"aubade/internal/adapters/clock"
)

// Driver executes playback of a resolved media file. Implementations
// call the finished callback from their own goroutine when the
// current track plays to the end; Stop must suppress it.
type Driver interface {
	Play(path string) error
	Stop() error
	// Position reports elapsed seconds of the current track.
	Position() (seconds float64, ok bool)
	SetOnFinished(fn func())
}

// NullDriver is a silent stand-in used when no audio stack is
// available: it "plays" each track for its probed duration in real
// time and then signals completion.
type NullDriver struct {
	clock       clock.Clock
	durationFor func(path string) float64

	mu         sync.Mutex
	onFinished func()
	timer      clock.Timer
	startedAt  time.Time
	duration   float64
	playing    bool
}

// Fallback track length when the duration is unknown.
const nullDriverFallbackSeconds = 5

// NewNullDriver creates a silent driver. durationFor may be nil.
func NewNullDriver(clk clock.Clock, durationFor func(path string) float64) *NullDriver {
	if clk == nil {
		clk = clock.System{}
	}
	return &NullDriver{clock: clk, durationFor: durationFor}
}

// SetOnFinished registers the track-completion callback.
func (d *NullDriver) SetOnFinished(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.onFinished = fn
}

// Play starts a silent playback timer for the file.
func (d *NullDriver) Play(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()

	duration := float64(0)
	if d.durationFor != nil {
		duration = d.durationFor(path)
	}
	if duration <= 0 {
		duration = nullDriverFallbackSeconds
	}

	d.duration = duration
	d.startedAt = d.clock.Now()
	d.playing = true
	d.timer = d.clock.AfterFunc(time.Duration(duration*float64(time.Second)), d.finish)
	return nil
}

// Stop cancels the playback timer.
func (d *NullDriver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	return nil
}

// Position reports elapsed seconds while playing.
func (d *NullDriver) Position() (float64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.playing {
		return 0, false
	}
	elapsed := d.clock.Now().Sub(d.startedAt).Seconds()
	if elapsed > d.duration {
		elapsed = d.duration
	}
	return elapsed, true
}

func (d *NullDriver) stopLocked() {
	d.playing = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *NullDriver) finish() {
	d.mu.Lock()
	if !d.playing {
		d.mu.Unlock()
		return
	}
	d.playing = false
	d.timer = nil
	fn := d.onFinished
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}
