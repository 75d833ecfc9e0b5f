package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"aubade/internal/catalog"
)

// State is the playback cursor state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StateAwaitingManualStart
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StateAwaitingManualStart:
		return "awaiting_manual_start"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

var (
	// ErrPlaylistNotFound reports a start request for an unknown playlist.
	ErrPlaylistNotFound = errors.New("playlist not found")
	// ErrPlaylistEmpty reports a start request for a playlist with no tracks.
	ErrPlaylistEmpty = errors.New("playlist is empty")
)

// Library is the catalog surface the engine needs.
type Library interface {
	PlaylistByID(id string) (catalog.Playlist, bool)
	MediaByID(id string) (catalog.MediaEntry, bool)
	SetMediaDuration(id string, seconds float64)
}

// AutoplayPolicy decides whether playback may begin without the user
// confirming. interacted is true once the user has issued any manual
// playback command this session.
type AutoplayPolicy func(fromAlarm, interacted bool) bool

// AutoplayAlways starts playback unconditionally.
func AutoplayAlways(fromAlarm, interacted bool) bool { return true }

// ManualStartForAlarms holds alarm-initiated playback until the user
// confirms, unless they have already interacted this session.
func ManualStartForAlarms(fromAlarm, interacted bool) bool {
	return !fromAlarm || interacted
}

// Snapshot is a point-in-time view of the cursor for status reporting.
type Snapshot struct {
	State            State
	PlaylistID       string
	Index            int
	TrackID          string
	TrackName        string
	Message          string
	NeedsManualStart bool
	Progress         Progress
}

const probeTimeout = 5 * time.Second

// Engine drives a single playback cursor over a playlist: it resolves
// tracks in order, skips the unplayable ones, and advances on track
// completion. All transitions are serialized under one lock.
type Engine struct {
	lib      Library
	resolver HandleResolver
	driver   Driver
	prober   Prober
	policy   AutoplayPolicy
	log      *zap.Logger

	mu            sync.Mutex
	notify        func()
	state         State
	playlistID    string
	index         int
	fromAlarm     bool
	interacted    bool
	current       *Handle
	track         catalog.MediaEntry
	message       string
	finalProgress Progress
}

// New creates an idle engine and wires the driver's completion
// callback to track advancement.
func New(lib Library, resolver HandleResolver, driver Driver, prober Prober, policy AutoplayPolicy, log *zap.Logger) *Engine {
	if prober == nil {
		prober = NoopProber{}
	}
	if policy == nil {
		policy = AutoplayAlways
	}
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		lib:      lib,
		resolver: resolver,
		driver:   driver,
		prober:   prober,
		policy:   policy,
		log:      log,
	}
	driver.SetOnFinished(e.TrackFinished)
	return e
}

// SetNotify registers a callback invoked after every externally
// visible transition, outside the engine lock.
func (e *Engine) SetNotify(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.notify = fn
}

// Start begins playback of the playlist from its first track,
// replacing any session in progress.
func (e *Engine) Start(playlistID string, fromAlarm bool) error {
	e.mu.Lock()
	err := e.startLocked(playlistID, fromAlarm)
	notify := e.notify
	e.mu.Unlock()

	if notify != nil {
		notify()
	}
	return err
}

// StartFromAlarm is Start for the alarm callback; errors are logged
// rather than returned since nobody is waiting on them.
func (e *Engine) StartFromAlarm(playlistID string) {
	if err := e.Start(playlistID, true); err != nil {
		e.log.Warn("alarm playback failed", zap.String("playlist_id", playlistID), zap.Error(err))
	}
}

// TrackFinished advances the cursor past the current track. Called by
// the driver when a track plays to the end; stale calls after a stop
// or restart are ignored.
func (e *Engine) TrackFinished() {
	e.mu.Lock()
	if e.state != StatePlaying {
		e.mu.Unlock()
		return
	}
	e.advanceLocked(e.index + 1)
	notify := e.notify
	e.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// ConfirmManualStart retries playback of the held track. A no-op in
// any other state, though it still counts as user interaction.
func (e *Engine) ConfirmManualStart() {
	e.mu.Lock()
	e.interacted = true
	if e.state == StateAwaitingManualStart && e.current != nil {
		if err := e.driver.Play(e.current.Path); err != nil {
			e.message = fmt.Sprintf("cannot start %s: %v", e.track.DisplayName, err)
		} else {
			e.state = StatePlaying
			e.message = fmt.Sprintf("playing %s", e.track.DisplayName)
		}
	}
	notify := e.notify
	e.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// Stop halts playback and destroys the cursor from any state.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.interacted = true
	e.teardownLocked()
	e.state = StateIdle
	e.message = "stopped"
	notify := e.notify
	e.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// Close releases the session without touching the interaction flag;
// used on daemon shutdown.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.teardownLocked()
	e.state = StateIdle
}

// Status reports the current cursor state and playlist progress.
func (e *Engine) Status() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		State:            e.state,
		PlaylistID:       e.playlistID,
		Message:          e.message,
		NeedsManualStart: e.state == StateAwaitingManualStart,
	}
	switch e.state {
	case StateLoading, StatePlaying, StateAwaitingManualStart:
		snap.Index = e.index
		snap.TrackID = e.track.ID
		snap.TrackName = e.track.DisplayName
		elapsed := float64(0)
		if e.state == StatePlaying {
			if pos, ok := e.driver.Position(); ok {
				elapsed = pos
			}
		}
		snap.Progress = computeProgress(e.durationsLocked(), e.index, elapsed)
	case StateFinished:
		snap.Progress = e.finalProgress
	}
	return snap
}

func (e *Engine) startLocked(playlistID string, fromAlarm bool) error {
	e.teardownLocked()

	if !fromAlarm {
		e.interacted = true
	}

	pl, ok := e.lib.PlaylistByID(playlistID)
	if !ok {
		e.state = StateIdle
		e.message = "playlist not found"
		return ErrPlaylistNotFound
	}
	if len(pl.TrackIDs) == 0 {
		e.state = StateIdle
		e.message = fmt.Sprintf("playlist %s is empty", pl.Name)
		return ErrPlaylistEmpty
	}

	e.playlistID = playlistID
	e.fromAlarm = fromAlarm
	e.log.Info("playback starting",
		zap.String("playlist_id", playlistID),
		zap.Bool("from_alarm", fromAlarm))
	e.advanceLocked(0)
	return nil
}

// advanceLocked walks the playlist from start, loading each track in
// turn and skipping the ones that cannot be resolved. It leaves the
// engine Playing, AwaitingManualStart, or Finished.
func (e *Engine) advanceLocked(start int) {
	pl, ok := e.lib.PlaylistByID(e.playlistID)
	if !ok {
		e.finishLocked("playlist removed")
		return
	}

	for i := start; i < len(pl.TrackIDs); i++ {
		e.state = StateLoading
		e.index = i

		entry, ok := e.lib.MediaByID(pl.TrackIDs[i])
		if !ok {
			e.log.Warn("skipping unknown track", zap.String("media_id", pl.TrackIDs[i]))
			continue
		}

		handle, err := e.resolver.Resolve(context.Background(), entry)
		if errors.Is(err, ErrHandleNotFound) {
			e.log.Warn("skipping unavailable track",
				zap.String("media_id", entry.ID),
				zap.String("name", entry.DisplayName))
			continue
		}
		if err != nil {
			e.log.Warn("skipping track",
				zap.String("media_id", entry.ID),
				zap.Error(err))
			continue
		}

		e.current = handle
		e.track = entry
		e.probeLocked(handle)

		if !e.policy(e.fromAlarm, e.interacted) {
			e.state = StateAwaitingManualStart
			e.message = fmt.Sprintf("ready to play %s, confirm to start", entry.DisplayName)
			return
		}
		if err := e.driver.Play(handle.Path); err != nil {
			e.log.Warn("playback blocked, awaiting manual start",
				zap.String("media_id", entry.ID),
				zap.Error(err))
			e.state = StateAwaitingManualStart
			e.message = fmt.Sprintf("cannot start %s: %v", entry.DisplayName, err)
			return
		}

		e.state = StatePlaying
		e.message = fmt.Sprintf("playing %s", entry.DisplayName)
		return
	}

	e.finishLocked("playlist finished")
}

func (e *Engine) finishLocked(message string) {
	durations := e.durationsLocked()
	progress := computeProgress(durations, len(durations), 0)
	if progress.TotalSeconds > 0 {
		progress.Percent = 100
	}
	e.teardownLocked()
	e.finalProgress = progress
	e.state = StateFinished
	e.message = message
	e.log.Info("playback finished", zap.String("message", message))
}

// teardownLocked stops the driver and releases the session, returning
// the engine to a cursor-less baseline. The caller sets the next state.
func (e *Engine) teardownLocked() {
	_ = e.driver.Stop()
	if e.resolver != nil {
		e.resolver.ReleaseAll()
	}
	e.current = nil
	e.track = catalog.MediaEntry{}
	e.playlistID = ""
	e.index = 0
	e.fromAlarm = false
	e.finalProgress = Progress{}
}

// probeLocked fills in the track duration on first play if the
// catalog does not know it yet.
func (e *Engine) probeLocked(handle *Handle) {
	if e.track.DurationSeconds > 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	seconds, ok := e.prober.Probe(ctx, handle.Path)
	if !ok || seconds <= 0 {
		return
	}
	e.lib.SetMediaDuration(e.track.ID, seconds)
	e.track.DurationSeconds = seconds
}

func (e *Engine) durationsLocked() []float64 {
	pl, ok := e.lib.PlaylistByID(e.playlistID)
	if !ok {
		return nil
	}
	durations := make([]float64, len(pl.TrackIDs))
	for i, id := range pl.TrackIDs {
		if entry, ok := e.lib.MediaByID(id); ok {
			if id == e.track.ID && e.track.DurationSeconds > 0 {
				durations[i] = e.track.DurationSeconds
			} else {
				durations[i] = entry.DurationSeconds
			}
		}
	}
	return durations
}
