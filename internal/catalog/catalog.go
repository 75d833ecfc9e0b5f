package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Media kinds.
const (
	KindAudio = "audio"
	KindVideo = "video"
)

// MediaEntry describes one stored media file. HasBlob=false marks
// metadata whose binary payload is gone; such entries are unplayable.
type MediaEntry struct {
	ID              string  `json:"id"`
	DisplayName     string  `json:"displayName"`
	MimeType        string  `json:"mimeType"`
	Kind            string  `json:"kind"`
	CreatedAt       int64   `json:"createdAt"`
	DurationSeconds float64 `json:"durationSeconds,omitempty"`
	HasBlob         bool    `json:"hasBlob"`
}

// Playlist is an ordered sequence of media entry ids. Duplicates are
// allowed; dangling ids are tolerated and skipped at resolution time.
type Playlist struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	TrackIDs []string `json:"trackIds"`
}

// AlarmSetting is the single persisted alarm. NextTrigger is unix
// seconds, 0 when not armed.
type AlarmSetting struct {
	Time        string `json:"time"`
	PlaylistID  string `json:"playlistId,omitempty"`
	Memo        string `json:"memo,omitempty"`
	IsOn        bool   `json:"isOn"`
	NextTrigger int64  `json:"nextTrigger,omitempty"`
}

// DefaultAlarm is the setting used when no record exists yet.
func DefaultAlarm() AlarmSetting {
	return AlarmSetting{Time: "07:00"}
}

// Errors returned by catalog mutations.
var (
	ErrMediaNotFound    = errors.New("media entry not found")
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrEmptyPlaylist    = errors.New("playlist has no playable tracks")
)

// Catalog owns the three persisted configuration documents: the media
// entry list, the playlist list and the alarm setting. Every mutation
// is written back before it returns.
type Catalog struct {
	dir string
	log *zap.Logger

	mu        sync.Mutex
	media     []MediaEntry
	playlists []Playlist
	alarm     AlarmSetting
}

// Open loads the catalog from dir, creating it if needed. Corrupt
// documents are discarded in favour of defaults; startup never fails
// on a bad record.
func Open(dir string, log *zap.Logger) (*Catalog, error) {
	if dir == "" {
		return nil, errors.New("catalog dir required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	c := &Catalog{dir: dir, log: log, alarm: DefaultAlarm()}
	c.loadDocument(c.mediaPath(), &c.media, "media")
	c.loadDocument(c.playlistsPath(), &c.playlists, "playlists")

	var alarm AlarmSetting
	if ok := c.loadDocument(c.alarmPath(), &alarm, "alarm"); ok && alarm.Time != "" {
		c.alarm = alarm
	}
	return c, nil
}

// loadDocument reads one JSON document. Missing files are fine;
// unreadable ones are logged and replaced by the zero value.
func (c *Catalog) loadDocument(path string, v any, name string) bool {
	err := readJSON(path, v)
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}
	c.log.Warn("discarding corrupt document", zap.String("document", name), zap.Error(err))
	return false
}

func (c *Catalog) mediaPath() string     { return filepath.Join(c.dir, "media.json") }
func (c *Catalog) playlistsPath() string { return filepath.Join(c.dir, "playlists.json") }
func (c *Catalog) alarmPath() string     { return filepath.Join(c.dir, "alarm.json") }

func (c *Catalog) persistMedia() {
	if err := writeJSON(c.mediaPath(), c.media); err != nil {
		c.log.Error("persist media list", zap.Error(err))
	}
}

func (c *Catalog) persistPlaylists() {
	if err := writeJSON(c.playlistsPath(), c.playlists); err != nil {
		c.log.Error("persist playlists", zap.Error(err))
	}
}

func (c *Catalog) persistAlarm() {
	if err := writeJSON(c.alarmPath(), c.alarm); err != nil {
		c.log.Error("persist alarm", zap.Error(err))
	}
}

// Media returns a copy of the media list.
func (c *Catalog) Media() []MediaEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]MediaEntry, len(c.media))
	copy(out, c.media)
	return out
}

// MediaByID looks up one entry.
func (c *Catalog) MediaByID(id string) (MediaEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.mediaByIDLocked(id)
}

func (c *Catalog) mediaByIDLocked(id string) (MediaEntry, bool) {
	for _, entry := range c.media {
		if entry.ID == id {
			return entry, true
		}
	}
	return MediaEntry{}, false
}

// Playlists returns a copy of the playlist list.
func (c *Catalog) Playlists() []Playlist {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Playlist, len(c.playlists))
	for i, pl := range c.playlists {
		out[i] = copyPlaylist(pl)
	}
	return out
}

// PlaylistByID looks up one playlist.
func (c *Catalog) PlaylistByID(id string) (Playlist, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pl, ok := c.playlistByIDLocked(id); ok {
		return copyPlaylist(*pl), true
	}
	return Playlist{}, false
}

func (c *Catalog) playlistByIDLocked(id string) (*Playlist, bool) {
	for i := range c.playlists {
		if c.playlists[i].ID == id {
			return &c.playlists[i], true
		}
	}
	return nil, false
}

// Alarm returns the current alarm setting.
func (c *Catalog) Alarm() AlarmSetting {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.alarm
}

// ResolvableTracks returns the playable entries of a playlist in
// order: dangling ids and entries without a blob are skipped.
func (c *Catalog) ResolvableTracks(playlistID string) ([]MediaEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pl, ok := c.playlistByIDLocked(playlistID)
	if !ok {
		return nil, false
	}
	out := make([]MediaEntry, 0, len(pl.TrackIDs))
	for _, id := range pl.TrackIDs {
		if entry, ok := c.mediaByIDLocked(id); ok && entry.HasBlob {
			out = append(out, entry)
		}
	}
	return out, true
}

func (c *Catalog) hasResolvableTrackLocked(playlistID string) bool {
	pl, ok := c.playlistByIDLocked(playlistID)
	if !ok {
		return false
	}
	for _, id := range pl.TrackIDs {
		if entry, ok := c.mediaByIDLocked(id); ok && entry.HasBlob {
			return true
		}
	}
	return false
}

// disarmIfUnplayableLocked drops the alarm when its playlist no
// longer has a playable track. Reports whether it disarmed.
func (c *Catalog) disarmIfUnplayableLocked() bool {
	if !c.alarm.IsOn {
		return false
	}
	if c.alarm.PlaylistID != "" && c.hasResolvableTrackLocked(c.alarm.PlaylistID) {
		return false
	}
	c.alarm.IsOn = false
	c.alarm.NextTrigger = 0
	c.persistAlarm()
	c.log.Info("alarm disarmed: playlist no longer playable",
		zap.String("playlist_id", c.alarm.PlaylistID))
	return true
}

func copyPlaylist(pl Playlist) Playlist {
	out := pl
	out.TrackIDs = make([]string, len(pl.TrackIDs))
	copy(out.TrackIDs, pl.TrackIDs)
	return out
}
