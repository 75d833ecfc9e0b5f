package catalog

import (
	"strings"

	"github.com/google/uuid"
)

// CreatePlaylist adds an empty playlist and returns it.
func (c *Catalog) CreatePlaylist(name string) Playlist {
	c.mu.Lock()
	defer c.mu.Unlock()

	pl := Playlist{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		TrackIDs: []string{},
	}
	c.playlists = append(c.playlists, pl)
	c.persistPlaylists()
	return copyPlaylist(pl)
}

// RenamePlaylist updates a playlist name.
func (c *Catalog) RenamePlaylist(id, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	pl, ok := c.playlistByIDLocked(id)
	if !ok {
		return ErrPlaylistNotFound
	}
	pl.Name = strings.TrimSpace(name)
	c.persistPlaylists()
	return nil
}

// AddTracks appends media ids to a playlist. Every id must reference
// an existing entry; duplicates of already-present ids are fine.
func (c *Catalog) AddTracks(id string, trackIDs []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	pl, ok := c.playlistByIDLocked(id)
	if !ok {
		return ErrPlaylistNotFound
	}
	for _, trackID := range trackIDs {
		if _, ok := c.mediaByIDLocked(trackID); !ok {
			return ErrMediaNotFound
		}
	}
	pl.TrackIDs = append(pl.TrackIDs, trackIDs...)
	c.persistPlaylists()
	return nil
}

// RemoveTrackAt drops the track at index. Disarms the alarm when this
// empties its playlist of playable tracks.
func (c *Catalog) RemoveTrackAt(id string, index int) (RemovalReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pl, ok := c.playlistByIDLocked(id)
	if !ok {
		return RemovalReport{}, ErrPlaylistNotFound
	}
	if index < 0 || index >= len(pl.TrackIDs) {
		return RemovalReport{}, ErrIndexOutOfRange
	}
	pl.TrackIDs = append(pl.TrackIDs[:index], pl.TrackIDs[index+1:]...)
	c.persistPlaylists()

	return RemovalReport{AlarmDisarmed: c.disarmIfUnplayableLocked()}, nil
}

// MoveTrack reorders a track within a playlist.
func (c *Catalog) MoveTrack(id string, fromIndex, toIndex int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	pl, ok := c.playlistByIDLocked(id)
	if !ok {
		return ErrPlaylistNotFound
	}
	if fromIndex < 0 || fromIndex >= len(pl.TrackIDs) {
		return ErrIndexOutOfRange
	}
	if toIndex < 0 || toIndex >= len(pl.TrackIDs) {
		return ErrIndexOutOfRange
	}
	trackID := pl.TrackIDs[fromIndex]
	pl.TrackIDs = append(pl.TrackIDs[:fromIndex], pl.TrackIDs[fromIndex+1:]...)
	rest := append([]string{}, pl.TrackIDs[toIndex:]...)
	pl.TrackIDs = append(append(pl.TrackIDs[:toIndex], trackID), rest...)
	c.persistPlaylists()
	return nil
}

// DeletePlaylist removes a playlist. A deleted playlist is detached
// from the alarm, which disarms as a side effect.
func (c *Catalog) DeletePlaylist(id string) (RemovalReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	found := false
	filtered := c.playlists[:0]
	for _, pl := range c.playlists {
		if pl.ID == id {
			found = true
			continue
		}
		filtered = append(filtered, pl)
	}
	if !found {
		return RemovalReport{}, ErrPlaylistNotFound
	}
	c.playlists = filtered
	c.persistPlaylists()

	report := RemovalReport{}
	if c.alarm.PlaylistID == id {
		report.AlarmDisarmed = c.alarm.IsOn
		c.alarm.PlaylistID = ""
		c.alarm.IsOn = false
		c.alarm.NextTrigger = 0
		c.persistAlarm()
	}
	return report, nil
}
