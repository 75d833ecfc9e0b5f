package catalog

import (
	"strings"

	"github.com/google/uuid"
)

// RemovalReport describes side effects of a destructive mutation.
type RemovalReport struct {
	AlarmDisarmed bool
}

// NewMediaEntry builds an entry for a freshly ingested blob. The
// caller writes the blob first; metadata only exists once the payload
// is durable.
func NewMediaEntry(name, mimeType, kind string, createdAt int64) MediaEntry {
	if kind != KindVideo {
		kind = KindAudio
	}
	return MediaEntry{
		ID:          uuid.NewString(),
		DisplayName: strings.TrimSpace(name),
		MimeType:    mimeType,
		Kind:        kind,
		CreatedAt:   createdAt,
		HasBlob:     true,
	}
}

// AddMedia appends an ingested entry.
func (c *Catalog) AddMedia(entry MediaEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.media = append(c.media, entry)
	c.persistMedia()
}

// RenameMedia updates the display name.
func (c *Catalog) RenameMedia(id, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.media {
		if c.media[i].ID == id {
			c.media[i].DisplayName = strings.TrimSpace(name)
			c.persistMedia()
			return nil
		}
	}
	return ErrMediaNotFound
}

// SetMediaDuration records a probed duration. Set at most once.
func (c *Catalog) SetMediaDuration(id string, seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.media {
		if c.media[i].ID == id {
			if c.media[i].DurationSeconds == 0 && seconds > 0 {
				c.media[i].DurationSeconds = seconds
				c.persistMedia()
			}
			return
		}
	}
}

// MarkBlobMissing flags an entry whose payload could not be fetched.
// The entry survives but becomes unplayable; the alarm is disarmed if
// this leaves its playlist empty.
func (c *Catalog) MarkBlobMissing(id string) RemovalReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.media {
		if c.media[i].ID == id {
			if !c.media[i].HasBlob {
				return RemovalReport{}
			}
			c.media[i].HasBlob = false
			c.persistMedia()
			return RemovalReport{AlarmDisarmed: c.disarmIfUnplayableLocked()}
		}
	}
	return RemovalReport{}
}

// RemoveMedia deletes an entry and excises its id from every
// playlist. The caller deletes the blob. Disarms the alarm when the
// removal leaves its playlist without a playable track.
func (c *Catalog) RemoveMedia(id string) (RemovalReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	found := false
	filtered := c.media[:0]
	for _, entry := range c.media {
		if entry.ID == id {
			found = true
			continue
		}
		filtered = append(filtered, entry)
	}
	if !found {
		return RemovalReport{}, ErrMediaNotFound
	}
	c.media = filtered
	c.persistMedia()

	changed := false
	for i := range c.playlists {
		kept := c.playlists[i].TrackIDs[:0]
		for _, trackID := range c.playlists[i].TrackIDs {
			if trackID == id {
				changed = true
				continue
			}
			kept = append(kept, trackID)
		}
		c.playlists[i].TrackIDs = kept
	}
	if changed {
		c.persistPlaylists()
	}

	return RemovalReport{AlarmDisarmed: c.disarmIfUnplayableLocked()}, nil
}
