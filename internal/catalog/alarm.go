package catalog

// SetAlarm updates time, playlist and memo. Enabling happens through
// SetAlarmEnabled. Repointing an armed alarm at a playlist with no
// playable track disarms it, same as removing the last playable track
// would. Any change clears the stored trigger; the scheduler
// recomputes on its next sync.
func (c *Catalog) SetAlarm(timeStr, playlistID, memo string) (RemovalReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if playlistID != "" {
		if _, ok := c.playlistByIDLocked(playlistID); !ok {
			return RemovalReport{}, ErrPlaylistNotFound
		}
	}
	c.alarm.Time = timeStr
	c.alarm.PlaylistID = playlistID
	c.alarm.Memo = memo
	c.alarm.NextTrigger = 0
	c.persistAlarm()
	return RemovalReport{AlarmDisarmed: c.disarmIfUnplayableLocked()}, nil
}

// SetAlarmEnabled arms or disarms. Arming requires a playlist with at
// least one playable track.
func (c *Catalog) SetAlarmEnabled(on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if on {
		if c.alarm.PlaylistID == "" {
			return ErrPlaylistNotFound
		}
		if _, ok := c.playlistByIDLocked(c.alarm.PlaylistID); !ok {
			return ErrPlaylistNotFound
		}
		if !c.hasResolvableTrackLocked(c.alarm.PlaylistID) {
			return ErrEmptyPlaylist
		}
	}
	c.alarm.IsOn = on
	if !on {
		c.alarm.NextTrigger = 0
	}
	c.persistAlarm()
	return nil
}

// SetNextTrigger persists the computed trigger instant (unix
// seconds). The scheduler owns the value.
func (c *Catalog) SetNextTrigger(unix int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.alarm.NextTrigger == unix {
		return
	}
	c.alarm.NextTrigger = unix
	c.persistAlarm()
}
