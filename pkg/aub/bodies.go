package aub

// AlarmSetBody updates the alarm setting.
type AlarmSetBody struct {
	Time       string `json:"time"`
	PlaylistID string `json:"playlistId"`
	Memo       string `json:"memo"`
}

// AlarmEnableBody arms the alarm.
type AlarmEnableBody struct{}

// AlarmDisableBody disarms the alarm.
type AlarmDisableBody struct{}

// MediaAddBody ingests a media blob. Data is base64-encoded by
// encoding/json; fine for a personal tool on a local broker.
type MediaAddBody struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Kind     string `json:"kind"`
	Data     []byte `json:"data"`
}

// MediaAddReply returns the id of the ingested entry.
type MediaAddReply struct {
	MediaID string `json:"mediaId"`
}

// MediaImportFeedBody ingests the newest enclosure of a podcast feed.
type MediaImportFeedBody struct {
	URL string `json:"url"`
}

// MediaImportFeedReply describes the imported episode.
type MediaImportFeedReply struct {
	MediaID string `json:"mediaId"`
	Title   string `json:"title"`
}

// MediaListBody lists media entries.
type MediaListBody struct{}

// MediaInfo is the wire form of a media entry.
type MediaInfo struct {
	MediaID         string  `json:"mediaId"`
	Name            string  `json:"name"`
	MimeType        string  `json:"mimeType"`
	Kind            string  `json:"kind"`
	CreatedAt       int64   `json:"createdAt"`
	DurationSeconds float64 `json:"durationSeconds,omitempty"`
	HasBlob         bool    `json:"hasBlob"`
}

// MediaListReply lists media entries.
type MediaListReply struct {
	Entries []MediaInfo `json:"entries"`
}

// MediaRenameBody renames a media entry.
type MediaRenameBody struct {
	MediaID string `json:"mediaId"`
	Name    string `json:"name"`
}

// MediaRemoveBody removes a media entry and its blob.
type MediaRemoveBody struct {
	MediaID string `json:"mediaId"`
}

// PlaylistCreateBody creates a playlist.
type PlaylistCreateBody struct {
	Name string `json:"name"`
}

// PlaylistCreateReply returns the new playlist id.
type PlaylistCreateReply struct {
	PlaylistID string `json:"playlistId"`
}

// PlaylistListBody lists playlists.
type PlaylistListBody struct{}

// PlaylistSummary is a playlist list row.
type PlaylistSummary struct {
	PlaylistID string `json:"playlistId"`
	Name       string `json:"name"`
	TrackCount int    `json:"trackCount"`
}

// PlaylistListReply lists playlist summaries.
type PlaylistListReply struct {
	Playlists []PlaylistSummary `json:"playlists"`
}

// PlaylistGetBody fetches one playlist.
type PlaylistGetBody struct {
	PlaylistID string `json:"playlistId"`
}

// PlaylistGetReply returns a playlist with its track ids.
type PlaylistGetReply struct {
	PlaylistID string      `json:"playlistId"`
	Name       string      `json:"name"`
	Tracks     []MediaInfo `json:"tracks"`
}

// PlaylistAddTracksBody appends track ids to a playlist.
type PlaylistAddTracksBody struct {
	PlaylistID string   `json:"playlistId"`
	TrackIDs   []string `json:"trackIds"`
}

// PlaylistRemoveTrackBody removes the track at an index.
type PlaylistRemoveTrackBody struct {
	PlaylistID string `json:"playlistId"`
	Index      int    `json:"index"`
}

// PlaylistMoveTrackBody reorders a track within a playlist.
type PlaylistMoveTrackBody struct {
	PlaylistID string `json:"playlistId"`
	FromIndex  int    `json:"fromIndex"`
	ToIndex    int    `json:"toIndex"`
}

// PlaylistRenameBody renames a playlist.
type PlaylistRenameBody struct {
	PlaylistID string `json:"playlistId"`
	Name       string `json:"name"`
}

// PlaylistDeleteBody deletes a playlist.
type PlaylistDeleteBody struct {
	PlaylistID string `json:"playlistId"`
}

// PlaybackStartBody starts playback. Empty PlaylistID means the
// alarm's playlist.
type PlaybackStartBody struct {
	PlaylistID string `json:"playlistId,omitempty"`
}

// PlaybackStopBody stops playback.
type PlaybackStopBody struct{}

// PlaybackConfirmBody confirms a manual start after blocked autoplay.
type PlaybackConfirmBody struct{}

// StatusGetBody requests the full clock state.
type StatusGetBody struct{}
