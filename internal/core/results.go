package core

import "aubade/pkg/aub"

// NodesResult holds a list of presence records.
type NodesResult struct {
	Nodes []aub.Presence
}

// StatusResult holds the clock node's retained state.
type StatusResult struct {
	NodeID string
	State  aub.ClockState
}

// MediaAddResult reports an ingested media entry.
type MediaAddResult struct {
	MediaID string
	Name    string
}

// MediaListResult holds the media catalog listing.
type MediaListResult struct {
	Entries []aub.MediaInfo
}

// PlaylistListResult holds playlist summaries.
type PlaylistListResult struct {
	Playlists []aub.PlaylistSummary
}

// PlaylistShowResult holds one playlist with its tracks.
type PlaylistShowResult struct {
	Playlist aub.PlaylistGetReply
}

// RawResult holds arbitrary JSON data for output.
type RawResult struct {
	Data any
}
