package core

import (
	"context"
	"encoding/json"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"aubade/internal/ports"
	"aubade/pkg/aub"
)

// Service orchestrates aubade CLI use cases against one clock node.
type Service struct {
	Broker ports.Broker
	Clock  ports.Clock
	IDGen  ports.IDGen
	Config Config
}

// ListNodes returns presence entries, optionally filtered by kind.
func (s Service) ListNodes(ctx context.Context, kind string) (NodesResult, error) {
	nodes, err := s.Broker.ListPresence(ctx)
	if err != nil {
		return NodesResult{}, WrapError(ExitRuntime, "list nodes", err)
	}
	if kind != "" {
		filtered := nodes[:0]
		for _, node := range nodes {
			if node.Kind == kind {
				filtered = append(filtered, node)
			}
		}
		nodes = filtered
	}
	return NodesResult{Nodes: nodes}, nil
}

// Status returns the clock node's retained state.
func (s Service) Status(ctx context.Context) (StatusResult, error) {
	state, err := s.Broker.GetClockState(ctx, s.Config.NodeID)
	if err != nil {
		return StatusResult{}, WrapError(ExitRuntime, "get clock state", err)
	}
	return StatusResult{NodeID: s.Config.NodeID, State: state}, nil
}

// WatchStatus streams state updates for the clock node.
func (s Service) WatchStatus(ctx context.Context) (<-chan aub.ClockState, <-chan error) {
	return s.Broker.WatchClock(ctx, s.Config.NodeID)
}

// AlarmSet updates the alarm time, playlist and memo.
func (s Service) AlarmSet(ctx context.Context, timeStr, playlistID, memo string) error {
	_, err := s.publish(ctx, "alarm.set", aub.AlarmSetBody{Time: timeStr, PlaylistID: playlistID, Memo: memo})
	return err
}

// AlarmEnable arms the alarm.
func (s Service) AlarmEnable(ctx context.Context) error {
	_, err := s.publish(ctx, "alarm.enable", aub.AlarmEnableBody{})
	return err
}

// AlarmDisable disarms the alarm.
func (s Service) AlarmDisable(ctx context.Context) error {
	_, err := s.publish(ctx, "alarm.disable", aub.AlarmDisableBody{})
	return err
}

// MediaAdd uploads a local file into the clock's media catalog.
func (s Service) MediaAdd(ctx context.Context, path, name, mimeType, kind string) (MediaAddResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MediaAddResult{}, WrapError(ExitUsage, "read media file", err)
	}
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(path))
	}
	if kind == "" {
		if strings.HasPrefix(mimeType, "video/") {
			kind = "video"
		} else {
			kind = "audio"
		}
	}

	reply, err := s.publish(ctx, "media.add", aub.MediaAddBody{
		Name:     name,
		MimeType: mimeType,
		Kind:     kind,
		Data:     data,
	})
	if err != nil {
		return MediaAddResult{}, err
	}
	var body aub.MediaAddReply
	if err := json.Unmarshal(reply.Body, &body); err != nil {
		return MediaAddResult{}, WrapError(ExitRuntime, "decode reply", err)
	}
	return MediaAddResult{MediaID: body.MediaID, Name: name}, nil
}

// MediaImportFeed pulls the newest episode of a feed into the catalog.
func (s Service) MediaImportFeed(ctx context.Context, url string) (MediaAddResult, error) {
	reply, err := s.publish(ctx, "media.importFeed", aub.MediaImportFeedBody{URL: url})
	if err != nil {
		return MediaAddResult{}, err
	}
	var body aub.MediaImportFeedReply
	if err := json.Unmarshal(reply.Body, &body); err != nil {
		return MediaAddResult{}, WrapError(ExitRuntime, "decode reply", err)
	}
	return MediaAddResult{MediaID: body.MediaID, Name: body.Title}, nil
}

// MediaList lists catalog entries.
func (s Service) MediaList(ctx context.Context) (MediaListResult, error) {
	reply, err := s.publish(ctx, "media.list", aub.MediaListBody{})
	if err != nil {
		return MediaListResult{}, err
	}
	var body aub.MediaListReply
	if err := json.Unmarshal(reply.Body, &body); err != nil {
		return MediaListResult{}, WrapError(ExitRuntime, "decode reply", err)
	}
	return MediaListResult{Entries: body.Entries}, nil
}

// MediaRename renames a media entry.
func (s Service) MediaRename(ctx context.Context, mediaID, name string) error {
	_, err := s.publish(ctx, "media.rename", aub.MediaRenameBody{MediaID: mediaID, Name: name})
	return err
}

// MediaRemove deletes a media entry and its stored payload.
func (s Service) MediaRemove(ctx context.Context, mediaID string) error {
	_, err := s.publish(ctx, "media.remove", aub.MediaRemoveBody{MediaID: mediaID})
	return err
}

// PlaylistCreate creates a playlist and returns its id.
func (s Service) PlaylistCreate(ctx context.Context, name string) (string, error) {
	reply, err := s.publish(ctx, "playlist.create", aub.PlaylistCreateBody{Name: name})
	if err != nil {
		return "", err
	}
	var body aub.PlaylistCreateReply
	if err := json.Unmarshal(reply.Body, &body); err != nil {
		return "", WrapError(ExitRuntime, "decode reply", err)
	}
	return body.PlaylistID, nil
}

// PlaylistList lists playlists.
func (s Service) PlaylistList(ctx context.Context) (PlaylistListResult, error) {
	reply, err := s.publish(ctx, "playlist.list", aub.PlaylistListBody{})
	if err != nil {
		return PlaylistListResult{}, err
	}
	var body aub.PlaylistListReply
	if err := json.Unmarshal(reply.Body, &body); err != nil {
		return PlaylistListResult{}, WrapError(ExitRuntime, "decode reply", err)
	}
	return PlaylistListResult{Playlists: body.Playlists}, nil
}

// PlaylistShow fetches one playlist with its tracks.
func (s Service) PlaylistShow(ctx context.Context, playlistID string) (PlaylistShowResult, error) {
	reply, err := s.publish(ctx, "playlist.get", aub.PlaylistGetBody{PlaylistID: playlistID})
	if err != nil {
		return PlaylistShowResult{}, err
	}
	var body aub.PlaylistGetReply
	if err := json.Unmarshal(reply.Body, &body); err != nil {
		return PlaylistShowResult{}, WrapError(ExitRuntime, "decode reply", err)
	}
	return PlaylistShowResult{Playlist: body}, nil
}

// PlaylistAddTracks appends tracks to a playlist.
func (s Service) PlaylistAddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	_, err := s.publish(ctx, "playlist.addTracks", aub.PlaylistAddTracksBody{PlaylistID: playlistID, TrackIDs: trackIDs})
	return err
}

// PlaylistRemoveTrack removes the track at an index.
func (s Service) PlaylistRemoveTrack(ctx context.Context, playlistID string, index int) error {
	_, err := s.publish(ctx, "playlist.removeTrack", aub.PlaylistRemoveTrackBody{PlaylistID: playlistID, Index: index})
	return err
}

// PlaylistMoveTrack reorders a track within a playlist.
func (s Service) PlaylistMoveTrack(ctx context.Context, playlistID string, fromIndex, toIndex int) error {
	_, err := s.publish(ctx, "playlist.moveTrack", aub.PlaylistMoveTrackBody{PlaylistID: playlistID, FromIndex: fromIndex, ToIndex: toIndex})
	return err
}

// PlaylistRename renames a playlist.
func (s Service) PlaylistRename(ctx context.Context, playlistID, name string) error {
	_, err := s.publish(ctx, "playlist.rename", aub.PlaylistRenameBody{PlaylistID: playlistID, Name: name})
	return err
}

// PlaylistDelete deletes a playlist.
func (s Service) PlaylistDelete(ctx context.Context, playlistID string) error {
	_, err := s.publish(ctx, "playlist.delete", aub.PlaylistDeleteBody{PlaylistID: playlistID})
	return err
}

// Play starts playback; an empty playlistID means the alarm playlist.
func (s Service) Play(ctx context.Context, playlistID string) error {
	_, err := s.publish(ctx, "playback.start", aub.PlaybackStartBody{PlaylistID: playlistID})
	return err
}

// Stop halts playback.
func (s Service) Stop(ctx context.Context) error {
	_, err := s.publish(ctx, "playback.stop", aub.PlaybackStopBody{})
	return err
}

// Confirm completes a manual start after blocked autoplay.
func (s Service) Confirm(ctx context.Context) error {
	_, err := s.publish(ctx, "playback.confirmStart", aub.PlaybackConfirmBody{})
	return err
}

func (s Service) publish(ctx context.Context, cmdType string, body any) (aub.ReplyEnvelope, error) {
	cmd, err := aub.NewCommand(cmdType, body)
	if err != nil {
		return aub.ReplyEnvelope{}, WrapError(ExitRuntime, "build command", err)
	}
	cmd.ID = s.IDGen.NewID()
	cmd.TS = s.Clock.NowUnix()
	cmd.From = s.Config.Identity
	cmd.ReplyTo = s.Broker.ReplyTopic()

	reply, err := s.Broker.PublishCommand(ctx, s.Config.NodeID, cmd)
	if err != nil {
		return aub.ReplyEnvelope{}, WrapError(ExitRuntime, "publish command", err)
	}
	if reply.Err != nil {
		return aub.ReplyEnvelope{}, ErrorForReplyCode(reply.Err.Code, reply.Err.Message)
	}
	return reply, nil
}
