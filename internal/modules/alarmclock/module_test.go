package alarmclock

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"aubade/pkg/aub"
)

func newTestModule(t *testing.T) *Module {
	t.Helper()
	m, err := NewModule(zap.NewNop(), nil, Config{
		NodeID:   "test",
		StateDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	t.Cleanup(func() {
		m.scheduler.Stop()
		m.engine.Close()
		m.blobs.Close()
	})
	return m
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func command(t *testing.T, cmdType string, body any) aub.CommandEnvelope {
	t.Helper()
	return aub.CommandEnvelope{ID: "1", Type: cmdType, Body: mustJSON(t, body)}
}

func ack(t *testing.T, m *Module, cmdType string, body any) aub.ReplyEnvelope {
	t.Helper()
	reply := m.dispatch(command(t, cmdType, body))
	if reply.Type != "ack" {
		t.Fatalf("%s: expected ack, got %+v", cmdType, reply)
	}
	return reply
}

func addMedia(t *testing.T, m *Module, name string) string {
	t.Helper()
	reply := ack(t, m, "media.add", aub.MediaAddBody{
		Name:     name,
		MimeType: "audio/mpeg",
		Kind:     "audio",
		Data:     []byte("mp3 bytes"),
	})
	var body aub.MediaAddReply
	if err := json.Unmarshal(reply.Body, &body); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	return body.MediaID
}

func createPlaylist(t *testing.T, m *Module, name string) string {
	t.Helper()
	reply := ack(t, m, "playlist.create", aub.PlaylistCreateBody{Name: name})
	var body aub.PlaylistCreateReply
	if err := json.Unmarshal(reply.Body, &body); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	return body.PlaylistID
}

func TestDispatchUnknownCommand(t *testing.T) {
	m := newTestModule(t)

	reply := m.dispatch(command(t, "volume.crank", struct{}{}))
	if reply.Type != "error" || reply.Err.Code != aub.CodeInvalid {
		t.Fatalf("expected invalid, got %+v", reply)
	}
}

func TestMediaAddStoresBlob(t *testing.T) {
	m := newTestModule(t)

	mediaID := addMedia(t, m, "morning song")
	data, err := m.blobs.Get(context.Background(), mediaID)
	if err != nil {
		t.Fatalf("get blob: %v", err)
	}
	if string(data) != "mp3 bytes" {
		t.Fatalf("unexpected blob payload %q", data)
	}

	listReply := ack(t, m, "media.list", aub.MediaListBody{})
	var list aub.MediaListReply
	if err := json.Unmarshal(listReply.Body, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Entries) != 1 || list.Entries[0].Name != "morning song" {
		t.Fatalf("unexpected media list %+v", list.Entries)
	}
	if !list.Entries[0].HasBlob {
		t.Fatalf("expected hasBlob true")
	}
}

func TestMediaAddRejectsEmpty(t *testing.T) {
	m := newTestModule(t)

	reply := m.dispatch(command(t, "media.add", aub.MediaAddBody{Name: "x"}))
	if reply.Type != "error" || reply.Err.Code != aub.CodeInvalid {
		t.Fatalf("expected invalid, got %+v", reply)
	}
}

func TestMediaRemoveDeletesBlob(t *testing.T) {
	m := newTestModule(t)
	mediaID := addMedia(t, m, "song")

	ack(t, m, "media.remove", aub.MediaRemoveBody{MediaID: mediaID})
	if _, err := m.blobs.Get(context.Background(), mediaID); err == nil {
		t.Fatalf("expected blob deleted")
	}

	reply := m.dispatch(command(t, "media.remove", aub.MediaRemoveBody{MediaID: mediaID}))
	if reply.Type != "error" || reply.Err.Code != aub.CodeNotFound {
		t.Fatalf("expected not found, got %+v", reply)
	}
}

func TestAlarmSetValidation(t *testing.T) {
	m := newTestModule(t)

	reply := m.dispatch(command(t, "alarm.set", aub.AlarmSetBody{Time: "7:30"}))
	if reply.Type != "error" || reply.Err.Code != aub.CodeInvalid {
		t.Fatalf("expected invalid time, got %+v", reply)
	}

	reply = m.dispatch(command(t, "alarm.set", aub.AlarmSetBody{Time: "07:30", PlaylistID: "nope"}))
	if reply.Type != "error" || reply.Err.Code != aub.CodeNotFound {
		t.Fatalf("expected unknown playlist, got %+v", reply)
	}
}

func TestAlarmLifecycle(t *testing.T) {
	m := newTestModule(t)
	mediaID := addMedia(t, m, "song")
	playlistID := createPlaylist(t, m, "wakeup")
	ack(t, m, "playlist.addTracks", aub.PlaylistAddTracksBody{PlaylistID: playlistID, TrackIDs: []string{mediaID}})

	ack(t, m, "alarm.set", aub.AlarmSetBody{Time: "06:45", PlaylistID: playlistID, Memo: "gym"})
	ack(t, m, "alarm.enable", aub.AlarmEnableBody{})

	alarm := m.catalog.Alarm()
	if !alarm.IsOn || alarm.Time != "06:45" || alarm.Memo != "gym" {
		t.Fatalf("unexpected alarm %+v", alarm)
	}
	if alarm.NextTrigger == 0 {
		t.Fatalf("expected trigger computed on enable")
	}

	ack(t, m, "alarm.disable", aub.AlarmDisableBody{})
	if alarm := m.catalog.Alarm(); alarm.IsOn || alarm.NextTrigger != 0 {
		t.Fatalf("expected alarm off, got %+v", alarm)
	}
}

func TestAlarmEnableNeedsPlayablePlaylist(t *testing.T) {
	m := newTestModule(t)
	playlistID := createPlaylist(t, m, "empty")
	ack(t, m, "alarm.set", aub.AlarmSetBody{Time: "07:00", PlaylistID: playlistID})

	reply := m.dispatch(command(t, "alarm.enable", aub.AlarmEnableBody{}))
	if reply.Type != "error" || reply.Err.Code != aub.CodeEmptyPlaylist {
		t.Fatalf("expected empty playlist error, got %+v", reply)
	}
}

func TestMediaRemoveDisarmsAlarm(t *testing.T) {
	m := newTestModule(t)
	mediaID := addMedia(t, m, "song")
	playlistID := createPlaylist(t, m, "wakeup")
	ack(t, m, "playlist.addTracks", aub.PlaylistAddTracksBody{PlaylistID: playlistID, TrackIDs: []string{mediaID}})
	ack(t, m, "alarm.set", aub.AlarmSetBody{Time: "07:00", PlaylistID: playlistID})
	ack(t, m, "alarm.enable", aub.AlarmEnableBody{})

	ack(t, m, "media.remove", aub.MediaRemoveBody{MediaID: mediaID})
	if alarm := m.catalog.Alarm(); alarm.IsOn {
		t.Fatalf("expected alarm disarmed, got %+v", alarm)
	}
}

func TestPlaylistFlow(t *testing.T) {
	m := newTestModule(t)
	a := addMedia(t, m, "a")
	b := addMedia(t, m, "b")
	playlistID := createPlaylist(t, m, "wakeup")

	ack(t, m, "playlist.addTracks", aub.PlaylistAddTracksBody{PlaylistID: playlistID, TrackIDs: []string{a, b}})
	ack(t, m, "playlist.moveTrack", aub.PlaylistMoveTrackBody{PlaylistID: playlistID, FromIndex: 0, ToIndex: 1})

	getReply := ack(t, m, "playlist.get", aub.PlaylistGetBody{PlaylistID: playlistID})
	var got aub.PlaylistGetReply
	if err := json.Unmarshal(getReply.Body, &got); err != nil {
		t.Fatalf("decode get: %v", err)
	}
	if len(got.Tracks) != 2 || got.Tracks[0].MediaID != b || got.Tracks[1].MediaID != a {
		t.Fatalf("unexpected track order %+v", got.Tracks)
	}

	ack(t, m, "playlist.removeTrack", aub.PlaylistRemoveTrackBody{PlaylistID: playlistID, Index: 0})
	ack(t, m, "playlist.rename", aub.PlaylistRenameBody{PlaylistID: playlistID, Name: "weekend"})

	listReply := ack(t, m, "playlist.list", aub.PlaylistListBody{})
	var list aub.PlaylistListReply
	if err := json.Unmarshal(listReply.Body, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Playlists) != 1 || list.Playlists[0].Name != "weekend" || list.Playlists[0].TrackCount != 1 {
		t.Fatalf("unexpected playlists %+v", list.Playlists)
	}

	ack(t, m, "playlist.delete", aub.PlaylistDeleteBody{PlaylistID: playlistID})
	reply := m.dispatch(command(t, "playlist.get", aub.PlaylistGetBody{PlaylistID: playlistID}))
	if reply.Type != "error" || reply.Err.Code != aub.CodeNotFound {
		t.Fatalf("expected not found after delete, got %+v", reply)
	}
}

func TestPlaylistRemoveTrackBadIndex(t *testing.T) {
	m := newTestModule(t)
	playlistID := createPlaylist(t, m, "wakeup")

	reply := m.dispatch(command(t, "playlist.removeTrack", aub.PlaylistRemoveTrackBody{PlaylistID: playlistID, Index: 3}))
	if reply.Type != "error" || reply.Err.Code != aub.CodeInvalid {
		t.Fatalf("expected invalid index, got %+v", reply)
	}
}

func TestPlaybackStartErrors(t *testing.T) {
	m := newTestModule(t)

	reply := m.dispatch(command(t, "playback.start", aub.PlaybackStartBody{}))
	if reply.Type != "error" || reply.Err.Code != aub.CodeInvalid {
		t.Fatalf("expected no-playlist error, got %+v", reply)
	}

	reply = m.dispatch(command(t, "playback.start", aub.PlaybackStartBody{PlaylistID: "nope"}))
	if reply.Type != "error" || reply.Err.Code != aub.CodeNotFound {
		t.Fatalf("expected not found, got %+v", reply)
	}

	playlistID := createPlaylist(t, m, "empty")
	reply = m.dispatch(command(t, "playback.start", aub.PlaybackStartBody{PlaylistID: playlistID}))
	if reply.Type != "error" || reply.Err.Code != aub.CodeEmptyPlaylist {
		t.Fatalf("expected empty playlist, got %+v", reply)
	}
}

func TestPlaybackStartDefaultsToAlarmPlaylist(t *testing.T) {
	m := newTestModule(t)
	mediaID := addMedia(t, m, "song")
	playlistID := createPlaylist(t, m, "wakeup")
	ack(t, m, "playlist.addTracks", aub.PlaylistAddTracksBody{PlaylistID: playlistID, TrackIDs: []string{mediaID}})
	ack(t, m, "alarm.set", aub.AlarmSetBody{Time: "07:00", PlaylistID: playlistID})

	ack(t, m, "playback.start", aub.PlaybackStartBody{})
	snap := m.engine.Status()
	if snap.PlaylistID != playlistID {
		t.Fatalf("expected alarm playlist started, got %+v", snap)
	}

	ack(t, m, "playback.stop", aub.PlaybackStopBody{})
	if got := m.engine.Status().State.String(); got != "idle" {
		t.Fatalf("expected idle after stop, got %s", got)
	}
}

func TestStatusGet(t *testing.T) {
	m := newTestModule(t)
	ack(t, m, "alarm.set", aub.AlarmSetBody{Time: "06:00", Memo: "run"})

	reply := ack(t, m, "status.get", struct{}{})
	var state aub.ClockState
	if err := json.Unmarshal(reply.Body, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.Alarm == nil || state.Alarm.Time != "06:00" || state.Alarm.Memo != "run" {
		t.Fatalf("unexpected alarm state %+v", state.Alarm)
	}
	if state.Playback == nil || state.Playback.Status != "idle" {
		t.Fatalf("unexpected playback state %+v", state.Playback)
	}
	if state.StateVersion == 0 {
		t.Fatalf("expected state version to advance")
	}
}
