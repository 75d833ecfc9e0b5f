package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func openTest(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	return c
}

func addTestMedia(t *testing.T, c *Catalog, name string) MediaEntry {
	t.Helper()
	entry := NewMediaEntry(name, "audio/mpeg", KindAudio, 100)
	c.AddMedia(entry)
	return entry
}

func TestOpenDefaults(t *testing.T) {
	c := openTest(t)

	if got := c.Alarm(); got.Time != "07:00" || got.IsOn {
		t.Fatalf("expected default alarm, got %+v", got)
	}
	if len(c.Media()) != 0 || len(c.Playlists()) != 0 {
		t.Fatalf("expected empty catalog")
	}
}

func TestOpenDiscardsCorruptDocuments(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"media.json", "playlists.json", "alarm.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{not json"), 0o644); err != nil {
			t.Fatalf("write corrupt file: %v", err)
		}
	}

	c, err := Open(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	if got := c.Alarm(); got.Time != "07:00" {
		t.Fatalf("expected default alarm after corrupt file, got %+v", got)
	}
	if len(c.Media()) != 0 {
		t.Fatalf("expected empty media after corrupt file")
	}
}

func TestPersistenceRoundtrip(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}

	entry := addTestMedia(t, c, "morning song")
	pl := c.CreatePlaylist("wakeup")
	if err := c.AddTracks(pl.ID, []string{entry.ID}); err != nil {
		t.Fatalf("add tracks: %v", err)
	}
	if _, err := c.SetAlarm("06:30", pl.ID, "early shift"); err != nil {
		t.Fatalf("set alarm: %v", err)
	}
	if err := c.SetAlarmEnabled(true); err != nil {
		t.Fatalf("enable alarm: %v", err)
	}

	reopened, err := Open(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen catalog: %v", err)
	}
	if got, ok := reopened.MediaByID(entry.ID); !ok || got.DisplayName != "morning song" {
		t.Fatalf("expected media to survive reopen, got %+v", got)
	}
	got, ok := reopened.PlaylistByID(pl.ID)
	if !ok || len(got.TrackIDs) != 1 || got.TrackIDs[0] != entry.ID {
		t.Fatalf("expected playlist to survive reopen, got %+v", got)
	}
	if alarm := reopened.Alarm(); alarm.Time != "06:30" || !alarm.IsOn || alarm.Memo != "early shift" {
		t.Fatalf("expected alarm to survive reopen, got %+v", alarm)
	}
}

func TestAddTracksUnknownMedia(t *testing.T) {
	c := openTest(t)
	pl := c.CreatePlaylist("wakeup")

	if err := c.AddTracks(pl.ID, []string{"nope"}); err != ErrMediaNotFound {
		t.Fatalf("expected ErrMediaNotFound, got %v", err)
	}
	if err := c.AddTracks("nope", nil); err != ErrPlaylistNotFound {
		t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
	}
}

func TestAddTracksAllowsDuplicates(t *testing.T) {
	c := openTest(t)
	entry := addTestMedia(t, c, "song")
	pl := c.CreatePlaylist("wakeup")

	if err := c.AddTracks(pl.ID, []string{entry.ID, entry.ID}); err != nil {
		t.Fatalf("add tracks: %v", err)
	}
	got, _ := c.PlaylistByID(pl.ID)
	if len(got.TrackIDs) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(got.TrackIDs))
	}
}

func TestRemoveTrackAtBounds(t *testing.T) {
	c := openTest(t)
	entry := addTestMedia(t, c, "song")
	pl := c.CreatePlaylist("wakeup")
	if err := c.AddTracks(pl.ID, []string{entry.ID}); err != nil {
		t.Fatalf("add tracks: %v", err)
	}

	if _, err := c.RemoveTrackAt(pl.ID, 1); err != ErrIndexOutOfRange {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := c.RemoveTrackAt(pl.ID, -1); err != ErrIndexOutOfRange {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := c.RemoveTrackAt(pl.ID, 0); err != nil {
		t.Fatalf("remove track: %v", err)
	}
	got, _ := c.PlaylistByID(pl.ID)
	if len(got.TrackIDs) != 0 {
		t.Fatalf("expected empty playlist")
	}
}

func TestMoveTrack(t *testing.T) {
	c := openTest(t)
	a := addTestMedia(t, c, "a")
	b := addTestMedia(t, c, "b")
	d := addTestMedia(t, c, "d")
	pl := c.CreatePlaylist("wakeup")
	if err := c.AddTracks(pl.ID, []string{a.ID, b.ID, d.ID}); err != nil {
		t.Fatalf("add tracks: %v", err)
	}

	if err := c.MoveTrack(pl.ID, 0, 2); err != nil {
		t.Fatalf("move track: %v", err)
	}
	got, _ := c.PlaylistByID(pl.ID)
	want := []string{b.ID, d.ID, a.ID}
	for i, id := range want {
		if got.TrackIDs[i] != id {
			t.Fatalf("expected order %v, got %v", want, got.TrackIDs)
		}
	}

	if err := c.MoveTrack(pl.ID, 3, 0); err != ErrIndexOutOfRange {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestSetMediaDurationSetOnce(t *testing.T) {
	c := openTest(t)
	entry := addTestMedia(t, c, "song")

	c.SetMediaDuration(entry.ID, 120)
	c.SetMediaDuration(entry.ID, 300)

	got, _ := c.MediaByID(entry.ID)
	if got.DurationSeconds != 120 {
		t.Fatalf("expected duration 120, got %v", got.DurationSeconds)
	}
}

func TestRemoveMediaExcisesFromPlaylists(t *testing.T) {
	c := openTest(t)
	a := addTestMedia(t, c, "a")
	b := addTestMedia(t, c, "b")
	pl := c.CreatePlaylist("wakeup")
	if err := c.AddTracks(pl.ID, []string{a.ID, b.ID, a.ID}); err != nil {
		t.Fatalf("add tracks: %v", err)
	}

	if _, err := c.RemoveMedia(a.ID); err != nil {
		t.Fatalf("remove media: %v", err)
	}
	if _, ok := c.MediaByID(a.ID); ok {
		t.Fatalf("expected media gone")
	}
	got, _ := c.PlaylistByID(pl.ID)
	if len(got.TrackIDs) != 1 || got.TrackIDs[0] != b.ID {
		t.Fatalf("expected only b left, got %v", got.TrackIDs)
	}

	if _, err := c.RemoveMedia(a.ID); err != ErrMediaNotFound {
		t.Fatalf("expected ErrMediaNotFound, got %v", err)
	}
}

func TestRemoveMediaDisarmsAlarm(t *testing.T) {
	c := openTest(t)
	entry := addTestMedia(t, c, "song")
	pl := c.CreatePlaylist("wakeup")
	if err := c.AddTracks(pl.ID, []string{entry.ID}); err != nil {
		t.Fatalf("add tracks: %v", err)
	}
	if _, err := c.SetAlarm("07:00", pl.ID, ""); err != nil {
		t.Fatalf("set alarm: %v", err)
	}
	if err := c.SetAlarmEnabled(true); err != nil {
		t.Fatalf("enable alarm: %v", err)
	}

	report, err := c.RemoveMedia(entry.ID)
	if err != nil {
		t.Fatalf("remove media: %v", err)
	}
	if !report.AlarmDisarmed {
		t.Fatalf("expected alarm disarmed")
	}
	if alarm := c.Alarm(); alarm.IsOn || alarm.NextTrigger != 0 {
		t.Fatalf("expected alarm off, got %+v", alarm)
	}
}

func TestMarkBlobMissingDisarmsAlarm(t *testing.T) {
	c := openTest(t)
	entry := addTestMedia(t, c, "song")
	pl := c.CreatePlaylist("wakeup")
	if err := c.AddTracks(pl.ID, []string{entry.ID}); err != nil {
		t.Fatalf("add tracks: %v", err)
	}
	if _, err := c.SetAlarm("07:00", pl.ID, ""); err != nil {
		t.Fatalf("set alarm: %v", err)
	}
	if err := c.SetAlarmEnabled(true); err != nil {
		t.Fatalf("enable alarm: %v", err)
	}

	report := c.MarkBlobMissing(entry.ID)
	if !report.AlarmDisarmed {
		t.Fatalf("expected alarm disarmed")
	}
	got, _ := c.MediaByID(entry.ID)
	if got.HasBlob {
		t.Fatalf("expected blob flagged missing")
	}
	tracks, ok := c.ResolvableTracks(pl.ID)
	if !ok || len(tracks) != 0 {
		t.Fatalf("expected no resolvable tracks")
	}
}

func TestDeletePlaylistDetachesAlarm(t *testing.T) {
	c := openTest(t)
	entry := addTestMedia(t, c, "song")
	pl := c.CreatePlaylist("wakeup")
	if err := c.AddTracks(pl.ID, []string{entry.ID}); err != nil {
		t.Fatalf("add tracks: %v", err)
	}
	if _, err := c.SetAlarm("07:00", pl.ID, ""); err != nil {
		t.Fatalf("set alarm: %v", err)
	}
	if err := c.SetAlarmEnabled(true); err != nil {
		t.Fatalf("enable alarm: %v", err)
	}

	report, err := c.DeletePlaylist(pl.ID)
	if err != nil {
		t.Fatalf("delete playlist: %v", err)
	}
	if !report.AlarmDisarmed {
		t.Fatalf("expected alarm disarmed")
	}
	if alarm := c.Alarm(); alarm.IsOn || alarm.PlaylistID != "" {
		t.Fatalf("expected alarm detached, got %+v", alarm)
	}
}

func TestSetAlarmEnabledRequiresPlayablePlaylist(t *testing.T) {
	c := openTest(t)

	if err := c.SetAlarmEnabled(true); err != ErrPlaylistNotFound {
		t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
	}

	pl := c.CreatePlaylist("wakeup")
	if _, err := c.SetAlarm("07:00", pl.ID, ""); err != nil {
		t.Fatalf("set alarm: %v", err)
	}
	if err := c.SetAlarmEnabled(true); err != ErrEmptyPlaylist {
		t.Fatalf("expected ErrEmptyPlaylist, got %v", err)
	}

	entry := addTestMedia(t, c, "song")
	if err := c.AddTracks(pl.ID, []string{entry.ID}); err != nil {
		t.Fatalf("add tracks: %v", err)
	}
	if err := c.SetAlarmEnabled(true); err != nil {
		t.Fatalf("enable alarm: %v", err)
	}
}

func TestSetAlarmUnknownPlaylist(t *testing.T) {
	c := openTest(t)

	if _, err := c.SetAlarm("07:00", "nope", ""); err != ErrPlaylistNotFound {
		t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
	}
}

func TestSetAlarmClearsTrigger(t *testing.T) {
	c := openTest(t)
	entry := addTestMedia(t, c, "song")
	pl := c.CreatePlaylist("wakeup")
	if err := c.AddTracks(pl.ID, []string{entry.ID}); err != nil {
		t.Fatalf("add tracks: %v", err)
	}
	if _, err := c.SetAlarm("07:00", pl.ID, ""); err != nil {
		t.Fatalf("set alarm: %v", err)
	}
	c.SetNextTrigger(12345)

	if _, err := c.SetAlarm("08:00", pl.ID, ""); err != nil {
		t.Fatalf("set alarm: %v", err)
	}
	if got := c.Alarm(); got.NextTrigger != 0 {
		t.Fatalf("expected trigger cleared, got %d", got.NextTrigger)
	}
}

func TestSetAlarmUnplayablePlaylistDisarms(t *testing.T) {
	c := openTest(t)
	entry := addTestMedia(t, c, "song")
	pl := c.CreatePlaylist("wakeup")
	if err := c.AddTracks(pl.ID, []string{entry.ID}); err != nil {
		t.Fatalf("add tracks: %v", err)
	}
	if _, err := c.SetAlarm("07:00", pl.ID, ""); err != nil {
		t.Fatalf("set alarm: %v", err)
	}
	if err := c.SetAlarmEnabled(true); err != nil {
		t.Fatalf("enable alarm: %v", err)
	}

	empty := c.CreatePlaylist("silent")
	report, err := c.SetAlarm("07:00", empty.ID, "")
	if err != nil {
		t.Fatalf("set alarm: %v", err)
	}
	if !report.AlarmDisarmed {
		t.Fatalf("expected alarm disarmed")
	}
	if alarm := c.Alarm(); alarm.IsOn || alarm.NextTrigger != 0 {
		t.Fatalf("expected alarm off, got %+v", alarm)
	}

	// Repointing back at a playable playlist stays disarmed until an
	// explicit enable.
	if _, err := c.SetAlarm("07:00", pl.ID, ""); err != nil {
		t.Fatalf("set alarm: %v", err)
	}
	if c.Alarm().IsOn {
		t.Fatalf("expected alarm to stay off after repointing")
	}
}

func TestResolvableTracksSkipsMissingBlob(t *testing.T) {
	c := openTest(t)
	entry := addTestMedia(t, c, "song")
	pl := c.CreatePlaylist("wakeup")
	if err := c.AddTracks(pl.ID, []string{entry.ID}); err != nil {
		t.Fatalf("add tracks: %v", err)
	}

	c.MarkBlobMissing(entry.ID)
	tracks, ok := c.ResolvableTracks(pl.ID)
	if !ok {
		t.Fatalf("expected playlist found")
	}
	if len(tracks) != 0 {
		t.Fatalf("expected no resolvable tracks, got %d", len(tracks))
	}

	if _, ok := c.ResolvableTracks("nope"); ok {
		t.Fatalf("expected unknown playlist")
	}
}
