// Package alarmclock is the daemon module that ties the catalog, blob
// store, scheduler and playback engine together behind the MQTT
// command surface.
package alarmclock

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"aubade/internal/adapters/clock"
	"aubade/internal/adapters/mqttserver"
	"aubade/internal/alarm"
	"aubade/internal/blobstore"
	"aubade/internal/catalog"
	"aubade/internal/ingest"
	"aubade/internal/player"
	"aubade/pkg/aub"
)

type mqttClient interface {
	PublishJSON(topic string, qos byte, retained bool, v any) error
	ClearRetained(topic string) error
	Subscribe(topic string, qos byte, handler paho.MessageHandler) error
	Unsubscribe(topic string) error
}

// Config configures the alarm clock module.
type Config struct {
	NodeID    string
	TopicBase string
	Name      string
	StateDir  string

	Blob blobstore.Config

	// Driver selects playback: "gstreamer" or "null".
	Driver   string
	Pipeline string

	// RequireManualStart holds alarm playback until the user confirms.
	RequireManualStart bool

	FeedTimeout  time.Duration
	PublishState bool
}

const defaultPipeline = "playbin uri=file://{path}"

// Module implements the alarm clock node.
type Module struct {
	log      *zap.Logger
	client   mqttClient
	config   Config
	cmdTopic string

	catalog   *catalog.Catalog
	blobs     blobstore.Store
	engine    *player.Engine
	scheduler *alarm.Scheduler
	importer  *ingest.FeedImporter

	mu           sync.Mutex
	stateVersion atomic.Int64
}

// NewModule builds the module and all its moving parts from config.
func NewModule(log *zap.Logger, client *mqttserver.Client, cfg Config) (*Module, error) {
	if strings.TrimSpace(cfg.NodeID) == "" {
		return nil, errors.New("node_id required")
	}
	if strings.TrimSpace(cfg.StateDir) == "" {
		return nil, errors.New("state_dir required")
	}
	if strings.TrimSpace(cfg.TopicBase) == "" {
		cfg.TopicBase = aub.BaseTopic
	}
	if strings.TrimSpace(cfg.Name) == "" {
		cfg.Name = "Alarm Clock"
	}
	if strings.TrimSpace(cfg.Pipeline) == "" {
		cfg.Pipeline = defaultPipeline
	}
	if cfg.Blob.Path == "" {
		cfg.Blob.Path = filepath.Join(cfg.StateDir, "blobs.db")
	}

	cat, err := catalog.Open(filepath.Join(cfg.StateDir, "catalog"), log)
	if err != nil {
		return nil, err
	}
	blobs, err := blobstore.New(cfg.Blob, log)
	if err != nil {
		return nil, err
	}
	resolver, err := player.NewResolver(filepath.Join(cfg.StateDir, "session"), blobs, log)
	if err != nil {
		blobs.Close()
		return nil, err
	}

	var driver player.Driver
	var prober player.Prober
	switch cfg.Driver {
	case "gstreamer":
		gd, err := player.NewGstDriver(cfg.Pipeline)
		if err != nil {
			blobs.Close()
			return nil, err
		}
		driver = gd
		prober = player.NewGstProber()
	case "", "null":
		driver = player.NewNullDriver(clock.System{}, durationLookup(cat))
		prober = player.NoopProber{}
	default:
		blobs.Close()
		return nil, errors.New("driver must be gstreamer or null")
	}

	policy := player.AutoplayAlways
	if cfg.RequireManualStart {
		policy = player.ManualStartForAlarms
	}

	engine := player.New(cat, resolver, driver, prober, policy, log)
	scheduler := alarm.New(cat, engine, clock.System{}, log)

	m := &Module{
		log:       log,
		client:    client,
		config:    cfg,
		cmdTopic:  aub.TopicCommands(cfg.TopicBase, cfg.NodeID),
		catalog:   cat,
		blobs:     blobs,
		engine:    engine,
		scheduler: scheduler,
		importer:  ingest.NewFeedImporter(cfg.FeedTimeout, log),
	}
	engine.SetNotify(func() { m.publishState() })
	return m, nil
}

// durationLookup maps a materialized file back to its catalog entry so
// the null driver knows how long to pretend to play it.
func durationLookup(cat *catalog.Catalog) func(path string) float64 {
	return func(path string) float64 {
		base := filepath.Base(path)
		id := strings.TrimSuffix(base, filepath.Ext(base))
		if entry, ok := cat.MediaByID(id); ok {
			return entry.DurationSeconds
		}
		return 0
	}
}

// Run arms the persisted alarm, announces presence and serves commands
// until the context ends.
func (m *Module) Run(ctx context.Context) error {
	m.scheduler.Sync()

	if err := m.publishPresence(); err != nil {
		return err
	}
	if m.config.PublishState {
		m.publishState()
	}

	go m.runStateTicker(ctx)

	handler := func(_ paho.Client, msg paho.Message) {
		m.handleMessage(msg)
	}
	if err := m.client.Subscribe(m.cmdTopic, 1, handler); err != nil {
		return err
	}
	defer m.client.Unsubscribe(m.cmdTopic)

	<-ctx.Done()
	// Retained state stays so the CLI can answer "did my alarm run"
	// while the daemon is down; presence goes so the node drops out
	// of listings.
	if err := m.client.ClearRetained(aub.TopicPresence(m.config.TopicBase, m.config.NodeID)); err != nil {
		m.log.Warn("clear presence", zap.Error(err))
	}
	m.scheduler.Stop()
	m.engine.Close()
	if err := m.blobs.Close(); err != nil {
		m.log.Warn("close blob store", zap.Error(err))
	}
	return nil
}

func (m *Module) publishPresence() error {
	presence := aub.Presence{
		NodeID: m.config.NodeID,
		Kind:   "alarmclock",
		Name:   m.config.Name,
		Caps: map[string]any{
			"feedImport": true,
			"alarm":      true,
		},
		TS: time.Now().Unix(),
	}
	return m.client.PublishJSON(aub.TopicPresence(m.config.TopicBase, m.config.NodeID), 1, true, presence)
}

func (m *Module) publishState() {
	if !m.config.PublishState {
		return
	}
	_ = m.client.PublishJSON(aub.TopicState(m.config.TopicBase, m.config.NodeID), 1, true, m.clockState())
}

// runStateTicker republishes state each second while playback is
// live, so watchers see progress move.
func (m *Module) runStateTicker(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.engine.Status().State == player.StatePlaying {
				m.publishState()
			}
		}
	}
}

func (m *Module) clockState() aub.ClockState {
	setting := m.catalog.Alarm()
	snap := m.engine.Status()

	state := aub.ClockState{
		Alarm: &aub.AlarmState{
			Time:        setting.Time,
			PlaylistID:  setting.PlaylistID,
			Memo:        setting.Memo,
			IsOn:        setting.IsOn,
			NextTrigger: setting.NextTrigger,
		},
		Playback: &aub.PlaybackState{
			Status:           snap.State.String(),
			PlaylistID:       snap.PlaylistID,
			Index:            snap.Index,
			TrackID:          snap.TrackID,
			TrackName:        snap.TrackName,
			Message:          snap.Message,
			NeedsManualStart: snap.NeedsManualStart,
		},
		StateVersion: m.stateVersion.Add(1),
		TS:           time.Now().Unix(),
	}
	if snap.State != player.StateIdle {
		state.Playback.Progress = &aub.ProgressState{
			TotalSeconds:     snap.Progress.TotalSeconds,
			PlayedSeconds:    snap.Progress.PlayedSeconds,
			RemainingSeconds: snap.Progress.RemainingSeconds,
			Percent:          snap.Progress.Percent,
		}
	}
	return state
}

func (m *Module) handleMessage(msg paho.Message) {
	var cmd aub.CommandEnvelope
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		m.log.Warn("invalid command", zap.Error(err))
		return
	}

	// Ingest commands move blobs or hit the network; keep them off
	// the dispatch path.
	if cmd.Type == "media.add" || cmd.Type == "media.importFeed" {
		go m.handleSlowCommand(cmd)
		return
	}

	m.mu.Lock()
	reply := m.dispatch(cmd)
	m.mu.Unlock()
	m.publishReply(cmd.ReplyTo, reply)
}

func (m *Module) handleSlowCommand(cmd aub.CommandEnvelope) {
	m.mu.Lock()
	reply := m.dispatch(cmd)
	m.mu.Unlock()
	m.publishReply(cmd.ReplyTo, reply)
}

func (m *Module) publishReply(replyTo string, reply aub.ReplyEnvelope) {
	if replyTo != "" {
		_ = m.client.PublishJSON(replyTo, 1, false, reply)
	}
	m.publishState()
}

func (m *Module) dispatch(cmd aub.CommandEnvelope) aub.ReplyEnvelope {
	switch cmd.Type {
	case "alarm.set":
		return m.handleAlarmSet(cmd)
	case "alarm.enable":
		return m.handleAlarmEnable(cmd)
	case "alarm.disable":
		return m.handleAlarmDisable(cmd)
	case "media.add":
		return m.handleMediaAdd(cmd)
	case "media.importFeed":
		return m.handleMediaImportFeed(cmd)
	case "media.list":
		return m.handleMediaList(cmd)
	case "media.rename":
		return m.handleMediaRename(cmd)
	case "media.remove":
		return m.handleMediaRemove(cmd)
	case "playlist.create":
		return m.handlePlaylistCreate(cmd)
	case "playlist.list":
		return m.handlePlaylistList(cmd)
	case "playlist.get":
		return m.handlePlaylistGet(cmd)
	case "playlist.addTracks":
		return m.handlePlaylistAddTracks(cmd)
	case "playlist.removeTrack":
		return m.handlePlaylistRemoveTrack(cmd)
	case "playlist.moveTrack":
		return m.handlePlaylistMoveTrack(cmd)
	case "playlist.rename":
		return m.handlePlaylistRename(cmd)
	case "playlist.delete":
		return m.handlePlaylistDelete(cmd)
	case "playback.start":
		return m.handlePlaybackStart(cmd)
	case "playback.stop":
		return m.handlePlaybackStop(cmd)
	case "playback.confirmStart":
		return m.handlePlaybackConfirm(cmd)
	case "status.get":
		return okReply(cmd, m.clockState())
	default:
		return errorReply(cmd, aub.CodeInvalid, "unknown command "+cmd.Type)
	}
}

func (m *Module) handleAlarmSet(cmd aub.CommandEnvelope) aub.ReplyEnvelope {
	var body aub.AlarmSetBody
	if err := json.Unmarshal(cmd.Body, &body); err != nil {
		return errorReply(cmd, aub.CodeInvalid, "invalid body")
	}
	if _, err := alarm.NextTrigger(body.Time, time.Now()); err != nil {
		return errorReply(cmd, aub.CodeInvalid, err.Error())
	}
	report, err := m.catalog.SetAlarm(body.Time, body.PlaylistID, body.Memo)
	if err != nil {
		return catalogErrorReply(cmd, err)
	}
	if report.AlarmDisarmed {
		m.log.Info("alarm disarmed: repointed at playlist with no playable track",
			zap.String("playlist_id", body.PlaylistID))
	}
	m.scheduler.Sync()
	return okReply(cmd, nil)
}

func (m *Module) handleAlarmEnable(cmd aub.CommandEnvelope) aub.ReplyEnvelope {
	if err := m.catalog.SetAlarmEnabled(true); err != nil {
		return catalogErrorReply(cmd, err)
	}
	m.scheduler.Sync()
	return okReply(cmd, nil)
}

func (m *Module) handleAlarmDisable(cmd aub.CommandEnvelope) aub.ReplyEnvelope {
	if err := m.scheduler.Disarm(); err != nil {
		return catalogErrorReply(cmd, err)
	}
	return okReply(cmd, nil)
}

func (m *Module) handleMediaAdd(cmd aub.CommandEnvelope) aub.ReplyEnvelope {
	var body aub.MediaAddBody
	if err := json.Unmarshal(cmd.Body, &body); err != nil {
		return errorReply(cmd, aub.CodeInvalid, "invalid body")
	}
	if strings.TrimSpace(body.Name) == "" || len(body.Data) == 0 {
		return errorReply(cmd, aub.CodeInvalid, "name and data required")
	}

	entry := catalog.NewMediaEntry(body.Name, body.MimeType, body.Kind, time.Now().Unix())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := m.blobs.Put(ctx, entry.ID, body.Data, body.MimeType); err != nil {
		m.log.Error("store blob", zap.Error(err))
		return errorReply(cmd, aub.CodeInternal, "cannot store media")
	}
	m.catalog.AddMedia(entry)

	m.log.Info("media added",
		zap.String("media_id", entry.ID),
		zap.String("name", entry.DisplayName),
		zap.Int("bytes", len(body.Data)))
	return okReply(cmd, aub.MediaAddReply{MediaID: entry.ID})
}

func (m *Module) handleMediaImportFeed(cmd aub.CommandEnvelope) aub.ReplyEnvelope {
	var body aub.MediaImportFeedBody
	if err := json.Unmarshal(cmd.Body, &body); err != nil {
		return errorReply(cmd, aub.CodeInvalid, "invalid body")
	}
	if strings.TrimSpace(body.URL) == "" {
		return errorReply(cmd, aub.CodeInvalid, "url required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	episodes, err := m.importer.FetchLatest(ctx, body.URL, 1)
	if err != nil {
		return errorReply(cmd, aub.CodeInvalid, err.Error())
	}
	episode := episodes[0]

	mimeType := episode.MimeType
	if mimeType == "" {
		mimeType = "audio/mpeg"
	}
	entry := catalog.NewMediaEntry(episode.Title, mimeType, catalog.KindAudio, time.Now().Unix())
	if err := m.blobs.Put(ctx, entry.ID, episode.Data, mimeType); err != nil {
		m.log.Error("store episode", zap.Error(err))
		return errorReply(cmd, aub.CodeInternal, "cannot store media")
	}
	m.catalog.AddMedia(entry)

	m.log.Info("feed episode imported",
		zap.String("media_id", entry.ID),
		zap.String("title", episode.Title),
		zap.String("url", episode.URL))
	return okReply(cmd, aub.MediaImportFeedReply{MediaID: entry.ID, Title: episode.Title})
}

func (m *Module) handleMediaList(cmd aub.CommandEnvelope) aub.ReplyEnvelope {
	entries := m.catalog.Media()
	out := make([]aub.MediaInfo, len(entries))
	for i, entry := range entries {
		out[i] = mediaInfo(entry)
	}
	return okReply(cmd, aub.MediaListReply{Entries: out})
}

func (m *Module) handleMediaRename(cmd aub.CommandEnvelope) aub.ReplyEnvelope {
	var body aub.MediaRenameBody
	if err := json.Unmarshal(cmd.Body, &body); err != nil {
		return errorReply(cmd, aub.CodeInvalid, "invalid body")
	}
	if strings.TrimSpace(body.Name) == "" {
		return errorReply(cmd, aub.CodeInvalid, "name required")
	}
	if err := m.catalog.RenameMedia(body.MediaID, body.Name); err != nil {
		return catalogErrorReply(cmd, err)
	}
	return okReply(cmd, nil)
}

func (m *Module) handleMediaRemove(cmd aub.CommandEnvelope) aub.ReplyEnvelope {
	var body aub.MediaRemoveBody
	if err := json.Unmarshal(cmd.Body, &body); err != nil {
		return errorReply(cmd, aub.CodeInvalid, "invalid body")
	}
	report, err := m.catalog.RemoveMedia(body.MediaID)
	if err != nil {
		return catalogErrorReply(cmd, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.blobs.Delete(ctx, body.MediaID); err != nil {
		m.log.Warn("delete blob", zap.String("media_id", body.MediaID), zap.Error(err))
	}

	if report.AlarmDisarmed {
		m.log.Info("alarm disarmed by media removal", zap.String("media_id", body.MediaID))
	}
	m.scheduler.Sync()
	return okReply(cmd, nil)
}

func (m *Module) handlePlaylistCreate(cmd aub.CommandEnvelope) aub.ReplyEnvelope {
	var body aub.PlaylistCreateBody
	if err := json.Unmarshal(cmd.Body, &body); err != nil {
		return errorReply(cmd, aub.CodeInvalid, "invalid body")
	}
	if strings.TrimSpace(body.Name) == "" {
		return errorReply(cmd, aub.CodeInvalid, "name required")
	}
	pl := m.catalog.CreatePlaylist(body.Name)
	return okReply(cmd, aub.PlaylistCreateReply{PlaylistID: pl.ID})
}

func (m *Module) handlePlaylistList(cmd aub.CommandEnvelope) aub.ReplyEnvelope {
	playlists := m.catalog.Playlists()
	out := make([]aub.PlaylistSummary, len(playlists))
	for i, pl := range playlists {
		out[i] = aub.PlaylistSummary{PlaylistID: pl.ID, Name: pl.Name, TrackCount: len(pl.TrackIDs)}
	}
	return okReply(cmd, aub.PlaylistListReply{Playlists: out})
}

func (m *Module) handlePlaylistGet(cmd aub.CommandEnvelope) aub.ReplyEnvelope {
	var body aub.PlaylistGetBody
	if err := json.Unmarshal(cmd.Body, &body); err != nil {
		return errorReply(cmd, aub.CodeInvalid, "invalid body")
	}
	pl, ok := m.catalog.PlaylistByID(body.PlaylistID)
	if !ok {
		return errorReply(cmd, aub.CodeNotFound, "playlist not found")
	}
	tracks := make([]aub.MediaInfo, 0, len(pl.TrackIDs))
	for _, id := range pl.TrackIDs {
		if entry, ok := m.catalog.MediaByID(id); ok {
			tracks = append(tracks, mediaInfo(entry))
		} else {
			tracks = append(tracks, aub.MediaInfo{MediaID: id, Name: "(missing)"})
		}
	}
	return okReply(cmd, aub.PlaylistGetReply{PlaylistID: pl.ID, Name: pl.Name, Tracks: tracks})
}

func (m *Module) handlePlaylistAddTracks(cmd aub.CommandEnvelope) aub.ReplyEnvelope {
	var body aub.PlaylistAddTracksBody
	if err := json.Unmarshal(cmd.Body, &body); err != nil {
		return errorReply(cmd, aub.CodeInvalid, "invalid body")
	}
	if len(body.TrackIDs) == 0 {
		return errorReply(cmd, aub.CodeInvalid, "trackIds required")
	}
	if err := m.catalog.AddTracks(body.PlaylistID, body.TrackIDs); err != nil {
		return catalogErrorReply(cmd, err)
	}
	return okReply(cmd, nil)
}

func (m *Module) handlePlaylistRemoveTrack(cmd aub.CommandEnvelope) aub.ReplyEnvelope {
	var body aub.PlaylistRemoveTrackBody
	if err := json.Unmarshal(cmd.Body, &body); err != nil {
		return errorReply(cmd, aub.CodeInvalid, "invalid body")
	}
	report, err := m.catalog.RemoveTrackAt(body.PlaylistID, body.Index)
	if err != nil {
		return catalogErrorReply(cmd, err)
	}
	if report.AlarmDisarmed {
		m.log.Info("alarm disarmed by track removal", zap.String("playlist_id", body.PlaylistID))
	}
	m.scheduler.Sync()
	return okReply(cmd, nil)
}

func (m *Module) handlePlaylistMoveTrack(cmd aub.CommandEnvelope) aub.ReplyEnvelope {
	var body aub.PlaylistMoveTrackBody
	if err := json.Unmarshal(cmd.Body, &body); err != nil {
		return errorReply(cmd, aub.CodeInvalid, "invalid body")
	}
	if err := m.catalog.MoveTrack(body.PlaylistID, body.FromIndex, body.ToIndex); err != nil {
		return catalogErrorReply(cmd, err)
	}
	return okReply(cmd, nil)
}

func (m *Module) handlePlaylistRename(cmd aub.CommandEnvelope) aub.ReplyEnvelope {
	var body aub.PlaylistRenameBody
	if err := json.Unmarshal(cmd.Body, &body); err != nil {
		return errorReply(cmd, aub.CodeInvalid, "invalid body")
	}
	if strings.TrimSpace(body.Name) == "" {
		return errorReply(cmd, aub.CodeInvalid, "name required")
	}
	if err := m.catalog.RenamePlaylist(body.PlaylistID, body.Name); err != nil {
		return catalogErrorReply(cmd, err)
	}
	return okReply(cmd, nil)
}

func (m *Module) handlePlaylistDelete(cmd aub.CommandEnvelope) aub.ReplyEnvelope {
	var body aub.PlaylistDeleteBody
	if err := json.Unmarshal(cmd.Body, &body); err != nil {
		return errorReply(cmd, aub.CodeInvalid, "invalid body")
	}
	report, err := m.catalog.DeletePlaylist(body.PlaylistID)
	if err != nil {
		return catalogErrorReply(cmd, err)
	}
	if report.AlarmDisarmed {
		m.log.Info("alarm disarmed by playlist deletion", zap.String("playlist_id", body.PlaylistID))
	}
	m.scheduler.Sync()
	return okReply(cmd, nil)
}

func (m *Module) handlePlaybackStart(cmd aub.CommandEnvelope) aub.ReplyEnvelope {
	var body aub.PlaybackStartBody
	if err := json.Unmarshal(cmd.Body, &body); err != nil {
		return errorReply(cmd, aub.CodeInvalid, "invalid body")
	}
	playlistID := body.PlaylistID
	if playlistID == "" {
		playlistID = m.catalog.Alarm().PlaylistID
	}
	if playlistID == "" {
		return errorReply(cmd, aub.CodeInvalid, "no playlist selected")
	}
	if err := m.engine.Start(playlistID, false); err != nil {
		switch {
		case errors.Is(err, player.ErrPlaylistNotFound):
			return errorReply(cmd, aub.CodeNotFound, "playlist not found")
		case errors.Is(err, player.ErrPlaylistEmpty):
			return errorReply(cmd, aub.CodeEmptyPlaylist, "playlist is empty")
		default:
			return errorReply(cmd, aub.CodeInternal, err.Error())
		}
	}
	return okReply(cmd, nil)
}

func (m *Module) handlePlaybackStop(cmd aub.CommandEnvelope) aub.ReplyEnvelope {
	m.engine.Stop()
	return okReply(cmd, nil)
}

func (m *Module) handlePlaybackConfirm(cmd aub.CommandEnvelope) aub.ReplyEnvelope {
	m.engine.ConfirmManualStart()
	return okReply(cmd, nil)
}

func mediaInfo(entry catalog.MediaEntry) aub.MediaInfo {
	return aub.MediaInfo{
		MediaID:         entry.ID,
		Name:            entry.DisplayName,
		MimeType:        entry.MimeType,
		Kind:            entry.Kind,
		CreatedAt:       entry.CreatedAt,
		DurationSeconds: entry.DurationSeconds,
		HasBlob:         entry.HasBlob,
	}
}

func okReply(cmd aub.CommandEnvelope, body any) aub.ReplyEnvelope {
	reply := aub.ReplyEnvelope{ID: cmd.ID, Type: "ack", OK: true, TS: time.Now().Unix()}
	if body != nil {
		payload, err := json.Marshal(body)
		if err == nil {
			reply.Body = payload
		}
	}
	return reply
}

func errorReply(cmd aub.CommandEnvelope, code string, message string) aub.ReplyEnvelope {
	return aub.ReplyEnvelope{
		ID:   cmd.ID,
		Type: "error",
		OK:   false,
		TS:   time.Now().Unix(),
		Err:  &aub.ReplyError{Code: code, Message: message},
	}
}

func catalogErrorReply(cmd aub.CommandEnvelope, err error) aub.ReplyEnvelope {
	switch {
	case errors.Is(err, catalog.ErrMediaNotFound),
		errors.Is(err, catalog.ErrPlaylistNotFound):
		return errorReply(cmd, aub.CodeNotFound, err.Error())
	case errors.Is(err, catalog.ErrEmptyPlaylist):
		return errorReply(cmd, aub.CodeEmptyPlaylist, err.Error())
	case errors.Is(err, catalog.ErrIndexOutOfRange):
		return errorReply(cmd, aub.CodeInvalid, err.Error())
	default:
		return errorReply(cmd, aub.CodeInternal, err.Error())
	}
}
