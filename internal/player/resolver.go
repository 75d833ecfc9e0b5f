package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"aubade/internal/blobstore"
	"aubade/internal/catalog"
)

// ErrHandleNotFound reports media whose bytes cannot be produced, either
// because the entry has no stored blob or the blob is gone from the store.
var ErrHandleNotFound = errors.New("media handle not found")

// Handle is a playable materialization of a catalog entry: the blob
// written out to a local file the driver can open.
type Handle struct {
	TrackID  string
	Path     string
	MimeType string
}

// HandleResolver turns catalog entries into playable handles.
type HandleResolver interface {
	Resolve(ctx context.Context, entry catalog.MediaEntry) (*Handle, error)
	ReleaseAll()
}

// Resolver materializes blobs into a session directory and caches the
// resulting handles per track. ReleaseAll drops the whole cache and
// removes the files in one sweep.
type Resolver struct {
	dir   string
	store blobstore.Store
	log   *zap.Logger

	mu      sync.Mutex
	handles map[string]*Handle
}

// NewResolver creates a resolver rooted at dir, creating it if needed.
func NewResolver(dir string, store blobstore.Store, log *zap.Logger) (*Resolver, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create handle dir: %w", err)
	}
	return &Resolver{
		dir:     dir,
		store:   store,
		log:     log,
		handles: make(map[string]*Handle),
	}, nil
}

// Resolve returns a playable handle for the entry, reusing a cached one
// when the track was already materialized this session.
func (r *Resolver) Resolve(ctx context.Context, entry catalog.MediaEntry) (*Handle, error) {
	r.mu.Lock()
	if h, ok := r.handles[entry.ID]; ok {
		r.mu.Unlock()
		return h, nil
	}
	r.mu.Unlock()

	if !entry.HasBlob {
		return nil, ErrHandleNotFound
	}

	data, err := r.store.Get(ctx, entry.ID)
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil, ErrHandleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch blob %s: %w", entry.ID, err)
	}

	path := filepath.Join(r.dir, entry.ID+extensionFor(entry.MimeType))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("materialize %s: %w", entry.ID, err)
	}

	h := &Handle{TrackID: entry.ID, Path: path, MimeType: entry.MimeType}
	r.mu.Lock()
	r.handles[entry.ID] = h
	r.mu.Unlock()

	r.log.Debug("materialized media",
		zap.String("media_id", entry.ID),
		zap.String("path", path),
		zap.Int("bytes", len(data)))
	return h, nil
}

// ReleaseAll removes every materialized file and clears the cache.
func (r *Resolver) ReleaseAll() {
	r.mu.Lock()
	handles := r.handles
	r.handles = make(map[string]*Handle)
	r.mu.Unlock()

	for _, h := range handles {
		if err := os.Remove(h.Path); err != nil && !os.IsNotExist(err) {
			r.log.Warn("remove media file", zap.String("path", h.Path), zap.Error(err))
		}
	}
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/ogg", "application/ogg":
		return ".ogg"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/flac", "audio/x-flac":
		return ".flac"
	case "audio/mp4", "audio/aac":
		return ".m4a"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	default:
		return ".bin"
	}
}
