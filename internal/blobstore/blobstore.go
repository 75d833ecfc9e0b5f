package blobstore

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNotFound reports a blob that is absent from the store.
var ErrNotFound = errors.New("blob not found")

// Store is the durable key -> binary boundary. Delete is idempotent:
// deleting an absent key succeeds.
type Store interface {
	Put(ctx context.Context, id string, data []byte, contentType string) error
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend string // "sqlite" (default) or "minio"
	Path    string // sqlite database file

	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
}

// New opens the configured backend.
func New(cfg Config, log *zap.Logger) (Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch cfg.Backend {
	case "", "sqlite":
		return NewSQLite(cfg.Path, log)
	case "minio":
		return NewMinio(cfg, log)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}
