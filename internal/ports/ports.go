package ports

import (
	"context"

	"aubade/pkg/aub"
)

// Broker publishes commands and reads retained state/presence.
type Broker interface {
	ReplyTopic() string
	PublishCommand(ctx context.Context, nodeID string, cmd aub.CommandEnvelope) (aub.ReplyEnvelope, error)
	ListPresence(ctx context.Context) ([]aub.Presence, error)
	GetClockState(ctx context.Context, nodeID string) (aub.ClockState, error)
	WatchClock(ctx context.Context, nodeID string) (<-chan aub.ClockState, <-chan error)
}

// Clock returns the current unix time in seconds.
type Clock interface {
	NowUnix() int64
}

// IDGen returns unique correlation IDs.
type IDGen interface {
	NewID() string
}
