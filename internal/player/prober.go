package player

import "context"

// Prober inspects a materialized file and reports its duration in
// seconds. ok is false when the duration cannot be determined; the
// caller treats such tracks as zero-length for progress purposes.
type Prober interface {
	Probe(ctx context.Context, path string) (seconds float64, ok bool)
}

// NoopProber never knows the duration.
type NoopProber struct{}

func (NoopProber) Probe(ctx context.Context, path string) (float64, bool) {
	return 0, false
}
