//go:build !gstreamer

package player

// GstProber is a stub when the gstreamer tag is not enabled; durations
// stay unknown.
type GstProber struct {
	NoopProber
}

func NewGstProber() *GstProber {
	return &GstProber{}
}
