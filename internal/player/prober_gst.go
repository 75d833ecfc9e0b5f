//go:build gstreamer

package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-gst/go-gst/gst"
)

// GstProber determines track durations by prerolling a paused playbin
// with fake sinks and querying the pipeline.
type GstProber struct{}

var gstProbeInitOnce sync.Once

func NewGstProber() *GstProber {
	gstProbeInitOnce.Do(func() {
		gst.Init(nil)
	})
	return &GstProber{}
}

// Probe reports the duration of the file, polling until the pipeline
// prerolls or the context expires.
func (p *GstProber) Probe(ctx context.Context, path string) (float64, bool) {
	launch := fmt.Sprintf("playbin uri=file://%s audio-sink=fakesink video-sink=fakesink", path)
	pipeline, err := gst.ParseLaunch(launch)
	if err != nil {
		return 0, false
	}
	defer pipeline.SetState(gst.StateNull)

	if err := pipeline.SetState(gst.StatePaused); err != nil {
		return 0, false
	}

	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		if dur, ok := pipeline.QueryDuration(gst.FormatTime); ok && dur > 0 {
			return float64(dur) / float64(time.Second), true
		}
		select {
		case <-ctx.Done():
			return 0, false
		case <-tick.C:
		}
	}
}
