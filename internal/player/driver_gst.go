//go:build gstreamer

package player

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-gst/go-gst/gst"
)

// GstDriver plays materialized files through a GStreamer pipeline
// built from a template, e.g.
// "playbin uri=file://{path} audio-sink=autoaudiosink".
type GstDriver struct {
	template string

	mu         sync.Mutex
	onFinished func()
	current    *gst.Element
}

var gstInitOnce sync.Once

// NewGstDriver creates a GStreamer driver using a pipeline template.
func NewGstDriver(template string) (*GstDriver, error) {
	if strings.TrimSpace(template) == "" {
		return nil, errors.New("pipeline template required")
	}
	gstInitOnce.Do(func() {
		gst.Init(nil)
	})
	return &GstDriver{template: template}, nil
}

// SetOnFinished registers the track-completion callback.
func (d *GstDriver) SetOnFinished(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.onFinished = fn
}

// Play starts a pipeline for the file, replacing any current one.
func (d *GstDriver) Play(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopCurrentLocked()

	launch := strings.ReplaceAll(d.template, "{path}", path)
	pipeline, err := gst.ParseLaunch(launch)
	if err != nil {
		return err
	}
	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return err
	}

	d.current = pipeline
	go d.watchBus(pipeline)
	return nil
}

// Stop tears down the current pipeline.
func (d *GstDriver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopCurrentLocked()
	return nil
}

// Position reports elapsed seconds of the current pipeline.
func (d *GstDriver) Position() (float64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil {
		return 0, false
	}
	pos, ok := d.current.QueryPosition(gst.FormatTime)
	if !ok || pos < 0 {
		return 0, false
	}
	return float64(pos) / float64(time.Second), true
}

func (d *GstDriver) stopCurrentLocked() {
	if d.current == nil {
		return
	}
	_ = d.current.SetState(gst.StateNull)
	d.current = nil
}

// watchBus waits for the pipeline to end. The callback fires only if
// the pipeline is still the active one, so Stop and track replacement
// suppress stale completions.
func (d *GstDriver) watchBus(pipeline *gst.Element) {
	bus := pipeline.GetBus()
	if bus == nil {
		return
	}
	msg := bus.TimedPopFiltered(gst.ClockTimeNone, gst.MessageEOS|gst.MessageError)
	if msg == nil {
		return
	}

	d.mu.Lock()
	if d.current != pipeline {
		d.mu.Unlock()
		return
	}
	d.stopCurrentLocked()
	fn := d.onFinished
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}
