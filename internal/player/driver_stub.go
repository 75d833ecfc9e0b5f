//go:build !gstreamer

package player

import "errors"

// GstDriver is a stub when the gstreamer tag is not enabled.
type GstDriver struct{}

// NewGstDriver returns an error when the gstreamer build tag is missing.
func NewGstDriver(template string) (*GstDriver, error) {
	return nil, errors.New("gstreamer build tag not enabled")
}

func (d *GstDriver) SetOnFinished(fn func()) {}
func (d *GstDriver) Play(path string) error  { return errors.New("gstreamer build tag not enabled") }
func (d *GstDriver) Stop() error             { return errors.New("gstreamer build tag not enabled") }
func (d *GstDriver) Position() (float64, bool) {
	return 0, false
}
