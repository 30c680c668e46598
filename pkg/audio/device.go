package audio

import "errors"

var (
	ErrUnavailable    = errors.New("audio capture not available")
	ErrDeviceNotFound = errors.New("audio device not found")
)

// DeviceInfo describes one audio device.
type DeviceInfo struct {
	Index             int
	Name              string
	HostAPI           string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
}
