//go:build !portaudio
// +build !portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
)

// Capture stub when portaudio is not available
type Capture struct {
	logger *slog.Logger
}

func NewCapture(device string, rate float64, hop int, logger *slog.Logger) *Capture {
	return &Capture{logger: logger}
}

func (c *Capture) Start(_ context.Context) error {
	return fmt.Errorf("%w: rebuild with -tags portaudio", ErrUnavailable)
}

func (c *Capture) Channels() int {
	return 0
}

func (c *Capture) Read() ([]int16, error) {
	return nil, ErrUnavailable
}

func (c *Capture) Stop() error {
	return nil
}

func ListDevices() ([]DeviceInfo, error) {
	return nil, fmt.Errorf("%w: rebuild with -tags portaudio", ErrUnavailable)
}
