//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gordonklaus/portaudio"
)

// Capture reads fixed-size hops of interleaved int16 samples from an input
// device.
type Capture struct {
	stream   *portaudio.Stream
	device   string
	rate     float64
	hop      int
	channels int
	buffer   []int16
	logger   *slog.Logger

	initialized bool // portaudio.Initialize succeeded and Terminate is owed
}

// NewCapture prepares a capture on the first input device whose name
// contains device, or on the default input device when device is empty.
func NewCapture(device string, rate float64, hop int, logger *slog.Logger) *Capture {
	return &Capture{
		device: device,
		rate:   rate,
		hop:    hop,
		logger: logger,
	}
}

func (c *Capture) Start(_ context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}
	c.initialized = true

	dev, err := c.findDevice()
	if err != nil {
		c.Stop()
		return err
	}

	c.channels = dev.MaxInputChannels
	c.buffer = make([]int16, c.hop*c.channels)

	params := portaudio.HighLatencyParameters(dev, nil)
	params.Input.Channels = c.channels
	params.SampleRate = c.rate
	params.FramesPerBuffer = c.hop

	stream, err := portaudio.OpenStream(params, c.buffer)
	if err != nil {
		c.Stop()
		return fmt.Errorf("opening stream: %w", err)
	}
	c.stream = stream

	if err := c.stream.Start(); err != nil {
		c.Stop()
		return fmt.Errorf("starting stream: %w", err)
	}

	c.logger.Info("audio capture started",
		"device", dev.Name,
		"channels", c.channels,
		"sampleRate", c.rate,
		"hop", c.hop,
	)
	return nil
}

func (c *Capture) findDevice() (*portaudio.DeviceInfo, error) {
	if c.device == "" {
		dev, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("default input device: %w", err)
		}
		return dev, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	for _, dev := range devices {
		if dev.MaxInputChannels > 0 && strings.Contains(dev.Name, c.device) {
			return dev, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrDeviceNotFound, c.device)
}

// Channels is valid after Start.
func (c *Capture) Channels() int {
	return c.channels
}

// Read blocks until the next hop is available. Input overflows are not
// treated as errors; the returned slice is reused by the next call.
func (c *Capture) Read() ([]int16, error) {
	if err := c.stream.Read(); err != nil && !errors.Is(err, portaudio.InputOverflowed) {
		return nil, fmt.Errorf("reading from stream: %w", err)
	}
	return c.buffer, nil
}

// Stop releases whatever Start acquired. It is safe to call more than once
// and after a failed Start.
func (c *Capture) Stop() error {
	if c.stream != nil {
		c.stream.Stop()
		c.stream.Close()
		c.stream = nil
	}
	if !c.initialized {
		return nil
	}
	c.initialized = false
	return portaudio.Terminate()
}

// ListDevices enumerates every audio device portaudio can see.
func ListDevices() ([]DeviceInfo, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}

	out := make([]DeviceInfo, 0, len(devices))
	for _, dev := range devices {
		info := DeviceInfo{
			Index:             dev.Index,
			Name:              dev.Name,
			MaxInputChannels:  dev.MaxInputChannels,
			MaxOutputChannels: dev.MaxOutputChannels,
			DefaultSampleRate: dev.DefaultSampleRate,
		}
		if dev.HostApi != nil {
			info.HostAPI = dev.HostApi.Name
		}
		out = append(out, info)
	}
	return out, nil
}
