// Package config defines the settings of the beatsend host tool.
// Values come from built-in defaults, then an optional YAML file, then
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tuffrabit/m5stack-beatmask/pkg/beat"
)

// Errors
var (
	ErrInvalidConfig = errors.New("invalid config")
)

type Config struct {
	Serial SerialConfig `yaml:"serial"`
	Audio  AudioConfig  `yaml:"audio"`
	Detect DetectConfig `yaml:"detect"`
	Random RandomConfig `yaml:"random"`
	Log    LogConfig    `yaml:"log"`
}

type SerialConfig struct {
	Port    string        `yaml:"port"`
	Baud    int           `yaml:"baud"`
	Timeout time.Duration `yaml:"timeout"`
}

type AudioConfig struct {
	Device string `yaml:"device"` // substring of the input device name, empty for default
	Rate   int    `yaml:"rate"`
	Chunk  int    `yaml:"chunk"`
	Hop    int    `yaml:"hop"` // 0 means chunk/2
}

type DetectConfig struct {
	History          time.Duration `yaml:"history"`
	KHigh            float64       `yaml:"k_high"`
	KLow             float64       `yaml:"k_low"`
	MinInterval      time.Duration `yaml:"min_interval"`
	RMSThreshold     float64       `yaml:"rms_threshold"`
	AbsFluxThreshold float64       `yaml:"abs_flux_threshold"`
	BandLow          float64       `yaml:"band_low"`
	BandHigh         float64       `yaml:"band_high"`
	BandOrder        int           `yaml:"band_order"`
}

type RandomConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the settings the kick detector was tuned with.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:    "/dev/ttyUSB0",
			Baud:    115200,
			Timeout: time.Second,
		},
		Audio: AudioConfig{
			Rate:  44100,
			Chunk: 512,
		},
		Detect: DetectConfig{
			History:          time.Second,
			KHigh:            1.3,
			KLow:             0.8,
			MinInterval:      180 * time.Millisecond,
			RMSThreshold:     0.01,
			AbsFluxThreshold: 0.05,
			BandLow:          40,
			BandHigh:         80,
			BandOrder:        1,
		},
		Random: RandomConfig{
			Interval: 2 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML file over the defaults. Environment variables in the
// file are expanded.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.LoadFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile merges the YAML file at path into c. Keys absent from the file
// keep their current value.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

// HopSize resolves the hop, defaulting to half a chunk.
func (c *Config) HopSize() int {
	if c.Audio.Hop == 0 {
		return c.Audio.Chunk / 2
	}
	return c.Audio.Hop
}

// Validate checks every section.
func (c *Config) Validate() error {
	for _, validate := range []func() error{c.ValidateSerial, c.ValidateDetect, c.ValidateRandom} {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSerial rejects settings the serial link cannot use.
func (c *Config) ValidateSerial() error {
	switch {
	case c.Serial.Port == "":
		return fmt.Errorf("%w: serial port is empty", ErrInvalidConfig)
	case c.Serial.Baud <= 0:
		return fmt.Errorf("%w: baud must be positive, got %d", ErrInvalidConfig, c.Serial.Baud)
	}
	return nil
}

// ValidateDetect rejects audio and detect settings the kick detector
// cannot use.
func (c *Config) ValidateDetect() error {
	switch {
	case c.Audio.Rate <= 0:
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidConfig, c.Audio.Rate)
	case c.Audio.Chunk <= 0:
		return fmt.Errorf("%w: chunk must be positive, got %d", ErrInvalidConfig, c.Audio.Chunk)
	case c.HopSize() <= 0 || c.HopSize() > c.Audio.Chunk:
		return fmt.Errorf("%w: hop must be in 1..%d, got %d", ErrInvalidConfig, c.Audio.Chunk, c.HopSize())
	case c.Detect.KLow > c.Detect.KHigh:
		return fmt.Errorf("%w: k_low %.2f exceeds k_high %.2f", ErrInvalidConfig, c.Detect.KLow, c.Detect.KHigh)
	case c.Detect.BandOrder < 1:
		return fmt.Errorf("%w: band order must be at least 1, got %d", ErrInvalidConfig, c.Detect.BandOrder)
	case c.Detect.BandLow <= 0 || c.Detect.BandHigh <= c.Detect.BandLow:
		return fmt.Errorf("%w: band %.1f-%.1f Hz is empty", ErrInvalidConfig, c.Detect.BandLow, c.Detect.BandHigh)
	case c.Detect.BandHigh >= float64(c.Audio.Rate)/2:
		return fmt.Errorf("%w: band high %.1f Hz is above Nyquist", ErrInvalidConfig, c.Detect.BandHigh)
	}
	return nil
}

func (c *Config) ValidateRandom() error {
	if c.Random.Interval <= 0 {
		return fmt.Errorf("%w: random interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// DetectorParams converts the audio and detect sections for beat.NewDetector.
func (c *Config) DetectorParams() beat.Params {
	return beat.Params{
		SampleRate:       float64(c.Audio.Rate),
		Chunk:            c.Audio.Chunk,
		Hop:              c.HopSize(),
		History:          c.Detect.History,
		KHigh:            c.Detect.KHigh,
		KLow:             c.Detect.KLow,
		MinInterval:      c.Detect.MinInterval,
		RMSThreshold:     c.Detect.RMSThreshold,
		AbsFluxThreshold: c.Detect.AbsFluxThreshold,
		BandLow:          c.Detect.BandLow,
		BandHigh:         c.Detect.BandHigh,
		BandOrder:        c.Detect.BandOrder,
	}
}
