package beat

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/tuffrabit/m5stack-beatmask/pkg/audio"
	"github.com/tuffrabit/m5stack-beatmask/pkg/protocol"
)

// Source delivers hops of interleaved int16 samples. *audio.Capture satisfies it.
type Source interface {
	Start(ctx context.Context) error
	Stop() error
	Channels() int
	Read() ([]int16, error)
}

// Sender delivers commands to the device.
type Sender interface {
	Send(cmd protocol.Command) error
}

// Runner feeds a Source through a Detector and forwards its commands.
type Runner struct {
	source   Source
	sender   Sender
	detector *Detector
	chunk    int
	logger   *slog.Logger
	now      func() time.Time
}

func NewRunner(source Source, sender Sender, detector *Detector, logger *slog.Logger) *Runner {
	return &Runner{
		source:   source,
		sender:   sender,
		detector: detector,
		chunk:    detector.params.Chunk,
		logger:   logger,
		now:      time.Now,
	}
}

// Run blocks until ctx is canceled or the source or sender fails.
func (r *Runner) Run(ctx context.Context) error {
	// A failed Start may still hold resources
	defer r.source.Stop()
	if err := r.source.Start(ctx); err != nil {
		return fmt.Errorf("starting audio source: %w", err)
	}

	window := audio.NewWindow(r.chunk, r.source.Channels())
	r.logger.Info("kick detection started", "chunk", r.chunk)

	var kicks int
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("kick detection stopped", "kicks", kicks)
			return ctx.Err()
		default:
		}

		hop, err := r.source.Read()
		if err != nil {
			return fmt.Errorf("reading audio: %w", err)
		}
		window.Push(hop)

		cmd, ok := r.detector.Process(window.Samples(), r.now())
		if !ok {
			continue
		}

		if cmd == protocol.Draw {
			kicks++
			r.logger.Info("kick detected", "count", kicks, "bpm", math.Round(r.detector.BPM()*10)/10)
		}

		if err := r.sender.Send(cmd); err != nil {
			return fmt.Errorf("sending %s: %w", cmd, err)
		}
	}
}
