package commands

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/tuffrabit/m5stack-beatmask/pkg/audio"
	"github.com/tuffrabit/m5stack-beatmask/pkg/beat"
	"github.com/tuffrabit/m5stack-beatmask/pkg/link"
)

// detect: live kick detection, one "1" per kick and "0" otherwise.
func detectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect kicks in live audio and flash the circle on each one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate(cfg.ValidateSerial, cfg.ValidateDetect); err != nil {
				return err
			}

			detector, err := beat.NewDetector(cfg.DetectorParams())
			if err != nil {
				return err
			}

			sender, port, err := openSender()
			if err != nil {
				return err
			}
			defer port.Close()

			capture := audio.NewCapture(cfg.Audio.Device, float64(cfg.Audio.Rate), cfg.HopSize(), logger)
			runner := beat.NewRunner(capture, sender, detector, logger)

			err = runner.Run(cmd.Context())
			logger.Info("detect finished", "sent", sender.Sent())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Audio.Device, "device", cfg.Audio.Device, "input device name substring (default input device if empty)")
	f.IntVar(&cfg.Audio.Rate, "rate", cfg.Audio.Rate, "sample rate in Hz")
	f.IntVar(&cfg.Audio.Chunk, "chunk", cfg.Audio.Chunk, "analysis window in samples")
	f.IntVar(&cfg.Audio.Hop, "hop", cfg.Audio.Hop, "samples between frames (0 means chunk/2)")
	f.DurationVar(&cfg.Detect.History, "hist", cfg.Detect.History, "flux history length")
	f.Float64Var(&cfg.Detect.KHigh, "k-high", cfg.Detect.KHigh, "trigger threshold in standard deviations above the mean flux")
	f.Float64Var(&cfg.Detect.KLow, "k-low", cfg.Detect.KLow, "re-arm threshold in standard deviations above the mean flux")
	f.DurationVar(&cfg.Detect.MinInterval, "min-interval", cfg.Detect.MinInterval, "minimum time between kicks")
	f.Float64Var(&cfg.Detect.RMSThreshold, "rms-th", cfg.Detect.RMSThreshold, "RMS level under which audio counts as silence")
	f.Float64Var(&cfg.Detect.AbsFluxThreshold, "abs-flux-th", cfg.Detect.AbsFluxThreshold, "absolute spectral flux threshold")
	f.Float64Var(&cfg.Detect.BandLow, "bp-low", cfg.Detect.BandLow, "band-pass low edge in Hz")
	f.Float64Var(&cfg.Detect.BandHigh, "bp-high", cfg.Detect.BandHigh, "band-pass high edge in Hz")
	f.IntVar(&cfg.Detect.BandOrder, "bp-order", cfg.Detect.BandOrder, "band-pass order")

	return cmd
}

// openSender opens the configured serial port. The caller closes the port.
func openSender() (*link.Sender, io.Closer, error) {
	port, err := link.Open(cfg.Serial.Port, cfg.Serial.Baud, cfg.Serial.Timeout)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("serial port open", "port", cfg.Serial.Port, "baud", cfg.Serial.Baud)

	return link.NewSender(port, logger), port, nil
}
