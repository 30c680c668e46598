package commands

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/tuffrabit/m5stack-beatmask/pkg/beat"
	"github.com/tuffrabit/m5stack-beatmask/pkg/protocol"
)

// random: toggle the circle at random, useful to check the wiring.
func randomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Send a random draw or clear command at a fixed interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate(cfg.ValidateSerial, cfg.ValidateRandom); err != nil {
				return err
			}

			sender, port, err := openSender()
			if err != nil {
				return err
			}
			defer port.Close()

			err = runRandom(cmd.Context(), sender, cfg.Random.Interval, randomCommand)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&cfg.Random.Interval, "interval", cfg.Random.Interval, "time between commands")
	return cmd
}

func randomCommand() protocol.Command {
	if rand.Intn(2) == 1 {
		return protocol.Draw
	}
	return protocol.Clear
}

// runRandom sends one picked command per tick until ctx is done.
func runRandom(ctx context.Context, sender beat.Sender, interval time.Duration, pick func() protocol.Command) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		cmd := pick()
		if err := sender.Send(cmd); err != nil {
			return err
		}
		line, _ := cmd.Line()
		logger.Info("sent", "command", cmd.String(), "line", line)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
