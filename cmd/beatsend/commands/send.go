package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tuffrabit/m5stack-beatmask/pkg/protocol"
)

// send <draw|clear>: one command, then exit.
func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "send <draw|clear>",
		Short:     "Send a single command",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"draw", "clear", protocol.LineDraw, protocol.LineClear},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseCommandArg(args[0])
			if err != nil {
				return err
			}
			if err := cfg.ValidateSerial(); err != nil {
				return err
			}

			sender, port, err := openSender()
			if err != nil {
				return err
			}
			defer port.Close()

			if err := sender.Send(c); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "sent", c)
			return nil
		},
	}
}

func parseCommandArg(arg string) (protocol.Command, error) {
	switch arg {
	case "draw", protocol.LineDraw:
		return protocol.Draw, nil
	case "clear", protocol.LineClear:
		return protocol.Clear, nil
	default:
		return protocol.Unrecognized, fmt.Errorf("%w: %q (want draw or clear)", protocol.ErrUnrecognized, arg)
	}
}
