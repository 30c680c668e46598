package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tuffrabit/m5stack-beatmask/pkg/audio"
	"github.com/tuffrabit/m5stack-beatmask/pkg/link"
)

// devices: what can be passed to --port and --device.
func devicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List serial ports and audio devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			ports, err := link.Ports()
			if err != nil {
				return err
			}
			printPorts(out, ports)

			devices, err := audio.ListDevices()
			if err != nil {
				return err
			}
			printDevices(out, devices)
			return nil
		},
	}
}

func printPorts(w io.Writer, ports []string) {
	fmt.Fprintln(w, "Serial ports:")
	if len(ports) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, p := range ports {
		fmt.Fprintf(w, "  %s\n", p)
	}
}

func printDevices(w io.Writer, devices []audio.DeviceInfo) {
	fmt.Fprintln(w, "Audio input devices:")
	n := 0
	for _, d := range devices {
		if d.MaxInputChannels == 0 {
			continue
		}
		n++
		fmt.Fprintf(w, "  ID %d : %s (%d channels, %.0f Hz, %s)\n",
			d.Index, d.Name, d.MaxInputChannels, d.DefaultSampleRate, d.HostAPI)
	}
	if n == 0 {
		fmt.Fprintln(w, "  (none)")
	}
}
