// Package link is the host end of the serial line to the M5Stack.
package link

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.bug.st/serial"

	"github.com/tuffrabit/m5stack-beatmask/pkg/protocol"
)

// Open opens port in 8N1 at baud.
func Open(port string, baud int, readTimeout time.Duration) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(port, mode)
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", port, err)
	}

	if readTimeout > 0 {
		if err := p.SetReadTimeout(readTimeout); err != nil {
			p.Close()
			return nil, fmt.Errorf("setting read timeout: %w", err)
		}
	}

	return p, nil
}

// Ports lists the serial ports present on this machine.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("listing serial ports: %w", err)
	}
	return ports, nil
}

// Sender writes commands to the device, one line each.
type Sender struct {
	w      io.Writer
	logger *slog.Logger
	sent   int
}

func NewSender(w io.Writer, logger *slog.Logger) *Sender {
	return &Sender{
		w:      w,
		logger: logger,
	}
}

func (s *Sender) Send(cmd protocol.Command) error {
	if err := protocol.WriteCommand(s.w, cmd); err != nil {
		return err
	}
	s.sent++
	s.logger.Debug("command sent", "command", cmd.String())
	return nil
}

// Sent returns the number of commands written so far.
func (s *Sender) Sent() int {
	return s.sent
}
