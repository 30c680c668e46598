// Package protocol implements the line command protocol spoken between the
// host sender and the M5Stack firmware.
//
// Line format:
//
//	[PAYLOAD]['\n']
//	- PAYLOAD "1": clear the screen, then draw the circle
//	- PAYLOAD "0": clear the screen
//
// Any other payload is ignored by the firmware. Nothing is sent back.
package protocol

import (
	"errors"
	"image/color"
	"io"
)

const (
	Terminator = '\n'

	// Wire payloads (host → device)
	LineDraw  = "1"
	LineClear = "0"

	// Circle drawn by the Draw command
	CircleX      int16 = 120
	CircleY      int16 = 120
	CircleRadius int16 = 50
)

// CircleColor is TFT_GREEN (RGB565 0x07E0) expanded to RGBA.
var CircleColor = color.RGBA{R: 0, G: 252, B: 0, A: 255}

var (
	ErrUnrecognized = errors.New("unrecognized command")
)

// Command is a decoded command line.
type Command uint8

const (
	Unrecognized Command = iota
	Draw
	Clear
)

// Parse maps a line (terminator already removed) to a Command.
// Matching is exact and case-sensitive; nothing is trimmed.
func Parse(line string) Command {
	switch line {
	case LineDraw:
		return Draw
	case LineClear:
		return Clear
	default:
		return Unrecognized
	}
}

// Line returns the wire payload for c, without the terminator.
func (c Command) Line() (string, bool) {
	switch c {
	case Draw:
		return LineDraw, true
	case Clear:
		return LineClear, true
	default:
		return "", false
	}
}

func (c Command) String() string {
	switch c {
	case Draw:
		return "draw"
	case Clear:
		return "clear"
	default:
		return "unrecognized"
	}
}

// WriteCommand writes one command line to w.
func WriteCommand(w io.Writer, c Command) error {
	line, ok := c.Line()
	if !ok {
		return ErrUnrecognized
	}

	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, Terminator)

	_, err := w.Write(buf)
	return err
}

// Display is the part of the display controller the handler drives.
type Display interface {
	Clear()
	DrawCircle(x, y, r int16, c color.RGBA)
}

// Handler dispatches command lines to a display.
type Handler struct {
	display Display
}

// NewHandler creates a new protocol handler.
func NewHandler(d Display) *Handler {
	return &Handler{
		display: d,
	}
}

// Handle parses a line and applies it to the display.
// It returns the command that was recognized.
func (h *Handler) Handle(line string) Command {
	cmd := Parse(line)

	switch cmd {
	case Draw:
		h.handleDraw()
	case Clear:
		h.handleClear()
	}

	return cmd
}

// handleDraw replaces whatever is on screen with the circle.
func (h *Handler) handleDraw() {
	h.display.Clear()
	h.display.DrawCircle(CircleX, CircleY, CircleRadius, CircleColor)
}

func (h *Handler) handleClear() {
	h.display.Clear()
}
