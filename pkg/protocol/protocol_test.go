package protocol

import (
	"bytes"
	"errors"
	"image/color"
	"testing"
)

type drawCall struct {
	x, y, r int16
	c       color.RGBA
}

// recordingDisplay logs every call the handler makes.
type recordingDisplay struct {
	calls []string
	draws []drawCall
}

func (d *recordingDisplay) Clear() {
	d.calls = append(d.calls, "clear")
}

func (d *recordingDisplay) DrawCircle(x, y, r int16, c color.RGBA) {
	d.calls = append(d.calls, "circle")
	d.draws = append(d.draws, drawCall{x, y, r, c})
}

func TestParse(t *testing.T) {
	if got := Parse("1"); got != Draw {
		t.Errorf("Parse(\"1\"): expected Draw, got %v", got)
	}
	if got := Parse("0"); got != Clear {
		t.Errorf("Parse(\"0\"): expected Clear, got %v", got)
	}

	for _, line := range []string{"", "10", " 1", "1 ", "1\r", "01", "a", "O"} {
		if got := Parse(line); got != Unrecognized {
			t.Errorf("Parse(%q): expected Unrecognized, got %v", line, got)
		}
	}
}

func TestHandleDraw(t *testing.T) {
	d := &recordingDisplay{}
	h := NewHandler(d)

	if cmd := h.Handle("1"); cmd != Draw {
		t.Fatalf("Expected Draw, got %v", cmd)
	}

	if len(d.calls) != 2 || d.calls[0] != "clear" || d.calls[1] != "circle" {
		t.Fatalf("Expected [clear circle], got %v", d.calls)
	}

	want := drawCall{120, 120, 50, CircleColor}
	if d.draws[0] != want {
		t.Errorf("Circle: expected %+v, got %+v", want, d.draws[0])
	}
}

func TestHandleClear(t *testing.T) {
	d := &recordingDisplay{}
	h := NewHandler(d)

	if cmd := h.Handle("0"); cmd != Clear {
		t.Fatalf("Expected Clear, got %v", cmd)
	}
	if len(d.calls) != 1 || d.calls[0] != "clear" {
		t.Errorf("Expected [clear], got %v", d.calls)
	}
}

func TestHandleIgnoresUnrecognized(t *testing.T) {
	d := &recordingDisplay{}
	h := NewHandler(d)

	for _, line := range []string{"", "10", " 1", "1 ", "0\r", "draw"} {
		if cmd := h.Handle(line); cmd != Unrecognized {
			t.Errorf("Handle(%q): expected Unrecognized, got %v", line, cmd)
		}
	}

	if len(d.calls) != 0 {
		t.Errorf("Expected no display calls, got %v", d.calls)
	}
}

func TestHandleSequence(t *testing.T) {
	d := &recordingDisplay{}
	h := NewHandler(d)

	h.Handle("1")
	h.Handle("0")

	last := d.calls[len(d.calls)-1]
	if last != "clear" {
		t.Errorf("Expected last call to be clear, got %s", last)
	}
}

func TestWriteCommand(t *testing.T) {
	var buf bytes.Buffer

	if err := WriteCommand(&buf, Draw); err != nil {
		t.Fatalf("WriteCommand(Draw) failed: %v", err)
	}
	if err := WriteCommand(&buf, Clear); err != nil {
		t.Fatalf("WriteCommand(Clear) failed: %v", err)
	}

	if got := buf.String(); got != "1\n0\n" {
		t.Errorf("Expected %q, got %q", "1\n0\n", got)
	}

	if err := WriteCommand(&buf, Unrecognized); !errors.Is(err, ErrUnrecognized) {
		t.Errorf("Expected ErrUnrecognized, got %v", err)
	}
	if buf.Len() != 4 {
		t.Errorf("Unrecognized command must not write, buffer has %d bytes", buf.Len())
	}
}

func TestCommandLineRoundTrip(t *testing.T) {
	for _, cmd := range []Command{Draw, Clear} {
		line, ok := cmd.Line()
		if !ok {
			t.Fatalf("%v has no wire form", cmd)
		}
		if Parse(line) != cmd {
			t.Errorf("Parse(%q): expected %v", line, cmd)
		}
	}

	if _, ok := Unrecognized.Line(); ok {
		t.Error("Unrecognized should have no wire form")
	}
}
