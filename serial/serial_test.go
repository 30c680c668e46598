package serial

import (
	"errors"
	"strings"
	"testing"

	"github.com/tuffrabit/m5stack-beatmask/pkg/protocol"
)

var errEmpty = errors.New("buffer empty")

// memPort is an in-memory stand-in for the UART receive buffer.
type memPort struct {
	data []byte
}

func (p *memPort) Buffered() int {
	return len(p.data)
}

func (p *memPort) ReadByte() (byte, error) {
	if len(p.data) == 0 {
		return 0, errEmpty
	}
	b := p.data[0]
	p.data = p.data[1:]
	return b, nil
}

func (p *memPort) feed(s string) {
	p.data = append(p.data, s...)
}

type lineRecorder struct {
	lines []string
}

func (r *lineRecorder) Handle(line string) protocol.Command {
	r.lines = append(r.lines, line)
	return protocol.Parse(line)
}

func newTestSerial(input string) (*Serial, *memPort) {
	port := &memPort{}
	port.feed(input)
	s := NewSerial(port)
	s.idle = func() {}
	return s, port
}

func TestReadLine(t *testing.T) {
	s, _ := newTestSerial("1\n0\n")

	for _, want := range []string{"1", "0"} {
		got, err := s.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine failed: %v", err)
		}
		if got != want {
			t.Errorf("Expected %q, got %q", want, got)
		}
	}
}

func TestReadLineKeepsCarriageReturn(t *testing.T) {
	s, _ := newTestSerial("1\r\n")

	got, err := s.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if got != "1\r" {
		t.Errorf("Expected %q, got %q", "1\r", got)
	}
}

func TestReadLineEmpty(t *testing.T) {
	s, _ := newTestSerial("\n")

	got, err := s.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if got != "" {
		t.Errorf("Expected empty line, got %q", got)
	}
}

func TestReadLineWaitsForTerminator(t *testing.T) {
	s, port := newTestSerial("1")

	// The line only completes after several idle polls.
	idles := 0
	s.idle = func() {
		idles++
		if idles == 5 {
			port.feed("0\n")
		}
	}

	got, err := s.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if got != "10" {
		t.Errorf("Expected %q, got %q", "10", got)
	}
	if idles != 5 {
		t.Errorf("Expected 5 idle polls, got %d", idles)
	}
}

func TestReadLineTooLong(t *testing.T) {
	long := strings.Repeat("x", bufferSize+10) + "1"
	s, _ := newTestSerial(long + "\n1\n")

	if _, err := s.ReadLine(); !errors.Is(err, ErrLineTooLong) {
		t.Fatalf("Expected ErrLineTooLong, got %v", err)
	}

	// The reader recovers on the next line.
	got, err := s.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if got != "1" {
		t.Errorf("Expected %q, got %q", "1", got)
	}
}

func TestReadLineFullBuffer(t *testing.T) {
	exact := strings.Repeat("y", bufferSize)
	s, _ := newTestSerial(exact + "\n")

	got, err := s.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if got != exact {
		t.Errorf("Expected %d byte line, got %d bytes", len(exact), len(got))
	}
}

func TestPoll(t *testing.T) {
	s, port := newTestSerial("")
	rec := &lineRecorder{}

	if s.Poll(rec) {
		t.Fatal("Poll on empty port should report no work")
	}

	port.feed("1\n 1\n0\n")
	for s.Poll(rec) {
	}

	want := []string{"1", " 1", "0"}
	if len(rec.lines) != len(want) {
		t.Fatalf("Expected %d lines, got %v", len(want), rec.lines)
	}
	for i := range want {
		if rec.lines[i] != want[i] {
			t.Errorf("Line %d: expected %q, got %q", i, want[i], rec.lines[i])
		}
	}
}

func TestPollSkipsOverlongLine(t *testing.T) {
	s, _ := newTestSerial(strings.Repeat("z", bufferSize+1) + "\n")
	rec := &lineRecorder{}

	if !s.Poll(rec) {
		t.Fatal("Poll should consume the pending line")
	}
	if len(rec.lines) != 0 {
		t.Errorf("Overlong line should not be dispatched, got %v", rec.lines)
	}
}
