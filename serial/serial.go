// Package serial turns the device's serial byte stream into command lines.
package serial

import (
	"errors"
	"time"

	"github.com/tuffrabit/m5stack-beatmask/pkg/protocol"
)

const (
	BaudRate = 115200

	bufferSize   = 128
	pollInterval = time.Millisecond
)

var (
	ErrLineTooLong = errors.New("line exceeds input buffer")
)

// Port is the subset of machine.UART the reader needs.
// ReadByte must return an error when no byte is buffered.
type Port interface {
	Buffered() int
	ReadByte() (byte, error)
}

// Serial accumulates bytes from a port into newline-terminated lines.
type Serial struct {
	port     Port
	idle     func()
	inIndex  int
	overflow bool
	inBuffer [bufferSize]byte
}

func NewSerial(port Port) *Serial {
	return &Serial{
		port: port,
		idle: func() { time.Sleep(pollInterval) },
	}
}

// LineHandler consumes complete lines, e.g. *protocol.Handler.
type LineHandler interface {
	Handle(line string) protocol.Command
}

// Handle runs the polling loop forever.
func (s *Serial) Handle(h LineHandler) {
	for {
		if !s.Poll(h) {
			s.idle()
		}
	}
}

// Poll dispatches one line to h if input is pending.
// It returns false without blocking when nothing is buffered.
func (s *Serial) Poll(h LineHandler) bool {
	if !s.Available() {
		return false
	}

	line, err := s.ReadLine()
	if err != nil {
		return true
	}

	h.Handle(line)
	return true
}

// Available reports whether at least one byte is waiting. It never blocks.
func (s *Serial) Available() bool {
	return s.port.Buffered() > 0
}

// ReadLine consumes bytes up to and including the next '\n' and returns
// what came before it. Nothing else is stripped, so "1\r" stays "1\r".
//
// There is no timeout: if the sender never terminates the line, ReadLine
// keeps polling until it does. Lines longer than the input buffer are
// consumed in full and reported as ErrLineTooLong.
func (s *Serial) ReadLine() (string, error) {
	for {
		if line, done, err := s.read(); done {
			return line, err
		}
	}
}

// read handles a single byte. done is true once a terminator was seen.
func (s *Serial) read() (line string, done bool, err error) {
	b, err := s.port.ReadByte()
	if err != nil {
		s.idle()
		return "", false, nil
	}

	if b == protocol.Terminator {
		line = string(s.inBuffer[:s.inIndex])
		overflow := s.overflow
		s.inIndex = 0
		s.overflow = false
		if overflow {
			return "", true, ErrLineTooLong
		}
		return line, true, nil
	}

	if s.inIndex == bufferSize {
		s.overflow = true
		return "", false, nil
	}

	s.inBuffer[s.inIndex] = b
	s.inIndex = s.inIndex + 1

	return "", false, nil
}
