// Package audio captures PCM frames and turns them into the mono analysis
// window the kick detector works on.
package audio

import "math"

// Window is a sliding mono window of fixed length.
// Every Push shifts in one hop of interleaved int16 samples.
type Window struct {
	samples  []float64
	channels int
}

// NewWindow returns a silent window of size samples for the given channel count.
func NewWindow(size, channels int) *Window {
	return &Window{
		samples:  make([]float64, size),
		channels: channels,
	}
}

// Push appends an interleaved hop, downmixed to mono and scaled to [-1, 1],
// dropping the oldest samples. A hop longer than the window keeps only its tail.
func (w *Window) Push(interleaved []int16) {
	frames := len(interleaved) / w.channels
	if frames > len(w.samples) {
		skip := frames - len(w.samples)
		interleaved = interleaved[skip*w.channels:]
		frames = len(w.samples)
	}

	copy(w.samples, w.samples[frames:])
	tail := w.samples[len(w.samples)-frames:]

	for i := range tail {
		var sum float64
		for ch := 0; ch < w.channels; ch++ {
			sum += float64(interleaved[i*w.channels+ch])
		}
		tail[i] = sum / float64(w.channels) / math.MaxInt16
	}
}

// Samples returns the window contents, oldest first. The slice is reused.
func (w *Window) Samples() []float64 {
	return w.samples
}
