// Package beat detects kicks in an audio stream with an adaptive spectral
// flux threshold and turns them into display commands.
//
// Per frame:
//
//	RMS gate -> band-pass -> |FFT| -> flux = sum(max(mag - prevMag, 0))
//	high = mean(history) + KHigh*std(history)
//	low  = mean(history) + KLow*std(history)
//
// A kick fires when flux crosses high while the detector is armed and at
// least MinInterval has passed since the previous kick. The detector then
// stays disarmed until flux falls back under low (hysteresis).
//
// The tempo estimate is 60 over the mean of the last 8 inter-kick intervals.
package beat

import (
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tuffrabit/m5stack-beatmask/pkg/dsp"
	"github.com/tuffrabit/m5stack-beatmask/pkg/protocol"
)

var (
	ErrInvalidParams = errors.New("invalid detector parameters")
)

// Number of inter-kick intervals averaged by BPM
const tempoIntervals = 8

// Params tunes the detector. Durations are wall clock.
type Params struct {
	SampleRate float64
	Chunk      int // analysis window, samples
	Hop        int // samples between frames

	History     time.Duration // length of the flux history
	KHigh       float64       // trigger threshold, in standard deviations
	KLow        float64       // re-arm threshold, in standard deviations
	MinInterval time.Duration // minimum time between kicks

	RMSThreshold     float64 // frames under this are treated as silence
	AbsFluxThreshold float64 // flux must also exceed this absolute value

	BandLow   float64 // Hz
	BandHigh  float64 // Hz
	BandOrder int
}

// HistoryFrames is the number of flux values kept for the adaptive threshold.
func (p Params) HistoryFrames() int {
	return int(p.History.Seconds() / (float64(p.Hop) / p.SampleRate))
}

// Detector is not safe for concurrent use.
type Detector struct {
	params   Params
	filter   *dsp.Filter
	spectrum *dsp.Spectrum

	filtered []float64
	prev     []float64
	cur      []float64
	history  []float64
	maxHist  int

	lastBeat  time.Time
	intervals []float64 // seconds, oldest first
	armed     bool
}

func NewDetector(p Params) (*Detector, error) {
	if p.Chunk <= 0 || p.Hop <= 0 || p.Hop > p.Chunk || p.SampleRate <= 0 {
		return nil, ErrInvalidParams
	}

	f, err := dsp.Butterworth(p.BandOrder, p.BandLow, p.BandHigh, p.SampleRate)
	if err != nil {
		return nil, err
	}

	maxHist := p.HistoryFrames()
	if maxHist < 1 {
		maxHist = 1
	}

	s := dsp.NewSpectrum(p.Chunk)
	return &Detector{
		params:   p,
		filter:   f,
		spectrum: s,
		filtered: make([]float64, p.Chunk),
		prev:     make([]float64, s.Bins()),
		cur:      make([]float64, s.Bins()),
		history:  make([]float64, 0, maxHist),
		maxHist:  maxHist,
		armed:    true,
	}, nil
}

// Armed reports whether the next threshold crossing may fire a kick.
func (d *Detector) Armed() bool {
	return d.armed
}

// Process analyzes one mono frame of Chunk samples observed at now.
// ok is false when nothing should be sent for this frame.
func (d *Detector) Process(frame []float64, now time.Time) (cmd protocol.Command, ok bool) {
	rms := floats.Norm(frame, 2) / math.Sqrt(float64(len(frame)))
	if rms < d.params.RMSThreshold {
		d.armed = true
		return protocol.Clear, true
	}

	d.filtered = d.filter.Apply(d.filtered, frame)
	d.cur = d.spectrum.Magnitude(d.cur, d.filtered)
	flux := dsp.Flux(d.prev, d.cur)
	d.prev, d.cur = d.cur, d.prev

	d.record(flux)

	mean, std := stat.PopMeanStdDev(d.history, nil)
	high := mean + d.params.KHigh*std
	low := mean + d.params.KLow*std
	intervalOK := now.Sub(d.lastBeat) > d.params.MinInterval

	peak := flux > high && flux > d.params.AbsFluxThreshold && d.armed

	switch {
	case peak && intervalOK:
		d.markBeat(now)
		d.armed = false
		return protocol.Draw, true
	case peak:
		// Too soon after the previous kick; stay armed.
		return protocol.Clear, true
	case flux < low && intervalOK:
		d.armed = true
		return protocol.Clear, true
	}

	return protocol.Unrecognized, false
}

// BPM is 0 until two kicks have been seen.
func (d *Detector) BPM() float64 {
	if len(d.intervals) == 0 {
		return 0
	}
	return 60 / stat.Mean(d.intervals, nil)
}

func (d *Detector) markBeat(now time.Time) {
	if !d.lastBeat.IsZero() {
		if len(d.intervals) == tempoIntervals {
			copy(d.intervals, d.intervals[1:])
			d.intervals = d.intervals[:tempoIntervals-1]
		}
		d.intervals = append(d.intervals, now.Sub(d.lastBeat).Seconds())
	}
	d.lastBeat = now
}

func (d *Detector) record(flux float64) {
	if len(d.history) == d.maxHist {
		copy(d.history, d.history[1:])
		d.history = d.history[:len(d.history)-1]
	}
	d.history = append(d.history, flux)
}
