package dsp

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Spectrum computes magnitude spectra of fixed-length real frames.
// It reuses its buffers and is not safe for concurrent use.
type Spectrum struct {
	fft    *fourier.FFT
	coeffs []complex128
	n      int
}

// NewSpectrum prepares an FFT for frames of n samples.
func NewSpectrum(n int) *Spectrum {
	return &Spectrum{
		fft:    fourier.NewFFT(n),
		coeffs: make([]complex128, n/2+1),
		n:      n,
	}
}

// Bins returns the number of magnitude values produced per frame.
func (s *Spectrum) Bins() int {
	return s.n/2 + 1
}

// Magnitude writes |FFT(frame)| into dst and returns it.
// frame must hold exactly n samples.
func (s *Spectrum) Magnitude(dst, frame []float64) []float64 {
	if len(dst) < s.Bins() {
		dst = make([]float64, s.Bins())
	}
	dst = dst[:s.Bins()]

	s.coeffs = s.fft.Coefficients(s.coeffs, frame)
	for i, c := range s.coeffs {
		dst[i] = cmplx.Abs(c)
	}

	return dst
}

// Flux returns the sum of positive bin-wise increases from prev to cur.
func Flux(prev, cur []float64) float64 {
	var flux float64
	for i := range cur {
		var p float64
		if i < len(prev) {
			p = prev[i]
		}
		if d := cur[i] - p; d > 0 {
			flux += d
		}
	}
	return flux
}
