// Package dsp holds the signal processing used by the kick detector: a
// Butterworth band-pass to isolate bass and kicks, and an FFT magnitude
// spectrum.
package dsp

import (
	"errors"
	"math"
	"math/cmplx"
)

var (
	ErrInvalidOrder = errors.New("filter order must be at least 1")
	ErrInvalidBand  = errors.New("band edges must satisfy 0 < low < high < rate/2")
)

// Filter is an IIR filter in transfer function form, normalized so A[0] == 1.
type Filter struct {
	B []float64
	A []float64
}

// Butterworth designs a digital Butterworth band-pass of the given order
// with -3 dB edges at low and high Hz, for samples taken at rate Hz.
// The resulting transfer function has order 2*order.
func Butterworth(order int, low, high, rate float64) (*Filter, error) {
	if order < 1 {
		return nil, ErrInvalidOrder
	}
	nyquist := rate / 2
	if low <= 0 || high <= low || high >= nyquist {
		return nil, ErrInvalidBand
	}

	// Pre-warp the edges for the bilinear transform (sample rate fixed at 2)
	const fs2 = 4.0
	w1 := fs2 * math.Tan(math.Pi*(low/nyquist)/2)
	w2 := fs2 * math.Tan(math.Pi*(high/nyquist)/2)
	bw := w2 - w1
	wo2 := complex(w1*w2, 0)

	// Analog low-pass prototype poles, moved to the band
	poles := make([]complex128, 0, 2*order)
	for m := -order + 1; m < order; m += 2 {
		p := -cmplx.Exp(complex(0, math.Pi*float64(m)/float64(2*order)))
		lp := p * complex(bw/2, 0)
		d := cmplx.Sqrt(lp*lp - wo2)
		poles = append(poles, lp+d, lp-d)
	}

	// Bilinear transform: analog zeros at 0 map to 1, the rest go to -1
	zeros := make([]complex128, 0, 2*order)
	for i := 0; i < order; i++ {
		zeros = append(zeros, 1, -1)
	}

	den := complex(1, 0)
	digital := make([]complex128, len(poles))
	for i, p := range poles {
		digital[i] = (fs2 + p) / (fs2 - p)
		den *= fs2 - p
	}
	gain := real(complex(math.Pow(bw*fs2, float64(order)), 0) / den)

	b := poly(zeros)
	for i := range b {
		b[i] *= gain
	}

	return &Filter{B: b, A: poly(digital)}, nil
}

// poly expands the polynomial whose roots are given, keeping real parts.
func poly(roots []complex128) []float64 {
	c := make([]complex128, len(roots)+1)
	c[0] = 1
	for n, r := range roots {
		for i := n + 1; i > 0; i-- {
			c[i] -= r * c[i-1]
		}
	}

	out := make([]float64, len(c))
	for i := range c {
		out[i] = real(c[i])
	}
	return out
}

// Apply filters src into dst starting from a zero state and returns dst.
// dst is allocated when it is too short. dst and src may be the same slice.
func (f *Filter) Apply(dst, src []float64) []float64 {
	if len(dst) < len(src) {
		dst = make([]float64, len(src))
	}
	dst = dst[:len(src)]

	// Direct form II transposed
	n := len(f.A)
	z := make([]float64, n)
	for i, x := range src {
		y := f.B[0]*x + z[0]
		for k := 1; k < n; k++ {
			z[k-1] = f.B[k]*x + z[k] - f.A[k]*y
		}
		dst[i] = y
	}

	return dst
}

// Response returns the complex frequency response at w radians per sample.
func (f *Filter) Response(w float64) complex128 {
	zinv := cmplx.Exp(complex(0, -w))
	return evalPoly(f.B, zinv) / evalPoly(f.A, zinv)
}

// evalPoly evaluates c[0] + c[1]x + c[2]x^2 + ...
func evalPoly(c []float64, x complex128) complex128 {
	var acc complex128
	for i := len(c) - 1; i >= 0; i-- {
		acc = acc*x + complex(c[i], 0)
	}
	return acc
}
