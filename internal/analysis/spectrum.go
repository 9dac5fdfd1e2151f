package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// Spectrum is a one-sided power spectrum. Freqs are in Hz.
type Spectrum struct {
	Freqs []float64
	Power []float64
}

// PowerSpectrum detrends xs by its mean and returns the power of each
// frequency bin up to Nyquist. sampleRate is in samples per second.
func PowerSpectrum(xs []float64, sampleRate float64) Spectrum {
	n := len(xs)
	if n < 2 || !(sampleRate > 0) {
		return Spectrum{}
	}

	mean := stat.Mean(xs, nil)
	centered := make([]float64, n)
	for i, x := range xs {
		centered[i] = x - mean
	}

	coeffs := fft.FFTReal(centered)
	bins := n/2 + 1
	ps := Spectrum{
		Freqs: make([]float64, bins),
		Power: make([]float64, bins),
	}
	for k := 0; k < bins; k++ {
		a := cmplx.Abs(coeffs[k])
		ps.Freqs[k] = float64(k) * sampleRate / float64(n)
		ps.Power[k] = a * a / float64(n)
	}
	return ps
}

// DominantFrequency returns the strongest non-DC bin. ok is false for an
// empty or flat spectrum.
func DominantFrequency(s Spectrum) (freq, power float64, ok bool) {
	best := -1
	for k := 1; k < len(s.Power); k++ {
		if best < 0 || s.Power[k] > s.Power[best] {
			best = k
		}
	}
	if best < 0 || s.Power[best] <= 1e-18 || math.IsNaN(s.Power[best]) {
		return 0, 0, false
	}
	return s.Freqs[best], s.Power[best], true
}
