package metrics

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the one-sided spectrum of values
// after removing their mean. Bin k is k/(n*dt) Hz.
func PowerSpectrum(values []float64) []float64 {
	n := len(values)
	if n < 2 {
		return nil
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	centred := make([]float64, n)
	for i, v := range values {
		centred[i] = v - mean
	}
	bins := fft.FFTReal(centred)

	ps := make([]float64, n/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(bins[i])
	}
	return ps
}

// DominantFrequency returns the strongest non-DC frequency in values sampled
// every dt seconds, and its magnitude. A flat, too short or non-finite series
// yields 0, 0.
func DominantFrequency(values []float64, dt float64) (hz, magnitude float64) {
	if dt <= 0 {
		return 0, 0
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0
		}
	}
	ps := PowerSpectrum(values)
	if len(ps) < 2 {
		return 0, 0
	}
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	if ps[best] < 1e-9 {
		return 0, 0
	}
	return float64(best) / (float64(len(values)) * dt), ps[best]
}
