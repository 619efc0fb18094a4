package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
)

// ErrTooFewSamples is returned when a series is too short to analyse.
var ErrTooFewSamples = errors.New("analysis: too few samples")

// PowerSpectrum returns |X_k| for k < n/2 of the Hann-windowed, mean-removed
// series.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		return []float64{}
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	windowed := make([]float64, n)
	for i, v := range data {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - mean) * w
	}

	spectrum := fft.FFTReal(windowed)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// Resample linearly interpolates (times, values) onto n evenly spaced
// points spanning the same interval. times must be increasing.
func Resample(times, values []float64, n int) ([]float64, float64, error) {
	if len(times) != len(values) {
		return nil, 0, fmt.Errorf("%d times, %d values", len(times), len(values))
	}
	if len(times) < 2 || n < 2 {
		return nil, 0, ErrTooFewSamples
	}

	t0, t1 := times[0], times[len(times)-1]
	step := (t1 - t0) / float64(n-1)
	out := make([]float64, n)

	j := 0
	for i := range out {
		t := t0 + float64(i)*step
		for j < len(times)-2 && times[j+1] < t {
			j++
		}
		span := times[j+1] - times[j]
		if span <= 0 {
			out[i] = values[j]
			continue
		}
		frac := (t - times[j]) / span
		out[i] = values[j] + frac*(values[j+1]-values[j])
	}
	return out, step, nil
}

// DominantPeriod returns the period of the strongest non-zero frequency of
// the series, refined by parabolic interpolation around the spectral peak.
func DominantPeriod(times, values []float64) (float64, error) {
	if len(times) < 8 {
		return 0, ErrTooFewSamples
	}

	n := len(times)
	uniform, step, err := Resample(times, values, n)
	if err != nil {
		return 0, err
	}

	ps := PowerSpectrum(uniform)
	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	if ps[peak] == 0 {
		return 0, fmt.Errorf("flat series: %w", ErrTooFewSamples)
	}

	k := float64(peak)
	if peak+1 < len(ps) {
		a, b, c := ps[peak-1], ps[peak], ps[peak+1]
		if denom := a - 2*b + c; denom != 0 {
			k += 0.5 * (a - c) / denom
		}
	}
	return float64(n) * step / k, nil
}

// CrossingTimes returns the interpolated times at which values rises
// through threshold.
func CrossingTimes(times, values []float64, threshold float64) []float64 {
	crossings := make([]float64, 0)
	for i := 1; i < len(values) && i < len(times); i++ {
		prev, curr := values[i-1], values[i]
		if prev < threshold && curr >= threshold {
			frac := (threshold - prev) / (curr - prev)
			if math.IsNaN(frac) || math.IsInf(frac, 0) {
				frac = 0.5
			}
			crossings = append(crossings, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return crossings
}

// CrossingPeriod is the median interval between upward crossings of the
// series mean.
func CrossingPeriod(times, values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrTooFewSamples
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	crossings := CrossingTimes(times, values, mean)
	if len(crossings) < 2 {
		return 0, fmt.Errorf("%d crossings: %w", len(crossings), ErrTooFewSamples)
	}

	intervals := make([]float64, len(crossings)-1)
	for i := range intervals {
		intervals[i] = crossings[i+1] - crossings[i]
	}
	sort.Float64s(intervals)
	return intervals[len(intervals)/2], nil
}
