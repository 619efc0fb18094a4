// Package analysis extracts orbital structure from sampled trajectories.
//
//   - [PowerSpectrum], [DominantPeriod]: FFT period of one output column
//   - [CrossingTimes], [CrossingPeriod]: upward threshold crossings
//   - [OrbitPortrait], [PortraitToASCII]: x-y track of one body
//   - [LyapunovExponent]: divergence rate of two nearby runs
//
// # Period Detection
//
// Output samples are not evenly spaced, because a sample is taken at the
// first step past each output boundary. [DominantPeriod] resamples the
// column onto a uniform grid before the transform:
//
//	x := result.Column(1 + 3*body)
//	period, err := analysis.DominantPeriod(result.Times(), x)
package analysis
