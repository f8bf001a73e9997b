// Package voice_mod implements the voice-disguise transforms: vocal-tract
// warping, time-scale modification, McAdams pole rotation, modulation
// spectrum smoothing, clipping, and a chorus effect. All transforms are
// pure functions over a mono float waveform; none hold state across calls.
package voice_mod

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	defaultNFFT = 2048
	defaultHop  = 512
)

// stft performs short-time Fourier analysis and synthesis with a periodic
// Hann window and centered frames (reflection padding), matching the
// geometry the disguise transforms were tuned against.
type stft struct {
	nFFT   int
	hop    int
	window []float64
	fft    *fourier.FFT
}

func newSTFT(nFFT int, hop int) *stft {
	return &stft{
		nFFT:   nFFT,
		hop:    hop,
		window: hannPeriodic(nFFT),
		fft:    fourier.NewFFT(nFFT),
	}
}

func defaultSTFT() *stft {
	return newSTFT(defaultNFFT, defaultHop)
}

func (s *stft) bins() int {
	return s.nFFT/2 + 1
}

// analyze returns time-major spectral frames, each of nFFT/2+1 bins.
func (s *stft) analyze(x []float64) [][]complex128 {
	padded := reflectPad(x, s.nFFT/2)
	if len(padded) < s.nFFT {
		padded = append(padded, make([]float64, s.nFFT-len(padded))...)
	}
	nFrames := 1 + (len(padded)-s.nFFT)/s.hop
	frames := make([][]complex128, nFrames)
	windowed := make([]float64, s.nFFT)
	for m := 0; m < nFrames; m++ {
		offset := m * s.hop
		for i := 0; i < s.nFFT; i++ {
			windowed[i] = padded[offset+i] * s.window[i]
		}
		frames[m] = s.fft.Coefficients(nil, windowed)
	}
	return frames
}

// synthesize inverts analyze via windowed overlap-add with window-sum-square
// normalization, returning exactly length samples.
func (s *stft) synthesize(frames [][]complex128, length int) []float64 {
	if len(frames) == 0 {
		return make([]float64, length)
	}
	full := s.nFFT + s.hop*(len(frames)-1)
	y := make([]float64, full)
	winSum := make([]float64, full)
	timeFrame := make([]float64, s.nFFT)
	for m, frame := range frames {
		s.fft.Sequence(timeFrame, frame)
		offset := m * s.hop
		for i := 0; i < s.nFFT; i++ {
			// gonum's inverse is unnormalized: divide by nFFT
			y[offset+i] += timeFrame[i] / float64(s.nFFT) * s.window[i]
			winSum[offset+i] += s.window[i] * s.window[i]
		}
	}
	for i := range y {
		if winSum[i] > 1e-11 {
			y[i] /= winSum[i]
		}
	}
	// drop the centering pad
	start := s.nFFT / 2
	out := make([]float64, length)
	for i := 0; i < length && start+i < full; i++ {
		out[i] = y[start+i]
	}
	return out
}

// magPhase splits a spectral frame into log magnitude and unit phasors.
// Magnitudes are floored to avoid log-of-zero on silent bins.
func magPhase(frame []complex128) (logMag []float64, phase []complex128) {
	logMag = make([]float64, len(frame))
	phase = make([]complex128, len(frame))
	for k, c := range frame {
		mag := cmplx.Abs(c)
		if mag < 1e-10 {
			logMag[k] = math.Log(1e-10)
			phase[k] = 1
		} else {
			logMag[k] = math.Log(mag)
			phase[k] = c / complex(mag, 0)
		}
	}
	return logMag, phase
}

// hannPeriodic is the DFT-even Hann window used for STFT analysis.
func hannPeriodic(n int) []float64 {
	window := make([]float64, n)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n)))
	}
	return window
}

// hannSymmetric is the symmetric Hann window used by the overlap-add
// analysis in the McAdams transform.
func hannSymmetric(n int) []float64 {
	window := make([]float64, n)
	if n == 1 {
		window[0] = 1
		return window
	}
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return window
}

// reflectPad mirrors pad samples of x on each side, without repeating the
// edge sample.
func reflectPad(x []float64, pad int) []float64 {
	n := len(x)
	if n == 0 {
		return make([]float64, 2*pad)
	}
	out := make([]float64, 0, n+2*pad)
	for i := pad; i > 0; i-- {
		idx := i
		if idx >= n {
			idx = n - 1
		}
		out = append(out, x[idx])
	}
	out = append(out, x...)
	for i := 0; i < pad; i++ {
		idx := n - 2 - i
		if idx < 0 {
			idx = 0
		}
		out = append(out, x[idx])
	}
	return out
}

// interp evaluates the piecewise-linear function defined by (xs, ys) at q,
// clamping outside the domain. xs must be increasing.
func interp(q float64, xs []float64, ys []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	if q <= xs[0] {
		return ys[0]
	}
	if q >= xs[n-1] {
		return ys[n-1]
	}
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if xs[mid] <= q {
			lo = mid
		} else {
			hi = mid
		}
	}
	span := xs[hi] - xs[lo]
	if span == 0 {
		return ys[lo]
	}
	frac := (q - xs[lo]) / span
	return ys[lo] + (ys[hi]-ys[lo])*frac
}
