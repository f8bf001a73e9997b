package voice_mod

import (
	"context"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	log "github.com/Beijukabruno/audio-anonymization-platform/logger"
)

// TimeScaleBackend selects how the time/pitch relationship is altered.
// The three backends fulfill the same contract with different trade-offs;
// callers choose one explicitly.
type TimeScaleBackend int

const (
	// BackendWSOLA stretches in the time domain with waveform-similarity
	// overlap-add, then resamples its output back to the input's sample
	// count. Slowest, best quality.
	BackendWSOLA TimeScaleBackend = iota
	// BackendPhaseVocoder time-stretches by rate 1/coef in the STFT
	// domain, changing duration while preserving pitch.
	BackendPhaseVocoder
	// BackendFastFFT is a plain FFT resample to round(n/coef) samples.
	// It changes both pitch and duration; fast but lossy and approximate.
	BackendFastFFT
)

func (b TimeScaleBackend) String() string {
	switch b {
	case BackendPhaseVocoder:
		return `phase_vocoder`
	case BackendFastFFT:
		return `fast_fft`
	default:
		return `wsola`
	}
}

// ParseBackend maps a backend name to its enum value. Empty and unknown
// names fall back to WSOLA, the default backend.
func ParseBackend(name string) TimeScaleBackend {
	switch name {
	case `phase_vocoder`:
		return BackendPhaseVocoder
	case `fast_fft`:
		return BackendFastFFT
	default:
		return BackendWSOLA
	}
}

// TimeScale alters the apparent speaking rate of x by factor coef using
// the selected backend. coef must be positive; coef = 1 is a near-identity.
func TimeScale(ctx context.Context, x []float64, coef float64, fs int, backend TimeScaleBackend) ([]float64, *log.Status) {
	if coef <= 0 {
		return nil, log.ErrorNoErr(ctx, 400, `time-scale coefficient must be positive, got`, coef)
	}
	if len(x) == 0 {
		return []float64{}, nil
	}
	switch backend {
	case BackendPhaseVocoder:
		return phaseVocoder(x, 1/coef), nil
	case BackendFastFFT:
		target := int(float64(len(x)) / coef)
		if target < 1 {
			target = 1
		}
		return fftResample(x, target), nil
	case BackendWSOLA:
		stretched := wsola(x, coef, 256, fs/70)
		return fftResample(stretched, len(x)), nil
	default:
		return nil, log.ErrorNoErr(ctx, 400, `unknown time-scale backend`, int(backend))
	}
}

// phaseVocoder time-stretches by the given rate (>1 shortens) while
// preserving pitch, by interpolating STFT magnitudes and accumulating
// per-bin phase advances.
func phaseVocoder(x []float64, rate float64) []float64 {
	transform := defaultSTFT()
	frames := transform.analyze(x)
	bins := transform.bins()
	nFrames := len(frames)
	if nFrames == 0 {
		return make([]float64, 0)
	}
	// one padding frame so interpolation can read past the end
	padded := append(frames, make([]complex128, bins))

	phiAdvance := make([]float64, bins)
	for k := 0; k < bins; k++ {
		phiAdvance[k] = math.Pi * float64(transform.hop) * float64(k) / float64(bins-1)
	}

	phaseAcc := make([]float64, bins)
	for k, c := range frames[0] {
		phaseAcc[k] = cmplx.Phase(c)
	}

	var out [][]complex128
	for step := 0.0; step < float64(nFrames); step += rate {
		idx := int(step)
		alpha := step - float64(idx)
		current, next := padded[idx], padded[idx+1]
		frame := make([]complex128, bins)
		for k := 0; k < bins; k++ {
			mag := (1-alpha)*cmplx.Abs(current[k]) + alpha*cmplx.Abs(next[k])
			frame[k] = cmplx.Rect(mag, phaseAcc[k])
			dphi := cmplx.Phase(next[k]) - cmplx.Phase(current[k]) - phiAdvance[k]
			dphi -= 2 * math.Pi * math.Round(dphi/(2*math.Pi))
			phaseAcc[k] += phiAdvance[k] + dphi
		}
		out = append(out, frame)
	}
	length := int(math.Round(float64(len(x)) / rate))
	return transform.synthesize(out, length)
}

// fftResample changes the sample count of x to m through the frequency
// domain, in the manner of classical Fourier-method resampling.
func fftResample(x []float64, m int) []float64 {
	n := len(x)
	if m == n || n == 0 || m < 1 {
		out := make([]float64, len(x))
		copy(out, x)
		return out
	}
	coeffs := fourier.NewFFT(n).Coefficients(nil, x)
	newCoeffs := make([]complex128, m/2+1)
	shared := len(coeffs)
	if len(newCoeffs) < shared {
		shared = len(newCoeffs)
	}
	copy(newCoeffs, coeffs[:shared])
	// split or fold the Nyquist bin when it sits at a spectrum edge
	if m < n && m%2 == 0 && m/2 < len(coeffs) {
		newCoeffs[m/2] = complex(real(coeffs[m/2]), 0)
	}
	if m > n && n%2 == 0 && n/2 < len(newCoeffs) {
		newCoeffs[n/2] = complex(real(newCoeffs[n/2])/2, imag(newCoeffs[n/2])/2)
	}
	y := fourier.NewFFT(m).Sequence(nil, newCoeffs)
	// combined inverse and amplitude scaling: 1/m for the inverse, m/n for
	// the length change
	for i := range y {
		y[i] /= float64(n)
	}
	return y
}

// wsola is a waveform-similarity overlap-add time stretch: output duration
// is the input's divided by speed. frameLen and synthesisHop control the
// analysis geometry; the search tolerance is half a frame.
func wsola(x []float64, speed float64, frameLen int, synthesisHop int) []float64 {
	n := len(x)
	tolerance := frameLen / 2
	if synthesisHop < 1 || n < frameLen+synthesisHop+tolerance+1 {
		out := make([]float64, n)
		copy(out, x)
		return out
	}
	analysisHop := float64(synthesisHop) * speed
	window := hannPeriodic(frameLen)

	outLen := int(float64(n)/speed) + frameLen
	y := make([]float64, outLen)
	winSum := make([]float64, outLen)

	// natural progression of the previously chosen frame, used as the
	// similarity target for the next one
	target := make([]float64, frameLen)
	copy(target, x[synthesisHop:synthesisHop+frameLen])

	writePos := 0
	for k := 0; ; k++ {
		center := int(float64(k) * analysisHop)
		if center+frameLen+tolerance >= n || writePos+frameLen >= outLen {
			break
		}
		offset := 0
		if k > 0 {
			offset = bestOffset(x, center, frameLen, tolerance, target)
		}
		start := center + offset
		for i := 0; i < frameLen; i++ {
			y[writePos+i] += x[start+i] * window[i]
			winSum[writePos+i] += window[i]
		}
		if start+synthesisHop+frameLen <= n {
			copy(target, x[start+synthesisHop:start+synthesisHop+frameLen])
		}
		writePos += synthesisHop
	}
	for i := range y {
		if winSum[i] > 1e-9 {
			y[i] /= winSum[i]
		}
	}
	final := int(float64(n) / speed)
	if final > len(y) {
		final = len(y)
	}
	return y[:final]
}

// bestOffset finds the shift within +-tolerance that best aligns the
// candidate frame with the target, by maximizing cross-correlation.
func bestOffset(x []float64, center int, frameLen int, tolerance int, target []float64) int {
	best, bestScore := 0, math.Inf(-1)
	lo := -tolerance
	if center+lo < 0 {
		lo = -center
	}
	for delta := lo; delta <= tolerance; delta++ {
		start := center + delta
		if start+frameLen > len(x) {
			break
		}
		var score float64
		for i := 0; i < frameLen; i++ {
			score += x[start+i] * target[i]
		}
		if score > bestScore {
			best, bestScore = delta, score
		}
	}
	return best
}
