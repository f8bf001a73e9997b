package voice_mod

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"

	log "github.com/Beijukabruno/audio-anonymization-platform/logger"
)

// ModSpecSmooth flattens fast fluctuations in the modulation spectrum:
// the log-magnitude trajectory of every frequency bin is low-pass filtered
// across time with a zero-phase order-2 Butterworth at normalized cutoff
// coef, applied on the trajectory and again on its reversal. Phase is kept
// from the input and the output is rescaled to the input's exact energy.
func ModSpecSmooth(ctx context.Context, x []float64, coef float64) ([]float64, *log.Status) {
	if coef <= 0 || coef >= 1 {
		return nil, log.ErrorNoErr(ctx, 400, `modspec cutoff must be in (0, 1), got`, coef)
	}
	if len(x) == 0 {
		return []float64{}, nil
	}
	transform := defaultSTFT()
	frames := transform.analyze(x)
	bins := transform.bins()
	nFrames := len(frames)

	logMag := make([][]float64, nFrames)
	phase := make([][]complex128, nFrames)
	for m, frame := range frames {
		logMag[m], phase[m] = magPhase(frame)
	}

	b, a := butterLowpass2(coef)
	trajectory := make([]float64, nFrames)
	for k := 0; k < bins; k++ {
		for m := 0; m < nFrames; m++ {
			trajectory[m] = logMag[m][k]
		}
		smoothed := filtfilt(b, a, trajectory)
		reverseInPlace(smoothed)
		smoothed = filtfilt(b, a, smoothed)
		reverseInPlace(smoothed)
		for m := 0; m < nFrames; m++ {
			logMag[m][k] = smoothed[m]
		}
	}

	rebuilt := make([][]complex128, nFrames)
	for m := 0; m < nFrames; m++ {
		frame := make([]complex128, bins)
		for k := 0; k < bins; k++ {
			frame[k] = complex(math.Exp(logMag[m][k]), 0) * phase[m][k]
		}
		rebuilt[m] = frame
	}
	y := transform.synthesize(rebuilt, len(x))
	rescaleEnergy(y, x)
	return y, nil
}

// rescaleEnergy scales y so its L2 norm matches x's. A silent result stays
// silent rather than dividing by zero.
func rescaleEnergy(y []float64, x []float64) {
	normY := floats.Norm(y, 2)
	if normY == 0 {
		return
	}
	ratio := floats.Norm(x, 2) / normY
	for i := range y {
		y[i] *= ratio
	}
}
