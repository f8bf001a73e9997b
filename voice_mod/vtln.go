package voice_mod

import (
	"context"
	"math"

	log "github.com/Beijukabruno/audio-anonymization-platform/logger"
)

// VTLN applies vocal-tract-length-normalization style frequency warping.
// Each frame's log-magnitude spectrum is remapped through a bilinear
// all-pass warping function parameterized by coef in (-1, 1), and the
// frame is rebuilt with its original phase. coef = 0 is the identity.
func VTLN(ctx context.Context, x []float64, coef float64) ([]float64, *log.Status) {
	if coef <= -1 || coef >= 1 {
		return nil, log.ErrorNoErr(ctx, 400, `vtln coefficient must be in (-1, 1), got`, coef)
	}
	if len(x) == 0 {
		return []float64{}, nil
	}
	transform := defaultSTFT()
	frames := transform.analyze(x)
	bins := transform.bins()

	// bin-center frequencies and their warped positions
	freq := make([]float64, bins)
	warped := make([]float64, bins)
	for k := 0; k < bins; k++ {
		f := math.Pi * float64(k) / float64(bins-1)
		freq[k] = f
		warped[k] = f + 2*math.Atan2(coef*math.Sin(f), 1-coef*math.Cos(f))
	}

	out := make([][]complex128, len(frames))
	for m, frame := range frames {
		logMag, phase := magPhase(frame)
		rebuilt := make([]complex128, bins)
		for k := 0; k < bins; k++ {
			warpedMag := interp(freq[k], warped, logMag)
			rebuilt[k] = complex(math.Exp(warpedMag), 0) * phase[k]
		}
		out[m] = rebuilt
	}
	y := transform.synthesize(out, len(x))
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			y[i] = 0
		}
	}
	return y, nil
}

// Chorus averages three VTLN renderings of the signal at +coef, 0, and
// -coef, producing a simple ensemble effect. coef is clamped to >= 0.
func Chorus(ctx context.Context, x []float64, coef float64) ([]float64, *log.Status) {
	if coef < 0 {
		coef = 0
	}
	plus, status := VTLN(ctx, x, coef)
	if status != nil {
		return nil, status
	}
	center, status := VTLN(ctx, x, 0)
	if status != nil {
		return nil, status
	}
	minus, status := VTLN(ctx, x, -coef)
	if status != nil {
		return nil, status
	}
	y := make([]float64, len(x))
	for i := range y {
		y[i] = (plus[i] + center[i] + minus[i]) / 3
	}
	return y, nil
}
