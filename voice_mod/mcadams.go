package voice_mod

import (
	"context"
	"math"
	"math/cmplx"

	log "github.com/Beijukabruno/audio-anonymization-platform/logger"
)

const float32Eps = 1.1920929e-07

// McAdamsOptions sets the analysis geometry of the pole-rotation transform.
// Zero values take the speech defaults: 20 ms window, 10 ms hop, order 20.
type McAdamsOptions struct {
	WindowLen int
	HopLen    int
	LPCOrder  int
}

func (o McAdamsOptions) withDefaults(fs int) McAdamsOptions {
	if o.WindowLen <= 0 {
		o.WindowLen = int(20 * 0.001 * float64(fs))
	}
	if o.HopLen <= 0 {
		o.HopLen = int(10 * 0.001 * float64(fs))
	}
	if o.LPCOrder <= 0 {
		o.LPCOrder = 20
	}
	return o
}

// McAdams applies the VoicePrivacy baseline pole-rotation transform: each
// frame is modeled as an all-pole LPC filter, the angle of every complex
// pole pair is raised to the power coef (magnitude unchanged, angle clamped
// to [0, pi]), and the frame is resynthesized by filtering its LPC residual
// through the modified filter. coef = 1 is the identity; values away from 1
// shift formant-like structure. Output is normalized by its peak.
func McAdams(ctx context.Context, x []float64, coef float64, fs int, options McAdamsOptions) ([]float64, *log.Status) {
	if coef <= 0 {
		return nil, log.ErrorNoErr(ctx, 400, `mcadams coefficient must be positive, got`, coef)
	}
	options = options.withDefaults(fs)
	winLen, hop, order := options.WindowLen, options.HopLen, options.LPCOrder
	n := len(x)
	y := make([]float64, n)
	if n < winLen+hop {
		copy(y, x)
		return y, nil
	}

	// offset the signal so silent frames still yield a usable LPC fit
	x2 := make([]float64, n)
	for i, v := range x {
		x2[i] = v + float32Eps
	}

	wPR := hannSymmetric(winLen)
	var wSum float64
	for _, w := range wPR {
		wSum += w
	}
	k := wSum / float64(hop)
	win := make([]float64, winLen)
	for i, w := range wPR {
		win[i] = math.Sqrt(w / k)
	}

	nFrame := 1 + (n-winLen)/hop
	frame := make([]float64, winLen)
	for m := 1; m < nFrame; m++ {
		offset := m * hop
		for i := 0; i < winLen; i++ {
			frame[i] = x2[offset+i] * win[i]
		}
		shifted := make([]float64, winLen)
		for i, v := range frame {
			shifted[i] = v + float32Eps
		}
		aLPC := lpcBurg(shifted, order)
		poles := polyRoots(aLPC)
		if len(poles) == 0 {
			// degenerate fit: pass the frame through unchanged
			for i := 0; i < winLen; i++ {
				y[offset+i] += frame[i] * win[i]
			}
			continue
		}
		newPoles := rotatePoles(poles, coef)
		aNew := polyFromRoots(newPoles)
		residual := lfilter(aLPC, []float64{1}, frame)
		rebuilt := lfilter([]float64{1}, aNew, residual)
		if !allFinite(rebuilt) {
			// unstable resynthesis filter: pass the frame through
			// unchanged rather than spreading Inf across the overlap-add
			rebuilt = frame
		}
		for i := 0; i < winLen; i++ {
			y[offset+i] += rebuilt[i] * win[i]
		}
	}

	var peak float64
	for _, v := range y {
		if math.Abs(v) > peak {
			peak = math.Abs(v)
		}
	}
	if peak > 0 && !math.IsInf(peak, 1) && !math.IsNaN(peak) {
		for i := range y {
			y[i] /= peak
		}
	}
	return y, nil
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// rotatePoles raises the angle of each complex-conjugate pole pair to the
// power coef, clamping the result into [0, pi] and keeping magnitudes.
// Real poles are untouched. coef = 1 returns the poles unchanged up to
// floating point.
func rotatePoles(poles []complex128, coef float64) []complex128 {
	const tol = 1e-12
	out := make([]complex128, len(poles))
	copy(out, poles)
	used := make([]bool, len(poles))
	for i, pole := range poles {
		if imag(pole) <= tol || used[i] {
			continue
		}
		angle := cmplx.Phase(pole)
		newAngle := math.Pow(angle, coef)
		if newAngle >= math.Pi {
			newAngle = math.Pi
		}
		if newAngle <= 0 {
			newAngle = 0
		}
		magnitude := cmplx.Abs(pole)
		out[i] = cmplx.Rect(magnitude, newAngle)
		used[i] = true
		// the conjugate partner rotates to the mirrored angle
		best, bestDist := -1, math.Inf(1)
		for j, other := range poles {
			if used[j] || imag(other) >= -tol {
				continue
			}
			dist := cmplx.Abs(other - cmplx.Conj(pole))
			if dist < bestDist {
				best, bestDist = j, dist
			}
		}
		if best >= 0 {
			out[best] = cmplx.Rect(cmplx.Abs(poles[best]), -newAngle)
			used[best] = true
		}
	}
	return out
}
