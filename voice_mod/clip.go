package voice_mod

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	log "github.com/Beijukabruno/audio-anonymization-platform/logger"
)

const clipBins = 1000

// Clip limits the waveform to a data-dependent symmetric threshold: the
// smallest amplitude below which a thresh fraction of the cumulative
// histogram of |x| lies. The clipped signal is rescaled back to the
// input's energy, so the audible effect is saturation, not attenuation.
func Clip(ctx context.Context, x []float64, thresh float64) ([]float64, *log.Status) {
	y := make([]float64, len(x))
	copy(y, x)
	if len(x) == 0 {
		return y, nil
	}
	if thresh < 0 {
		thresh = 0
	}
	if thresh > 1 {
		thresh = 1
	}

	magnitudes := make([]float64, len(x))
	for i, v := range x {
		magnitudes[i] = math.Abs(v)
	}
	sort.Float64s(magnitudes)
	low, high := magnitudes[0], magnitudes[len(magnitudes)-1]
	if high <= low {
		// constant-magnitude signal clips to itself
		return y, nil
	}

	dividers := make([]float64, clipBins+1)
	floats.Span(dividers, low, high)
	// keep the max sample inside the last bucket
	dividers[clipBins] = math.Nextafter(high, math.Inf(1))
	counts := stat.Histogram(nil, dividers, magnitudes, nil)
	cumulative := floats.CumSum(make([]float64, len(counts)), counts)

	total := cumulative[len(cumulative)-1]
	target := thresh * total
	absThresh := high
	for i, c := range cumulative {
		if c >= target {
			absThresh = dividers[i]
			break
		}
	}

	for i, v := range y {
		if v > absThresh {
			y[i] = absThresh
		} else if v < -absThresh {
			y[i] = -absThresh
		}
	}
	rescaleEnergy(y, x)
	return y, nil
}
