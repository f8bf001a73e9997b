package voice_mod

// Second-order Butterworth low-pass design and zero-phase filtering, used
// by the modulation-spectrum smoother.

import "math"

// butterLowpass2 designs a digital order-2 Butterworth low-pass via the
// bilinear transform. cutoff is normalized to Nyquist and must be in (0, 1).
func butterLowpass2(cutoff float64) (b [3]float64, a [3]float64) {
	warped := math.Tan(math.Pi * cutoff / 2)
	k1 := math.Sqrt2 * warped
	k2 := warped * warped
	a0 := 1 + k1 + k2
	b[0] = k2 / a0
	b[1] = 2 * k2 / a0
	b[2] = k2 / a0
	a[0] = 1
	a[1] = 2 * (k2 - 1) / a0
	a[2] = (1 - k1 + k2) / a0
	return b, a
}

// lfilterZi returns the initial filter state that makes the step response
// of the order-2 filter start at steady state.
func lfilterZi(b [3]float64, a [3]float64) [2]float64 {
	// solve (I - A^T) zi = B with A the state companion of a; the
	// transposed companion gives the matrix [[1+a1, -1], [a2, 1]]
	rhs0 := b[1] - a[1]*b[0]
	rhs1 := b[2] - a[2]*b[0]
	det := (1 + a[1]) + a[2]
	if det == 0 {
		return [2]float64{}
	}
	zi0 := (rhs0 + rhs1) / det
	zi1 := ((1+a[1])*rhs1 - a[2]*rhs0) / det
	return [2]float64{zi0, zi1}
}

// lfilterIC runs the direct form II transposed filter with initial state z.
func lfilterIC(b [3]float64, a [3]float64, x []float64, z [2]float64) []float64 {
	y := make([]float64, len(x))
	z0, z1 := z[0], z[1]
	for n, xn := range x {
		yn := b[0]*xn + z0
		z0 = b[1]*xn - a[1]*yn + z1
		z1 = b[2]*xn - a[2]*yn
		y[n] = yn
	}
	return y
}

func reverseInPlace(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}

// filtfilt applies the filter forward and backward for zero phase, with
// odd-symmetric edge extension to suppress startup transients.
func filtfilt(b [3]float64, a [3]float64, x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return []float64{}
	}
	padLen := 9
	if padLen >= n {
		padLen = n - 1
	}
	ext := make([]float64, 0, n+2*padLen)
	for i := padLen; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	for i := 1; i <= padLen; i++ {
		ext = append(ext, 2*x[n-1]-x[n-1-i])
	}
	zi := lfilterZi(b, a)
	scale := func(edge float64) [2]float64 {
		return [2]float64{zi[0] * edge, zi[1] * edge}
	}
	y := lfilterIC(b, a, ext, scale(ext[0]))
	reverseInPlace(y)
	y = lfilterIC(b, a, y, scale(y[0]))
	reverseInPlace(y)
	return y[padLen : padLen+n]
}
