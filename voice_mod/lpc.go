package voice_mod

import (
	"gonum.org/v1/gonum/mat"
)

// lpcBurg fits an all-pole model of the given order to one frame using
// Burg's method and returns the prediction polynomial a[0..order], a[0]=1.
// Degenerate frames (too short, or with no energy) return the identity
// polynomial rather than NaN coefficients.
func lpcBurg(x []float64, order int) []float64 {
	a := make([]float64, order+1)
	a[0] = 1
	n := len(x)
	if n <= order {
		return a
	}
	f := make([]float64, n)
	b := make([]float64, n)
	copy(f, x)
	copy(b, x)
	var den float64
	for i := 1; i < n; i++ {
		den += f[i]*f[i] + b[i-1]*b[i-1]
	}
	den0 := den
	tmp := make([]float64, order+1)
	for m := 0; m < order; m++ {
		// on near-deterministic frames the error energy underflows and
		// the reflection coefficient blows past 1, which would put poles
		// outside the unit circle; stop at the last stable model order
		if den <= den0*1e-12 {
			break
		}
		var num float64
		for i := m + 1; i < n; i++ {
			num += f[i] * b[i-1]
		}
		k := -2 * num / den
		if k <= -1 || k >= 1 {
			break
		}
		// reflection update of the prediction polynomial
		copy(tmp, a)
		for i := 0; i <= m+1; i++ {
			a[i] = tmp[i] + k*tmp[m+1-i]
		}
		// update forward and backward prediction errors in place;
		// descending order keeps b[i-1] unmodified until read
		for i := n - 1; i >= m+1; i-- {
			fOld, bOld := f[i], b[i-1]
			f[i] = fOld + k*bOld
			b[i] = bOld + k*fOld
		}
		den = (1-k*k)*den - f[m+1]*f[m+1] - b[n-1]*b[n-1]
	}
	return a
}

// polyRoots returns the roots of the polynomial with descending real
// coefficients a[0]x^n + a[1]x^(n-1) + ... + a[n], via the eigenvalues of
// its companion matrix.
func polyRoots(a []float64) []complex128 {
	// strip leading zeros
	first := 0
	for first < len(a) && a[first] == 0 {
		first++
	}
	a = a[first:]
	n := len(a) - 1
	if n < 1 {
		return nil
	}
	companion := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		companion.Set(0, j, -a[j+1]/a[0])
	}
	for i := 1; i < n; i++ {
		companion.Set(i, i-1, 1)
	}
	var eig mat.Eigen
	if !eig.Factorize(companion, mat.EigenNone) {
		return nil
	}
	return eig.Values(nil)
}

// polyFromRoots expands a monic polynomial from its roots and returns the
// real parts of its descending coefficients.
func polyFromRoots(roots []complex128) []float64 {
	coeffs := []complex128{1}
	for _, root := range roots {
		next := make([]complex128, len(coeffs)+1)
		for i, c := range coeffs {
			next[i] += c
			next[i+1] -= c * root
		}
		coeffs = next
	}
	out := make([]float64, len(coeffs))
	for i, c := range coeffs {
		out[i] = real(c)
	}
	return out
}

// lfilter applies the direct-form IIR difference equation
// a[0]y[n] = sum(b[k]x[n-k]) - sum(a[k]y[n-k]).
func lfilter(b []float64, a []float64, x []float64) []float64 {
	y := make([]float64, len(x))
	a0 := a[0]
	for n := range x {
		var acc float64
		for k := 0; k < len(b) && k <= n; k++ {
			acc += b[k] * x[n-k]
		}
		for k := 1; k < len(a) && k <= n; k++ {
			acc -= a[k] * y[n-k]
		}
		y[n] = acc / a0
	}
	return y
}
