package cal

import (
	"math/cmplx"
)

// solveSquare solves the n×n complex system a·x = b by Gaussian elimination
// with partial pivoting. a and b are consumed. A zero pivot means the
// system is rank-deficient and returns ErrSingularStandardSet.
func solveSquare(a [][]complex128, b []complex128) ([]complex128, error) {
	n := len(a)

	for col := 0; col < n; col++ {
		pivot := col
		maxAbs := cmplx.Abs(a[col][col])
		for r := col + 1; r < n; r++ {
			if abs := cmplx.Abs(a[r][col]); abs > maxAbs {
				maxAbs = abs
				pivot = r
			}
		}
		if maxAbs == 0 {
			return nil, ErrSingularStandardSet
		}
		if pivot != col {
			a[col], a[pivot] = a[pivot], a[col]
			b[col], b[pivot] = b[pivot], b[col]
		}
		for r := col + 1; r < n; r++ {
			factor := a[r][col] / a[col][col]
			for c := col; c < n; c++ {
				a[r][c] -= factor * a[col][c]
			}
			b[r] -= factor * b[col]
		}
	}

	x := make([]complex128, n)
	for i := n - 1; i >= 0; i-- {
		if a[i][i] == 0 {
			return nil, ErrSingularStandardSet
		}
		sum := b[i]
		for j := i + 1; j < n; j++ {
			sum -= a[i][j] * x[j]
		}
		x[i] = sum / a[i][i]
	}
	return x, nil
}

// leastSquares solves the overdetermined m×n complex system a·x ≈ b in the
// least-squares sense via the normal equations Aᴴ·A·x = Aᴴ·b. For m == n it
// reduces to the direct solve.
func leastSquares(a [][]complex128, b []complex128) ([]complex128, error) {
	m := len(a)
	if m == 0 {
		return nil, ErrInsufficientStandards
	}
	n := len(a[0])
	if m == n {
		return solveSquare(a, b)
	}

	// Normal matrix N = Aᴴ·A and right-hand side r = Aᴴ·b.
	nm := make([][]complex128, n)
	r := make([]complex128, n)
	for i := 0; i < n; i++ {
		nm[i] = make([]complex128, n)
		for j := 0; j < n; j++ {
			var sum complex128
			for k := 0; k < m; k++ {
				sum += cmplx.Conj(a[k][i]) * a[k][j]
			}
			nm[i][j] = sum
		}
		var sum complex128
		for k := 0; k < m; k++ {
			sum += cmplx.Conj(a[k][i]) * b[k]
		}
		r[i] = sum
	}
	return solveSquare(nm, r)
}
