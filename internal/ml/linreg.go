package ml

import (
	"errors"
	"math"
)

// LinearRegression fits least squares via the normal equations with a small
// ridge term to keep the system solvable on collinear features.
type LinearRegression struct {
	Intercept float64   `json:"intercept"`
	Coef      []float64 `json:"coef"`
}

const ridgeLambda = 1e-6

func (lr *LinearRegression) Fit(X [][]float64, y []float64) error {
	if err := checkTraining(len(X), len(y)); err != nil {
		return err
	}
	// Augment with a bias column: solve (AᵀA + λI)β = Aᵀy.
	p := len(X[0]) + 1
	ata := make([][]float64, p)
	for i := range ata {
		ata[i] = make([]float64, p)
	}
	aty := make([]float64, p)
	row := make([]float64, p)
	for i := range X {
		row[0] = 1
		copy(row[1:], X[i])
		for a := 0; a < p; a++ {
			aty[a] += row[a] * y[i]
			for b := 0; b < p; b++ {
				ata[a][b] += row[a] * row[b]
			}
		}
	}
	for i := 0; i < p; i++ {
		ata[i][i] += ridgeLambda
	}
	beta, err := solve(ata, aty)
	if err != nil {
		return err
	}
	lr.Intercept = beta[0]
	lr.Coef = beta[1:]
	return nil
}

func (lr *LinearRegression) Predict(x []float64) (float64, error) {
	if lr.Coef == nil {
		return 0, errors.New("model not trained")
	}
	if len(x) != len(lr.Coef) {
		return 0, errors.New("feature vector length mismatch")
	}
	out := lr.Intercept
	for i, c := range lr.Coef {
		out += c * x[i]
	}
	return out, nil
}

// solve performs Gaussian elimination with partial pivoting.
func solve(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, errors.New("singular design matrix")
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]
		for r := col + 1; r < n; r++ {
			factor := a[r][col] / a[col][col]
			for c := col; c < n; c++ {
				a[r][c] -= factor * a[col][c]
			}
			b[r] -= factor * b[col]
		}
	}
	x := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		sum := b[r]
		for c := r + 1; c < n; c++ {
			sum -= a[r][c] * x[c]
		}
		x[r] = sum / a[r][r]
	}
	return x, nil
}
