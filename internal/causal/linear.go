package causal

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// rankTolerance is the relative singular-value cutoff for least squares.
const rankTolerance = 1e-10

// LinearFit is an affine model in the original feature units.
type LinearFit struct {
	Intercept float64
	Coef      []float64
}

func (f LinearFit) Predict(x []float64) float64 {
	y := f.Intercept
	for j, c := range f.Coef {
		y += c * x[j]
	}
	return y
}

// columnMoments returns per-column means and population standard deviations.
func columnMoments(x mat.Matrix) (means, stds []float64) {
	n, p := x.Dims()
	means = make([]float64, p)
	stds = make([]float64, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		mat.Col(col, j, x)
		m, v := stat.PopMeanVariance(col, nil)
		means[j] = m
		stds[j] = math.Sqrt(v)
	}
	return means, stds
}

// FitOLS fits y ~ x with an intercept by least squares. Rank-deficient
// designs (all-zero indicator columns, nested categories) get the
// minimum-norm solution, so predictions stay well defined.
func FitOLS(x *mat.Dense, y []float64) (LinearFit, error) {
	n, p := x.Dims()
	if n == 0 || len(y) != n {
		return LinearFit{}, fmt.Errorf("%w: ols needs matching non-empty inputs", ErrDegenerate)
	}
	yMean := stat.Mean(y, nil)
	fit := LinearFit{Intercept: yMean, Coef: make([]float64, p)}
	if p == 0 {
		return fit, nil
	}

	means, _ := columnMoments(x)
	xc := mat.NewDense(n, p, nil)
	xc.Apply(func(_, j int, v float64) float64 { return v - means[j] }, x)
	yc := mat.NewVecDense(n, nil)
	for i := range y {
		yc.SetVec(i, y[i]-yMean)
	}

	var svd mat.SVD
	if ok := svd.Factorize(xc, mat.SVDThin); !ok {
		return LinearFit{}, fmt.Errorf("%w: svd did not converge", ErrDegenerate)
	}
	rank := svd.Rank(rankTolerance)
	if rank == 0 {
		// Every column is constant; the intercept alone is the fit.
		return fit, nil
	}
	var beta mat.VecDense
	svd.SolveVecTo(&beta, yc, rank)
	for j := 0; j < p; j++ {
		fit.Coef[j] = beta.AtVec(j)
		fit.Intercept -= fit.Coef[j] * means[j]
	}
	return fit, nil
}

// FitRidge standardizes the columns of x (zero mean, unit population
// variance; constant columns keep scale 1), solves the L2-penalized normal
// equations with an unpenalized intercept and maps the coefficients back to
// the original units.
func FitRidge(x *mat.Dense, y []float64, alpha float64) (LinearFit, error) {
	n, p := x.Dims()
	if n == 0 || len(y) != n {
		return LinearFit{}, fmt.Errorf("%w: ridge needs matching non-empty inputs", ErrDegenerate)
	}
	means, stds := columnMoments(x)
	for j := range stds {
		if stds[j] == 0 {
			stds[j] = 1
		}
	}
	z := mat.NewDense(n, p, nil)
	z.Apply(func(_, j int, v float64) float64 { return (v - means[j]) / stds[j] }, x)

	yMean := stat.Mean(y, nil)
	yc := mat.NewVecDense(n, nil)
	for i := range y {
		yc.SetVec(i, y[i]-yMean)
	}

	var gram mat.SymDense
	gram.SymOuterK(1, z.T())
	for j := 0; j < p; j++ {
		gram.SetSym(j, j, gram.At(j, j)+alpha)
	}
	var rhs mat.VecDense
	rhs.MulVec(z.T(), yc)

	var chol mat.Cholesky
	if ok := chol.Factorize(&gram); !ok {
		return LinearFit{}, fmt.Errorf("%w: ridge system is not positive definite", ErrDegenerate)
	}
	var w mat.VecDense
	if err := chol.SolveVecTo(&w, &rhs); err != nil {
		return LinearFit{}, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	fit := LinearFit{Intercept: yMean, Coef: make([]float64, p)}
	for j := 0; j < p; j++ {
		fit.Coef[j] = w.AtVec(j) / stds[j]
		fit.Intercept -= w.AtVec(j) * means[j] / stds[j]
	}
	return fit, nil
}
