package engine

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	apperrors "clusterlab/internal/errors"
)

// ProjectedPoint is one row's 2D display coordinates.
type ProjectedPoint struct {
	X float64
	Y float64
}

// ProjectionResult holds the 2D projection and its variance accounting.
type ProjectionResult struct {
	Points                 []ProjectedPoint
	ExplainedVariance      [2]float64
	TotalVarianceExplained float64
}

// Project reduces a standardized matrix to two display dimensions via the
// singular value decomposition of the re-centered data.
//
// The coordinates are the first two columns of U taken as-is, without
// rescaling by the singular values. The displayed spread is therefore a
// function of direction only, not of the variance magnitude along each
// axis. This mirrors the system's observed behavior and is intentionally
// not the conventional PCA score U*Sigma.
//
// Columns are re-centered here independently of Standardize, because
// zero-variance columns skip centering there.
//
// Variance accounting converts each singular value to an eigenvalue via
// sigma^2/(N-1); the explained ratios divide the first two eigenvalues by
// the sum over all retained ones.
func Project(standardized [][]float64) (*ProjectionResult, error) {
	n := len(standardized)
	dims := 0
	if n > 0 {
		dims = len(standardized[0])
	}

	// Degenerate shapes get placeholder layouts instead of failing.
	if n == 0 || dims == 0 {
		points := make([]ProjectedPoint, n)
		for i := range points {
			points[i] = ProjectedPoint{X: float64(i), Y: 0}
		}
		return degenerateResult(points), nil
	}
	if dims < 2 {
		// Single column: spread rows vertically so points stay distinct.
		points := make([]ProjectedPoint, n)
		for i, row := range standardized {
			points[i] = ProjectedPoint{X: row[0], Y: float64(i) * 0.1}
		}
		return degenerateResult(points), nil
	}

	centered := mat.NewDense(n, dims, nil)
	for c := 0; c < dims; c++ {
		column := make([]float64, n)
		for i := 0; i < n; i++ {
			column[i] = standardized[i][c]
		}
		mean := stat.Mean(column, nil)
		for i := 0; i < n; i++ {
			centered.Set(i, c, column[i]-mean)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return nil, apperrors.ComputationFailure("projection", apperrors.New(
			apperrors.CodeComputationFailure, "SVD factorization did not converge"))
	}

	var u mat.Dense
	svd.UTo(&u)
	values := svd.Values(nil)
	_, uCols := u.Dims()

	points := make([]ProjectedPoint, n)
	for i := 0; i < n; i++ {
		p := ProjectedPoint{X: u.At(i, 0)}
		if uCols >= 2 {
			p.Y = u.At(i, 1)
		}
		points[i] = p
	}

	// Eigenvalues over all retained singular values, not just the top two.
	totalVariance := 0.0
	eigenvalues := make([]float64, len(values))
	if n > 1 {
		for i, sigma := range values {
			eigenvalues[i] = sigma * sigma / float64(n-1)
			totalVariance += eigenvalues[i]
		}
	}
	if totalVariance <= 0 {
		return degenerateResult(points), nil
	}

	result := &ProjectionResult{Points: points}
	result.ExplainedVariance[0] = eigenvalues[0] / totalVariance
	if len(eigenvalues) > 1 {
		result.ExplainedVariance[1] = eigenvalues[1] / totalVariance
	}
	result.TotalVarianceExplained = result.ExplainedVariance[0] + result.ExplainedVariance[1]
	return result, nil
}

func degenerateResult(points []ProjectedPoint) *ProjectionResult {
	return &ProjectionResult{
		Points:                 points,
		ExplainedVariance:      [2]float64{1.0, 0.0},
		TotalVarianceExplained: 1.0,
	}
}
