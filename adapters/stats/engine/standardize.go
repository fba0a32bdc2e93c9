package engine

import (
	"github.com/montanaflynn/stats"

	apperrors "clusterlab/internal/errors"
)

// Standardize extracts the selected columns, in the given order, into a
// reduced matrix and z-scores each column with the sample standard
// deviation (Bessel's correction, N-1 denominator).
//
// A zero-variance column is left unaltered: it is neither centered nor
// scaled, so its raw value flows into downstream distance computations.
// Substituting zeros here would change observable output.
func Standardize(embeddings [][]float64, selected []int) (standardized [][]float64, means, stds []float64, err error) {
	n := len(embeddings)
	width := 0
	if n > 0 {
		width = len(embeddings[0])
	}
	for _, dim := range selected {
		if dim < 0 || dim >= width {
			return nil, nil, nil, apperrors.ValidationError("selected dimension index out of range")
		}
	}

	standardized = make([][]float64, n)
	for i := range standardized {
		standardized[i] = make([]float64, len(selected))
	}
	means = make([]float64, len(selected))
	stds = make([]float64, len(selected))

	for c, dim := range selected {
		column := make([]float64, n)
		for i := 0; i < n; i++ {
			column[i] = embeddings[i][dim]
		}

		mean, _ := stats.Mean(column)
		std := 0.0
		if n > 1 {
			std, _ = stats.StandardDeviationSample(column)
		}
		means[c] = mean
		stds[c] = std

		for i := 0; i < n; i++ {
			if std > 0 {
				standardized[i][c] = (column[i] - mean) / std
			} else {
				standardized[i][c] = column[i]
			}
		}
	}

	return standardized, means, stds, nil
}
