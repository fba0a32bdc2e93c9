package engine

import (
	"fmt"
	"math"
	"math/rand"

	apperrors "clusterlab/internal/errors"
)

// maxKMeansIterations caps Lloyd's algorithm refinement.
const maxKMeansIterations = 100

// KMeansResult holds a finished clustering run.
type KMeansResult struct {
	Assignments []int       // cluster id in [0, k) per row
	Centroids   [][]float64 // k centroids in the input space
	Iterations  int
	Converged   bool
}

// KMeans partitions the rows of data into k clusters with Lloyd's
// algorithm: assign each point to its nearest centroid by Euclidean
// distance, recompute each centroid as the mean of its assigned points,
// repeat until assignments stop changing or the iteration cap is hit.
//
// Initial centroids are k distinct rows chosen through rng, so callers
// control determinism by pinning the seed. A cluster that loses all its
// points keeps its previous centroid.
func KMeans(data [][]float64, k int, rng *rand.Rand) (*KMeansResult, error) {
	n := len(data)
	if k < 1 {
		return nil, apperrors.ValidationError(fmt.Sprintf("num_clusters must be a positive integer, got %d", k))
	}
	if k > n {
		return nil, apperrors.ValidationError(fmt.Sprintf("num_clusters %d exceeds sample count %d", k, n))
	}

	dims := len(data[0])

	// Random initialization from k distinct rows.
	perm := rng.Perm(n)
	centroids := make([][]float64, k)
	for c := 0; c < k; c++ {
		centroids[c] = make([]float64, dims)
		copy(centroids[c], data[perm[c]])
	}

	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = -1
	}

	result := &KMeansResult{}
	for iter := 0; iter < maxKMeansIterations; iter++ {
		changed := false
		for i, row := range data {
			nearest := nearestCentroid(row, centroids)
			if nearest != assignments[i] {
				assignments[i] = nearest
				changed = true
			}
		}
		result.Iterations = iter + 1

		if !changed {
			result.Converged = true
			break
		}

		// Recompute centroids as the mean of assigned points.
		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, row := range data {
			c := assignments[i]
			counts[c]++
			for d, v := range row {
				sums[c][d] += v
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			for d := 0; d < dims; d++ {
				centroids[c][d] = sums[c][d] / float64(counts[c])
			}
		}
	}

	result.Assignments = assignments
	result.Centroids = centroids
	return result, nil
}

// nearestCentroid returns the index of the centroid closest to row,
// breaking distance ties toward the lower index.
func nearestCentroid(row []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for c, centroid := range centroids {
		dist := squaredDistance(row, centroid)
		if dist < bestDist {
			bestDist = dist
			best = c
		}
	}
	return best
}

func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}
