package engine

import (
	"math"
	"sort"

	"clusterlab/domain/analysis"
	apperrors "clusterlab/internal/errors"
)

// significanceLevel flags dimensions whose best pairwise p-value clears
// the conventional 0.05 threshold.
const significanceLevel = 0.05

// RankDimensions scores every embedding dimension by cross-group
// separability and returns the indices of the top-ranked dimensions
// together with their statistics.
//
// For each dimension, every unordered pair of labeled groups is compared
// with a two-sided Welch's t-test on that dimension's column values. The
// dimension's score is the smallest pairwise p-value (first-encountered
// pair wins ties; pairs are visited in increasing order over the sorted
// group names so runs are deterministic). Pairs where either group has
// fewer than 2 values contribute the non-informative placeholder p=1, t=0.
//
// The resulting stats are sorted ascending by p-value with a stable sort,
// so tied dimensions keep their original index order, and truncated to
// min(topN, D).
func RankDimensions(embeddings [][]float64, labels map[string]string, identifiers []string, topN int) ([]int, []analysis.DimensionStat, error) {
	if len(embeddings) != len(identifiers) {
		return nil, nil, apperrors.ValidationError("embeddings and identifiers length mismatch")
	}

	// Group row indices by label value.
	groups := make(map[string][]int)
	for i, id := range identifiers {
		if label, ok := labels[id]; ok && label != "" {
			groups[label] = append(groups[label], i)
		}
	}
	if len(groups) < 2 {
		return nil, nil, apperrors.ValidationError("need at least 2 labeled groups")
	}

	groupNames := make([]string, 0, len(groups))
	for name := range groups {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	dims := 0
	if len(embeddings) > 0 {
		dims = len(embeddings[0])
	}

	dimStats := make([]analysis.DimensionStat, 0, dims)
	for d := 0; d < dims; d++ {
		bestP := math.Inf(1)
		bestStat := 0.0
		for i := 0; i < len(groupNames); i++ {
			for j := i + 1; j < len(groupNames); j++ {
				x := columnValues(embeddings, groups[groupNames[i]], d)
				y := columnValues(embeddings, groups[groupNames[j]], d)
				res := WelchTTest(x, y)
				if res.PValue < bestP {
					bestP = res.PValue
					bestStat = math.Abs(res.Statistic)
				}
			}
		}
		dimStats = append(dimStats, analysis.DimensionStat{
			Dimension:   d,
			PValue:      bestP,
			Statistic:   bestStat,
			Significant: bestP < significanceLevel,
		})
	}

	sort.SliceStable(dimStats, func(i, j int) bool {
		return dimStats[i].PValue < dimStats[j].PValue
	})

	take := topN
	if take > dims {
		take = dims
	}
	if take < 0 {
		take = 0
	}
	dimStats = dimStats[:take]

	selected := make([]int, len(dimStats))
	for i, s := range dimStats {
		selected[i] = s.Dimension
	}
	return selected, dimStats, nil
}

// columnValues extracts one dimension's values restricted to a group's rows.
func columnValues(embeddings [][]float64, rows []int, dim int) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		out = append(out, embeddings[r][dim])
	}
	return out
}
