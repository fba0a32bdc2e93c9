package analysis

import (
	"fmt"
)

// ============================================================================
// INPUT TYPES
// ============================================================================

// Config holds the caller-supplied analysis parameters.
// NumDimensions is how many top-ranked embedding dimensions feed the
// clustering step (clamped to the embedding width). NumClusters is K.
type Config struct {
	NumDimensions int   `json:"num_dimensions"`
	NumClusters   int   `json:"num_clusters"`
	Seed          int64 `json:"seed,omitempty"` // <= 0 means entropy-derived
}

// TextRecord is one raw text row before embedding. Label may be empty
// (unlabeled rows still participate in clustering, just not in ranking).
type TextRecord struct {
	Identifier string `json:"identifier"`
	Text       string `json:"text"`
	Label      string `json:"label,omitempty"`
}

// Request is the full input to one analysis run.
// INVARIANTS:
// - every embedding row has the same width D > 0
// - len(Embeddings) == len(Identifiers)
// - Labels maps identifiers to group names; only a subset need be labeled,
//   but at least 2 distinct group names must be present
type Request struct {
	Embeddings  [][]float64       `json:"embeddings"`
	Identifiers []string          `json:"identifiers"`
	Labels      map[string]string `json:"labels"`
	Config      Config            `json:"config"`
}

// ============================================================================
// OUTPUT TYPES
// ============================================================================

// DimensionStat scores one embedding dimension by how well it separates
// the labeled groups. PValue is the smallest pairwise Welch's t-test
// p-value across all group pairs; Statistic is the matching |t|.
type DimensionStat struct {
	Dimension   int     `json:"dimension"`
	PValue      float64 `json:"p_value"`
	Statistic   float64 `json:"statistic"`
	Significant bool    `json:"significant"`
}

// Point is one row projected into 2D for display. Label is nil for
// unlabeled rows.
type Point struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Identifier string  `json:"identifier"`
	Cluster    int     `json:"cluster"`
	Label      *string `json:"label"`
}

// Visualization carries the 2D projection and its variance accounting.
type Visualization struct {
	Points                 []Point    `json:"points"`
	ExplainedVariance      [2]float64 `json:"explained_variance"`
	TotalVarianceExplained float64    `json:"total_variance_explained"`
}

// Statistics summarizes the dimension ranking and sample counts.
type Statistics struct {
	SelectedDimensions []int           `json:"selected_dimensions"`
	DimensionStats     []DimensionStat `json:"dimension_stats"`
	NumClusters        int             `json:"num_clusters"`
	NumDimensions      int             `json:"num_dimensions"`
	TotalSamples       int             `json:"total_samples"`
	LabeledSamples     int             `json:"labeled_samples"`
}

// ClusterItem is one member of a cluster.
type ClusterItem struct {
	Identifier string  `json:"identifier"`
	Label      *string `json:"label"`
}

// ClusterSummary groups the members of one cluster.
type ClusterSummary struct {
	ID    int           `json:"id"`
	Items []ClusterItem `json:"items"`
	Size  int           `json:"size"`
}

// Result is the immutable output of one analysis run.
type Result struct {
	RunID              string           `json:"run_id"`
	Seed               int64            `json:"seed"`
	ClusterAssignments []int            `json:"cluster_assignments"`
	Visualization      Visualization    `json:"visualization"`
	Statistics         Statistics       `json:"statistics"`
	Clusters           []ClusterSummary `json:"clusters"`
}

// ============================================================================
// VALIDATION
// ============================================================================

// Validate checks the request invariants that gate the whole pipeline.
// Every violation is fatal and never retried.
func (r *Request) Validate() error {
	if len(r.Embeddings) != len(r.Identifiers) {
		return fmt.Errorf("embeddings and identifiers length mismatch: %d vs %d",
			len(r.Embeddings), len(r.Identifiers))
	}
	if len(r.Embeddings) == 0 {
		return fmt.Errorf("no embeddings provided")
	}
	width := len(r.Embeddings[0])
	if width == 0 {
		return fmt.Errorf("embedding vectors must be non-empty")
	}
	for i, row := range r.Embeddings {
		if len(row) != width {
			return fmt.Errorf("embedding row %d has width %d, expected %d", i, len(row), width)
		}
	}
	if r.Config.NumDimensions < 1 {
		return fmt.Errorf("num_dimensions must be a positive integer, got %d", r.Config.NumDimensions)
	}
	if r.Config.NumClusters < 1 {
		return fmt.Errorf("num_clusters must be a positive integer, got %d", r.Config.NumClusters)
	}
	if r.Config.NumClusters > len(r.Embeddings) {
		return fmt.Errorf("num_clusters %d exceeds sample count %d", r.Config.NumClusters, len(r.Embeddings))
	}
	if r.DistinctLabelCount() < 2 {
		return fmt.Errorf("need at least 2 labeled groups")
	}
	return nil
}

// DistinctLabelCount returns the number of distinct group names present
// among the labeled identifiers that actually appear in this request.
func (r *Request) DistinctLabelCount() int {
	present := make(map[string]bool)
	ids := make(map[string]bool, len(r.Identifiers))
	for _, id := range r.Identifiers {
		ids[id] = true
	}
	for id, label := range r.Labels {
		if ids[id] && label != "" {
			present[label] = true
		}
	}
	return len(present)
}

// LabeledCount returns how many rows of the request carry a label.
func (r *Request) LabeledCount() int {
	count := 0
	for _, id := range r.Identifiers {
		if label, ok := r.Labels[id]; ok && label != "" {
			count++
		}
	}
	return count
}
