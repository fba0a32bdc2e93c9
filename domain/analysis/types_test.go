package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestRequest() Request {
	return Request{
		Embeddings: [][]float64{
			{0.1, 1.0},
			{0.2, 1.1},
			{9.9, 0.9},
			{10.1, 1.2},
		},
		Identifiers: []string{"r1", "r2", "r3", "r4"},
		Labels:      map[string]string{"r1": "A", "r2": "A", "r3": "B", "r4": "B"},
		Config:      Config{NumDimensions: 2, NumClusters: 2},
	}
}

func TestValidate_AcceptsWellFormedRequest(t *testing.T) {
	req := validTestRequest()
	require.NoError(t, req.Validate())
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Request)
		message string
	}{
		{
			"length mismatch",
			func(r *Request) { r.Identifiers = r.Identifiers[:2] },
			"length mismatch",
		},
		{
			"empty request",
			func(r *Request) { r.Embeddings = nil; r.Identifiers = nil },
			"no embeddings",
		},
		{
			"zero-width vectors",
			func(r *Request) { r.Embeddings = [][]float64{{}, {}, {}, {}} },
			"non-empty",
		},
		{
			"ragged rows",
			func(r *Request) { r.Embeddings[1] = []float64{1, 2, 3} },
			"width",
		},
		{
			"zero dimensions",
			func(r *Request) { r.Config.NumDimensions = 0 },
			"num_dimensions",
		},
		{
			"negative clusters",
			func(r *Request) { r.Config.NumClusters = -1 },
			"num_clusters",
		},
		{
			"more clusters than rows",
			func(r *Request) { r.Config.NumClusters = 5 },
			"exceeds sample count",
		},
		{
			"single labeled group",
			func(r *Request) { r.Labels = map[string]string{"r1": "A", "r2": "A"} },
			"at least 2 labeled groups",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validTestRequest()
			tc.mutate(&req)
			err := req.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestDistinctLabelCount_IgnoresAbsentIdentifiers(t *testing.T) {
	req := validTestRequest()
	// Labels for identifiers not in the request must not count.
	req.Labels["ghost"] = "C"
	assert.Equal(t, 2, req.DistinctLabelCount())
}

func TestDistinctLabelCount_IgnoresEmptyLabels(t *testing.T) {
	req := validTestRequest()
	req.Labels["r3"] = ""
	req.Labels["r4"] = ""
	assert.Equal(t, 1, req.DistinctLabelCount())
}

func TestLabeledCount(t *testing.T) {
	req := validTestRequest()
	assert.Equal(t, 4, req.LabeledCount())

	req.Labels = map[string]string{"r1": "A", "r2": "", "ghost": "B"}
	assert.Equal(t, 1, req.LabeledCount())
}
