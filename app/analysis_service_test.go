package app

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clusterlab/domain/analysis"
	apperrors "clusterlab/internal/errors"
	"clusterlab/internal/testkit"
)

// sixRowRequest mirrors the end-to-end scenario: 6 rows, 4 dimensions,
// labels on r1..r4 across two groups, r5 and r6 unlabeled.
func sixRowRequest() analysis.Request {
	return analysis.Request{
		Embeddings: [][]float64{
			{0.1, 5.0, 1.0, -1.0},
			{0.2, 5.0, 1.1, -0.9},
			{9.9, 5.0, 1.0, 0.9},
			{10.1, 5.0, 1.2, 1.1},
			{0.15, 5.0, 1.05, -1.05},
			{10.0, 5.0, 1.15, 1.0},
		},
		Identifiers: []string{"r1", "r2", "r3", "r4", "r5", "r6"},
		Labels:      map[string]string{"r1": "A", "r2": "A", "r3": "B", "r4": "B"},
		Config:      analysis.Config{NumDimensions: 2, NumClusters: 2, Seed: 42},
	}
}

func TestAnalyze_EndToEnd(t *testing.T) {
	service := NewAnalysisService(nil)

	result, err := service.Analyze(sixRowRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, int64(42), result.Seed)
	require.Len(t, result.ClusterAssignments, 6)
	require.Len(t, result.Statistics.SelectedDimensions, 2)
	require.Len(t, result.Statistics.DimensionStats, 2)
	assert.Equal(t, 2, result.Statistics.NumClusters)
	assert.Equal(t, 6, result.Statistics.TotalSamples)
	assert.Equal(t, 4, result.Statistics.LabeledSamples)

	require.Len(t, result.Visualization.Points, 6)
	for i, p := range result.Visualization.Points {
		assert.Equal(t, result.ClusterAssignments[i], p.Cluster)
	}
	assert.Equal(t, "r1", result.Visualization.Points[0].Identifier)
	require.NotNil(t, result.Visualization.Points[0].Label)
	assert.Equal(t, "A", *result.Visualization.Points[0].Label)
	assert.Nil(t, result.Visualization.Points[4].Label, "r5 is unlabeled")

	require.Len(t, result.Clusters, 2)
	total := 0
	for _, cluster := range result.Clusters {
		assert.Equal(t, len(cluster.Items), cluster.Size)
		total += cluster.Size
	}
	assert.Equal(t, 6, total)
}

func TestAnalyze_IdempotentGivenSeed(t *testing.T) {
	service := NewAnalysisService(nil)

	first, err := service.Analyze(sixRowRequest())
	require.NoError(t, err)
	second, err := service.Analyze(sixRowRequest())
	require.NoError(t, err)

	assert.Equal(t, first.ClusterAssignments, second.ClusterAssignments)
	assert.Equal(t, first.Statistics.SelectedDimensions, second.Statistics.SelectedDimensions)
	assert.Equal(t, first.Statistics.DimensionStats, second.Statistics.DimensionStats)
	assert.Equal(t, first.Visualization.Points[0].X, second.Visualization.Points[0].X)
	assert.Equal(t, first.Visualization.ExplainedVariance, second.Visualization.ExplainedVariance)
}

func TestAnalyze_SingleLabelFails(t *testing.T) {
	service := NewAnalysisService(nil)

	req := sixRowRequest()
	req.Labels = map[string]string{"r1": "A", "r2": "A"}

	_, err := service.Analyze(req)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidationError, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "at least 2 labeled groups")
}

func TestAnalyze_RejectsBadInput(t *testing.T) {
	service := NewAnalysisService(nil)

	tests := []struct {
		name   string
		mutate func(*analysis.Request)
	}{
		{"length mismatch", func(r *analysis.Request) { r.Identifiers = r.Identifiers[:3] }},
		{"ragged rows", func(r *analysis.Request) { r.Embeddings[2] = []float64{1} }},
		{"zero clusters", func(r *analysis.Request) { r.Config.NumClusters = 0 }},
		{"too many clusters", func(r *analysis.Request) { r.Config.NumClusters = 7 }},
		{"zero dimensions", func(r *analysis.Request) { r.Config.NumDimensions = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := sixRowRequest()
			tc.mutate(&req)
			_, err := service.Analyze(req)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeValidationError, apperrors.GetCode(err))
		})
	}
}

func TestAnalyze_PerfectSeparatorSerializes(t *testing.T) {
	service := NewAnalysisService(nil)

	// Dimension 0 is constant within each group but differs across them,
	// so its pairwise test saturates at p=0 with the clamped statistic.
	req := analysis.Request{
		Embeddings: [][]float64{
			{0.0, 0.1},
			{0.0, 0.2},
			{1.0, 9.9},
			{1.0, 10.1},
		},
		Identifiers: []string{"r1", "r2", "r3", "r4"},
		Labels:      map[string]string{"r1": "A", "r2": "A", "r3": "B", "r4": "B"},
		Config:      analysis.Config{NumDimensions: 2, NumClusters: 2, Seed: 1},
	}

	result, err := service.Analyze(req)
	require.NoError(t, err)

	stat := result.Statistics.DimensionStats[0]
	assert.Equal(t, 0, stat.Dimension)
	assert.Equal(t, 0.0, stat.PValue)
	assert.False(t, math.IsInf(stat.Statistic, 0))

	// The whole result must survive JSON encoding.
	_, err = json.Marshal(result)
	require.NoError(t, err)
}

func TestAnalyze_DimensionCountClampsToWidth(t *testing.T) {
	service := NewAnalysisService(nil)

	req := sixRowRequest()
	req.Config.NumDimensions = 50

	result, err := service.Analyze(req)
	require.NoError(t, err)
	assert.Len(t, result.Statistics.SelectedDimensions, 4)
}

func TestAnalyzeTexts_EmbedsThenAnalyzes(t *testing.T) {
	service := NewAnalysisService(&testkit.FakeEmbedder{Dimensions: 8})

	records := []analysis.TextRecord{
		{Identifier: "r1", Text: "refund for broken item", Label: "billing"},
		{Identifier: "r2", Text: "charged twice this month", Label: "billing"},
		{Identifier: "r3", Text: "app crashes at login", Label: "bugs"},
		{Identifier: "r4", Text: "cannot reset my password", Label: "bugs"},
		{Identifier: "r5", Text: "love the new design"},
		{Identifier: "r6", Text: "please add dark mode"},
	}

	result, err := service.AnalyzeTexts(context.Background(), records, analysis.Config{
		NumDimensions: 3, NumClusters: 2, Seed: 7,
	})
	require.NoError(t, err)
	assert.Len(t, result.ClusterAssignments, 6)
	assert.Len(t, result.Statistics.SelectedDimensions, 3)
	assert.Equal(t, 4, result.Statistics.LabeledSamples)
}

func TestAnalyzeTexts_EmbedderFailureSurfaces(t *testing.T) {
	service := NewAnalysisService(&testkit.FakeEmbedder{
		Err: apperrors.ExternalServiceError("embedding", assert.AnError),
	})

	_, err := service.AnalyzeTexts(context.Background(), []analysis.TextRecord{
		{Identifier: "r1", Text: "x", Label: "A"},
		{Identifier: "r2", Text: "y", Label: "B"},
	}, analysis.Config{NumDimensions: 1, NumClusters: 1})

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeExternalService, apperrors.GetCode(err))
}

func TestAnalyzeTexts_RequiresEmbedder(t *testing.T) {
	service := NewAnalysisService(nil)
	_, err := service.AnalyzeTexts(context.Background(), []analysis.TextRecord{
		{Identifier: "r1", Text: "x"},
	}, analysis.Config{NumDimensions: 1, NumClusters: 1})
	require.Error(t, err)
}
