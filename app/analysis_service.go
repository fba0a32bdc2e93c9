package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"clusterlab/adapters/stats/engine"
	"clusterlab/domain/analysis"
	apperrors "clusterlab/internal/errors"
	"clusterlab/ports"
)

// AnalysisService runs the full clustering pipeline: rank dimensions by
// cross-group separability, standardize the reduced matrix, cluster it
// with K-means, and project it to 2D for display.
//
// The pipeline is a single synchronous CPU-bound computation with no
// shared mutable state, so concurrent Analyze calls need no coordination.
type AnalysisService struct {
	embedder ports.Embedder // only needed for AnalyzeTexts
}

// NewAnalysisService creates an analysis service. The embedder may be nil
// when only precomputed embeddings are analyzed.
func NewAnalysisService(embedder ports.Embedder) *AnalysisService {
	return &AnalysisService{embedder: embedder}
}

// Analyze runs the pipeline over precomputed embeddings.
func (s *AnalysisService) Analyze(req analysis.Request) (*analysis.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.ValidationError(err.Error())
	}

	seed := req.Config.Seed
	if seed <= 0 {
		seed = time.Now().UnixNano()
	}

	start := time.Now()
	log.Printf("[AnalysisService] Starting analysis run: %d samples, %d labeled, dims=%d, k=%d",
		len(req.Embeddings), req.LabeledCount(), req.Config.NumDimensions, req.Config.NumClusters)

	selected, dimStats, err := engine.RankDimensions(
		req.Embeddings, req.Labels, req.Identifiers, req.Config.NumDimensions)
	if err != nil {
		return nil, err
	}

	standardized, _, _, err := engine.Standardize(req.Embeddings, selected)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	clustering, err := engine.KMeans(standardized, req.Config.NumClusters, rng)
	if err != nil {
		if apperrors.GetCode(err) == apperrors.CodeValidationError {
			return nil, err
		}
		return nil, apperrors.ComputationFailure("clustering", err)
	}

	projection, err := engine.Project(standardized)
	if err != nil {
		return nil, err
	}

	result := s.assemble(&req, selected, dimStats, clustering, projection, seed)
	log.Printf("[AnalysisService] Analysis run %s finished in %.2fms (%d clusters, %d selected dimensions)",
		result.RunID, float64(time.Since(start).Nanoseconds())/1e6, req.Config.NumClusters, len(selected))
	return result, nil
}

// AnalyzeTexts embeds raw text records through the embedding boundary and
// then runs the same pipeline.
func (s *AnalysisService) AnalyzeTexts(ctx context.Context, records []analysis.TextRecord, cfg analysis.Config) (*analysis.Result, error) {
	if s.embedder == nil {
		return nil, apperrors.InternalError("no embedder configured")
	}
	if len(records) == 0 {
		return nil, apperrors.ValidationError("no records provided")
	}

	texts := make([]string, len(records))
	identifiers := make([]string, len(records))
	labels := make(map[string]string)
	for i, rec := range records {
		if rec.Identifier == "" {
			return nil, apperrors.ValidationError(fmt.Sprintf("record %d has no identifier", i))
		}
		texts[i] = rec.Text
		identifiers[i] = rec.Identifier
		if rec.Label != "" {
			labels[rec.Identifier] = rec.Label
		}
	}

	log.Printf("[AnalysisService] Embedding %d texts", len(texts))
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(records) {
		return nil, apperrors.ExternalServiceError("embedding",
			fmt.Errorf("got %d embeddings for %d texts", len(embeddings), len(records)))
	}

	return s.Analyze(analysis.Request{
		Embeddings:  embeddings,
		Identifiers: identifiers,
		Labels:      labels,
		Config:      cfg,
	})
}

// assemble merges the pipeline outputs into the externally visible result.
// Pure record composition; no computation happens here.
func (s *AnalysisService) assemble(
	req *analysis.Request,
	selected []int,
	dimStats []analysis.DimensionStat,
	clustering *engine.KMeansResult,
	projection *engine.ProjectionResult,
	seed int64,
) *analysis.Result {
	n := len(req.Identifiers)

	points := make([]analysis.Point, n)
	for i := 0; i < n; i++ {
		points[i] = analysis.Point{
			X:          projection.Points[i].X,
			Y:          projection.Points[i].Y,
			Identifier: req.Identifiers[i],
			Cluster:    clustering.Assignments[i],
			Label:      labelOrNil(req.Labels, req.Identifiers[i]),
		}
	}

	clusters := make([]analysis.ClusterSummary, req.Config.NumClusters)
	for c := range clusters {
		clusters[c] = analysis.ClusterSummary{ID: c, Items: []analysis.ClusterItem{}}
	}
	for i, c := range clustering.Assignments {
		clusters[c].Items = append(clusters[c].Items, analysis.ClusterItem{
			Identifier: req.Identifiers[i],
			Label:      labelOrNil(req.Labels, req.Identifiers[i]),
		})
		clusters[c].Size++
	}

	return &analysis.Result{
		RunID:              uuid.NewString(),
		Seed:               seed,
		ClusterAssignments: clustering.Assignments,
		Visualization: analysis.Visualization{
			Points:                 points,
			ExplainedVariance:      projection.ExplainedVariance,
			TotalVarianceExplained: projection.TotalVarianceExplained,
		},
		Statistics: analysis.Statistics{
			SelectedDimensions: selected,
			DimensionStats:     dimStats,
			NumClusters:        req.Config.NumClusters,
			NumDimensions:      len(selected),
			TotalSamples:       n,
			LabeledSamples:     req.LabeledCount(),
		},
		Clusters: clusters,
	}
}

func labelOrNil(labels map[string]string, id string) *string {
	if label, ok := labels[id]; ok && label != "" {
		return &label
	}
	return nil
}
