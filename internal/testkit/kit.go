package testkit

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
)

// BlobSpec describes one synthetic group of embedding rows: count vectors
// scattered around a center with gaussian noise, all tagged with Label.
// An empty Label leaves the rows unlabeled.
type BlobSpec struct {
	Label  string
	Center []float64
	Count  int
	Noise  float64
}

// GenerateBlobs builds a synthetic labeled dataset from blob specs using
// the given seeded source, so fixtures are reproducible across runs.
func GenerateBlobs(rng *rand.Rand, specs []BlobSpec) (embeddings [][]float64, identifiers []string, labels map[string]string) {
	labels = make(map[string]string)
	row := 0
	for _, spec := range specs {
		for i := 0; i < spec.Count; i++ {
			vec := make([]float64, len(spec.Center))
			for d, c := range spec.Center {
				vec[d] = c + rng.NormFloat64()*spec.Noise
			}
			id := fmt.Sprintf("r%d", row+1)
			embeddings = append(embeddings, vec)
			identifiers = append(identifiers, id)
			if spec.Label != "" {
				labels[id] = spec.Label
			}
			row++
		}
	}
	return embeddings, identifiers, labels
}

// FakeEmbedder is a deterministic in-memory embedder for tests: each text
// hashes to a fixed vector, so identical texts always embed identically.
type FakeEmbedder struct {
	Dimensions int
	Err        error // returned verbatim when set
}

// EmbedBatch implements ports.Embedder.
func (f *FakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float64, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	dims := f.Dimensions
	if dims <= 0 {
		dims = 8
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		h := fnv.New64a()
		h.Write([]byte(text))
		rng := rand.New(rand.NewSource(int64(h.Sum64())))
		vec := make([]float64, dims)
		for d := range vec {
			vec[d] = rng.NormFloat64()
		}
		out[i] = vec
	}
	return out, nil
}
