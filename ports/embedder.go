package ports

import "context"

// Embedder generates vector embeddings from text. The pipeline treats it
// as an opaque boundary: text in, fixed-length numeric vector out.
// Batching, chunking and rate-limit back-off toward the underlying
// service are the adapter's concern, not the caller's.
type Embedder interface {
	// EmbedBatch produces one embedding per input text, in input order.
	// Every returned vector has the same length.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}
