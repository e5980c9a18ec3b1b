package index

import (
	"sort"

	"github.com/groundline-ai/groundline/internal/domain"
)

// BruteForceBuilder builds exact indexes that score every record on each
// query. Construction cannot fail.
type BruteForceBuilder struct{}

// NewBruteForceBuilder creates a BruteForceBuilder.
func NewBruteForceBuilder() *BruteForceBuilder {
	return &BruteForceBuilder{}
}

// Build implements Builder.
func (b *BruteForceBuilder) Build(corpus *domain.Corpus) (Index, error) {
	return newBruteForce(corpus), nil
}

type bruteForceIndex struct {
	vectors [][]float32
}

func newBruteForce(corpus *domain.Corpus) *bruteForceIndex {
	vectors := make([][]float32, corpus.Len())
	for i := range corpus.Records {
		vectors[i] = corpus.Records[i].Embedding
	}
	return &bruteForceIndex{vectors: vectors}
}

// Query computes the dot product against every record. Vectors are
// pre-normalized, so the dot product is the cosine similarity.
func (x *bruteForceIndex) Query(query []float32, topK int) ([]Candidate, error) {
	if topK <= 0 || len(x.vectors) == 0 {
		return nil, nil
	}

	candidates := make([]Candidate, len(x.vectors))
	for i, vec := range x.vectors {
		candidates[i] = Candidate{Index: i, Score: domain.ClampScore(domain.Dot(query, vec))}
	}

	// Stable: ties keep original record order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if topK < len(candidates) {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

func (x *bruteForceIndex) Kind() string {
	return KindBruteForce
}
