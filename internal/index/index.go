// Package index answers top-K nearest-neighbor queries over a loaded corpus.
// The preferred implementation is an HNSW graph; a brute-force scorer covers
// corpora the graph cannot be built for.
package index

import (
	"log"

	"github.com/groundline-ai/groundline/internal/domain"
)

// Index kinds reported by implementations.
const (
	KindHNSW       = "hnsw"
	KindBruteForce = "bruteforce"
)

// Candidate is one nearest-neighbor hit: the record's position in the corpus
// and its cosine similarity to the query, clamped to [-1, 1].
type Candidate struct {
	Index int
	Score float32
}

// Index answers top-K nearest queries against a fixed corpus. Queries assume
// the corpus embeddings were normalized at load time.
type Index interface {
	Query(query []float32, topK int) ([]Candidate, error)
	Kind() string
}

// Builder constructs an Index over a corpus's normalized embeddings.
type Builder interface {
	Build(corpus *domain.Corpus) (Index, error)
}

// BuildWithFallback builds with the given builder and silently falls back to
// brute force when construction fails. Index build failures degrade, they
// are never surfaced to callers.
func BuildWithFallback(builder Builder, corpus *domain.Corpus) Index {
	idx, err := builder.Build(corpus)
	if err != nil {
		log.Printf("index: build failed, falling back to brute force: %v", err)
		return newBruteForce(corpus)
	}
	return idx
}

// DefaultBuilder returns the builder resolved at startup: HNSW.
func DefaultBuilder() Builder {
	return NewHNSWBuilder()
}
