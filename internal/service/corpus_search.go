package service

import (
	"context"
	"log"
	"sync"

	"github.com/groundline-ai/groundline/internal/corpus"
	"github.com/groundline-ai/groundline/internal/domain"
	"github.com/groundline-ai/groundline/internal/index"
	"github.com/groundline-ai/groundline/internal/telemetry"
)

const (
	// DefaultTopK bounds result counts when the caller does not say.
	DefaultTopK = 5
	// DefaultScoreThreshold filters weak matches when the caller does not say.
	DefaultScoreThreshold = 0.7
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// CorpusSearchInput describes one corpus search call.
type CorpusSearchInput struct {
	Query       string
	VectorFiles []string
	TopK        int
	Threshold   float32
}

// CorpusSearchResult is one ranked hit from the static corpus.
type CorpusSearchResult struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Score    float32        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

// CorpusSearchOutput carries the ranked hits plus corpus diagnostics for the
// tool layer.
type CorpusSearchOutput struct {
	Results    []CorpusSearchResult
	CorpusSize int
	IndexKind  string
}

// CorpusSearchService orchestrates embedding, corpus loading and
// nearest-neighbor ranking into a single search operation.
//
// Indexes are cached per corpus cache key for the life of the process.
// Index construction is not single-flighted: two first-time queries for the
// same file set may both build, and the second write wins. Both builds come
// from the same immutable corpus, so only the work is duplicated.
type CorpusSearchService struct {
	embedder EmbeddingClient
	loader   *corpus.Loader
	builder  index.Builder

	mu      sync.Mutex
	indexes map[string]index.Index
}

// NewCorpusSearchService creates a CorpusSearchService. The builder decides
// the preferred index strategy; brute force remains the universal fallback.
func NewCorpusSearchService(embedder EmbeddingClient, loader *corpus.Loader, builder index.Builder) *CorpusSearchService {
	return &CorpusSearchService{
		embedder: embedder,
		loader:   loader,
		builder:  builder,
		indexes:  make(map[string]index.Index),
	}
}

// Search runs the full pipeline: embed the query, load or reuse the corpus
// and its index, rank, filter by threshold and truncate to topK. Results
// come back ordered by descending score; ties keep corpus record order.
//
// Failures anywhere in the pipeline degrade to an empty result set with a
// logged diagnostic so the calling agent can continue without grounding.
func (s *CorpusSearchService) Search(ctx context.Context, input CorpusSearchInput) *CorpusSearchOutput {
	output, err := s.searchOnce(ctx, input)
	if err != nil {
		log.Printf("corpus search degraded to empty results: %v", err)
		telemetry.CaptureError(ctx, err)
		return &CorpusSearchOutput{Results: []CorpusSearchResult{}}
	}
	return output
}

func (s *CorpusSearchService) searchOnce(ctx context.Context, input CorpusSearchInput) (*CorpusSearchOutput, error) {
	if input.Query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if s.embedder == nil {
		return nil, domain.ErrNoCredential
	}

	topK := input.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	queryEmbedding, err := s.embedder.GenerateEmbedding(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	domain.NormalizeEmbedding(queryEmbedding)

	loaded, err := s.loader.Load(input.VectorFiles)
	if err != nil {
		return nil, err
	}

	idx, err := s.indexFor(input.VectorFiles, loaded)
	if err != nil {
		return nil, err
	}

	candidates, err := idx.Query(queryEmbedding, topK)
	if err != nil {
		// The approximate index is advisory; answer exactly instead.
		log.Printf("corpus search: %s query failed, using brute force: %v", idx.Kind(), err)
		idx = index.BuildWithFallback(index.NewBruteForceBuilder(), loaded)
		candidates, err = idx.Query(queryEmbedding, topK)
		if err != nil {
			return nil, err
		}
	}

	results := make([]CorpusSearchResult, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Score < input.Threshold {
			continue
		}
		rec := &loaded.Records[candidate.Index]
		results = append(results, CorpusSearchResult{
			ID:       rec.ID,
			Text:     rec.Text,
			Score:    candidate.Score,
			Metadata: rec.Metadata,
		})
	}

	return &CorpusSearchOutput{
		Results:    results,
		CorpusSize: loaded.Len(),
		IndexKind:  idx.Kind(),
	}, nil
}

// indexFor returns the cached index for the file set, building it once per
// cache key (modulo the accepted first-build race).
func (s *CorpusSearchService) indexFor(paths []string, loaded *domain.Corpus) (index.Index, error) {
	key, err := corpus.CacheKey(paths)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	idx, ok := s.indexes[key]
	s.mu.Unlock()
	if ok {
		return idx, nil
	}

	idx = index.BuildWithFallback(s.builder, loaded)

	s.mu.Lock()
	s.indexes[key] = idx
	s.mu.Unlock()

	return idx, nil
}
