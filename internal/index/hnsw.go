package index

import (
	"fmt"
	"sort"

	"github.com/coder/hnsw"

	"github.com/groundline-ai/groundline/internal/domain"
)

// Fixed construction parameters, chosen for recall over latency.
const (
	hnswDegree        = 16
	hnswLevelFactor   = 0.25
	hnswSearchBreadth = 100
)

// HNSWBuilder builds approximate-nearest-neighbor graphs over the corpus.
type HNSWBuilder struct{}

// NewHNSWBuilder creates an HNSWBuilder.
func NewHNSWBuilder() *HNSWBuilder {
	return &HNSWBuilder{}
}

// Build implements Builder. The graph library panics on malformed input
// (for example inconsistent dimensions across records); that is recovered
// and reported as an INDEX_BUILD_ERROR so callers can fall back.
func (b *HNSWBuilder) Build(corpus *domain.Corpus) (idx Index, err error) {
	defer func() {
		if r := recover(); r != nil {
			idx = nil
			err = domain.NewIndexBuildError(fmt.Errorf("hnsw construction panicked: %v", r))
		}
	}()

	graph := hnsw.NewGraph[int]()
	graph.M = hnswDegree
	graph.Ml = hnswLevelFactor
	graph.EfSearch = hnswSearchBreadth
	graph.Distance = hnsw.CosineDistance

	vectors := make([][]float32, corpus.Len())
	for i := range corpus.Records {
		vec := corpus.Records[i].Embedding
		if len(vec) == 0 {
			return nil, domain.NewIndexBuildError(fmt.Errorf("record %q has an empty embedding", corpus.Records[i].ID))
		}
		vectors[i] = vec
		graph.Add(hnsw.MakeNode(i, vec))
	}

	return &hnswIndex{graph: graph, vectors: vectors}, nil
}

type hnswIndex struct {
	graph   *hnsw.Graph[int]
	vectors [][]float32
}

// Query walks the graph for topK approximate neighbors, then rescores the
// hits exactly (dot product over the normalized corpus vectors) so reported
// scores match the brute-force path.
func (x *hnswIndex) Query(query []float32, topK int) (candidates []Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			candidates = nil
			err = domain.NewIndexBuildError(fmt.Errorf("hnsw query panicked: %v", r))
		}
	}()

	if topK <= 0 || len(x.vectors) == 0 {
		return nil, nil
	}

	nodes := x.graph.Search(query, topK)
	candidates = make([]Candidate, 0, len(nodes))
	for _, node := range nodes {
		candidates = append(candidates, Candidate{
			Index: node.Key,
			Score: domain.ClampScore(domain.Dot(query, x.vectors[node.Key])),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Index < candidates[j].Index
	})

	return candidates, nil
}

func (x *hnswIndex) Kind() string {
	return KindHNSW
}
