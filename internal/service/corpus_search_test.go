package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/groundline-ai/groundline/internal/corpus"
	"github.com/groundline-ai/groundline/internal/index"
)

// MockEmbeddingClient mocks the embedding client
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// Three well-separated 2-d records; only "east" clears a 0.7 threshold for
// an eastward query.
const searchCorpus = `{
	"metadata": {"embeddingModel": "text-embedding-3-small"},
	"vectors": [
		{"id": "east", "text": "points east", "embedding": [1, 0], "metadata": {"source": "a.md", "title": "East"}},
		{"id": "north", "text": "points north", "embedding": [0, 1], "metadata": {"source": "a.md", "title": "North"}},
		{"id": "west", "text": "points west", "embedding": [-1, 0], "metadata": {"source": "a.md", "title": "West"}}
	]
}`

func writeSearchCorpus(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte(searchCorpus), 0o644))
	return path
}

func newSearchService(embedder EmbeddingClient, builder index.Builder) *CorpusSearchService {
	if builder == nil {
		builder = index.DefaultBuilder()
	}
	return NewCorpusSearchService(embedder, corpus.NewLoader(), builder)
}

func TestCorpusSearchService_Search_ThresholdAndTopK(t *testing.T) {
	path := writeSearchCorpus(t)
	mockClient := new(MockEmbeddingClient)
	svc := newSearchService(mockClient, nil)

	ctx := context.Background()
	mockClient.On("GenerateEmbedding", ctx, "which way is east").Return([]float32{2, 0}, nil)

	output := svc.Search(ctx, CorpusSearchInput{
		Query:       "which way is east",
		VectorFiles: []string{path},
		TopK:        2,
		Threshold:   0.7,
	})

	require.Len(t, output.Results, 1)
	assert.Equal(t, "east", output.Results[0].ID)
	assert.InDelta(t, 1.0, float64(output.Results[0].Score), 1e-4)
	assert.Equal(t, 3, output.CorpusSize)
	mockClient.AssertExpectations(t)
}

func TestCorpusSearchService_Search_ThresholdMonotonicity(t *testing.T) {
	path := writeSearchCorpus(t)
	mockClient := new(MockEmbeddingClient)
	svc := newSearchService(mockClient, nil)

	ctx := context.Background()
	mockClient.On("GenerateEmbedding", ctx, "northeast").Return([]float32{1, 1}, nil)

	loose := svc.Search(ctx, CorpusSearchInput{Query: "northeast", VectorFiles: []string{path}, TopK: 3, Threshold: 0})
	strict := svc.Search(ctx, CorpusSearchInput{Query: "northeast", VectorFiles: []string{path}, TopK: 3, Threshold: 0.5})

	assert.GreaterOrEqual(t, len(loose.Results), len(strict.Results))
	for _, res := range strict.Results {
		assert.GreaterOrEqual(t, res.Score, float32(0.5))
	}

	// Descending order.
	for i := 1; i < len(loose.Results); i++ {
		assert.GreaterOrEqual(t, loose.Results[i-1].Score, loose.Results[i].Score)
	}
}

func TestCorpusSearchService_Search_EmbeddingFailureDegrades(t *testing.T) {
	path := writeSearchCorpus(t)
	mockClient := new(MockEmbeddingClient)
	svc := newSearchService(mockClient, nil)

	ctx := context.Background()
	mockClient.On("GenerateEmbedding", ctx, "anything").Return(nil, assert.AnError)

	output := svc.Search(ctx, CorpusSearchInput{Query: "anything", VectorFiles: []string{path}})

	assert.Empty(t, output.Results)
}

func TestCorpusSearchService_Search_MissingFilesDegrades(t *testing.T) {
	mockClient := new(MockEmbeddingClient)
	svc := newSearchService(mockClient, nil)

	output := svc.Search(context.Background(), CorpusSearchInput{Query: "anything"})

	assert.Empty(t, output.Results)
}

func TestCorpusSearchService_Search_NoEmbedderDegrades(t *testing.T) {
	path := writeSearchCorpus(t)
	svc := newSearchService(nil, nil)

	output := svc.Search(context.Background(), CorpusSearchInput{Query: "anything", VectorFiles: []string{path}})

	assert.Empty(t, output.Results)
}

func TestCorpusSearchService_Search_BruteForceMatchesHNSWTop1(t *testing.T) {
	path := writeSearchCorpus(t)
	ctx := context.Background()

	run := func(builder index.Builder) *CorpusSearchOutput {
		mockClient := new(MockEmbeddingClient)
		mockClient.On("GenerateEmbedding", ctx, "east").Return([]float32{0.9, 0.1}, nil)
		svc := newSearchService(mockClient, builder)
		return svc.Search(ctx, CorpusSearchInput{Query: "east", VectorFiles: []string{path}, TopK: 1, Threshold: 0})
	}

	approx := run(index.NewHNSWBuilder())
	exact := run(index.NewBruteForceBuilder())

	require.Len(t, approx.Results, 1)
	require.Len(t, exact.Results, 1)
	assert.Equal(t, exact.Results[0].ID, approx.Results[0].ID)
	assert.Equal(t, index.KindHNSW, approx.IndexKind)
	assert.Equal(t, index.KindBruteForce, exact.IndexKind)
}

func TestCorpusSearchService_Search_IndexReusedAcrossQueries(t *testing.T) {
	path := writeSearchCorpus(t)
	mockClient := new(MockEmbeddingClient)
	svc := newSearchService(mockClient, nil)

	ctx := context.Background()
	mockClient.On("GenerateEmbedding", ctx, mock.Anything).Return([]float32{1, 0}, nil)

	first := svc.Search(ctx, CorpusSearchInput{Query: "one", VectorFiles: []string{path}, Threshold: 0})
	require.NotEmpty(t, first.Results)

	svc.mu.Lock()
	cached := len(svc.indexes)
	svc.mu.Unlock()
	assert.Equal(t, 1, cached)

	second := svc.Search(ctx, CorpusSearchInput{Query: "two", VectorFiles: []string{path}, Threshold: 0})
	require.NotEmpty(t, second.Results)

	svc.mu.Lock()
	cached = len(svc.indexes)
	svc.mu.Unlock()
	assert.Equal(t, 1, cached)
}
