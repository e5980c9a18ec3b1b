package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmbedding_UnitNorm(t *testing.T) {
	v := []float32{3, 4}
	NormalizeEmbedding(v)

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)
	assert.InDelta(t, 0.6, float64(v[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(v[1]), 1e-6)
}

func TestNormalizeEmbedding_ZeroVectorUnchanged(t *testing.T) {
	v := []float32{0, 0, 0}
	NormalizeEmbedding(v)
	assert.Equal(t, []float32{0, 0, 0}, v)
}

func TestNormalizeEmbedding_NonFiniteUnchanged(t *testing.T) {
	nan := float32(math.NaN())
	v := []float32{nan, 1}
	NormalizeEmbedding(v)
	assert.True(t, math.IsNaN(float64(v[0])))
	assert.Equal(t, float32(1), v[1])
}

func TestDot(t *testing.T) {
	assert.InDelta(t, 11.0, float64(Dot([]float32{1, 2}, []float32{3, 4})), 1e-6)
	assert.Equal(t, float32(0), Dot(nil, []float32{1}))
	assert.Equal(t, float32(0), Dot([]float32{1, 2}, []float32{1}))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, float64(CosineSimilarity([]float32{2, 0}, []float32{5, 0})), 1e-6)
	assert.InDelta(t, 0.0, float64(CosineSimilarity([]float32{1, 0}, []float32{0, 1})), 1e-6)
	assert.InDelta(t, -1.0, float64(CosineSimilarity([]float32{1, 0}, []float32{-3, 0})), 1e-6)
	assert.Equal(t, float32(0), CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, float32(0), CosineSimilarity(nil, nil))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, float32(1), ClampScore(1.5))
	assert.Equal(t, float32(-1), ClampScore(-3))
	assert.Equal(t, float32(0), ClampScore(float32(math.NaN())))
	assert.Equal(t, float32(0), ClampScore(float32(math.Inf(1))))
	assert.Equal(t, float32(0.5), ClampScore(0.5))
}

func TestVectorRecord_MetadataAccessors(t *testing.T) {
	rec := &VectorRecord{Metadata: map[string]any{
		MetadataKeySource: "docs/guide.md",
		MetadataKeyTitle:  "Guide",
	}}
	assert.Equal(t, "docs/guide.md", rec.Source())
	assert.Equal(t, "Guide", rec.Title())

	empty := &VectorRecord{}
	assert.Equal(t, "", empty.Source())
	assert.Equal(t, "", empty.Title())
}
