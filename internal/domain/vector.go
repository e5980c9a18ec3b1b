package domain

import (
	"math"
)

// Reserved metadata keys carried by every corpus record.
const (
	MetadataKeySource = "source"
	MetadataKeyTitle  = "title"
)

// VectorRecord represents a single precomputed text+embedding entry loaded
// from a corpus file. The record id is unique within its source file.
type VectorRecord struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Embedding []float32      `json:"embedding"`
	Metadata  map[string]any `json:"metadata"`
}

// Source returns the record's source metadata, or "" when absent.
func (r *VectorRecord) Source() string {
	return r.metadataString(MetadataKeySource)
}

// Title returns the record's title metadata, or "" when absent.
func (r *VectorRecord) Title() string {
	return r.metadataString(MetadataKeyTitle)
}

func (r *VectorRecord) metadataString(key string) string {
	if r.Metadata == nil {
		return ""
	}
	value, _ := r.Metadata[key].(string)
	return value
}

// Corpus is an ordered aggregate of vector records loaded from one or more
// source files. Embeddings are L2-normalized at load time, so cosine
// similarity against a normalized query reduces to a dot product.
type Corpus struct {
	Records        []VectorRecord
	EmbeddingModel string
	SourcePaths    []string
}

// Len returns the number of records in the corpus.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}

// NormalizeEmbedding scales a vector to unit L2 norm in place. Vectors with
// zero or non-finite norm are left unchanged rather than divided by zero.
func NormalizeEmbedding(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}

// Dot returns the dot product of two vectors, or 0 when either is empty or
// their lengths differ.
func Dot(a, b []float32) float32 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return float32(sum)
}

// CosineSimilarity returns the cosine similarity of two vectors without
// assuming either is normalized. Degenerate inputs score 0.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return ClampScore(float32(dot / (math.Sqrt(normA) * math.Sqrt(normB))))
}

// ClampScore maps NaN and infinite similarity scores to 0 and clamps the
// rest to [-1, 1].
func ClampScore(score float32) float32 {
	f := float64(score)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f > 1 {
		return 1
	}
	if f < -1 {
		return -1
	}
	return score
}
