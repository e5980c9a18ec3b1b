package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithEnvVars(t *testing.T) {
	os.Setenv("GROUNDLINE_PORT", "9090")
	os.Setenv("GROUNDLINE_DEBUG", "true")
	os.Setenv("GROUNDLINE_VECTOR_FILES", "/data/a.json,/data/b.json")
	os.Setenv("GROUNDLINE_EMBEDDING_MODEL", "text-embedding-3-large")
	os.Setenv("GROUNDLINE_TOP_K", "7")
	os.Setenv("GROUNDLINE_SCORE_THRESHOLD", "0.55")
	os.Setenv("GROUNDLINE_OPENAI_API_KEY", "sk-test")
	os.Setenv("GROUNDLINE_S3_ENDPOINT", "http://localhost:9000")
	os.Setenv("GROUNDLINE_S3_ACCESS_KEY_ID", "key")
	os.Setenv("GROUNDLINE_S3_SECRET_ACCESS_KEY", "secret")
	defer func() {
		os.Unsetenv("GROUNDLINE_PORT")
		os.Unsetenv("GROUNDLINE_DEBUG")
		os.Unsetenv("GROUNDLINE_VECTOR_FILES")
		os.Unsetenv("GROUNDLINE_EMBEDDING_MODEL")
		os.Unsetenv("GROUNDLINE_TOP_K")
		os.Unsetenv("GROUNDLINE_SCORE_THRESHOLD")
		os.Unsetenv("GROUNDLINE_OPENAI_API_KEY")
		os.Unsetenv("GROUNDLINE_S3_ENDPOINT")
		os.Unsetenv("GROUNDLINE_S3_ACCESS_KEY_ID")
		os.Unsetenv("GROUNDLINE_S3_SECRET_ACCESS_KEY")
	}()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"/data/a.json", "/data/b.json"}, cfg.VectorFiles)
	assert.Equal(t, "text-embedding-3-large", cfg.EmbeddingModel)
	assert.Equal(t, 7, cfg.TopK)
	assert.InDelta(t, 0.55, float64(cfg.ScoreThreshold), 1e-6)
	assert.True(t, cfg.HasVectorFiles())
	assert.True(t, cfg.HasOpenAI())
	assert.True(t, cfg.HasS3())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, 5, cfg.TopK)
	assert.InDelta(t, 0.7, float64(cfg.ScoreThreshold), 1e-6)
	assert.Equal(t, "groundline-exports", cfg.S3Bucket)
	assert.Equal(t, "us-east-1", cfg.S3Region)
	assert.False(t, cfg.HasVectorFiles())
	assert.False(t, cfg.HasSentry())
}
