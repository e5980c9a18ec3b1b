package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// Static corpus search
	VectorFiles    []string `envconfig:"VECTOR_FILES"`
	EmbeddingModel string   `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	// EmbeddingDimensions of 0 disables the dimension check, letting any
	// model be used.
	EmbeddingDimensions int     `envconfig:"EMBEDDING_DIMENSIONS" default:"0"`
	TopK                int     `envconfig:"TOP_K" default:"5"`
	ScoreThreshold      float32 `envconfig:"SCORE_THRESHOLD" default:"0.7"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Optional object storage for knowledge exports
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"groundline-exports"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// Embedding backfill worker for items added without a credential
	BackfillEnabled  bool `envconfig:"BACKFILL_ENABLED" default:"false"`
	BackfillInterval int  `envconfig:"BACKFILL_INTERVAL_SECONDS" default:"30"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("GROUNDLINE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

func (c *Config) HasVectorFiles() bool {
	return len(c.VectorFiles) > 0
}
