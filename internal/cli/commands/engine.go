// Package commands implements the groundline and groundlined commands. The
// CLI runs the retrieval engine in process, so every command works against
// the same services the HTTP server exposes.
package commands

import (
	"context"
	"fmt"
	"log"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/groundline-ai/groundline/internal/config"
	"github.com/groundline-ai/groundline/internal/corpus"
	"github.com/groundline-ai/groundline/internal/index"
	"github.com/groundline-ai/groundline/internal/openai"
	"github.com/groundline-ai/groundline/internal/repository"
	"github.com/groundline-ai/groundline/internal/service"
	"github.com/groundline-ai/groundline/internal/storage"
	"github.com/groundline-ai/groundline/internal/tools"
)

// engine bundles the wired services behind the CLI commands.
type engine struct {
	cfg           *config.Config
	repo          *repository.KnowledgeRepository
	embedder      service.EmbeddingClient
	searchSvc     *service.CorpusSearchService
	corpusTool    *tools.CorpusSearchTool
	knowledgeTool *tools.KnowledgeTool
}

// buildEngine wires services from the environment. A missing OpenAI key is
// not an error; the tools degrade the way their operations describe.
func buildEngine(ctx context.Context) (*engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var embedder service.EmbeddingClient
	if cfg.HasOpenAI() {
		embedder = openai.NewClientWithConfig(openai.Config{
			APIKey:              cfg.OpenAIAPIKey,
			EmbeddingModel:      goopenai.EmbeddingModel(cfg.EmbeddingModel),
			EmbeddingDimensions: cfg.EmbeddingDimensions,
		})
	}

	var objects service.ObjectStore
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		objects = s3Client
	}

	repo := repository.NewKnowledgeRepository()
	searchSvc := service.NewCorpusSearchService(embedder, corpus.NewLoader(), index.DefaultBuilder())
	knowledgeSvc := service.NewKnowledgeService(repo, embedder)
	persistenceSvc := service.NewPersistenceService(repo, embedder, objects)

	if cfg.Debug {
		log.Printf("engine configured: %d vector file(s), embeddings=%v, s3=%v",
			len(cfg.VectorFiles), cfg.HasOpenAI(), cfg.HasS3())
	}

	return &engine{
		cfg:           cfg,
		repo:          repo,
		embedder:      embedder,
		searchSvc:     searchSvc,
		corpusTool:    tools.NewCorpusSearchTool(searchSvc, cfg.VectorFiles, cfg.HasOpenAI()),
		knowledgeTool: tools.NewKnowledgeTool(knowledgeSvc, persistenceSvc),
	}, nil
}
