// Package jobs contains the background embedding backfill worker. Knowledge
// items added while the embedding provider was unreachable are stored without
// a vector; the backfiller picks them up once the provider recovers so they
// become visible to semantic search again.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/groundline-ai/groundline/internal/domain"
)

// maxItemsPerPass bounds how many items a single pass will embed, so a large
// backlog cannot monopolize the embedding quota in one tick.
const maxItemsPerPass = 25

// BackfillRepository lists knowledge items without embeddings and records the
// vectors the worker generates for them.
type BackfillRepository interface {
	ListMissingEmbeddings() []*domain.KnowledgeItem
	UpdateEmbedding(id string, embedding []float32) bool
}

// Embedder generates an embedding vector for a piece of text.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Backfiller periodically embeds knowledge items that were stored without a
// vector.
type Backfiller struct {
	repo     BackfillRepository
	embedder Embedder
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewBackfiller creates a Backfiller polling at the given interval.
func NewBackfiller(repo BackfillRepository, embedder Embedder, interval time.Duration) *Backfiller {
	return &Backfiller{
		repo:     repo,
		embedder: embedder,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start runs the polling loop until the context is cancelled or Stop is
// called. It blocks, so callers run it in a goroutine.
func (b *Backfiller) Start(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	defer close(b.doneChan)

	log.Printf("Embedding backfiller started with poll interval: %v", b.interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Embedding backfiller stopped: context cancelled")
			return
		case <-b.stopChan:
			log.Println("Embedding backfiller stopped: stop signal received")
			return
		case <-ticker.C:
			b.RunOnce(ctx)
		}
	}
}

// Stop signals the loop to exit and waits for it to finish.
func (b *Backfiller) Stop() {
	close(b.stopChan)
	<-b.doneChan
	log.Println("Embedding backfiller shutdown complete")
}

// RunOnce performs a single backfill pass and reports how many items gained
// an embedding. Items whose embedding still fails stay in the queue for the
// next pass.
func (b *Backfiller) RunOnce(ctx context.Context) int {
	pending := b.repo.ListMissingEmbeddings()
	if len(pending) == 0 {
		return 0
	}
	if len(pending) > maxItemsPerPass {
		pending = pending[:maxItemsPerPass]
	}

	log.Printf("Backfilling embeddings for %d knowledge item(s)", len(pending))

	filled := 0
	for _, item := range pending {
		embedding, err := b.embedder.GenerateEmbedding(ctx, item.Content)
		if err != nil {
			log.Printf("Backfill failed for knowledge item %s: %v", item.ID, err)
			continue
		}
		if b.repo.UpdateEmbedding(item.ID, embedding) {
			filled++
		}
	}
	return filled
}
