package service

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/groundline-ai/groundline/internal/domain"
	"github.com/groundline-ai/groundline/internal/telemetry"
)

// Search types reported by knowledge search.
const (
	SearchTypeSemantic = "semantic"
	SearchTypeText     = "text"
)

// Lexical terms shorter than this are noise and are dropped.
const minLexicalTermLen = 3

// KnowledgeRepository defines the store interface for knowledge operations
type KnowledgeRepository interface {
	Add(item *domain.KnowledgeItem) string
	Get(id string) (*domain.KnowledgeItem, bool)
	List() []*domain.KnowledgeItem
	Delete(id string) bool
	Clear() int
	Len() int
}

// KnowledgeSearchResult is one hit against the knowledge store. Score is
// meaningful only for semantic search.
type KnowledgeSearchResult struct {
	Item  *domain.KnowledgeItem `json:"item"`
	Score float32               `json:"score,omitempty"`
}

// KnowledgeSearchOutput reports the hits and which strategy produced them.
type KnowledgeSearchOutput struct {
	Results    []KnowledgeSearchResult `json:"results"`
	SearchType string                  `json:"searchType"`
}

// KnowledgeService manages the mutable knowledge store: CRUD plus semantic
// or lexical search over its items. The embedder is optional; without one,
// items are stored unembedded and search is lexical.
type KnowledgeService struct {
	repo     KnowledgeRepository
	embedder EmbeddingClient
}

// NewKnowledgeService creates a KnowledgeService. Pass a nil embedder when
// no embedding credential is configured.
func NewKnowledgeService(repo KnowledgeRepository, embedder EmbeddingClient) *KnowledgeService {
	return &KnowledgeService{repo: repo, embedder: embedder}
}

// Add stores a knowledge item, generating an id when none is supplied and
// embedding the content when a client is configured. Embedding failures
// degrade: the item is stored without an embedding and found lexically.
func (s *KnowledgeService) Add(ctx context.Context, id, content string, metadata map[string]any) (*domain.KnowledgeItem, error) {
	item := domain.NewKnowledgeItem(id, content, metadata)
	if err := domain.ValidateKnowledgeItem(item); err != nil {
		return nil, err
	}

	if s.embedder != nil {
		embedding, err := s.embedder.GenerateEmbedding(ctx, content)
		if err != nil {
			log.Printf("knowledge add: storing %q without embedding: %v", item.ID, err)
			telemetry.CaptureError(ctx, err)
		} else {
			item.Embedding = embedding
		}
	}

	s.repo.Add(item)
	return item, nil
}

// Get returns the item with the given id.
func (s *KnowledgeService) Get(id string) (*domain.KnowledgeItem, error) {
	item, ok := s.repo.Get(id)
	if !ok {
		return nil, domain.ErrKnowledgeNotFound
	}
	return item, nil
}

// List returns all stored items, most recent first.
func (s *KnowledgeService) List() []*domain.KnowledgeItem {
	return s.repo.List()
}

// Delete removes an item, reporting whether it existed.
func (s *KnowledgeService) Delete(id string) bool {
	return s.repo.Delete(id)
}

// Clear empties the store and returns the number of removed items.
func (s *KnowledgeService) Clear() int {
	return s.repo.Clear()
}

// Search finds items matching the query: semantically when an embedder is
// configured, lexically otherwise. A provider failure mid-search falls back
// to lexical rather than failing the call.
func (s *KnowledgeService) Search(ctx context.Context, query string, limit int) *KnowledgeSearchOutput {
	if limit <= 0 {
		limit = DefaultTopK
	}

	if s.embedder != nil {
		results, err := s.searchSemantic(ctx, query, limit)
		if err == nil {
			return &KnowledgeSearchOutput{Results: results, SearchType: SearchTypeSemantic}
		}
		log.Printf("knowledge search: semantic failed, falling back to text: %v", err)
		telemetry.CaptureError(ctx, err)
	}

	return &KnowledgeSearchOutput{
		Results:    s.searchLexical(query, limit),
		SearchType: SearchTypeText,
	}
}

// searchSemantic ranks items that carry embeddings by cosine similarity to
// the query. Knowledge embeddings are not pre-normalized, so the full
// formula is used rather than a plain dot product.
func (s *KnowledgeService) searchSemantic(ctx context.Context, query string, limit int) ([]KnowledgeSearchResult, error) {
	queryEmbedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	var results []KnowledgeSearchResult
	for _, item := range s.repo.List() {
		if len(item.Embedding) == 0 {
			continue
		}
		results = append(results, KnowledgeSearchResult{
			Item:  item,
			Score: domain.CosineSimilarity(queryEmbedding, item.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit < len(results) {
		results = results[:limit]
	}
	if results == nil {
		results = []KnowledgeSearchResult{}
	}
	return results, nil
}

// searchLexical keeps items whose content or string metadata contains at
// least one query term, most recent first.
func (s *KnowledgeService) searchLexical(query string, limit int) []KnowledgeSearchResult {
	terms := lexicalTerms(query)

	results := []KnowledgeSearchResult{}
	for _, item := range s.repo.List() {
		if len(terms) == 0 {
			break
		}
		if matchesAnyTerm(item, terms) {
			results = append(results, KnowledgeSearchResult{Item: item})
		}
	}

	// List() is already most-recent first.
	if limit < len(results) {
		results = results[:limit]
	}
	return results
}

// lexicalTerms splits a query into lowercase terms, dropping short tokens.
func lexicalTerms(query string) []string {
	var terms []string
	for _, field := range strings.Fields(strings.ToLower(query)) {
		if len(field) >= minLexicalTermLen {
			terms = append(terms, field)
		}
	}
	return terms
}

func matchesAnyTerm(item *domain.KnowledgeItem, terms []string) bool {
	content := strings.ToLower(item.Content)
	for _, term := range terms {
		if strings.Contains(content, term) {
			return true
		}
		for _, value := range item.Metadata {
			text, ok := value.(string)
			if ok && strings.Contains(strings.ToLower(text), term) {
				return true
			}
		}
	}
	return false
}
