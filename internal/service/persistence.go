package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/groundline-ai/groundline/internal/domain"
	"github.com/groundline-ai/groundline/internal/telemetry"
)

// Export formats.
const (
	ExportFormatJSON   = "json"
	ExportFormatBuffer = "buffer"
)

const objectStoreScheme = "s3://"

// ObjectStore uploads and downloads export documents to remote storage.
type ObjectStore interface {
	PutObject(ctx context.Context, bucket, key string, data []byte) error
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// ExportedItem is the wire shape of one knowledge item in an export
// document. The embedding is present only when requested and stored.
type ExportedItem struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	Timestamp int64          `json:"timestamp"`
	Embedding []float32      `json:"embedding,omitempty"`
}

// ExportMetadata is the envelope attached to every export document.
type ExportMetadata struct {
	ExportedAt         string `json:"exportedAt,omitempty"`
	SavedAt            string `json:"savedAt,omitempty"`
	TotalItems         int    `json:"totalItems"`
	Format             string `json:"format"`
	IncludesEmbeddings bool   `json:"includesEmbeddings"`
}

// ExportDocument is the full serialized knowledge store.
type ExportDocument struct {
	Knowledge []ExportedItem `json:"knowledge"`
	Metadata  ExportMetadata `json:"metadata"`
}

// ExportResult carries a serialized store. Data is set for buffer exports
// and reports its byte length; Document is set otherwise.
type ExportResult struct {
	Format     string
	TotalItems int
	Document   *ExportDocument
	Data       []byte
	ByteLength int
}

// SaveResult reports a completed save-to-file.
type SaveResult struct {
	Path       string
	TotalItems int
	ByteLength int
}

// LoadFileResult reports a completed file load.
type LoadFileResult struct {
	LoadCount int
	Items     []*domain.KnowledgeItem
}

// BulkItem is one caller-supplied item for bulk loading.
type BulkItem struct {
	ID        string         `json:"id,omitempty"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float32      `json:"embedding,omitempty"`
	Timestamp int64          `json:"timestamp,omitempty"`
}

// BulkItemResult records the outcome for one bulk item.
type BulkItemResult struct {
	Index   int    `json:"index"`
	ID      string `json:"id,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkResult reports a completed bulk load.
type BulkResult struct {
	LoadCount int
	Results   []BulkItemResult
}

// PersistenceRepository is the store surface persistence needs.
type PersistenceRepository interface {
	Add(item *domain.KnowledgeItem) string
	List() []*domain.KnowledgeItem
}

// PersistenceService serializes the knowledge store to files or buffers and
// bulk-loads items back in. The store itself stays purely in-memory unless
// these operations are invoked. Both the embedder and the object store are
// optional.
type PersistenceService struct {
	repo     PersistenceRepository
	embedder EmbeddingClient
	objects  ObjectStore
}

// NewPersistenceService creates a PersistenceService.
func NewPersistenceService(repo PersistenceRepository, embedder EmbeddingClient, objects ObjectStore) *PersistenceService {
	return &PersistenceService{repo: repo, embedder: embedder, objects: objects}
}

// Export serializes every stored item. Format "buffer" yields raw bytes
// plus their length; anything else yields the structured document.
func (s *PersistenceService) Export(format string, includeEmbeddings bool) (*ExportResult, error) {
	if format == "" {
		format = ExportFormatJSON
	}

	doc := s.buildDocument(format, includeEmbeddings, false)

	result := &ExportResult{Format: format, TotalItems: doc.Metadata.TotalItems}
	if format == ExportFormatBuffer {
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternal, "failed to serialize export", err)
		}
		result.Data = data
		result.ByteLength = len(data)
		return result, nil
	}

	result.Document = doc
	return result, nil
}

// SaveToFile writes the serialized store to a local path, or to the object
// store for s3:// destinations.
func (s *PersistenceService) SaveToFile(ctx context.Context, path, format string, includeEmbeddings bool) (*SaveResult, error) {
	if path == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "file path is required")
	}
	if format == "" {
		format = ExportFormatJSON
	}

	doc := s.buildDocument(format, includeEmbeddings, true)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternal, "failed to serialize export", err)
	}

	if err := s.writeDestination(ctx, path, data); err != nil {
		return nil, err
	}

	return &SaveResult{Path: path, TotalItems: doc.Metadata.TotalItems, ByteLength: len(data)}, nil
}

// LoadFile reads knowledge items from a file and inserts them into the
// store. JSON files may hold an item array, an object with a "knowledge"
// array, or a single item object; anything else becomes one raw-text item.
func (s *PersistenceService) LoadFile(ctx context.Context, path string) (*LoadFileResult, error) {
	if path == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "file path is required")
	}

	data, err := s.readDestination(ctx, path)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeConfig, fmt.Sprintf("failed to read %q", path), err)
	}

	items := parseLoadedFile(path, data)
	result := &LoadFileResult{}
	for _, bulk := range items {
		item := s.ingest(ctx, bulk)
		result.Items = append(result.Items, item)
		result.LoadCount++
	}
	return result, nil
}

// LoadBulk inserts caller-supplied items one by one. A failure on one item
// is recorded per item and does not abort the batch.
func (s *PersistenceService) LoadBulk(ctx context.Context, items []BulkItem) *BulkResult {
	result := &BulkResult{Results: make([]BulkItemResult, 0, len(items))}
	for i, bulk := range items {
		if strings.TrimSpace(bulk.Content) == "" {
			result.Results = append(result.Results, BulkItemResult{
				Index: i,
				ID:    bulk.ID,
				Error: domain.ErrEmptyContent.Error(),
			})
			continue
		}
		item := s.ingest(ctx, bulk)
		result.Results = append(result.Results, BulkItemResult{Index: i, ID: item.ID, Success: true})
		result.LoadCount++
	}
	return result
}

// ingest converts a bulk item into a stored KnowledgeItem, preserving
// caller-supplied ids, timestamps and embeddings, and generating an
// embedding when possible. Embedding failures are tolerated per item.
func (s *PersistenceService) ingest(ctx context.Context, bulk BulkItem) *domain.KnowledgeItem {
	item := domain.NewKnowledgeItem(bulk.ID, bulk.Content, bulk.Metadata)
	if bulk.Timestamp > 0 {
		item.Timestamp = bulk.Timestamp
	}

	switch {
	case len(bulk.Embedding) > 0:
		item.Embedding = bulk.Embedding
	case s.embedder != nil:
		embedding, err := s.embedder.GenerateEmbedding(ctx, bulk.Content)
		if err != nil {
			log.Printf("knowledge load: storing %q without embedding: %v", item.ID, err)
			telemetry.CaptureError(ctx, err)
		} else {
			item.Embedding = embedding
		}
	}

	s.repo.Add(item)
	return item
}

func (s *PersistenceService) buildDocument(format string, includeEmbeddings, saving bool) *ExportDocument {
	items := s.repo.List()
	exported := make([]ExportedItem, 0, len(items))
	for _, item := range items {
		entry := ExportedItem{
			ID:        item.ID,
			Content:   item.Content,
			Metadata:  item.Metadata,
			Timestamp: item.Timestamp,
		}
		if includeEmbeddings && len(item.Embedding) > 0 {
			entry.Embedding = item.Embedding
		}
		exported = append(exported, entry)
	}

	meta := ExportMetadata{
		TotalItems:         len(exported),
		Format:             format,
		IncludesEmbeddings: includeEmbeddings,
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if saving {
		meta.SavedAt = now
	} else {
		meta.ExportedAt = now
	}

	return &ExportDocument{Knowledge: exported, Metadata: meta}
}

func (s *PersistenceService) writeDestination(ctx context.Context, path string, data []byte) error {
	if bucket, key, ok := splitObjectPath(path); ok {
		if s.objects == nil {
			return domain.NewDomainError(domain.ErrCodeConfig, "object storage is not configured")
		}
		if err := s.objects.PutObject(ctx, bucket, key, data); err != nil {
			return domain.NewDomainErrorWithCause(domain.ErrCodeInternal, fmt.Sprintf("failed to upload %q", path), err)
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeInternal, fmt.Sprintf("failed to write %q", path), err)
	}
	return nil
}

func (s *PersistenceService) readDestination(ctx context.Context, path string) ([]byte, error) {
	if bucket, key, ok := splitObjectPath(path); ok {
		if s.objects == nil {
			return nil, domain.NewDomainError(domain.ErrCodeConfig, "object storage is not configured")
		}
		return s.objects.GetObject(ctx, bucket, key)
	}
	return os.ReadFile(path)
}

// splitObjectPath parses "s3://bucket/key" destinations.
func splitObjectPath(path string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(path, objectStoreScheme) {
		return "", "", false
	}
	rest := strings.TrimPrefix(path, objectStoreScheme)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// parseLoadedFile interprets file contents as knowledge items. Unsupported
// extensions and unparseable JSON fall through to a single raw-text item.
func parseLoadedFile(path string, data []byte) []BulkItem {
	rawItem := func() []BulkItem {
		return []BulkItem{{
			Content:  string(data),
			Metadata: map[string]any{domain.MetadataKeySource: path, "type": "raw"},
		}}
	}

	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return rawItem()
	}

	var asArray []BulkItem
	if err := json.Unmarshal(data, &asArray); err == nil {
		return asArray
	}

	var asDocument struct {
		Knowledge []BulkItem `json:"knowledge"`
	}
	if err := json.Unmarshal(data, &asDocument); err == nil && asDocument.Knowledge != nil {
		return asDocument.Knowledge
	}

	var asItem BulkItem
	if err := json.Unmarshal(data, &asItem); err == nil && asItem.Content != "" {
		return []BulkItem{asItem}
	}

	return rawItem()
}
