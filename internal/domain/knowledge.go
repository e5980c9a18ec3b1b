package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// KnowledgeItem represents a runtime-managed piece of retrievable knowledge,
// distinct from the static corpus records. The embedding is optional: items
// added while no embedding credential is configured carry none and are found
// by lexical search instead.
type KnowledgeItem struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float32      `json:"embedding,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// NewKnowledgeItem creates a KnowledgeItem, generating an id when none is
// supplied and stamping the current time.
func NewKnowledgeItem(id, content string, metadata map[string]any) *KnowledgeItem {
	if id == "" {
		id = GenerateKnowledgeID()
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &KnowledgeItem{
		ID:        id,
		Content:   content,
		Metadata:  metadata,
		Timestamp: time.Now().UnixMilli(),
	}
}

// GenerateKnowledgeID returns a new knowledge id built from the current
// unix-millisecond timestamp and a random suffix.
func GenerateKnowledgeID() string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("kb_%d_%s", time.Now().UnixMilli(), suffix)
}

// ValidateKnowledgeItem validates a KnowledgeItem instance.
func ValidateKnowledgeItem(item *KnowledgeItem) error {
	if item == nil {
		return fmt.Errorf("knowledge item cannot be nil")
	}
	if item.ID == "" {
		return fmt.Errorf("knowledge item ID is required")
	}
	if strings.TrimSpace(item.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}
