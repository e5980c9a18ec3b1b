package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/groundline-ai/groundline/internal/service"
)

// CorpusSearcher is the engine surface the corpus tool needs.
type CorpusSearcher interface {
	Search(ctx context.Context, input service.CorpusSearchInput) *service.CorpusSearchOutput
}

// CorpusSearchRequest is the tool input for a corpus search.
type CorpusSearchRequest struct {
	Query     string  `json:"query"`
	TopK      int     `json:"topK,omitempty"`
	Threshold float32 `json:"threshold,omitempty"`
}

// CorpusSearchTool renders ranked corpus hits as text for the agent prompt.
type CorpusSearchTool struct {
	searcher      CorpusSearcher
	vectorFiles   []string
	hasCredential bool
}

// NewCorpusSearchTool creates a CorpusSearchTool bound to a configured
// file set.
func NewCorpusSearchTool(searcher CorpusSearcher, vectorFiles []string, hasCredential bool) *CorpusSearchTool {
	return &CorpusSearchTool{
		searcher:      searcher,
		vectorFiles:   vectorFiles,
		hasCredential: hasCredential,
	}
}

// Handle runs one corpus search and formats the outcome. Configuration gaps
// and empty result sets come back as explanatory sentences, never errors.
func (t *CorpusSearchTool) Handle(ctx context.Context, req CorpusSearchRequest) string {
	if strings.TrimSpace(req.Query) == "" {
		return "Corpus search needs a non-empty query."
	}
	if len(t.vectorFiles) == 0 {
		return "Corpus search is not configured: no vector files were provided."
	}
	if !t.hasCredential {
		return "Corpus search is not configured: no embedding credential is available."
	}

	threshold := req.Threshold
	if threshold == 0 {
		threshold = service.DefaultScoreThreshold
	}

	output := t.searcher.Search(ctx, service.CorpusSearchInput{
		Query:       req.Query,
		VectorFiles: t.vectorFiles,
		TopK:        req.TopK,
		Threshold:   threshold,
	})

	if len(output.Results) == 0 {
		return "No relevant results were found in the corpus for this query."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d relevant result(s) (corpus: %d records, index: %s):\n",
		len(output.Results), output.CorpusSize, output.IndexKind)
	for i, res := range output.Results {
		source := stringField(res.Metadata, "source")
		title := stringField(res.Metadata, "title")
		if title == "" {
			title = "untitled"
		}
		fmt.Fprintf(&b, "\n%d. [score %.3f] %s - %s\n%s\n", i+1, res.Score, source, title, res.Text)
	}
	return b.String()
}

func stringField(metadata map[string]any, key string) string {
	if metadata == nil {
		return ""
	}
	value, _ := metadata[key].(string)
	return value
}
