// Package corpus loads precomputed embedding files from disk and aggregates
// them into in-memory corpora, caching both individual parsed files and
// whole file-set combinations for the life of the process.
package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/groundline-ai/groundline/internal/domain"
)

// corpusFile is the on-disk shape of a vector file. Vectors is kept raw so a
// missing or non-array value can be distinguished from an empty array.
type corpusFile struct {
	Metadata map[string]any  `json:"metadata"`
	Vectors  json.RawMessage `json:"vectors"`
}

// parsedFile is the per-path cache entry: normalized records plus the
// embedding model the file declares, if any.
type parsedFile struct {
	records []domain.VectorRecord
	model   string
}

// Loader reads vector files and serves aggregated corpora. Both cache tiers
// live for the process lifetime; there is no eviction, corpora are assumed
// to fit in memory. Cache maps are mutex-guarded, but parsing is done
// outside the lock: two callers racing on the same uncached path may both
// parse it, and the second write wins. Both parse the same immutable file,
// so the duplicate work is harmless.
type Loader struct {
	mu     sync.Mutex
	files  map[string]*parsedFile
	combos map[string]*domain.Corpus
}

// NewLoader creates an empty Loader.
func NewLoader() *Loader {
	return &Loader{
		files:  make(map[string]*parsedFile),
		combos: make(map[string]*domain.Corpus),
	}
}

// CacheKey derives the canonical key for a set of vector files: the sorted
// absolute paths. Two requests naming the same files in any order or
// relative form resolve to the same key.
func CacheKey(paths []string) (string, error) {
	if len(paths) == 0 {
		return "", domain.ErrNoVectorFiles
	}
	absolute := make([]string, 0, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to resolve path %q: %w", path, err)
		}
		absolute = append(absolute, abs)
	}
	sort.Strings(absolute)
	return strings.Join(absolute, "|"), nil
}

// Load returns the aggregated corpus for the given file set, reusing the
// cached corpus when the same set was loaded before. Records from files
// that appear in multiple combinations are parsed only once. Cross-file id
// collisions resolve first-wins.
func (l *Loader) Load(paths []string) (*domain.Corpus, error) {
	key, err := CacheKey(paths)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	cached, ok := l.combos[key]
	l.mu.Unlock()
	if ok {
		return cached, nil
	}

	sortedPaths := strings.Split(key, "|")
	aggregate := &domain.Corpus{SourcePaths: sortedPaths}
	seen := make(map[string]string)

	for _, path := range sortedPaths {
		parsed, err := l.loadFile(path)
		if err != nil {
			return nil, err
		}
		if aggregate.EmbeddingModel == "" {
			aggregate.EmbeddingModel = parsed.model
		}
		for _, rec := range parsed.records {
			if prev, dup := seen[rec.ID]; dup {
				log.Printf("corpus: duplicate record id %q in %s (first seen in %s), keeping first", rec.ID, path, prev)
				continue
			}
			seen[rec.ID] = path
			aggregate.Records = append(aggregate.Records, rec)
		}
	}

	l.mu.Lock()
	l.combos[key] = aggregate
	l.mu.Unlock()

	return aggregate, nil
}

// loadFile returns the parsed records for one path, via the per-file cache.
func (l *Loader) loadFile(path string) (*parsedFile, error) {
	l.mu.Lock()
	cached, ok := l.files[path]
	l.mu.Unlock()
	if ok {
		return cached, nil
	}

	parsed, err := parseFile(path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.files[path] = parsed
	l.mu.Unlock()

	return parsed, nil
}

func parseFile(path string) (*parsedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeConfig, fmt.Sprintf("failed to read vector file %q", path), err)
	}

	var file corpusFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, domain.NewCorpusFormatError(path, err)
	}
	if !isJSONArray(file.Vectors) {
		return nil, domain.NewCorpusFormatError(path, fmt.Errorf("missing or non-array %q field", "vectors"))
	}

	var records []domain.VectorRecord
	if err := json.Unmarshal(file.Vectors, &records); err != nil {
		return nil, domain.NewCorpusFormatError(path, err)
	}

	for i := range records {
		domain.NormalizeEmbedding(records[i].Embedding)
		if records[i].Metadata == nil {
			records[i].Metadata = map[string]any{}
		}
		if _, ok := records[i].Metadata[domain.MetadataKeySource]; !ok {
			records[i].Metadata[domain.MetadataKeySource] = path
		}
	}

	model, _ := file.Metadata["embeddingModel"].(string)
	return &parsedFile{records: records, model: model}, nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}
