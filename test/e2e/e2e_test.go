//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundline-ai/groundline/internal/api/handlers"
	"github.com/groundline-ai/groundline/internal/corpus"
	"github.com/groundline-ai/groundline/internal/index"
	"github.com/groundline-ai/groundline/internal/repository"
	"github.com/groundline-ai/groundline/internal/server"
	"github.com/groundline-ai/groundline/internal/service"
	"github.com/groundline-ai/groundline/internal/tools"
)

// axisEmbedder maps known phrases to fixed unit vectors so similarity is
// deterministic without a live provider.
type axisEmbedder struct {
	axes map[string][]float32
}

func (e *axisEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := e.axes[text]; ok {
		return vec, nil
	}
	return []float32{0, 0, 1}, nil
}

func writeVectorFile(t *testing.T, dir string) string {
	t.Helper()

	doc := map[string]any{
		"metadata": map[string]any{"embeddingModel": "text-embedding-3-small"},
		"vectors": []map[string]any{
			{
				"id":        "doc-restart",
				"text":      "Restart the ingest daemon with systemctl restart ingestd.",
				"embedding": []float32{1, 0, 0},
				"metadata":  map[string]any{"title": "Restart runbook"},
			},
			{
				"id":        "doc-backup",
				"text":      "Nightly backups are written to the archive volume.",
				"embedding": []float32{0, 1, 0},
				"metadata":  map[string]any{"title": "Backup policy"},
			},
		},
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	path := filepath.Join(dir, "corpus.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newTestServer(t *testing.T, vectorFiles []string) *httptest.Server {
	t.Helper()

	embedder := &axisEmbedder{axes: map[string][]float32{
		"how do I restart the ingest daemon": {1, 0, 0},
		"where do backups go":                {0, 1, 0},
	}}

	repo := repository.NewKnowledgeRepository()
	searchSvc := service.NewCorpusSearchService(embedder, corpus.NewLoader(), index.DefaultBuilder())
	knowledgeSvc := service.NewKnowledgeService(repo, embedder)
	persistenceSvc := service.NewPersistenceService(repo, embedder, nil)

	router := server.NewRouter(server.RouterConfig{
		ToolsHandler: handlers.NewToolsHandler(
			tools.NewCorpusSearchTool(searchSvc, vectorFiles, true),
			tools.NewKnowledgeTool(knowledgeSvc, persistenceSvc),
		),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) map[string]any {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return decoded
}

func TestE2E_CorpusSearch(t *testing.T) {
	vectorFile := writeVectorFile(t, t.TempDir())
	srv := newTestServer(t, []string{vectorFile})

	resp := postJSON(t, srv.URL+"/v1/tools/corpus-search", tools.CorpusSearchRequest{
		Query: "how do I restart the ingest daemon",
	})

	result, _ := resp["data"].(map[string]any)
	require.NotNil(t, result)
	text, _ := result["result"].(string)
	assert.Contains(t, text, "systemctl restart ingestd")
	assert.Contains(t, text, "Restart runbook")
	assert.NotContains(t, text, "Backup policy")
}

func TestE2E_KnowledgeLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)
	url := srv.URL + "/v1/tools/knowledge"

	added := postJSON(t, url, tools.KnowledgeRequest{
		Action:  "add",
		Content: "The staging cluster lives in eu-west-1.",
	})
	require.Equal(t, true, added["success"])
	id, _ := added["id"].(string)
	require.NotEmpty(t, id)

	searched := postJSON(t, url, tools.KnowledgeRequest{Action: "search", Query: "staging cluster"})
	require.Equal(t, true, searched["success"])
	assert.Equal(t, float64(1), searched["total"])

	savePath := filepath.Join(t.TempDir(), "export.json")
	saved := postJSON(t, url, tools.KnowledgeRequest{Action: "saveToFile", FilePath: savePath})
	require.Equal(t, true, saved["success"])

	cleared := postJSON(t, url, tools.KnowledgeRequest{Action: "clear"})
	require.Equal(t, true, cleared["success"])
	assert.Equal(t, float64(1), cleared["cleared"])

	loaded := postJSON(t, url, tools.KnowledgeRequest{Action: "loadFile", FilePath: savePath})
	require.Equal(t, true, loaded["success"])
	assert.Equal(t, float64(1), loaded["loadCount"])

	listed := postJSON(t, url, tools.KnowledgeRequest{Action: "list"})
	require.Equal(t, true, listed["success"])
	assert.Equal(t, float64(1), listed["total"])

	deleted := postJSON(t, url, tools.KnowledgeRequest{Action: "delete", ID: id})
	require.Equal(t, true, deleted["success"])
}
