package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/groundline-ai/groundline/internal/api"
	"github.com/groundline-ai/groundline/internal/tools"
)

// ToolsHandler exposes the retrieval tools over HTTP.
type ToolsHandler struct {
	corpus    *tools.CorpusSearchTool
	knowledge *tools.KnowledgeTool
}

func NewToolsHandler(corpus *tools.CorpusSearchTool, knowledge *tools.KnowledgeTool) *ToolsHandler {
	return &ToolsHandler{corpus: corpus, knowledge: knowledge}
}

type CorpusSearchResponse struct {
	Result string `json:"result"`
}

// CorpusSearch runs a query against the static corpus. The tool itself never
// fails, so the endpoint always answers 200 with a text result.
func (h *ToolsHandler) CorpusSearch(w http.ResponseWriter, r *http.Request) {
	var req tools.CorpusSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := h.corpus.Handle(r.Context(), req)
	api.Success(w, http.StatusOK, CorpusSearchResponse{Result: result})
}

// Knowledge dispatches a knowledge tool action and returns its envelope
// verbatim.
func (h *ToolsHandler) Knowledge(w http.ResponseWriter, r *http.Request) {
	var req tools.KnowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Action == "" {
		api.Error(w, http.StatusBadRequest, "action is required")
		return
	}

	envelope := h.knowledge.Handle(r.Context(), req)
	api.JSON(w, http.StatusOK, envelope)
}
