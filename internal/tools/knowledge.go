package tools

import (
	"context"
	"fmt"

	"github.com/groundline-ai/groundline/internal/service"
)

// Knowledge tool actions.
const (
	ActionAdd        = "add"
	ActionSearch     = "search"
	ActionList       = "list"
	ActionDelete     = "delete"
	ActionClear      = "clear"
	ActionLoadFile   = "loadFile"
	ActionLoadBulk   = "loadBulk"
	ActionExport     = "export"
	ActionSaveToFile = "saveToFile"
)

// KnowledgeRequest is the single dispatch shape for all knowledge-store
// actions; which fields matter depends on the action.
type KnowledgeRequest struct {
	Action            string             `json:"action"`
	Content           string             `json:"content,omitempty"`
	Metadata          map[string]any     `json:"metadata,omitempty"`
	ID                string             `json:"id,omitempty"`
	Query             string             `json:"query,omitempty"`
	Limit             int                `json:"limit,omitempty"`
	FilePath          string             `json:"filePath,omitempty"`
	Items             []service.BulkItem `json:"items,omitempty"`
	Format            string             `json:"format,omitempty"`
	IncludeEmbeddings bool               `json:"includeEmbeddings,omitempty"`
}

// KnowledgeTool dispatches knowledge-store actions and answers with JSON
// envelopes.
type KnowledgeTool struct {
	knowledge   *service.KnowledgeService
	persistence *service.PersistenceService
}

// NewKnowledgeTool creates a KnowledgeTool over the given services.
func NewKnowledgeTool(knowledge *service.KnowledgeService, persistence *service.PersistenceService) *KnowledgeTool {
	return &KnowledgeTool{knowledge: knowledge, persistence: persistence}
}

// Handle dispatches one action. Every outcome, including failures, is an
// envelope with at least a success flag.
func (t *KnowledgeTool) Handle(ctx context.Context, req KnowledgeRequest) Envelope {
	switch req.Action {
	case ActionAdd:
		return t.handleAdd(ctx, req)
	case ActionSearch:
		return t.handleSearch(ctx, req)
	case ActionList:
		return t.handleList()
	case ActionDelete:
		return t.handleDelete(req)
	case ActionClear:
		return Success(Envelope{"cleared": t.knowledge.Clear()})
	case ActionLoadFile:
		return t.handleLoadFile(ctx, req)
	case ActionLoadBulk:
		return t.handleLoadBulk(ctx, req)
	case ActionExport:
		return t.handleExport(req)
	case ActionSaveToFile:
		return t.handleSaveToFile(ctx, req)
	default:
		return Failure(fmt.Sprintf("unknown action %q", req.Action))
	}
}

func (t *KnowledgeTool) handleAdd(ctx context.Context, req KnowledgeRequest) Envelope {
	item, err := t.knowledge.Add(ctx, req.ID, req.Content, req.Metadata)
	if err != nil {
		return Failure(err.Error())
	}
	return Success(Envelope{"id": item.ID})
}

func (t *KnowledgeTool) handleSearch(ctx context.Context, req KnowledgeRequest) Envelope {
	output := t.knowledge.Search(ctx, req.Query, req.Limit)
	return Success(Envelope{
		"results":    output.Results,
		"searchType": output.SearchType,
		"total":      len(output.Results),
	})
}

func (t *KnowledgeTool) handleList() Envelope {
	items := t.knowledge.List()
	return Success(Envelope{"knowledge": items, "total": len(items)})
}

func (t *KnowledgeTool) handleDelete(req KnowledgeRequest) Envelope {
	if req.ID == "" {
		return Failure("id is required for delete")
	}
	if !t.knowledge.Delete(req.ID) {
		return Failure(fmt.Sprintf("knowledge item %q not found", req.ID))
	}
	return Success(Envelope{"id": req.ID})
}

func (t *KnowledgeTool) handleLoadFile(ctx context.Context, req KnowledgeRequest) Envelope {
	result, err := t.persistence.LoadFile(ctx, req.FilePath)
	if err != nil {
		return Failure(err.Error())
	}
	return Success(Envelope{"loadCount": result.LoadCount, "items": result.Items})
}

func (t *KnowledgeTool) handleLoadBulk(ctx context.Context, req KnowledgeRequest) Envelope {
	result := t.persistence.LoadBulk(ctx, req.Items)
	return Success(Envelope{"loadCount": result.LoadCount, "results": result.Results})
}

func (t *KnowledgeTool) handleExport(req KnowledgeRequest) Envelope {
	result, err := t.persistence.Export(req.Format, req.IncludeEmbeddings)
	if err != nil {
		return Failure(err.Error())
	}
	env := Envelope{"format": result.Format, "totalItems": result.TotalItems}
	if result.Data != nil {
		env["buffer"] = result.Data
		env["byteLength"] = result.ByteLength
	} else {
		env["data"] = result.Document
	}
	return Success(env)
}

func (t *KnowledgeTool) handleSaveToFile(ctx context.Context, req KnowledgeRequest) Envelope {
	result, err := t.persistence.SaveToFile(ctx, req.FilePath, req.Format, req.IncludeEmbeddings)
	if err != nil {
		return Failure(err.Error())
	}
	return Success(Envelope{
		"path":       result.Path,
		"totalItems": result.TotalItems,
		"byteLength": result.ByteLength,
	})
}
