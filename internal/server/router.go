package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/groundline-ai/groundline/internal/api"
	"github.com/groundline-ai/groundline/internal/api/handlers"
	"github.com/groundline-ai/groundline/internal/api/middleware"
)

type RouterConfig struct {
	ToolsHandler *handlers.ToolsHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1/tools", func(r chi.Router) {
		r.Post("/corpus-search", cfg.ToolsHandler.CorpusSearch)
		r.Post("/knowledge", cfg.ToolsHandler.Knowledge)
	})

	return r
}
