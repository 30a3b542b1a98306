package routes

import (
	"net/http"

	"github.com/sweethome-care/voice-entry-service/internal/api/handlers"
	"github.com/sweethome-care/voice-entry-service/internal/api/middleware"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	entryHandler *handlers.EntryHandler
}

// NewRouter creates a new router
func NewRouter(entryHandler *handlers.EntryHandler) *Router {
	return &Router{
		mux: http.NewServeMux(),

		entryHandler: entryHandler,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {

	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Entry endpoints
	r.mux.HandleFunc("POST /v1/entries", r.entryHandler.CreateEntry)
	r.mux.HandleFunc("GET /v1/entries", r.entryHandler.ListEntries)
	r.mux.HandleFunc("GET /v1/entries/{id}", r.entryHandler.GetEntry)
	r.mux.HandleFunc("POST /v1/entries/{id}/process", r.entryHandler.ProcessEntry)
	r.mux.HandleFunc("POST /v1/entries/{id}/reply", r.entryHandler.ReplyEntry)

	// Apply middleware
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
