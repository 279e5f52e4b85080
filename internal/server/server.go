package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"shopping-lists/internal/app"
	"shopping-lists/internal/assistant"
	"shopping-lists/internal/clipper"
	"shopping-lists/internal/metrics"
	"shopping-lists/internal/shopping"
)

// Options are the server settings that do not come from its collaborators.
type Options struct {
	ShareBaseURL string
	Signer       *shopping.ShareSigner
	// DataPath is measured by /health.
	DataPath string
	// Clipper imports lists from web pages. Nil uses a default one.
	Clipper *clipper.Clipper
}

// Server exposes the shopping state, the assistant and the text-generation
// endpoint over HTTP. It keeps one assistant conversation for all clients.
type Server struct {
	app       *app.App
	assistant *assistant.Assistant
	endpoint  *assistant.Endpoint
	opts      Options
}

// New creates a Server.
func New(a *app.App, asst *assistant.Assistant, endpoint *assistant.Endpoint, opts Options) *Server {
	if opts.Clipper == nil {
		opts.Clipper = clipper.NewClipper(nil)
	}
	return &Server{
		app:       a,
		assistant: asst,
		endpoint:  endpoint,
		opts:      opts,
	}
}

// RegisterHandlers mounts every route on mux.
func (s *Server) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ollama", s.handleGenerate)

	mux.HandleFunc("GET /api/supermarkets", s.handleListSupermarkets)
	mux.HandleFunc("POST /api/supermarkets", s.handleAddSupermarket)
	mux.HandleFunc("DELETE /api/supermarkets/{id}", s.handleRemoveSupermarket)
	mux.HandleFunc("PUT /api/selection", s.handleSelect)

	mux.HandleFunc("GET /api/lists", s.handleLists)
	mux.HandleFunc("POST /api/lists", s.handleAddList)
	mux.HandleFunc("POST /api/lists/import", s.handleImportList)
	mux.HandleFunc("POST /api/lists/{id}/items", s.handleAddItem)
	mux.HandleFunc("POST /api/lists/{id}/items/{itemID}/toggle", s.handleToggleItem)
	mux.HandleFunc("DELETE /api/lists/{id}/items/{itemID}", s.handleRemoveItem)
	mux.HandleFunc("POST /api/lists/{id}/share", s.handleShare)

	mux.HandleFunc("GET /api/assistant", s.handleConversation)
	mux.HandleFunc("POST /api/assistant", s.handleSend)

	mux.HandleFunc("GET /share", s.handleSharePage)
	mux.HandleFunc("GET /health", s.handleHealth)
}

// Handler returns a new mux serving every route.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterHandlers(mux)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// writeAppError maps controller errors to status codes.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrEmptyName), errors.Is(err, shopping.ErrNoSupermarket):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrUnknownSupermarket):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shopping.ErrSupermarketInUse):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("Error handling request: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"system": metrics.GetSysHealth(s.opts.DataPath),
	})
}
