package server

import (
	"errors"
	"log"
	"net/http"

	"shopping-lists/internal/assistant"
	"shopping-lists/internal/clipper"
	"shopping-lists/internal/shopping"
)

const generateErrorText = "Error al procesar la solicitud"

type generateRequest struct {
	Prompt *string `json:"prompt"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Prompt == nil {
		log.Printf("Error in generate endpoint: bad request body: %v", err)
		writeError(w, http.StatusInternalServerError, generateErrorText)
		return
	}

	resp, err := s.endpoint.Respond(r.Context(), *req.Prompt)
	if err != nil {
		log.Printf("Error in generate endpoint: %v", err)
		writeError(w, http.StatusInternalServerError, generateErrorText)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": resp})
}

type nameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListSupermarkets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"supermarkets": s.app.Supermarkets(),
		"selected":     s.app.Selected(),
	})
}

func (s *Server) handleAddSupermarket(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	m, err := s.app.AddSupermarket(r.Context(), req.Name)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleRemoveSupermarket(w http.ResponseWriter, r *http.Request) {
	if err := s.app.RemoveSupermarket(r.Context(), r.PathValue("id")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SupermarketID string `json:"supermarketId"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.app.Select(req.SupermarketID); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLists returns the lists of the supermarketId query parameter, or of
// the selected supermarket when the parameter is absent.
func (s *Server) handleLists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := s.app.Selected()
	if q.Has("supermarketId") {
		id = q.Get("supermarketId")
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"supermarketId": id,
		"lists":         s.app.FilteredLists(id),
	})
}

func (s *Server) handleAddList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string   `json:"name"`
		SupermarketID string   `json:"supermarketId"`
		Items         []string `json:"items"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SupermarketID == "" {
		req.SupermarketID = s.app.Selected()
	}
	if req.SupermarketID == "" {
		writeAppError(w, shopping.ErrNoSupermarket)
		return
	}

	l, err := s.app.ImportList(r.Context(), req.Name, req.SupermarketID, req.Items)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// handleImportList creates a list from the items of a web page.
func (s *Server) handleImportList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL           string `json:"url"`
		Name          string `json:"name"`
		SupermarketID string `json:"supermarketId"`
	}
	if err := decodeJSON(w, r, &req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SupermarketID == "" {
		req.SupermarketID = s.app.Selected()
	}
	if req.SupermarketID == "" {
		writeAppError(w, shopping.ErrNoSupermarket)
		return
	}

	clipped, err := s.opts.Clipper.ClipURL(r.Context(), req.URL)
	switch {
	case errors.Is(err, clipper.ErrUnsupportedURL), errors.Is(err, clipper.ErrForbiddenAddress):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, clipper.ErrNoItems):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		log.Printf("Error importing %s: %v", req.URL, err)
		writeError(w, http.StatusBadGateway, "failed to fetch page")
		return
	}

	name := clipped.ListName(req.Name)
	l, err := s.app.ImportList(r.Context(), name, req.SupermarketID, clipped.Items)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.app.AddItem(r.Context(), r.PathValue("id"), req.Name); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleItem(w http.ResponseWriter, r *http.Request) {
	if err := s.app.ToggleItem(r.Context(), r.PathValue("id"), r.PathValue("itemID")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := s.app.RemoveItem(r.Context(), r.PathValue("id"), r.PathValue("itemID")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleShare toggles sharing and returns the share link while the list is shared.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.app.ToggleSharing(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}
	l, ok := s.app.List(id)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := map[string]any{"shared": l.Shared}
	if l.Shared {
		link, err := shopping.ShareURL(s.opts.ShareBaseURL, l, s.opts.Signer)
		if err != nil {
			writeAppError(w, err)
			return
		}
		resp["url"] = link
	}
	writeJSON(w, http.StatusOK, resp)
}

type conversation struct {
	Messages []assistant.Message `json:"messages"`
	Staged   string              `json:"staged"`
	Pending  bool                `json:"pending"`
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, conversation{
		Messages: s.assistant.History(),
		Staged:   assistant.StagedKind(s.assistant.Staged()),
		Pending:  s.assistant.Pending(),
	})
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := s.assistant.Send(r.Context(), req.Message)
	switch {
	case errors.Is(err, assistant.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, assistant.ErrBusy):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeAppError(w, err)
	default:
		writeJSON(w, http.StatusOK, msg)
	}
}
