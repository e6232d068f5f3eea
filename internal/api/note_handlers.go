package api

import (
	"net/http"

	"github.com/featherpost/courier/internal/domain"
	"github.com/featherpost/courier/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
)

type noteRequest struct {
	AccountID string `json:"account_id"`
	Content   string `json:"content"`
	Color     string `json:"color"`
}

// CreateNote pins a new note.
func (h *Handlers) CreateNote(w http.ResponseWriter, r *http.Request) {
	var in noteRequest
	if !httputil.Decode(w, r, &in) {
		return
	}

	n, err := h.notes.Create(r.Context(), in.AccountID, in.Content, in.Color)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.Created(w, n)
}

// ListNotes returns the account's notes, newest first.
func (h *Handlers) ListNotes(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeError(w, domain.ValidationError{Field: "account_id", Reason: "is required"})
		return
	}

	notes, err := h.notes.List(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	httputil.OK(w, map[string]any{"notes": notes})
}

// UpdateNote rewrites a note's content and color.
func (h *Handlers) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var in noteRequest
	if !httputil.Decode(w, r, &in) {
		return
	}

	n, err := h.notes.Update(r.Context(), chi.URLParam(r, "id"), in.Content, in.Color)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, n)
}

// DeleteNote removes a note.
func (h *Handlers) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	httputil.NoContent(w)
}
