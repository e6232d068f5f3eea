package api

import (
	"net/http"

	"github.com/featherpost/courier/internal/domain"
	"github.com/featherpost/courier/internal/pkg/httputil"
	"github.com/featherpost/courier/internal/service/draft"
	"github.com/go-chi/chi/v5"
)

// SaveDraft creates or updates a draft.
func (h *Handlers) SaveDraft(w http.ResponseWriter, r *http.Request) {
	var in draft.SaveInput
	if !httputil.Decode(w, r, &in) {
		return
	}

	d, err := h.drafts.Save(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, d)
}

// ListDrafts returns the account's drafts, most recently updated first.
func (h *Handlers) ListDrafts(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeError(w, domain.ValidationError{Field: "account_id", Reason: "is required"})
		return
	}

	drafts, err := h.drafts.List(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}
	if drafts == nil {
		drafts = []domain.Draft{}
	}
	httputil.OK(w, map[string]any{"drafts": drafts})
}

// DiscardDraft deletes the account's draft.
func (h *Handlers) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		writeError(w, domain.ValidationError{Field: "account_id", Reason: "is required"})
		return
	}

	if err := h.drafts.Discard(r.Context(), chi.URLParam(r, "id"), accountID); err != nil {
		writeError(w, err)
		return
	}
	httputil.NoContent(w)
}
