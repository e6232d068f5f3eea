package api

import (
	"net/http"
	"time"

	"github.com/featherpost/courier/internal/domain"
	"github.com/featherpost/courier/internal/pkg/httputil"
	"github.com/featherpost/courier/internal/pkg/logger"
	"github.com/featherpost/courier/internal/service/letter"
	"github.com/go-chi/chi/v5"
)

type submitRequest struct {
	letter.SubmitInput
	DraftID string `json:"draft_id,omitempty"`
}

// SubmitLetter accepts a letter for delivery. With draft_id and no inline
// content it promotes the draft; with inline content it submits that and
// discards the draft afterwards.
func (h *Handlers) SubmitLetter(w http.ResponseWriter, r *http.Request) {
	var in submitRequest
	if !httputil.Decode(w, r, &in) {
		return
	}

	if in.DraftID != "" && in.Content == "" && len(in.Pages) == 0 {
		l, err := h.drafts.Promote(r.Context(), in.DraftID, in.SenderID)
		if err != nil {
			writeError(w, err)
			return
		}
		httputil.Created(w, l)
		return
	}

	l, err := h.letters.Submit(r.Context(), in.SubmitInput)
	if err != nil {
		writeError(w, err)
		return
	}

	if in.DraftID != "" {
		if err := h.drafts.Discard(r.Context(), in.DraftID, in.SenderID); err != nil {
			logger.Warn("draft not discarded after send", "draft_id", in.DraftID, "err", err)
		}
	}
	httputil.Created(w, l)
}

// requestClock returns the clock the mailbox reads use: the ?now= override
// when present, otherwise the server clock. Visibility is a pure function of
// this value, so tests can step time through the query string.
func requestClock(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("now")
	if raw == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, domain.ValidationError{Field: "now", Reason: "must be RFC3339"}
	}
	return t.UTC(), nil
}

// ListIncoming returns letters that have arrived for the address.
func (h *Handlers) ListIncoming(w http.ResponseWriter, r *http.Request) {
	now, err := requestClock(r)
	if err != nil {
		writeError(w, err)
		return
	}
	letters, err := h.letters.ListIncoming(r.Context(), chi.URLParam(r, "address"), now)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"letters": emptyIfNil(letters)})
}

// ListPending returns letters still in transit to the address.
func (h *Handlers) ListPending(w http.ResponseWriter, r *http.Request) {
	now, err := requestClock(r)
	if err != nil {
		writeError(w, err)
		return
	}
	letters, err := h.letters.ListPending(r.Context(), chi.URLParam(r, "address"), now)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"letters": emptyIfNil(letters)})
}

// ListArchived returns resolved letters, saved by default, dropped with
// ?status=dropped.
func (h *Handlers) ListArchived(w http.ResponseWriter, r *http.Request) {
	status := domain.LetterStatus(r.URL.Query().Get("status"))
	letters, err := h.letters.ListArchived(r.Context(), chi.URLParam(r, "address"), status)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"letters": emptyIfNil(letters)})
}

// ListSent returns everything the account has sent.
func (h *Handlers) ListSent(w http.ResponseWriter, r *http.Request) {
	letters, err := h.letters.ListSent(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"letters": emptyIfNil(letters)})
}

// ResolveLetter records the recipient's decision on an arrived letter.
func (h *Handlers) ResolveLetter(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Decision string   `json:"decision"`
		Tags     []string `json:"tags,omitempty"`
	}
	if !httputil.Decode(w, r, &in) {
		return
	}

	l, err := h.letters.Resolve(r.Context(), chi.URLParam(r, "id"), in.Decision, in.Tags)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, l)
}

func emptyIfNil(letters []domain.Letter) []domain.Letter {
	if letters == nil {
		return []domain.Letter{}
	}
	return letters
}
