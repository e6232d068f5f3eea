package api

import (
	"net/http"

	"github.com/featherpost/courier/internal/pkg/httputil"
)

// ListStamps returns the stamp catalog, cheapest first.
func (h *Handlers) ListStamps(w http.ResponseWriter, r *http.Request) {
	stamps, err := h.catalog.Stamps(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"stamps": stamps})
}

// ListEnvelopes returns the envelope catalog, cheapest first.
func (h *Handlers) ListEnvelopes(w http.ResponseWriter, r *http.Request) {
	envelopes, err := h.catalog.Envelopes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"envelopes": envelopes})
}

// BuyStamp purchases stamps for gold.
func (h *Handlers) BuyStamp(w http.ResponseWriter, r *http.Request) {
	var in struct {
		AccountID string `json:"account_id"`
		StampID   string `json:"stamp_id"`
		Quantity  int    `json:"quantity"`
	}
	if !httputil.Decode(w, r, &in) {
		return
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}

	p, err := h.inventory.BuyStamp(r.Context(), in.AccountID, in.StampID, in.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, p)
}

// BuyEnvelope unlocks an envelope for gold.
func (h *Handlers) BuyEnvelope(w http.ResponseWriter, r *http.Request) {
	var in struct {
		AccountID  string `json:"account_id"`
		EnvelopeID string `json:"envelope_id"`
	}
	if !httputil.Decode(w, r, &in) {
		return
	}

	p, err := h.inventory.BuyEnvelope(r.Context(), in.AccountID, in.EnvelopeID)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, p)
}
