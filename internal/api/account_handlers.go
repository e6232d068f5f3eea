package api

import (
	"net/http"

	"github.com/featherpost/courier/internal/pkg/httputil"
	"github.com/featherpost/courier/internal/service/directory"
	"github.com/go-chi/chi/v5"
)

// Register creates an account holding its first address.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in directory.RegisterInput
	if !httputil.Decode(w, r, &in) {
		return
	}

	acct, err := h.directory.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.Created(w, acct)
}

// GetAccount returns the full account, inventory included.
func (h *Handlers) GetAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := h.directory.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, acct)
}

// AddAddress claims an additional address for the account.
func (h *Handlers) AddAddress(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Address string `json:"address"`
		Label   string `json:"label"`
	}
	if !httputil.Decode(w, r, &in) {
		return
	}

	acct, err := h.directory.AddAddress(r.Context(), chi.URLParam(r, "id"), in.Address, in.Label)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, acct)
}

// ResolveAddress returns the public card for an address: who answers there
// and their bird, nothing more.
func (h *Handlers) ResolveAddress(w http.ResponseWriter, r *http.Request) {
	acct, err := h.directory.Resolve(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.OK(w, map[string]any{
		"address":   chi.URLParam(r, "address"),
		"full_name": acct.FullName,
		"bird":      acct.Bird,
	})
}
