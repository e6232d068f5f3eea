package api

import (
	"errors"
	"net/http"

	"github.com/featherpost/courier/internal/domain"
	"github.com/featherpost/courier/internal/pkg/httputil"
	"github.com/featherpost/courier/internal/service/delivery"
	"github.com/featherpost/courier/internal/service/directory"
	"github.com/featherpost/courier/internal/service/draft"
	"github.com/featherpost/courier/internal/service/inventory"
	"github.com/featherpost/courier/internal/service/letter"
	"github.com/featherpost/courier/internal/service/note"
)

// writeError maps service errors onto the HTTP error envelope. Validation is
// 400, unknown things are 404, conflicts (claimed address, owned envelope,
// resolved letter) are 409, and recoverable preconditions (cooldown, funds,
// stock) are 422 with machine-readable detail. Anything unmapped is a 500
// with the real error logged, never echoed.
func writeError(w http.ResponseWriter, err error) {
	var ve domain.ValidationError
	if errors.As(err, &ve) {
		httputil.ErrorCode(w, http.StatusBadRequest, "validation_error", ve.Error(), ve)
		return
	}

	var ce delivery.CooldownError
	if errors.As(err, &ce) {
		httputil.ErrorCode(w, http.StatusUnprocessableEntity, "cooldown_active", ce.Error(), map[string]any{
			"remaining_seconds": int(ce.Remaining.Seconds()),
		})
		return
	}

	var ife inventory.InsufficientFundsError
	if errors.As(err, &ife) {
		httputil.ErrorCode(w, http.StatusUnprocessableEntity, "insufficient_funds", ife.Error(), ife)
		return
	}

	switch {
	case errors.Is(err, directory.ErrNotFound),
		errors.Is(err, delivery.ErrRecipientNotFound),
		errors.Is(err, letter.ErrNotFound),
		errors.Is(err, inventory.ErrNotFound),
		errors.Is(err, draft.ErrNotFound),
		errors.Is(err, note.ErrNotFound):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, directory.ErrAddressClaimed):
		httputil.ErrorCode(w, http.StatusConflict, "address_claimed", err.Error(), nil)
	case errors.Is(err, inventory.ErrAlreadyOwned):
		httputil.ErrorCode(w, http.StatusConflict, "already_owned", err.Error(), nil)
	case errors.Is(err, letter.ErrInvalidState):
		httputil.ErrorCode(w, http.StatusConflict, "already_resolved", err.Error(), nil)
	case errors.Is(err, inventory.ErrOutOfStock):
		httputil.ErrorCode(w, http.StatusUnprocessableEntity, "out_of_stock", err.Error(), nil)
	default:
		httputil.InternalError(w, err)
	}
}
