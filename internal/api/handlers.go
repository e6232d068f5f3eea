// Package api exposes the courier services over HTTP.
package api

import (
	"github.com/featherpost/courier/internal/catalog"
	"github.com/featherpost/courier/internal/service/directory"
	"github.com/featherpost/courier/internal/service/draft"
	"github.com/featherpost/courier/internal/service/inventory"
	"github.com/featherpost/courier/internal/service/letter"
	"github.com/featherpost/courier/internal/service/note"
)

// Handlers bundles the services the HTTP layer fronts.
type Handlers struct {
	directory *directory.Service
	letters   *letter.Service
	inventory *inventory.Service
	drafts    *draft.Service
	notes     *note.Service
	catalog   *catalog.Service
}

// NewHandlers creates the HTTP handler set.
func NewHandlers(
	dir *directory.Service,
	letters *letter.Service,
	inv *inventory.Service,
	drafts *draft.Service,
	notes *note.Service,
	cat *catalog.Service,
) *Handlers {
	return &Handlers{
		directory: dir,
		letters:   letters,
		inventory: inv,
		drafts:    drafts,
		notes:     notes,
		catalog:   cat,
	}
}
