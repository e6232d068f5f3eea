package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures the router.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/api/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", h.Register)
			r.Get("/{id}", h.GetAccount)
			r.Post("/{id}/addresses", h.AddAddress)
		})

		r.Get("/directory/{address}", h.ResolveAddress)

		r.Route("/letters", func(r chi.Router) {
			r.Post("/", h.SubmitLetter)
			r.Get("/incoming/{address}", h.ListIncoming)
			r.Get("/pending/{address}", h.ListPending)
			r.Get("/archived/{address}", h.ListArchived)
			r.Get("/sent/{accountID}", h.ListSent)
			r.Post("/{id}/resolve", h.ResolveLetter)
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/stamps", h.ListStamps)
			r.Get("/envelopes", h.ListEnvelopes)
		})

		r.Route("/shop", func(r chi.Router) {
			r.Post("/stamps", h.BuyStamp)
			r.Post("/envelopes", h.BuyEnvelope)
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", h.SaveDraft)
			r.Get("/", h.ListDrafts)
			r.Delete("/{id}", h.DiscardDraft)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Post("/", h.CreateNote)
			r.Get("/", h.ListNotes)
			r.Put("/{id}", h.UpdateNote)
			r.Delete("/{id}", h.DeleteNote)
		})
	})

	return r
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
