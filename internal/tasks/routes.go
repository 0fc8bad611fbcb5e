package tasks

import "github.com/go-chi/chi/v5"

// MountRoutes attaches the task endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/accept", h.Accept)
	r.Post("/{id}/complete", h.Complete)
	r.Post("/{id}/cancel", h.Cancel)
	r.Post("/{id}/dispute", h.Dispute)
}
