package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes registers analysis routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze", h.HandleAnalyze)
	r.Get("/analyze/stream", h.HandleAnalyzeStream)
	r.Post("/validate", h.HandleValidate)
}
