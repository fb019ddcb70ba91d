package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all price history routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/history", func(r chi.Router) {
		r.Get("/", h.HandleListSymbols)

		r.Route("/{symbol}", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetPrices(w, r, chi.URLParam(r, "symbol"))
			})
			r.Put("/", func(w http.ResponseWriter, r *http.Request) {
				h.HandlePutPrices(w, r, chi.URLParam(r, "symbol"))
			})
			r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
				h.HandleDeleteSymbol(w, r, chi.URLParam(r, "symbol"))
			})
			r.Post("/csv", func(w http.ResponseWriter, r *http.Request) {
				h.HandleImportCSV(w, r, chi.URLParam(r, "symbol"))
			})
		})
	})
}
