// Package handlers provides HTTP handlers for price history management.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/tearsheet/internal/domain"
	"github.com/aristath/tearsheet/internal/modules/history"
	"github.com/aristath/tearsheet/internal/modules/prices"
	"github.com/rs/zerolog"
)

const maxUploadBytes = 10 << 20

// Store is the price history persistence used by the handlers.
type Store interface {
	GetDailyPrices(ctx context.Context, symbol string, start, end time.Time) ([]prices.Bar, error)
	UpsertPrices(ctx context.Context, symbol string, bars []prices.Bar) (int, error)
	ListSymbols(ctx context.Context) ([]history.SymbolCoverage, error)
	DeleteSymbol(ctx context.Context, symbol string) (int64, error)
}

// SymbolValidator normalizes ticker symbols.
type SymbolValidator interface {
	ValidateSymbols(raw []string) ([]string, error)
}

// CacheInvalidator drops cached results derived from stored prices.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Handler handles price history HTTP requests
type Handler struct {
	store     Store
	validator SymbolValidator
	cache     CacheInvalidator
	log       zerolog.Logger
}

// NewHandler creates a new price history handler
func NewHandler(store Store, validator SymbolValidator, cache CacheInvalidator, log zerolog.Logger) *Handler {
	return &Handler{
		store:     store,
		validator: validator,
		cache:     cache,
		log:       log.With().Str("handler", "history").Logger(),
	}
}

type barPayload struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// HandleListSymbols handles GET /api/history
func (h *Handler) HandleListSymbols(w http.ResponseWriter, r *http.Request) {
	coverage, err := h.store.ListSymbols(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list symbols")
		h.writeError(w, http.StatusInternalServerError, "Failed to list symbols")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":     coverage,
		"metadata": metadata(),
	})
}

// HandleGetPrices handles GET /api/history/{symbol}?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handler) HandleGetPrices(w http.ResponseWriter, r *http.Request, rawSymbol string) {
	symbol, ok := h.symbol(w, rawSymbol)
	if !ok {
		return
	}

	start := time.Unix(0, 0).UTC()
	end := time.Now().UTC()
	for name, dst := range map[string]*time.Time{"start": &start, "end": &end} {
		if raw := r.URL.Query().Get(name); raw != "" {
			parsed, err := time.Parse(domain.DateLayout, raw)
			if err != nil {
				h.writeError(w, http.StatusBadRequest, "Date must be in YYYY-MM-DD format")
				return
			}
			*dst = parsed
		}
	}

	bars, err := h.store.GetDailyPrices(r.Context(), symbol, start, end)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get prices")
		h.writeError(w, http.StatusInternalServerError, "Failed to get prices")
		return
	}

	out := make([]barPayload, len(bars))
	for i, b := range bars {
		out[i] = barPayload{
			Date:   b.Date.Format(domain.DateLayout),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"symbol": symbol,
			"bars":   out,
		},
		"metadata": metadata(),
	})
}

// HandlePutPrices handles PUT /api/history/{symbol} with a JSON array of bars
func (h *Handler) HandlePutPrices(w http.ResponseWriter, r *http.Request, rawSymbol string) {
	symbol, ok := h.symbol(w, rawSymbol)
	if !ok {
		return
	}

	var payload []barPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	bars := make([]prices.Bar, 0, len(payload))
	for _, p := range payload {
		date, err := time.Parse(domain.DateLayout, strings.TrimSpace(p.Date))
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Date must be in YYYY-MM-DD format")
			return
		}
		if p.Close <= 0 {
			h.writeError(w, http.StatusBadRequest, "Close price must be positive")
			return
		}
		bars = append(bars, prices.Bar{
			Date:   date,
			Open:   orClose(p.Open, p.Close),
			High:   orClose(p.High, p.Close),
			Low:    orClose(p.Low, p.Close),
			Close:  p.Close,
			Volume: p.Volume,
		})
	}

	h.persist(w, r, symbol, bars)
}

// HandleImportCSV handles POST /api/history/{symbol}/csv. The body is the
// CSV document itself, or a multipart form with a "file" field.
func (h *Handler) HandleImportCSV(w http.ResponseWriter, r *http.Request, rawSymbol string) {
	symbol, ok := h.symbol(w, rawSymbol)
	if !ok {
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	r.Body = body

	var source io.Reader = body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Missing file field")
			return
		}
		defer file.Close()
		source = file
	}

	bars, err := history.ParseCSV(source)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, domain.UserMessage(err))
		return
	}

	h.persist(w, r, symbol, bars)
}

// HandleDeleteSymbol handles DELETE /api/history/{symbol}
func (h *Handler) HandleDeleteSymbol(w http.ResponseWriter, r *http.Request, rawSymbol string) {
	symbol, ok := h.symbol(w, rawSymbol)
	if !ok {
		return
	}

	deleted, err := h.store.DeleteSymbol(r.Context(), symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to delete prices")
		h.writeError(w, http.StatusInternalServerError, "Failed to delete prices")
		return
	}
	h.invalidate(r.Context())

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"symbol":  symbol,
			"deleted": deleted,
		},
		"metadata": metadata(),
	})
}

func (h *Handler) persist(w http.ResponseWriter, r *http.Request, symbol string, bars []prices.Bar) {
	if len(bars) == 0 {
		h.writeError(w, http.StatusBadRequest, "No price rows provided")
		return
	}

	stored, err := h.store.UpsertPrices(r.Context(), symbol, bars)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to store prices")
		h.writeError(w, http.StatusInternalServerError, "Failed to store prices")
		return
	}
	h.invalidate(r.Context())

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"symbol": symbol,
			"stored": stored,
		},
		"metadata": metadata(),
	})
}

func (h *Handler) symbol(w http.ResponseWriter, raw string) (string, bool) {
	symbols, err := h.validator.ValidateSymbols([]string{raw})
	if err != nil {
		h.writeError(w, http.StatusBadRequest, domain.UserMessage(err))
		return "", false
	}
	return symbols[0], true
}

func (h *Handler) invalidate(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx); err != nil {
		h.log.Warn().Err(err).Msg("Failed to invalidate analysis cache")
	}
}

func orClose(v, closePrice float64) float64 {
	if v <= 0 {
		return closePrice
	}
	return v
}

func metadata() map[string]interface{} {
	return map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
		status = http.StatusInternalServerError
		body = []byte(`{"error":"Internal server error"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		h.log.Debug().Err(err).Msg("Failed to write JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
