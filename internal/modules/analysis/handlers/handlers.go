// Package handlers provides HTTP handlers for portfolio analysis.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/tearsheet/internal/domain"
	"github.com/aristath/tearsheet/internal/modules/analysis"
	"github.com/rs/zerolog"
)

const maxRequestBytes = 1 << 20

// Analyzer runs and validates analyses.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error)
	Validate(req analysis.Request) (*domain.PortfolioSpec, error)
}

// Handler handles analysis HTTP requests
type Handler struct {
	service        Analyzer
	originPatterns []string
	log            zerolog.Logger
}

// NewHandler creates a new analysis handler
func NewHandler(service Analyzer, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "analysis").Logger(),
	}
}

// HandleAnalyze handles POST /api/analyze
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	result, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"cached":    result.Cached,
		},
	})
}

// HandleValidate handles POST /api/validate
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	spec, err := h.service.Validate(req)
	if err != nil {
		kind := domain.KindOf(err)
		h.writeJSON(w, StatusFor(kind), map[string]interface{}{
			"valid": false,
			"error": domain.UserMessage(err),
			"kind":  kind,
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":     true,
		"portfolio": spec.Summary(),
	})
}

// StatusFor maps an error kind onto an HTTP status.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindDataFetch:
		return http.StatusNotFound
	case domain.KindAnalysis:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (analysis.Request, bool) {
	var payload analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&payload); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid request body",
			"kind":  domain.KindValidation,
		})
		return analysis.Request{}, false
	}
	return payload.toRequest(), true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	status := StatusFor(kind)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("Analysis failed")
	} else {
		h.log.Warn().Err(err).Str("kind", string(kind)).Msg("Analysis rejected")
	}

	h.writeJSON(w, status, map[string]interface{}{
		"error": domain.UserMessage(err),
		"kind":  kind,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
		status = http.StatusInternalServerError
		body = []byte(`{"error":"Internal server error","kind":"internal"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		h.log.Debug().Err(err).Msg("Failed to write JSON response")
	}
}
