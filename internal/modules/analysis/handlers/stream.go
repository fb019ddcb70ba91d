package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/aristath/tearsheet/internal/domain"
	"github.com/aristath/tearsheet/internal/modules/analysis"
	"nhooyr.io/websocket"
)

const (
	streamReadWait  = 30 * time.Second
	streamWriteWait = 10 * time.Second
)

// streamMessage is one frame sent to a streaming client.
type streamMessage struct {
	Type  string           `json:"type"`
	Stage string           `json:"stage,omitempty"`
	Data  *analysis.Result `json:"data,omitempty"`
	Error string           `json:"error,omitempty"`
	Kind  domain.ErrorKind `json:"kind,omitempty"`
}

// WithOrigins sets the browser origins allowed to open analysis streams.
// Entries may be full origins ("http://localhost:3000") or host patterns.
func (h *Handler) WithOrigins(origins []string) *Handler {
	patterns := make([]string, 0, len(origins))
	for _, origin := range origins {
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, origin)
	}
	h.originPatterns = patterns
	return h
}

// HandleAnalyzeStream handles GET /api/analyze/stream.
//
// The client sends one analysis request as a text frame. The server answers
// with a "progress" frame per pipeline stage, then a single "result" or
// "error" frame, and closes the connection.
func (h *Handler) HandleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to accept analysis stream")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected exit")
	conn.SetReadLimit(maxRequestBytes)

	ctx := r.Context()

	readCtx, cancel := context.WithTimeout(ctx, streamReadWait)
	msgType, payload, err := conn.Read(readCtx)
	cancel()
	if err != nil {
		h.log.Debug().Err(err).Msg("Analysis stream closed before request")
		return
	}
	if msgType != websocket.MessageText {
		conn.Close(websocket.StatusUnsupportedData, "expected a text frame")
		return
	}

	var body analyzeRequest
	if err := json.Unmarshal(payload, &body); err != nil {
		h.send(ctx, conn, streamMessage{Type: "error", Error: "Invalid request body", Kind: domain.KindValidation})
		conn.Close(websocket.StatusNormalClosure, "")
		return
	}

	progress := func(stage string) {
		if err := h.send(ctx, conn, streamMessage{Type: "progress", Stage: stage}); err != nil {
			h.log.Debug().Err(err).Str("stage", stage).Msg("Failed to send progress")
		}
	}

	result, err := h.service.Analyze(analysis.WithProgress(ctx, progress), body.toRequest())
	if err != nil {
		kind := domain.KindOf(err)
		if kind == domain.KindInternal {
			h.log.Error().Err(err).Msg("Streamed analysis failed")
		}
		h.send(ctx, conn, streamMessage{Type: "error", Error: domain.UserMessage(err), Kind: kind})
		conn.Close(websocket.StatusNormalClosure, "")
		return
	}

	if err := h.send(ctx, conn, streamMessage{Type: "result", Data: result}); err != nil {
		h.log.Warn().Err(err).Msg("Failed to send analysis result")
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg streamMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal stream message: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, streamWriteWait)
	defer cancel()

	if err := conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("failed to write stream message: %w", err)
	}
	return nil
}
