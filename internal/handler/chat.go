// Package handler exposes the story pipeline and its collaborators over
// HTTP.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spectralvoice/hauntify/internal/middleware"
	"github.com/spectralvoice/hauntify/internal/model"
	"github.com/spectralvoice/hauntify/pkg/logger"
)

// PipelineRunner runs one story pipeline invocation.
type PipelineRunner interface {
	Run(ctx context.Context, messages []model.ChatMessage) <-chan model.PipelineEvent
}

// ChatHandler streams pipeline events as newline-delimited JSON.
type ChatHandler struct {
	pipeline PipelineRunner
	logger   *logger.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(p PipelineRunner, log *logger.Logger) *ChatHandler {
	return &ChatHandler{pipeline: p, logger: log}
}

// Chat handles POST /api/v1/chat. Each PipelineEvent is written as one
// JSON line and flushed immediately; client disconnect cancels the run.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateChatRequest(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	events := h.pipeline.Run(ctx, req.Messages)
	for ev := range events {
		line, err := ev.Marshal()
		if err != nil {
			h.logger.Error("failed to marshal pipeline event", "error", err, "type", ev.Type)
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			// Client went away; the context cancellation stops the run.
			h.logger.Info("client disconnected mid-stream",
				"correlation_id", middleware.GetCorrelationID(ctx))
			return
		}
		flusher.Flush()
	}
}
