package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/spectralvoice/hauntify/internal/middleware"
	"github.com/spectralvoice/hauntify/internal/timeline"
	"github.com/spectralvoice/hauntify/internal/voice"
	"github.com/spectralvoice/hauntify/pkg/logger"
)

// VoiceHandler turns story text into narrated audio.
type VoiceHandler struct {
	synth  voice.Synthesizer
	logger *logger.Logger
}

// NewVoiceHandler creates a voice handler.
func NewVoiceHandler(synth voice.Synthesizer, log *logger.Logger) *VoiceHandler {
	return &VoiceHandler{synth: synth, logger: log}
}

type voiceRequest struct {
	Text string `json:"text"`
}

// Synthesize handles POST /api/v1/voice. Timeline markers are stripped
// before synthesis so the narrator never reads raw JSON aloud.
func (h *VoiceHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	if h.synth == nil {
		writeError(w, http.StatusServiceUnavailable, "voice synthesis not configured")
		return
	}

	var req voiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateVoiceText(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	narration := timeline.StripMarkers(req.Text)
	result, err := h.synth.Synthesize(r.Context(), narration)
	if err != nil {
		if errors.Is(err, voice.ErrQuotaExceeded) {
			writeError(w, http.StatusTooManyRequests, "voice quota exceeded")
			return
		}
		h.logger.Error("voice synthesis failed", "provider", h.synth.Name(), "error", err)
		writeError(w, http.StatusBadGateway, "voice synthesis failed")
		return
	}

	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("X-Audio-Duration", strconv.FormatFloat(result.DurationSec, 'f', 2, 64))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Audio); err != nil {
		h.logger.Warn("failed to write audio response", "error", err)
	}
}
