package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spectralvoice/hauntify/pkg/logger"
	"github.com/spectralvoice/hauntify/pkg/metrics"
)

const (
	// DefaultElevenLabsVoiceID is Brian, a deep resonant male voice.
	DefaultElevenLabsVoiceID = "hbB2qXyS2GMyyZIZyhAH"
	elevenLabsBase           = "https://api.elevenlabs.io/v1"
	elevenLabsModel          = "eleven_turbo_v2_5"
)

// ElevenLabs synthesizes horror narration through the ElevenLabs API.
type ElevenLabs struct {
	apiKey     string
	baseURL    string
	voiceID    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewElevenLabs creates an ElevenLabs synthesizer.
func NewElevenLabs(apiKey, baseURL, voiceID string, log *logger.Logger) (*ElevenLabs, error) {
	if apiKey == "" {
		return nil, errors.New("ElevenLabs API key is required")
	}
	if baseURL == "" {
		baseURL = elevenLabsBase
	}
	if voiceID == "" {
		voiceID = DefaultElevenLabsVoiceID
	}
	return &ElevenLabs{
		apiKey:     apiKey,
		baseURL:    baseURL,
		voiceID:    voiceID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log,
	}, nil
}

// Name returns the provider name.
func (e *ElevenLabs) Name() string {
	return "elevenlabs"
}

type elevenLabsBody struct {
	Text          string         `json:"text"`
	ModelID       string         `json:"model_id"`
	VoiceSettings map[string]any `json:"voice_settings"`
}

// Synthesize converts text to MP3 audio.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) (*Result, error) {
	start := time.Now()

	body, err := json.Marshal(elevenLabsBody{
		Text:    text,
		ModelID: elevenLabsModel,
		VoiceSettings: map[string]any{
			"stability":        0.5,
			"similarity_boost": 0.75,
			"style":            0.6,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+"/text-to-speech/"+e.voiceID, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		metrics.VoiceSynthesisDuration.WithLabelValues(e.Name(), "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("elevenlabs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		metrics.VoiceSynthesisDuration.WithLabelValues(e.Name(), "error").Observe(time.Since(start).Seconds())
		if resp.StatusCode == http.StatusTooManyRequests || strings.Contains(string(detail), "quota") {
			return nil, ErrQuotaExceeded
		}
		return nil, fmt.Errorf("elevenlabs error: %d %s", resp.StatusCode, string(detail))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("elevenlabs returned empty audio")
	}

	metrics.VoiceSynthesisDuration.WithLabelValues(e.Name(), "success").Observe(time.Since(start).Seconds())
	e.logger.Info("synthesized speech", "provider", e.Name(), "bytes", len(audio))

	return &Result{
		Audio:       audio,
		MimeType:    "audio/mpeg",
		DurationSec: estimateDuration(text),
	}, nil
}
