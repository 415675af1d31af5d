package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spectralvoice/hauntify/internal/voice"
	"github.com/spectralvoice/hauntify/pkg/logger"
)

type fakeSynthesizer struct {
	result  *voice.Result
	err     error
	gotText string
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text string) (*voice.Result, error) {
	f.gotText = text
	return f.result, f.err
}

func (f *fakeSynthesizer) Name() string { return "fake" }

func TestVoiceSynthesizeStripsMarkers(t *testing.T) {
	t.Parallel()

	synth := &fakeSynthesizer{result: &voice.Result{
		Audio:       []byte("mp3"),
		MimeType:    "audio/mpeg",
		DurationSec: 1.5,
	}}
	h := NewVoiceHandler(synth, logger.NewNop())

	body := `{"text":"Read me. ##TIMELINE## {\"year\": 1800, \"title\": \"T\", \"desc\": \"d\"} And me."}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/voice", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Synthesize(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(synth.gotText, "##TIMELINE##") {
		t.Errorf("marker text reached the synthesizer: %q", synth.gotText)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("content type = %q", ct)
	}
	if d := rec.Header().Get("X-Audio-Duration"); d != "1.50" {
		t.Errorf("duration header = %q", d)
	}
	if rec.Body.String() != "mp3" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestVoiceQuotaExceededIs429(t *testing.T) {
	t.Parallel()

	h := NewVoiceHandler(&fakeSynthesizer{err: voice.ErrQuotaExceeded}, logger.NewNop())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/voice", strings.NewReader(`{"text":"hello"}`))
	rec := httptest.NewRecorder()
	h.Synthesize(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}

func TestVoiceUnconfiguredIs503(t *testing.T) {
	t.Parallel()

	h := NewVoiceHandler(nil, logger.NewNop())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/voice", strings.NewReader(`{"text":"hello"}`))
	rec := httptest.NewRecorder()
	h.Synthesize(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestVoiceEmptyTextIs400(t *testing.T) {
	t.Parallel()

	h := NewVoiceHandler(&fakeSynthesizer{}, logger.NewNop())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/voice", strings.NewReader(`{"text":""}`))
	rec := httptest.NewRecorder()
	h.Synthesize(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
